// Package dedup provides helpers for detecting repeated notifications.
package dedup

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Criteria defines how notification duplicates are detected.
type Criteria string

const (
	CriteriaTitle   Criteria = "title"
	CriteriaContent Criteria = "content"
	CriteriaExact   Criteria = "exact"

	partSeparator = "\x00"
)

// Options configure deduplication behavior.
type Options struct {
	Criteria Criteria
	Window   time.Duration
}

// Record captures the fields needed to compute deduplication keys.
type Record struct {
	Kind    string
	Title   string
	Message string
	Data    map[string]any
}

// ParseCriteria converts user-provided strings into a Criteria value.
func ParseCriteria(value string) Criteria {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(CriteriaTitle):
		return CriteriaTitle
	case string(CriteriaExact):
		return CriteriaExact
	default:
		return CriteriaContent
	}
}

// String returns the string value for Criteria.
func (c Criteria) String() string {
	return string(c)
}

// Key returns the deduplication key of record under criteria.
func Key(record Record, criteria Criteria) string {
	switch criteria {
	case CriteriaTitle:
		return joinParts(record.Kind, record.Title)
	case CriteriaExact:
		return joinParts(record.Kind, record.Title, record.Message, dataString(record.Data))
	case CriteriaContent:
		fallthrough
	default:
		return joinParts(record.Kind, record.Title, record.Message)
	}
}

func joinParts(parts ...string) string {
	return strings.Join(parts, partSeparator)
}

// dataString renders data deterministically.
func dataString(data map[string]any) string {
	if len(data) == 0 {
		return ""
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%v;", k, data[k])
	}
	return b.String()
}

// Window remembers recently seen keys and suppresses repeats within the
// configured duration. It is safe for concurrent use.
type Window struct {
	mu   sync.Mutex
	opts Options
	seen map[string]time.Time
	now  func() time.Time
}

// NewWindow returns a Window for opts. A non-positive duration disables
// suppression.
func NewWindow(opts Options) *Window {
	return &Window{opts: opts, seen: make(map[string]time.Time), now: time.Now}
}

// SetClock overrides the time source.
func (w *Window) SetClock(now func() time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.now = now
}

// Allow reports whether record is new within the window and, if so,
// remembers it.
func (w *Window) Allow(record Record) bool {
	if w == nil || w.opts.Window <= 0 {
		return true
	}
	key := Key(record, w.opts.Criteria)

	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.now()
	w.pruneLocked(now)
	if last, ok := w.seen[key]; ok && now.Sub(last) < w.opts.Window {
		return false
	}
	w.seen[key] = now
	return true
}

// Len returns how many keys are currently remembered.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.seen)
}

func (w *Window) pruneLocked(now time.Time) {
	for key, last := range w.seen {
		if now.Sub(last) >= w.opts.Window {
			delete(w.seen, key)
		}
	}
}
