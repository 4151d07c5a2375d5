// Package registry keeps the ordered in-memory list of notifications for one
// session.
package registry

import (
	"sync"
	"time"

	"github.com/cristianoliveira/rx-intray/internal/domain"
	"github.com/google/uuid"
)

// DefaultCapacity keeps every record; only Dismiss and ClearAll remove them.
const DefaultCapacity = 0

// Option configures a Registry.
type Option func(*Registry)

// WithCapacity bounds the registry. Zero or a negative value means unbounded.
func WithCapacity(n int) Option {
	return func(r *Registry) {
		if n < 0 {
			n = 0
		}
		r.capacity = n
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDGenerator overrides how notification IDs are generated.
func WithIDGenerator(gen func() string) Option {
	return func(r *Registry) {
		if gen != nil {
			r.newID = gen
		}
	}
}

// Registry is the ordered store of notification records, oldest first.
// It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	items    []domain.Notification
	capacity int
	last     time.Time
	now      func() time.Time
	newID    func() string
}

// New returns an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		capacity: DefaultCapacity,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewID returns a fresh ID without inserting anything.
func (r *Registry) NewID() string {
	return r.newID()
}

// Insert appends n and returns its ID. A missing ID or timestamp is filled
// in. Timestamps never go backwards relative to the previous insert.
// Duplicates are never rejected.
func (r *Registry) Insert(n domain.Notification) string {
	n = n.Clone()
	if n.ID == "" {
		n.ID = r.newID()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if n.Timestamp.IsZero() {
		n.Timestamp = r.now()
	}
	if n.Timestamp.Before(r.last) {
		n.Timestamp = r.last
	}
	r.last = n.Timestamp

	r.items = append(r.items, n)
	if r.capacity > 0 && len(r.items) > r.capacity {
		drop := len(r.items) - r.capacity
		clear(r.items[:drop])
		r.items = append(r.items[:0], r.items[drop:]...)
	}
	return n.ID
}

// Dismiss removes the record with id. It reports whether anything was removed.
func (r *Registry) Dismiss(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return false
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	return true
}

// MarkAsRead flags the record with id as read. It reports whether the record
// changed.
func (r *Registry) MarkAsRead(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 || r.items[i].Read {
		return false
	}
	r.items[i].Read = true
	return true
}

// MarkAllAsRead flags every record as read and returns how many changed.
func (r *Registry) MarkAllAsRead() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	changed := 0
	for i := range r.items {
		if !r.items[i].Read {
			r.items[i].Read = true
			changed++
		}
	}
	return changed
}

// ClearAll removes every record and returns how many were removed.
func (r *Registry) ClearAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.items)
	r.items = nil
	return n
}

// Get returns a copy of the record with id.
func (r *Registry) Get(id string) (domain.Notification, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOf(id)
	if i < 0 {
		return domain.Notification{}, false
	}
	return r.items[i].Clone(), true
}

// Snapshot returns an independent copy of all records, oldest first.
func (r *Registry) Snapshot() domain.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return domain.Snapshot(r.items).Clone()
}

// Len returns the number of records.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// UnreadCount returns the number of unread records.
func (r *Registry) UnreadCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return domain.Snapshot(r.items).Unread()
}

// indexOf returns the position of the first record with id, or -1.
// Callers must hold r.mu.
func (r *Registry) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range r.items {
		if r.items[i].ID == id {
			return i
		}
	}
	return -1
}
