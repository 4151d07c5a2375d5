// Package inbox turns message files dropped into a directory into
// notifications. Each *.json file holds one incoming message.
package inbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cristianoliveira/rx-intray/internal/domain"
	"github.com/cristianoliveira/rx-intray/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a file must stay unchanged before it is read.
const DefaultDebounce = 150 * time.Millisecond

// Notifier is the part of the notification manager the watcher uses.
type Notifier interface {
	ShowMessage(title, message string, data domain.Data) string
	ShowWarning(title, message string, data domain.Data) string
}

// Message is the content of one inbox file.
type Message struct {
	ConversationID string    `json:"conversation_id"`
	From           string    `json:"from"`
	Body           string    `json:"body"`
	ReceivedAt     time.Time `json:"received_at"`
}

// Watcher reports every new inbox file once per session.
type Watcher struct {
	dir      string
	notifier Notifier
	log      logging.Logger
	debounce time.Duration

	mu     sync.Mutex
	seen   map[string]bool
	timers map[string]*time.Timer
	wg     sync.WaitGroup
}

// NewWatcher returns a watcher for dir.
func NewWatcher(dir string, n Notifier, log logging.Logger) *Watcher {
	if log == nil {
		log = logging.Nop()
	}
	return &Watcher{
		dir:      dir,
		notifier: n,
		log:      log.With("component", "inbox"),
		debounce: DefaultDebounce,
		seen:     make(map[string]bool),
		timers:   make(map[string]*time.Timer),
	}
}

// SetDebounce overrides DefaultDebounce.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Scan processes every unseen file in the directory, in name order, and
// returns how many messages were shown. It satisfies the poll job signature.
func (w *Watcher) Scan(_ context.Context) (int, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return 0, fmt.Errorf("read inbox %s: %w", w.dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && isMessageFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	shown := 0
	for _, name := range names {
		if w.process(filepath.Join(w.dir, name)) {
			shown++
		}
	}
	return shown, nil
}

// Run watches the directory until ctx is done. Existing files are scanned
// first.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("create inbox %s: %w", w.dir, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create inbox watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch inbox %s: %w", w.dir, err)
	}

	if _, err := w.Scan(ctx); err != nil {
		w.log.Warn("initial inbox scan failed", "error", err)
	}
	w.log.Info("watching inbox", "dir", w.dir)

	for {
		select {
		case <-ctx.Done():
			w.stopTimers()
			w.wg.Wait()
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return errors.New("inbox watcher closed")
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 || !isMessageFile(ev.Name) {
				continue
			}
			w.schedule(ev.Name)
		case err, ok := <-fw.Errors:
			if !ok {
				return errors.New("inbox watcher closed")
			}
			w.log.Warn("inbox watch error", "error", err)
		}
	}
}

// schedule processes path once it has been quiet for the debounce period.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.seen[filepath.Base(path)] {
		return
	}
	if t, ok := w.timers[path]; ok {
		// A timer that already fired will process the file itself.
		if t.Stop() {
			t.Reset(w.debounce)
		}
		return
	}
	w.wg.Add(1)
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		defer w.wg.Done()
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		w.process(path)
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.timers, path)
	}
}

// process shows the file at path unless it was already handled. It reports
// whether a message notification was shown.
func (w *Watcher) process(path string) bool {
	name := filepath.Base(path)
	w.mu.Lock()
	if w.seen[name] {
		w.mu.Unlock()
		return false
	}
	w.seen[name] = true
	w.mu.Unlock()

	msg, err := readMessage(path)
	if err != nil {
		w.log.Warn("unreadable inbox file", "file", name, "error", err)
		w.notifier.ShowWarning("Unreadable inbox message", fmt.Sprintf("%s: %v", name, err), domain.Data{"file": name})
		return false
	}

	title := "New message"
	if msg.From != "" {
		title = "New message from " + msg.From
	}
	data := domain.Data{"file": name}
	if msg.ConversationID != "" {
		data["conversation_id"] = msg.ConversationID
	}
	if msg.From != "" {
		data["from"] = msg.From
	}
	if !msg.ReceivedAt.IsZero() {
		data["received_at"] = msg.ReceivedAt.Format(time.RFC3339)
	}
	id := w.notifier.ShowMessage(title, msg.Body, data)
	w.log.Debug("inbox message shown", "file", name, "id", id)
	return true
}

func readMessage(path string) (Message, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Message{}, err
	}
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Message{}, fmt.Errorf("decode: %w", err)
	}
	if strings.TrimSpace(msg.Body) == "" && msg.From == "" {
		return Message{}, errors.New("message has neither sender nor body")
	}
	return msg, nil
}

func isMessageFile(name string) bool {
	base := filepath.Base(name)
	return strings.EqualFold(filepath.Ext(base), ".json") && !strings.HasPrefix(base, ".")
}
