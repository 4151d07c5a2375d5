package settings

import (
	"context"
	"errors"
	"sync"

	"github.com/cristianoliveira/rx-intray/internal/logging"
)

// Store holds the current settings snapshot and persists every update in
// the background.
type Store struct {
	mu        sync.RWMutex
	current   Settings
	persister Persister
	log       logging.Logger
	ctx       context.Context

	saveMu sync.Mutex
	gen    uint64
	saved  uint64 // generation of the newest successful save
	wg     sync.WaitGroup
}

// NewStore loads settings through p. Load failures are logged and never
// returned: invalid values are dropped from the loaded document, and any
// other failure falls back to defaults.
func NewStore(ctx context.Context, p Persister, log logging.Logger) *Store {
	if log == nil {
		log = logging.Nop()
	}
	if p == nil {
		p = NewMemoryPersister(nil)
	}
	s := &Store{
		persister: p,
		log:       log.With("component", "settings"),
		ctx:       context.WithoutCancel(ctx),
	}

	loaded, err := p.Load(ctx)
	switch {
	case err == nil:
		s.current = loaded
	case errors.Is(err, ErrInvalidValue):
		s.log.Warn("ignoring invalid persisted settings", "error", err)
		s.current = loaded
	default:
		s.log.Warn("failed to load settings, using defaults", "error", err)
		s.current = DefaultSettings()
	}
	return s
}

// Get returns a copy of the current settings.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Update merges p into the current settings and returns the result. Values
// that cannot be applied are logged and skipped. The new snapshot is saved
// asynchronously; when saves overlap the newest successful save wins, so a
// failed save does not stop an older queued snapshot from being written.
func (s *Store) Update(p Patch) Settings {
	s.mu.Lock()
	next, err := s.current.Apply(p)
	if err != nil {
		s.log.Warn("dropped invalid settings values", "error", err)
	}
	s.current = next
	s.gen++
	gen := s.gen
	out := next.Clone()
	s.wg.Add(1)
	s.mu.Unlock()

	go s.save(gen, next.Clone())
	return out
}

func (s *Store) save(gen uint64, snapshot Settings) {
	defer s.wg.Done()
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if gen < s.saved {
		s.log.Debug("skipping stale settings save", "generation", gen)
		return
	}
	if err := s.persister.Save(s.ctx, snapshot); err != nil {
		s.log.Error("failed to save settings", "error", err)
		return
	}
	s.saved = gen
	s.log.Debug("settings saved", "generation", gen)
}

// Flush blocks until every pending save has finished.
func (s *Store) Flush() {
	s.wg.Wait()
}
