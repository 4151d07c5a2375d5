package settings

import (
	"context"
	"sync"
)

// Persister loads and saves settings for the store.
type Persister interface {
	// Load returns the persisted settings. A missing document is not an
	// error; it yields DefaultSettings.
	Load(ctx context.Context) (Settings, error)
	// Save replaces the persisted document with s.
	Save(ctx context.Context, s Settings) error
}

// MemoryPersister keeps settings in memory. It backs ephemeral sessions.
type MemoryPersister struct {
	mu    sync.Mutex
	data  *Settings
	saves int
	// LoadErr and SaveErr, when set, are returned by Load and Save.
	LoadErr error
	SaveErr error
}

// NewMemoryPersister returns a persister seeded with initial, or with
// nothing when initial is nil.
func NewMemoryPersister(initial *Settings) *MemoryPersister {
	p := &MemoryPersister{}
	if initial != nil {
		s := initial.Clone()
		p.data = &s
	}
	return p
}

// Load implements Persister.
func (p *MemoryPersister) Load(_ context.Context) (Settings, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.LoadErr != nil {
		return Settings{}, p.LoadErr
	}
	if p.data == nil {
		return DefaultSettings(), nil
	}
	return p.data.Clone(), nil
}

// Save implements Persister.
func (p *MemoryPersister) Save(_ context.Context, s Settings) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.SaveErr != nil {
		return p.SaveErr
	}
	c := s.Clone()
	p.data = &c
	p.saves++
	return nil
}

// Saved returns the last saved settings, if any.
func (p *MemoryPersister) Saved() (Settings, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.data == nil {
		return Settings{}, false
	}
	return p.data.Clone(), true
}

// Saves returns how many saves succeeded.
func (p *MemoryPersister) Saves() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saves
}
