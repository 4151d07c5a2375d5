package settings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// TOMLPersister stores settings as a TOML document.
type TOMLPersister struct {
	path string
}

// NewTOMLPersister returns a persister for the file at path.
func NewTOMLPersister(path string) *TOMLPersister {
	return &TOMLPersister{path: path}
}

// Path returns the settings file location.
func (p *TOMLPersister) Path() string {
	return p.path
}

// Load implements Persister.
func (p *TOMLPersister) Load(_ context.Context) (Settings, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultSettings(), nil
		}
		return Settings{}, fmt.Errorf("read settings %s: %w", p.path, err)
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Settings{}, fmt.Errorf("parse settings %s: %w", p.path, err)
	}
	return Decode(raw)
}

// Save implements Persister. The file is replaced atomically.
func (p *TOMLPersister) Save(_ context.Context, s Settings) error {
	data, err := toml.Marshal(s.ToMap())
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, FileModeDir); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(p.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp settings file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Chmod(FileModeFile); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close settings: %w", err)
	}
	if err := os.Rename(tmpPath, p.path); err != nil {
		return fmt.Errorf("replace settings %s: %w", p.path, err)
	}
	return nil
}
