package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cristianoliveira/rx-intray/internal/config"
)

const (
	tomlSettingsFilename   = "notifications" + FileExtTOML
	sqliteSettingsFilename = "preferences.db"
)

// TOMLPath returns the location of the TOML settings document.
func TOMLPath() string {
	return filepath.Join(resolveDir("config_dir", ".config"), tomlSettingsFilename)
}

// SQLitePath returns the location of the preferences database.
func SQLitePath() string {
	return filepath.Join(resolveDir("state_dir", filepath.Join(".local", "state")), sqliteSettingsFilename)
}

// resolveDir returns the configured directory for key, falling back to the
// XDG default under the home directory.
func resolveDir(key, homeRelative string) string {
	if dir := config.Get(key, ""); dir != "" {
		return dir
	}
	xdgEnv := "XDG_CONFIG_HOME"
	if key == "state_dir" {
		xdgEnv = "XDG_STATE_HOME"
	}
	base := os.Getenv(xdgEnv)
	if base == "" {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, homeRelative)
	}
	return filepath.Join(base, "rx-intray")
}

// NewPersister returns the persister for backend.
func NewPersister(backend string) (Persister, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendTOML:
		return NewTOMLPersister(TOMLPath()), nil
	case BackendSQLite:
		return NewSQLitePersister(SQLitePath())
	default:
		return nil, fmt.Errorf("unknown settings backend %q", backend)
	}
}

// NewPersisterFromConfig returns the persister selected by settings_backend.
func NewPersisterFromConfig() (Persister, error) {
	return NewPersister(config.Get("settings_backend", BackendTOML))
}
