// Package logging provides structured, redacting file logging for rx-intray.
package logging

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/cristianoliveira/rx-intray/internal/config"
)

// Config controls Init.
type Config struct {
	Enabled  bool
	Level    string // debug, info, warn or error
	MaxFiles int    // log files kept in LogDir, <= 0 keeps all
	Command  string // recorded on every entry and in the file name
	PID      int
}

// DefaultConfig returns a disabled info-level Config for the current process.
func DefaultConfig() Config {
	return Config{
		Level:    "info",
		MaxFiles: 10,
		Command:  filepath.Base(os.Args[0]),
		PID:      os.Getpid(),
	}
}

// FromGlobalConfig builds a Config from the loaded configuration.
// debug forces the debug level; quiet forces error unless debug is also set.
func FromGlobalConfig() Config {
	cfg := DefaultConfig()
	cfg.Enabled = config.GetBool("logging_enabled", false)
	cfg.Level = config.Get("logging_level", cfg.Level)
	cfg.MaxFiles = config.GetInt("logging_max_files", cfg.MaxFiles)
	if config.GetBool("debug", false) {
		cfg.Level = "debug"
	} else if config.GetBool("quiet", false) {
		cfg.Level = "error"
	}
	return cfg
}

// LogDir returns <state_dir>/logs, or a directory under os.TempDir when the
// state directory cannot be written.
func LogDir() (string, error) {
	if stateDir := config.Get("state_dir", ""); stateDir != "" {
		dir := filepath.Join(stateDir, "logs")
		if writable(dir) {
			return dir, nil
		}
	}
	dir := filepath.Join(os.TempDir(), "rx-intray", "logs")
	if !writable(dir) {
		return "", errors.New("no writable log directory")
	}
	return dir, nil
}

// writable creates dir with owner-only permissions and checks that a file
// can be created in it.
func writable(dir string) bool {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return false
	}
	f, err := os.CreateTemp(dir, ".writable-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}
