// Package config provides configuration loading.
//
// Values are plain strings keyed by lowercase names. Load layers them as
// defaults, then the TOML file, then RX_INTRAY_* environment variables, and
// normalizes the result with the registered validators.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cristianoliveira/rx-intray/internal/colors"
	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix is the prefix of environment variables that override config keys.
const EnvPrefix = "RX_INTRAY_"

const (
	// FileModeDir is the permission for created directories.
	FileModeDir os.FileMode = 0755
	// FileModeFile is the permission for written files.
	FileModeFile os.FileMode = 0644
	// FileExtTOML is the extension of configuration files.
	FileExtTOML = ".toml"

	sampleHeader = "# rx-intray configuration\n# This file is in TOML format.\n# Uncomment and edit values as needed.\n\n"
)

var (
	mu sync.RWMutex
	// config holds the effective values, defaults the values before any
	// override. Both are replaced as a whole by Load.
	config   map[string]string
	defaults map[string]string
)

func init() {
	initValidators()
}

// Load reads the configuration from scratch.
func Load() {
	defs := defaultValues()
	values := make(map[string]string, len(defs))
	for k, v := range defs {
		values[k] = v
	}

	// The environment is applied before the file too, so RX_INTRAY_CONFIG_DIR
	// decides where the file is looked up.
	applyEnv(values)
	if path := configFilePath(values); path != "" {
		applyFile(values, path)
		applyEnv(values)
	}
	normalize(values, defs)
	deriveDirs(values, defs)
	writeSample(values["config_dir"], defs)

	mu.Lock()
	config, defaults = values, defs
	mu.Unlock()
}

func reset() {
	mu.Lock()
	defer mu.Unlock()
	config, defaults = nil, nil
}

// defaultValues returns the built-in value of every known key.
func defaultValues() map[string]string {
	home, _ := os.UserHomeDir()
	configHome := envOr("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	stateHome := envOr("XDG_STATE_HOME", filepath.Join(home, ".local", "state"))
	configDir := filepath.Join(configHome, "rx-intray")
	stateDir := filepath.Join(stateHome, "rx-intray")

	defs := map[string]string{
		"config_dir": configDir,
		"state_dir":  stateDir,
		"hooks_dir":  filepath.Join(configDir, "hooks"),
		"inbox_dir":  filepath.Join(stateDir, "inbox"),

		"settings_backend":  "toml",
		"max_notifications": "0",
		"poll_schedule":     "@every 1m",

		"hooks_enabled": "true",
		"hooks_timeout": "30",
		"max_hooks":     "10",

		"logging_enabled":   "false",
		"logging_level":     "info",
		"logging_max_files": "10",
		"debug":             "false",
		"quiet":             "false",
	}
	setDesktopDefaults(defs)
	return defs
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

// applyEnv copies RX_INTRAY_<KEY> variables into values as <key>.
func applyEnv(values map[string]string) {
	for _, env := range os.Environ() {
		name, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
		if key == "config_path" {
			continue
		}
		values[key] = value
	}
}

// configFilePath returns RX_INTRAY_CONFIG_PATH, or config.toml in config_dir
// when that file exists.
func configFilePath(values map[string]string) string {
	if p := os.Getenv(EnvPrefix + "CONFIG_PATH"); p != "" {
		return p
	}
	if values["config_dir"] == "" {
		return ""
	}
	p := filepath.Join(values["config_dir"], "config"+FileExtTOML)
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

func applyFile(values map[string]string, path string) {
	if !strings.EqualFold(filepath.Ext(path), FileExtTOML) {
		colors.Debug(fmt.Sprintf("ignoring config file %s: not %s", path, FileExtTOML))
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		colors.Debug(fmt.Sprintf("unable to read config file %s: %v", path, err))
		return
	}
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		colors.Warning(fmt.Sprintf("unable to parse config file %s: %v", path, err))
		return
	}
	flatten(values, "", raw)
}

// flatten stores nested tables under underscore-joined keys, so
// [desktop] rate_per_minute = 5 becomes desktop_rate_per_minute.
func flatten(values map[string]string, prefix string, raw map[string]any) {
	for k, v := range raw {
		key := strings.ToLower(k)
		if prefix != "" {
			key = prefix + "_" + key
		}
		switch typed := v.(type) {
		case map[string]any:
			flatten(values, key, typed)
		case string:
			values[key] = typed
		case bool:
			values[key] = strconv.FormatBool(typed)
		case int64:
			values[key] = strconv.FormatInt(typed, 10)
		case float64:
			values[key] = strconv.FormatFloat(typed, 'f', -1, 64)
		default:
			colors.Warning(fmt.Sprintf("unsupported config value type for %s: %T", key, v))
		}
	}
}

// normalize runs the registered validators. A rejected value is replaced by
// the default.
func normalize(values, defs map[string]string) {
	for key, value := range values {
		v := getValidator(key)
		if v == nil {
			continue
		}
		normalized, err := v(key, value, defs[key])
		if err != nil {
			colors.Warning(fmt.Sprintf("invalid %s: %v; using default: %s", key, err, defs[key]))
			normalized = defs[key]
		}
		values[key] = normalized
	}
}

// deriveDirs moves hooks_dir and inbox_dir along with an overridden
// config_dir or state_dir unless they were set explicitly.
func deriveDirs(values, defs map[string]string) {
	if values["hooks_dir"] == defs["hooks_dir"] && values["config_dir"] != "" {
		values["hooks_dir"] = filepath.Join(values["config_dir"], "hooks")
	}
	if values["inbox_dir"] == defs["inbox_dir"] && values["state_dir"] != "" {
		values["inbox_dir"] = filepath.Join(values["state_dir"], "inbox")
	}
}

// writeSample writes the defaults to dir/config.toml unless a file is
// already there. Directory keys are machine specific and left out.
func writeSample(dir string, defs map[string]string) {
	if dir == "" {
		return
	}
	path := filepath.Join(dir, "config"+FileExtTOML)
	if _, err := os.Stat(path); err == nil {
		return
	}
	if err := os.MkdirAll(dir, FileModeDir); err != nil {
		colors.Debug(fmt.Sprintf("unable to create config dir %s: %v", dir, err))
		return
	}

	typed := make(map[string]any, len(defs))
	for k, v := range defs {
		if strings.HasSuffix(k, "_dir") {
			continue
		}
		typed[k] = typedValue(v)
	}
	data, err := toml.Marshal(typed)
	if err != nil {
		colors.Warning(fmt.Sprintf("unable to marshal sample config: %v", err))
		return
	}
	if err := os.WriteFile(path, append([]byte(sampleHeader), data...), FileModeFile); err != nil {
		colors.Warning(fmt.Sprintf("unable to write sample config to %s: %v", path, err))
	}
}

// typedValue turns "10" and "true" back into TOML integers and booleans.
func typedValue(s string) any {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

func lookup(key string) (string, bool) {
	mu.RLock()
	defer mu.RUnlock()
	v, ok := config[key]
	return v, ok
}

// Get returns the value of key, or defaultValue when it is not set.
func Get(key, defaultValue string) string {
	if v, ok := lookup(key); ok {
		return v
	}
	return defaultValue
}

// GetInt returns key as an integer, or defaultValue when it is unset or not
// a number.
func GetInt(key string, defaultValue int) int {
	v, ok := lookup(key)
	if !ok {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return n
}

// GetBool returns key as a boolean, or defaultValue when it is unset or not
// a recognized boolean.
func GetBool(key string, defaultValue bool) bool {
	v, ok := lookup(key)
	if !ok {
		return defaultValue
	}
	switch normalizeBool(v) {
	case "true":
		return true
	case "false":
		return false
	}
	return defaultValue
}

// GetDuration returns key as a duration, or defaultValue when it is unset or
// malformed. An empty value is zero, which disables the feature it controls.
func GetDuration(key string, defaultValue time.Duration) time.Duration {
	v, ok := lookup(key)
	if !ok {
		return defaultValue
	}
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultValue
	}
	return d
}
