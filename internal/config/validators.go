package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Validator normalizes a configuration value. An error makes Load fall back
// to the key's default and print a warning.
type Validator func(key, value, defaultValue string) (normalized string, err error)

var (
	validatorsMu sync.RWMutex
	validators   = make(map[string]Validator)
)

// RegisterValidator installs the validator for key. Registering a key twice
// panics.
func RegisterValidator(key string, v Validator) {
	validatorsMu.Lock()
	defer validatorsMu.Unlock()
	if _, exists := validators[key]; exists {
		panic(fmt.Sprintf("validator already registered for key: %s", key))
	}
	validators[key] = v
}

func getValidator(key string) Validator {
	validatorsMu.RLock()
	defer validatorsMu.RUnlock()
	return validators[key]
}

// intValidator accepts integers of at least min. Empty values take the default.
func intValidator(min int) Validator {
	return func(key, value, defaultValue string) (string, error) {
		if value == "" {
			return defaultValue, nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < min {
			return "", fmt.Errorf("%q is not an integer >= %d", value, min)
		}
		return strconv.Itoa(n), nil
	}
}

// PositiveIntValidator accepts integers greater than zero.
func PositiveIntValidator() Validator { return intValidator(1) }

// NonNegativeIntValidator accepts zero, which callers read as "no limit",
// and any positive integer.
func NonNegativeIntValidator() Validator { return intValidator(0) }

// EnumValidator accepts one of allowed, case-insensitively, and lowercases it.
func EnumValidator(allowed map[string]bool) Validator {
	return func(key, value, defaultValue string) (string, error) {
		if value == "" {
			return defaultValue, nil
		}
		lower := strings.ToLower(value)
		if !allowed[lower] {
			return "", fmt.Errorf("%q is not one of: %s", value, allowedValues(allowed))
		}
		return lower, nil
	}
}

// BoolValidator accepts 1/0, true/false, yes/no and on/off.
func BoolValidator() Validator {
	return func(key, value, defaultValue string) (string, error) {
		if value == "" {
			return defaultValue, nil
		}
		normalized := normalizeBool(value)
		if normalized != "true" && normalized != "false" {
			return "", fmt.Errorf("%q is not a boolean", value)
		}
		return normalized, nil
	}
}

// DurationValidator accepts non-negative Go durations such as 30s or 5m.
// With allowEmpty an empty value is kept, which disables the feature the key
// controls.
func DurationValidator(allowEmpty bool) Validator {
	return func(key, value, defaultValue string) (string, error) {
		if value == "" {
			if allowEmpty {
				return "", nil
			}
			return defaultValue, nil
		}
		d, err := time.ParseDuration(value)
		if err != nil || d < 0 {
			return "", fmt.Errorf("%q is not a duration like 30s or 5m", value)
		}
		return d.String(), nil
	}
}

func initValidators() {
	positive := PositiveIntValidator()
	boolean := BoolValidator()

	for key, v := range map[string]Validator{
		"settings_backend":  EnumValidator(map[string]bool{"toml": true, "sqlite": true}),
		"max_notifications": NonNegativeIntValidator(),
		"hooks_enabled":     boolean,
		"hooks_timeout":     positive,
		"max_hooks":         positive,
		"debug":             boolean,
		"quiet":             boolean,
		"logging_enabled":   boolean,
		"logging_level":     EnumValidator(map[string]bool{"debug": true, "info": true, "warn": true, "error": true}),
		"logging_max_files": positive,
	} {
		RegisterValidator(key, v)
	}
	registerDesktopValidators()
}

// normalizeBool maps the accepted boolean spellings to "true" or "false" and
// returns anything else unchanged.
func normalizeBool(val string) string {
	switch strings.ToLower(val) {
	case "1", "true", "yes", "on":
		return "true"
	case "0", "false", "no", "off":
		return "false"
	default:
		return val
	}
}

func allowedValues(allowed map[string]bool) string {
	values := make([]string, 0, len(allowed))
	for k := range allowed {
		values = append(values, k)
	}
	sort.Strings(values)
	return strings.Join(values, ", ")
}
