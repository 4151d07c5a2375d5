package settings

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidValue is wrapped by errors reporting patch values that could not
// be applied.
var ErrInvalidValue = errors.New("invalid setting value")

// Patch is a partial settings update keyed by setting name. Nested quiet
// hours fields may be addressed either with a quiet_hours table or with
// dotted keys such as "quiet_hours.start". Known keys match case-insensitively.
// Unknown keys pass through to Settings.Extra, or QuietHours.Extra inside
// quiet_hours, under their original spelling; a nil value removes one.
type Patch map[string]any

// Enabled returns a patch toggling the global switch.
func Enabled(v bool) Patch {
	return Patch{KeyEnabled: v}
}

// DesktopEnabled returns a patch toggling desktop mirroring.
func DesktopEnabled(v bool) Patch {
	return Patch{KeyDesktopEnabled: v}
}

// DesktopPermission returns a patch recording a permission decision.
func DesktopPermission(v string) Patch {
	return Patch{KeyDesktopPermission: v}
}

// Apply merges p into a copy of s. Keys whose values cannot be coerced are
// left untouched and reported in the returned error; every other key is
// applied.
func (s Settings) Apply(p Patch) (Settings, error) {
	next := s.Clone()
	var errs []error

	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := next.applyKey(key, p[key]); err != nil {
			errs = append(errs, err)
		}
	}
	return next, errors.Join(errs...)
}

func (s *Settings) applyKey(rawKey string, value any) error {
	key := strings.ToLower(strings.TrimSpace(rawKey))
	switch key {
	case KeyEnabled:
		b, err := coerceBool(key, value)
		if err != nil {
			return err
		}
		s.Enabled = b
	case KeyDesktopEnabled:
		b, err := coerceBool(key, value)
		if err != nil {
			return err
		}
		s.DesktopEnabled = b
	case KeyDesktopPermission:
		perm, err := coercePermission(key, value)
		if err != nil {
			return err
		}
		s.DesktopPermission = perm
	case KeyQuietHours:
		return s.applyQuietHours(value)
	default:
		if strings.HasPrefix(key, KeyQuietHours+".") {
			_, field, _ := strings.Cut(rawKey, ".")
			return s.applyQuietField(field, value)
		}
		s.Extra = setExtra(s.Extra, rawKey, value)
	}
	return nil
}

// setExtra stores value under key, or deletes key when value is nil.
func setExtra(extra map[string]any, key string, value any) map[string]any {
	if value == nil {
		delete(extra, key)
		return extra
	}
	if extra == nil {
		extra = make(map[string]any)
	}
	extra[key] = cloneValue(value)
	return extra
}

func (s *Settings) applyQuietHours(value any) error {
	switch typed := value.(type) {
	case QuietHours:
		if err := validateQuietHours(typed); err != nil {
			return err
		}
		s.QuietHours = typed.Clone()
		return nil
	case map[string]any:
		fields := make([]string, 0, len(typed))
		for k := range typed {
			fields = append(fields, k)
		}
		sort.Strings(fields)
		var errs []error
		for _, field := range fields {
			if err := s.applyQuietField(field, typed[field]); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	default:
		return fmt.Errorf("%w: %s: expected a table, got %T", ErrInvalidValue, KeyQuietHours, value)
	}
}

func (s *Settings) applyQuietField(rawField string, value any) error {
	field := strings.ToLower(strings.TrimSpace(rawField))
	key := KeyQuietHours + "." + field
	switch field {
	case QuietKeyEnabled:
		b, err := coerceBool(key, value)
		if err != nil {
			return err
		}
		s.QuietHours.Enabled = b
	case QuietKeyStart:
		clock, err := coerceClock(key, value)
		if err != nil {
			return err
		}
		s.QuietHours.Start = clock
	case QuietKeyEnd:
		clock, err := coerceClock(key, value)
		if err != nil {
			return err
		}
		s.QuietHours.End = clock
	default:
		s.QuietHours.Extra = setExtra(s.QuietHours.Extra, rawField, value)
	}
	return nil
}

// ParseAssignments turns "key=value" arguments into a patch. Values stay
// strings; Apply coerces them for known keys.
func ParseAssignments(args []string) (Patch, error) {
	p := make(Patch, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q: expected key=value", arg)
		}
		p[key] = strings.TrimSpace(value)
	}
	return p, nil
}
