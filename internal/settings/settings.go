package settings

import (
	"time"
)

// QuietHours suppresses desktop mirroring during a daily window.
// Windows where End is before Start wrap past midnight.
type QuietHours struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
	// Extra holds fields of the quiet_hours table the engine does not know.
	Extra map[string]any `json:"-"`
}

// Clone returns a deep copy of q.
func (q QuietHours) Clone() QuietHours {
	q.Extra = cloneExtra(q.Extra)
	return q
}

// Active reports whether t falls inside the quiet window.
func (q QuietHours) Active(t time.Time) bool {
	if !q.Enabled {
		return false
	}
	start, errStart := time.Parse(clockLayout, q.Start)
	end, errEnd := time.Parse(clockLayout, q.End)
	if errStart != nil || errEnd != nil {
		return false
	}
	from := start.Hour()*60 + start.Minute()
	to := end.Hour()*60 + end.Minute()
	now := t.Hour()*60 + t.Minute()
	switch {
	case from == to:
		return false
	case from < to:
		return now >= from && now < to
	default:
		return now >= from || now < to
	}
}

// Settings holds one user's notification preferences.
//
// Persisted shape (TOML):
//
//	enabled = true
//	desktop_enabled = true
//	desktop_permission = "granted"
//
//	[quiet_hours]
//	enabled = false
//	start = "22:00"
//	end = "07:00"
//
// Keys the engine does not know are kept in Extra and written back unchanged.
type Settings struct {
	Enabled           bool
	DesktopEnabled    bool
	DesktopPermission string
	QuietHours        QuietHours
	Extra             map[string]any
}

// DefaultSettings returns settings with all default values.
func DefaultSettings() Settings {
	return Settings{
		Enabled:           true,
		DesktopEnabled:    true,
		DesktopPermission: PermissionUnrequested,
		QuietHours: QuietHours{
			Enabled: false,
			Start:   "22:00",
			End:     "07:00",
		},
	}
}

// Clone returns a deep copy of s.
func (s Settings) Clone() Settings {
	s.Extra = cloneExtra(s.Extra)
	s.QuietHours = s.QuietHours.Clone()
	return s
}

func cloneExtra(extra map[string]any) map[string]any {
	if extra == nil {
		return nil
	}
	out := make(map[string]any, len(extra))
	for k, v := range extra {
		out[k] = cloneValue(v)
	}
	return out
}

// ToMap flattens settings into the persisted document shape.
// Known keys take precedence over Extra entries with the same name, at the
// top level and inside quiet_hours.
func (s Settings) ToMap() map[string]any {
	out := make(map[string]any, len(s.Extra)+4)
	for k, v := range s.Extra {
		out[k] = cloneValue(v)
	}
	out[KeyEnabled] = s.Enabled
	out[KeyDesktopEnabled] = s.DesktopEnabled
	out[KeyDesktopPermission] = s.DesktopPermission
	quiet := cloneExtra(s.QuietHours.Extra)
	if quiet == nil {
		quiet = make(map[string]any, 3)
	}
	quiet[QuietKeyEnabled] = s.QuietHours.Enabled
	quiet[QuietKeyStart] = s.QuietHours.Start
	quiet[QuietKeyEnd] = s.QuietHours.End
	out[KeyQuietHours] = quiet
	return out
}

// Decode builds settings from a persisted document, starting from defaults.
// Values that cannot be coerced are skipped and reported in the returned
// error (wrapping ErrInvalidValue); the settings are usable either way.
func Decode(raw map[string]any) (Settings, error) {
	return DefaultSettings().Apply(Patch(raw))
}

func cloneValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, inner := range typed {
			out[k] = cloneValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, inner := range typed {
			out[i] = cloneValue(inner)
		}
		return out
	default:
		return v
	}
}
