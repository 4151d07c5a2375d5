package settings

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyMergesOnlyProvidedKeys(t *testing.T) {
	base := DefaultSettings()
	base.Extra = map[string]any{"theme": "dark"}

	next, err := base.Apply(Patch{KeyDesktopEnabled: false})
	require.NoError(t, err)

	assert.True(t, next.Enabled)
	assert.False(t, next.DesktopEnabled)
	assert.Equal(t, PermissionUnrequested, next.DesktopPermission)
	assert.Equal(t, "dark", next.Extra["theme"])
	assert.True(t, base.DesktopEnabled, "receiver must not change")
}

func TestApplyCoercesBooleans(t *testing.T) {
	tests := []struct {
		value any
		want  bool
	}{
		{true, true},
		{"yes", true},
		{"ON", true},
		{"1", true},
		{int64(1), true},
		{"off", false},
		{"no", false},
		{0, false},
	}
	for _, tt := range tests {
		next, err := DefaultSettings().Apply(Patch{KeyEnabled: tt.value})
		require.NoError(t, err, "value %v", tt.value)
		assert.Equal(t, tt.want, next.Enabled, "value %v", tt.value)
	}
}

func TestApplyDropsInvalidValues(t *testing.T) {
	next, err := DefaultSettings().Apply(Patch{
		KeyEnabled:           "maybe",
		KeyDesktopEnabled:    false,
		KeyDesktopPermission: "sometimes",
		"quiet_hours.start":  "25:99",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidValue))

	assert.True(t, next.Enabled)
	assert.False(t, next.DesktopEnabled)
	assert.Equal(t, PermissionUnrequested, next.DesktopPermission)
	assert.Equal(t, "22:00", next.QuietHours.Start)
}

func TestApplyQuietHours(t *testing.T) {
	t.Run("table", func(t *testing.T) {
		next, err := DefaultSettings().Apply(Patch{
			KeyQuietHours: map[string]any{"enabled": true, "start": "9:30"},
		})
		require.NoError(t, err)
		assert.True(t, next.QuietHours.Enabled)
		assert.Equal(t, "09:30", next.QuietHours.Start)
		assert.Equal(t, "07:00", next.QuietHours.End)
	})

	t.Run("dotted keys", func(t *testing.T) {
		next, err := DefaultSettings().Apply(Patch{
			"quiet_hours.enabled": "true",
			"quiet_hours.end":     "06:15",
		})
		require.NoError(t, err)
		assert.True(t, next.QuietHours.Enabled)
		assert.Equal(t, "06:15", next.QuietHours.End)
	})

	t.Run("struct", func(t *testing.T) {
		q := QuietHours{Enabled: true, Start: "12:00", End: "13:00"}
		next, err := DefaultSettings().Apply(Patch{KeyQuietHours: q})
		require.NoError(t, err)
		assert.Equal(t, q, next.QuietHours)
	})

	t.Run("not a table", func(t *testing.T) {
		_, err := DefaultSettings().Apply(Patch{KeyQuietHours: "always"})
		assert.ErrorIs(t, err, ErrInvalidValue)
	})
}

func TestApplyExtraPassThrough(t *testing.T) {
	next, err := DefaultSettings().Apply(Patch{"sound": "chime", "layout": map[string]any{"compact": true}})
	require.NoError(t, err)
	assert.Equal(t, "chime", next.Extra["sound"])

	next, err = next.Apply(Patch{"sound": nil})
	require.NoError(t, err)
	_, ok := next.Extra["sound"]
	assert.False(t, ok)
	assert.Contains(t, next.Extra, "layout")
}

func TestApplyKeepsUnknownKeySpelling(t *testing.T) {
	next, err := DefaultSettings().Apply(Patch{"soundTheme": "chime", "Enabled": "false"})
	require.NoError(t, err)
	assert.False(t, next.Enabled, "known keys match regardless of case")
	assert.Equal(t, map[string]any{"soundTheme": "chime"}, next.Extra)

	next, err = next.Apply(Patch{"soundTheme": nil})
	require.NoError(t, err)
	assert.Empty(t, next.Extra)
}

func TestApplyKeepsUnknownQuietHoursFields(t *testing.T) {
	next, err := DefaultSettings().Apply(Patch{
		KeyQuietHours: map[string]any{"start": "21:00", "days": []any{"mon", "fri"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "21:00", next.QuietHours.Start)
	assert.Equal(t, []any{"mon", "fri"}, next.QuietHours.Extra["days"])
	assert.NotContains(t, next.Extra, "days")

	next, err = next.Apply(Patch{"quiet_hours.snoozeUntil": "08:00"})
	require.NoError(t, err)
	assert.Equal(t, "08:00", next.QuietHours.Extra["snoozeUntil"])

	quiet := next.ToMap()[KeyQuietHours].(map[string]any)
	assert.Equal(t, []any{"mon", "fri"}, quiet["days"])
	assert.Equal(t, "21:00", quiet[QuietKeyStart])

	c := next.Clone()
	c.QuietHours.Extra["days"].([]any)[0] = "sun"
	assert.Equal(t, "mon", next.QuietHours.Extra["days"].([]any)[0])
}

func TestCloneIsDeep(t *testing.T) {
	s := DefaultSettings()
	s.Extra = map[string]any{"layout": map[string]any{"compact": true}}
	c := s.Clone()
	c.Extra["layout"].(map[string]any)["compact"] = false
	assert.Equal(t, true, s.Extra["layout"].(map[string]any)["compact"])
}

func TestDecodeStartsFromDefaults(t *testing.T) {
	s, err := Decode(map[string]any{KeyEnabled: false, "future_flag": "x"})
	require.NoError(t, err)
	assert.False(t, s.Enabled)
	assert.True(t, s.DesktopEnabled)
	assert.Equal(t, "x", s.Extra["future_flag"])
}

func TestToMapKnownKeysWin(t *testing.T) {
	s := DefaultSettings()
	s.Extra = map[string]any{KeyEnabled: "shadow", "other": 1}
	m := s.ToMap()
	assert.Equal(t, true, m[KeyEnabled])
	assert.Equal(t, 1, m["other"])
}

func TestParseAssignments(t *testing.T) {
	p, err := ParseAssignments([]string{"enabled=false", " quiet_hours.start = 21:00"})
	require.NoError(t, err)
	assert.Equal(t, Patch{"enabled": "false", "quiet_hours.start": "21:00"}, p)

	next, err := DefaultSettings().Apply(p)
	require.NoError(t, err)
	assert.False(t, next.Enabled)
	assert.Equal(t, "21:00", next.QuietHours.Start)

	_, err = ParseAssignments([]string{"enabled"})
	assert.Error(t, err)
	_, err = ParseAssignments([]string{"=true"})
	assert.Error(t, err)
}

func TestQuietHoursActive(t *testing.T) {
	at := func(clock string) time.Time {
		parsed, err := time.Parse("15:04", clock)
		require.NoError(t, err)
		return time.Date(2026, 3, 4, parsed.Hour(), parsed.Minute(), 0, 0, time.Local)
	}

	overnight := QuietHours{Enabled: true, Start: "22:00", End: "07:00"}
	assert.True(t, overnight.Active(at("23:30")))
	assert.True(t, overnight.Active(at("06:59")))
	assert.False(t, overnight.Active(at("07:00")))
	assert.False(t, overnight.Active(at("12:00")))

	daytime := QuietHours{Enabled: true, Start: "12:00", End: "13:00"}
	assert.True(t, daytime.Active(at("12:30")))
	assert.False(t, daytime.Active(at("13:30")))

	disabled := overnight
	disabled.Enabled = false
	assert.False(t, disabled.Active(at("23:30")))

	empty := QuietHours{Enabled: true, Start: "08:00", End: "08:00"}
	assert.False(t, empty.Active(at("08:00")))
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(DefaultSettings()))

	s := DefaultSettings()
	s.QuietHours.End = "noon"
	assert.ErrorIs(t, Validate(s), ErrInvalidValue)
}
