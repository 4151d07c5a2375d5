package main

import (
	"encoding/json"
	"testing"

	"github.com/cristianoliveira/rx-intray/internal/settings"
	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsShowTOML(t *testing.T) {
	useTestEnv(t, nil)

	out, err := runCmd(t, NewSettingsCmd(), "", "show")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, toml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, true, doc["enabled"])
	assert.Equal(t, "unrequested", doc["desktop_permission"])
	quiet, ok := doc["quiet_hours"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "22:00", quiet["start"])
}

func TestSettingsShowJSON(t *testing.T) {
	s := settings.DefaultSettings()
	s.DesktopEnabled = false
	s.Extra = map[string]any{"theme": "dark"}
	useTestEnv(t, &s)

	out, err := runCmd(t, NewSettingsCmd(), "", "show", "--format", "json")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, false, doc["desktop_enabled"])
	assert.Equal(t, "dark", doc["theme"])
}

func TestSettingsShowUnknownFormat(t *testing.T) {
	useTestEnv(t, nil)
	_, err := runCmd(t, NewSettingsCmd(), "", "show", "--format", "yaml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestSettingsSet(t *testing.T) {
	env := useTestEnv(t, nil)

	_, err := runCmd(t, NewSettingsCmd(), "", "set", "desktop_enabled=false", "quiet_hours.enabled=true", "quiet_hours.start=21:30", "theme=dark")
	require.NoError(t, err)

	s := env.saved(t)
	assert.False(t, s.DesktopEnabled)
	assert.True(t, s.QuietHours.Enabled)
	assert.Equal(t, "21:30", s.QuietHours.Start)
	assert.Equal(t, "07:00", s.QuietHours.End)
	assert.Equal(t, "dark", s.Extra["theme"])
	assert.True(t, s.Enabled)
}

func TestSettingsSetInvalidSavesNothing(t *testing.T) {
	env := useTestEnv(t, nil)

	_, err := runCmd(t, NewSettingsCmd(), "", "set", "enabled=false", "quiet_hours.start=25:99")
	require.Error(t, err)
	assert.ErrorIs(t, err, settings.ErrInvalidValue)
	assert.Equal(t, 0, env.persister.Saves())

	_, err = runCmd(t, NewSettingsCmd(), "", "set", "novalue")
	assert.ErrorContains(t, err, "expected key=value")
}

func TestSettingsReset(t *testing.T) {
	t.Run("force skips confirmation", func(t *testing.T) {
		s := settings.DefaultSettings()
		s.Enabled = false
		env := useTestEnv(t, &s)

		_, err := runCmd(t, NewSettingsCmd(), "", "reset", "--force")
		require.NoError(t, err)
		assert.Equal(t, settings.DefaultSettings(), env.saved(t))
	})

	t.Run("confirmed", func(t *testing.T) {
		env := useTestEnv(t, nil)

		out, err := runCmd(t, NewSettingsCmd(), "y\n", "reset")
		require.NoError(t, err)
		assert.Contains(t, out, "[y/N]")
		assert.Equal(t, 1, env.persister.Saves())
	})

	t.Run("declined", func(t *testing.T) {
		env := useTestEnv(t, nil)

		_, err := runCmd(t, NewSettingsCmd(), "n\n", "reset")
		require.NoError(t, err)
		assert.Equal(t, 0, env.persister.Saves())
	})
}
