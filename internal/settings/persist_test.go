package settings

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cristianoliveira/rx-intray/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), FileModeFile)
}

func sampleSettings() Settings {
	s := DefaultSettings()
	s.Enabled = false
	s.DesktopPermission = PermissionGranted
	s.QuietHours = QuietHours{Enabled: true, Start: "21:30", End: "06:00"}
	s.Extra = map[string]any{"sound": "chime"}
	return s
}

func TestTOMLPersisterMissingFileYieldsDefaults(t *testing.T) {
	p := NewTOMLPersister(filepath.Join(t.TempDir(), "missing.toml"))
	s, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestTOMLPersisterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "notifications.toml")
	p := NewTOMLPersister(path)
	want := sampleSettings()

	require.NoError(t, p.Save(context.Background(), want))
	got, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[quiet_hours]")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestTOMLPersisterPreservesUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notifications.toml")
	require.NoError(t, writeFile(path, "enabled = true\nfuture_flag = \"on\"\n"))
	p := NewTOMLPersister(path)

	s, err := p.Load(context.Background())
	require.NoError(t, err)
	s.DesktopEnabled = false
	require.NoError(t, p.Save(context.Background(), s))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "future_flag")
}

func TestTOMLPersisterRoundTripsUnknownFields(t *testing.T) {
	p := NewTOMLPersister(filepath.Join(t.TempDir(), "notifications.toml"))
	want, err := DefaultSettings().Apply(Patch{
		"soundTheme":  "chime",
		KeyQuietHours: map[string]any{"enabled": true, "days": []any{"mon", "fri"}},
	})
	require.NoError(t, err)

	require.NoError(t, p.Save(context.Background(), want))
	got, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "chime", got.Extra["soundTheme"])
	assert.NotContains(t, got.Extra, "soundtheme")
	assert.True(t, got.QuietHours.Enabled)
	assert.Equal(t, []any{"mon", "fri"}, got.QuietHours.Extra["days"])
}

func TestTOMLPersisterParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notifications.toml")
	require.NoError(t, writeFile(path, "enabled = [\n"))
	_, err := NewTOMLPersister(path).Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidValue)
}

func TestSQLitePersisterRoundTrip(t *testing.T) {
	p, err := NewSQLitePersister(filepath.Join(t.TempDir(), "preferences.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	empty, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), empty)

	want := sampleSettings()
	require.NoError(t, p.Save(context.Background(), want))
	got, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSQLitePersisterDeletesRemovedKeys(t *testing.T) {
	p, err := NewSQLitePersister(filepath.Join(t.TempDir(), "preferences.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	s := sampleSettings()
	require.NoError(t, p.Save(context.Background(), s))
	s.Extra = nil
	require.NoError(t, p.Save(context.Background(), s))

	got, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got.Extra)
}

func TestNewSQLitePersisterRejectsEmptyPath(t *testing.T) {
	_, err := NewSQLitePersister("  ")
	assert.Error(t, err)
}

func TestNewPersisterSelectsBackend(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RX_INTRAY_CONFIG_DIR", filepath.Join(dir, "config"))
	t.Setenv("RX_INTRAY_STATE_DIR", filepath.Join(dir, "state"))
	config.Load()

	p, err := NewPersister(BackendTOML)
	require.NoError(t, err)
	tp, ok := p.(*TOMLPersister)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "config", "notifications.toml"), tp.Path())

	p, err = NewPersister("SQLite")
	require.NoError(t, err)
	sp, ok := p.(*SQLitePersister)
	require.True(t, ok)
	_ = sp.Close()
	assert.FileExists(t, filepath.Join(dir, "state", "preferences.db"))

	_, err = NewPersister("yaml")
	assert.Error(t, err)
}
