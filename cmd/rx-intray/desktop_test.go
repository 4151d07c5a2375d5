package main

import (
	"testing"

	"github.com/cristianoliveira/rx-intray/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDesktopStatus(t *testing.T) {
	s := settings.DefaultSettings()
	s.QuietHours.Enabled = true
	useTestEnv(t, &s)

	out, err := runCmd(t, NewDesktopCmd(), "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "permission: unrequested")
	assert.Contains(t, out, "mirroring:  on")
	assert.Contains(t, out, "quiet:      22:00-07:00")
}

func TestDesktopEnableGranted(t *testing.T) {
	env := useTestEnv(t, nil)

	out, err := runCmd(t, NewDesktopCmd(), "y\n", "enable")
	require.NoError(t, err)

	assert.Contains(t, out, "[y/N]")
	assert.Contains(t, out, "desktop notifications enabled")
	require.NotNil(t, env.configs[0].Prompter)
	assert.Equal(t, settings.PermissionGranted, env.saved(t).DesktopPermission)
}

func TestDesktopEnableDenied(t *testing.T) {
	env := useTestEnv(t, nil)

	_, err := runCmd(t, NewDesktopCmd(), "n\n", "enable")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "desktop reset")
	assert.Equal(t, settings.PermissionDenied, env.saved(t).DesktopPermission)

	// A persisted denial is not asked again.
	_, err = runCmd(t, NewDesktopCmd(), "y\n", "enable")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")
}

func TestDesktopResetAfterDenial(t *testing.T) {
	s := settings.DefaultSettings()
	s.DesktopPermission = settings.PermissionDenied
	env := useTestEnv(t, &s)

	_, err := runCmd(t, NewDesktopCmd(), "", "reset")
	require.NoError(t, err)
	assert.Equal(t, settings.PermissionUnrequested, env.saved(t).DesktopPermission)
}

func TestDesktopResetWithoutDenialChangesNothing(t *testing.T) {
	env := useTestEnv(t, nil)

	_, err := runCmd(t, NewDesktopCmd(), "", "reset")
	require.NoError(t, err)
	assert.Equal(t, 0, env.persister.Saves())
}
