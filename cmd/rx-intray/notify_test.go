package main

import (
	"testing"

	"github.com/cristianoliveira/rx-intray/internal/desktop"
	"github.com/cristianoliveira/rx-intray/internal/domain"
	"github.com/cristianoliveira/rx-intray/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grantedSettings() *settings.Settings {
	s := settings.DefaultSettings()
	s.DesktopPermission = settings.PermissionGranted
	return &s
}

func TestNotifyShowsAndMirrors(t *testing.T) {
	env := useTestEnv(t, grantedSettings())

	out, err := runCmd(t, NewNotifyCmd(), "", "--kind", "success", "-d", "conversation_id=c-88", "Refill ready", "Rx 4417")
	require.NoError(t, err)

	require.Len(t, env.managers, 1)
	snap := env.managers[0].Snapshot()
	require.Len(t, snap, 1)
	n := snap[0]
	assert.Equal(t, n.ID+"\n", out)
	assert.Equal(t, domain.KindSuccess, n.Kind)
	assert.Equal(t, "Refill ready", n.Title)
	assert.Equal(t, "Rx 4417", n.Message)
	assert.Equal(t, "c-88", n.Data.String("conversation_id"))

	// Close waits for the display.
	assert.Equal(t, []desktop.Message{{
		Title: "Refill ready",
		Body:  "Rx 4417",
		Kind:  domain.KindSuccess,
		Data:  domain.Data{"conversation_id": "c-88"},
	}}, env.platform.Shown())
}

func TestNotifyWithoutPermissionDoesNotMirror(t *testing.T) {
	env := useTestEnv(t, nil)

	_, err := runCmd(t, NewNotifyCmd(), "", "Counter", "Pickup waiting")
	require.NoError(t, err)

	assert.Len(t, env.managers[0].Snapshot(), 1)
	assert.Empty(t, env.platform.Shown())
	assert.Nil(t, env.configs[0].Prompter, "one-shot notify never prompts")
}

func TestNotifyWhenDisabled(t *testing.T) {
	s := settings.DefaultSettings()
	s.Enabled = false
	env := useTestEnv(t, &s)

	out, err := runCmd(t, NewNotifyCmd(), "", "Ignored")
	require.NoError(t, err)

	assert.Contains(t, out, "notifications are disabled")
	assert.Empty(t, env.managers[0].Snapshot())
}

func TestNotifyRejectsBadInput(t *testing.T) {
	useTestEnv(t, nil)

	_, err := runCmd(t, NewNotifyCmd(), "", "--kind", "critical", "x")
	assert.ErrorContains(t, err, "invalid notification kind")

	_, err = runCmd(t, NewNotifyCmd(), "", "--data", "broken", "x")
	assert.ErrorContains(t, err, "expected KEY=VALUE")

	_, err = runCmd(t, NewNotifyCmd(), "")
	assert.Error(t, err)
}
