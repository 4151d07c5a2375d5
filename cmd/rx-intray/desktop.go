/*
Copyright © 2026 Cristian Oliveira <license@cristianoliveira.dev>
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cristianoliveira/rx-intray/cmd"
	"github.com/cristianoliveira/rx-intray/internal/colors"
	"github.com/cristianoliveira/rx-intray/internal/desktop"
	"github.com/cristianoliveira/rx-intray/internal/manager"
	"github.com/spf13/cobra"
)

const (
	desktopCommandLong = `Manage desktop notifications.

USAGE:
    rx-intray desktop <subcommand>

SUBCOMMANDS:
    status    Show the desktop permission state
    enable    Ask for permission to show desktop notifications
    reset     Forget a previous decision so it can be asked again

EXAMPLES:
    rx-intray desktop status
    rx-intray desktop enable`
	enableCommandLong = `Ask for permission to show desktop notifications.

When permission was already granted nothing is asked. When it was denied the
request fails until "rx-intray desktop reset" is run.

USAGE:
    rx-intray desktop enable [--timeout DURATION]`
)

// DefaultEnableTimeout bounds how long "desktop enable" waits for an answer.
const DefaultEnableTimeout = 2 * time.Minute

// NewDesktopCmd creates the desktop command with explicit dependencies.
func NewDesktopCmd() *cobra.Command {
	desktopCmd := &cobra.Command{
		Use:   "desktop",
		Short: "Manage desktop notifications",
		Long:  desktopCommandLong,
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the desktop permission state",
		Long:  "Show the desktop permission state and whether mirroring is on.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newManager(cmd.Context(), managerConfig{})
			if err != nil {
				return err
			}
			defer m.Close()
			writeDesktopStatus(cmd.OutOrStdout(), m)
			return nil
		},
	}

	var timeout time.Duration
	enableCmd := &cobra.Command{
		Use:   "enable",
		Short: "Ask for permission to show desktop notifications",
		Long:  enableCommandLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompter := newLinePrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			m, err := newManager(cmd.Context(), managerConfig{Prompter: prompter})
			if err != nil {
				return err
			}
			defer m.Close()
			return enableDesktop(cmd.Context(), cmd.OutOrStdout(), m, timeout)
		},
	}
	enableCmd.Flags().DurationVar(&timeout, "timeout", DefaultEnableTimeout, "How long to wait for an answer")

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget a previous permission decision",
		Long:  "Forget a previous permission decision so it can be asked again.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newManager(cmd.Context(), managerConfig{})
			if err != nil {
				return err
			}
			defer m.Close()
			if m.ResetDesktopPermission() {
				colors.Success("desktop permission reset")
			} else {
				colors.Info("nothing to reset; state is", m.DesktopState().String())
			}
			return nil
		},
	}

	desktopCmd.AddCommand(statusCmd, enableCmd, resetCmd)
	return desktopCmd
}

func writeDesktopStatus(w io.Writer, m *manager.Manager) {
	s := m.Settings()
	fmt.Fprintf(w, "permission: %s\n", m.DesktopState())
	fmt.Fprintf(w, "mirroring:  %s\n", onOff(s.DesktopEnabled))
	if s.QuietHours.Enabled {
		fmt.Fprintf(w, "quiet:      %s-%s\n", s.QuietHours.Start, s.QuietHours.End)
	}
}

// enableDesktop requests permission and reports the outcome.
func enableDesktop(ctx context.Context, w io.Writer, m *manager.Manager, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	res, err := m.EnableDesktopNotifications(ctx).Wait(ctx)
	switch {
	case err == nil:
		fmt.Fprintln(w, "desktop notifications enabled")
		return nil
	case errors.Is(err, desktop.ErrDenied):
		return fmt.Errorf("desktop notifications denied; run \"rx-intray desktop reset\" to ask again")
	case errors.Is(err, desktop.ErrUnsupported):
		return fmt.Errorf("desktop notifications are not supported here")
	case res.State == desktop.StateRequested:
		return fmt.Errorf("no answer: %w", err)
	default:
		return err
	}
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

var desktopCmd = NewDesktopCmd()

func init() {
	cmd.RootCmd.AddCommand(desktopCmd)
}
