/*
Copyright © 2026 Cristian Oliveira <license@cristianoliveira.dev>
*/
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cristianoliveira/rx-intray/cmd"
	"github.com/cristianoliveira/rx-intray/internal/colors"
	"github.com/cristianoliveira/rx-intray/internal/settings"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

const (
	settingsCommandLong = `Manage notification preferences.

USAGE:
    rx-intray settings <subcommand>

SUBCOMMANDS:
    show     Display current preferences
    set      Change one or more preferences
    reset    Reset preferences to defaults

KEYS:
    enabled               Show notifications at all (true/false)
    desktop_enabled       Mirror notifications to the desktop (true/false)
    desktop_permission    Last permission decision (unrequested/granted/denied)
    quiet_hours.enabled   Pause desktop mirroring daily (true/false)
    quiet_hours.start     Start of quiet hours (HH:MM)
    quiet_hours.end       End of quiet hours (HH:MM)

EXAMPLES:
    # Show current preferences
    rx-intray settings show

    # Keep the desktop quiet overnight
    rx-intray settings set quiet_hours.enabled=true quiet_hours.start=21:30

    # Reset without confirmation
    rx-intray settings reset --force`
	showCommandLong = `Display current notification preferences.

USAGE:
    rx-intray settings show [--format toml|json]

EXAMPLES:
    rx-intray settings show
    rx-intray settings show --format json`
	setCommandLong = `Change one or more notification preferences.

Every assignment is validated before anything is saved; when one is invalid
nothing changes. Keys the engine does not know are stored as given.

USAGE:
    rx-intray settings set <key=value>...

EXAMPLES:
    rx-intray settings set desktop_enabled=false
    rx-intray settings set quiet_hours.start=22:00 quiet_hours.end=06:30`
	resetCommandLong = `Reset notification preferences to defaults.

USAGE:
    rx-intray settings reset [OPTIONS]

OPTIONS:
    --force    Reset without confirmation
    -h, --help Show this help`
)

// NewSettingsCmd creates the settings command with explicit dependencies.
func NewSettingsCmd() *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage notification preferences",
		Long:  settingsCommandLong,
	}
	settingsCmd.AddCommand(newShowCmd(), newSetCmd(), newResetCmd())
	return settingsCmd
}

func newShowCmd() *cobra.Command {
	var format string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Display current preferences",
		Long:  showCommandLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openPersister()
			if err != nil {
				return err
			}
			defer closePersister(p)

			s, err := p.Load(cmd.Context())
			if err != nil {
				colors.Warning("settings file has invalid values:", err.Error())
			}
			return writeSettings(cmd.OutOrStdout(), s, format)
		},
	}
	showCmd.Flags().StringVar(&format, "format", "toml", "Output format: toml or json")
	return showCmd
}

// writeSettingsTo writes s as TOML.
func writeSettingsTo(w io.Writer, s settings.Settings) error {
	return writeSettings(w, s, "toml")
}

func writeSettings(w io.Writer, s settings.Settings, format string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(format) {
	case "toml":
		data, err = toml.Marshal(s.ToMap())
	case "json":
		data, err = json.MarshalIndent(s.ToMap(), "", "  ")
		data = append(data, '\n')
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key=value>...",
		Short: "Change one or more preferences",
		Long:  setCommandLong,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := settings.ParseAssignments(args)
			if err != nil {
				return err
			}
			p, err := openPersister()
			if err != nil {
				return err
			}
			defer closePersister(p)

			current, err := p.Load(cmd.Context())
			if err != nil {
				colors.Warning("settings file has invalid values:", err.Error())
			}
			next, err := current.Apply(patch)
			if err != nil {
				return err
			}
			if err := p.Save(cmd.Context(), next); err != nil {
				return fmt.Errorf("saving settings: %w", err)
			}
			colors.Success("settings updated")
			return nil
		},
	}
}

func newResetCmd() *cobra.Command {
	var force bool
	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset preferences to defaults",
		Long:  resetCommandLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				ok, err := newLinePrompter(cmd.InOrStdin(), cmd.OutOrStdout()).Confirm(cmd.Context(), "Reset notification preferences to defaults?")
				if err != nil {
					return err
				}
				if !ok {
					colors.Info("reset cancelled")
					return nil
				}
			}
			p, err := openPersister()
			if err != nil {
				return err
			}
			defer closePersister(p)

			if err := p.Save(cmd.Context(), settings.DefaultSettings()); err != nil {
				return fmt.Errorf("saving settings: %w", err)
			}
			colors.Success("settings reset to defaults")
			return nil
		},
	}
	resetCmd.Flags().BoolVar(&force, "force", false, "Reset without confirmation")
	return resetCmd
}

var settingsCmd = NewSettingsCmd()

func init() {
	cmd.RootCmd.AddCommand(settingsCmd)
}
