/*
Copyright © 2026 Cristian Oliveira <license@cristianoliveira.dev>
*/
package main

import (
	"fmt"
	"strings"

	"github.com/cristianoliveira/rx-intray/cmd"
	"github.com/cristianoliveira/rx-intray/internal/domain"
	"github.com/spf13/cobra"
)

const notifyCommandLong = `Show a single notification.

The notification goes through the same path as in a session: it is mirrored
to the desktop when desktop notifications are granted and enabled, and the
post-show hooks run. Nothing is kept after the command exits.

USAGE:
    rx-intray notify [OPTIONS] <title> [message]

OPTIONS:
    -k, --kind KIND      info, success, warning or error (default: info)
    -d, --data KEY=VAL   Attach a payload value (repeatable)
    -h, --help           Show this help

EXAMPLES:
    # Tell the counter a prescription is ready
    rx-intray notify --kind success "Refill ready" "Rx 4417 for A. Moreno"

    # Attach the conversation so hooks can link back to it
    rx-intray notify -d conversation_id=c-88 "New message" "Dr. Patel replied"`

// NewNotifyCmd creates the notify command with explicit dependencies.
func NewNotifyCmd() *cobra.Command {
	var (
		kind string
		data []string
	)

	notifyCmd := &cobra.Command{
		Use:   "notify <title> [message]",
		Short: "Show a single notification",
		Long:  notifyCommandLong,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := domain.ParseKind(kind)
			if err != nil {
				return err
			}
			payload, err := parseData(data)
			if err != nil {
				return err
			}
			in := domain.Input{Title: args[0], Kind: k, Data: payload}
			if len(args) == 2 {
				in.Message = args[1]
			}

			m, err := newManager(cmd.Context(), managerConfig{})
			if err != nil {
				return err
			}
			defer m.Close()

			if !m.Settings().Enabled {
				fmt.Fprintln(cmd.ErrOrStderr(), "notifications are disabled; nothing shown")
			}
			id := m.Show(in)
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	notifyCmd.Flags().StringVarP(&kind, "kind", "k", string(domain.KindInfo), "Notification kind")
	notifyCmd.Flags().StringArrayVarP(&data, "data", "d", nil, "Payload value as KEY=VALUE")
	return notifyCmd
}

// parseData turns KEY=VALUE pairs into a payload.
func parseData(pairs []string) (domain.Data, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	data := make(domain.Data, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid data %q: expected KEY=VALUE", pair)
		}
		data[key] = value
	}
	return data, nil
}

var notifyCmd = NewNotifyCmd()

func init() {
	cmd.RootCmd.AddCommand(notifyCmd)
}
