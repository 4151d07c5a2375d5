/*
Copyright © 2026 Cristian Oliveira <license@cristianoliveira.dev>
*/
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/cristianoliveira/rx-intray/cmd"
	"github.com/cristianoliveira/rx-intray/internal/colors"
	"github.com/cristianoliveira/rx-intray/internal/domain"
	"github.com/cristianoliveira/rx-intray/internal/format"
	"github.com/cristianoliveira/rx-intray/internal/manager"
	"github.com/cristianoliveira/rx-intray/internal/settings"
	"github.com/spf13/cobra"
)

const sessionCommandLong = `Start an interactive notification session.

Commands are read one per line. New notifications are printed as they
arrive.

USAGE:
    rx-intray session [OPTIONS]

OPTIONS:
    --ephemeral       Keep preference changes in memory only
    --format FORMAT   Format for "list": simple, table, compact or json

SESSION COMMANDS:
    info|success|warn|error <title> [-- message]
                          Show a notification
    list [unread|read] [kind] [text]
                          List notifications, oldest first
    status [preset|template]
                          Print counts; presets: summary, compact,
                          detailed, kinds, json
    read <id>             Mark one notification read
    read-all              Mark every notification read
    dismiss <id>          Remove one notification
    clear                 Remove every notification
    settings              Show preferences
    set <key=value>...    Change preferences
    desktop [enable|reset]
                          Show or change desktop permission
    help                  Show session commands
    quit                  End the session

IDs may be shortened to any unique prefix.`

// NewSessionCmd creates the session command with explicit dependencies.
func NewSessionCmd() *cobra.Command {
	var (
		ephemeral bool
		formatArg string
	)

	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Start an interactive notification session",
		Long:  sessionCommandLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ft, err := format.ParseFormatterType(formatArg)
			if err != nil {
				return err
			}
			in := bufio.NewReader(cmd.InOrStdin())
			out := &syncWriter{w: cmd.OutOrStdout()}

			m, err := newManager(cmd.Context(), managerConfig{
				Prompter:  newLinePrompter(in, out),
				Ephemeral: ephemeral,
			})
			if err != nil {
				return err
			}
			defer m.Close()

			s := &session{m: m, in: in, out: out, formatter: format.NewFormatter(ft)}
			return s.run(cmd.Context())
		},
	}

	sessionCmd.Flags().BoolVar(&ephemeral, "ephemeral", false, "Keep preference changes in memory only")
	sessionCmd.Flags().StringVar(&formatArg, "format", string(format.FormatterTypeSimple), "Format for list output")
	return sessionCmd
}

// syncWriter serializes writes from the session loop and observers.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

var errQuit = errors.New("quit")

type session struct {
	m         *manager.Manager
	in        *bufio.Reader
	out       io.Writer
	formatter format.Formatter

	mu   sync.Mutex
	seen map[string]bool
}

func (s *session) run(ctx context.Context) error {
	s.seen = make(map[string]bool)
	unsubscribe := s.m.SubscribeFunc(s.announce)
	defer unsubscribe()

	fmt.Fprintf(s.out, "%d unread. Type \"help\" for commands.\n", s.m.UnreadCount())
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		fmt.Fprint(s.out, "> ")
		line, err := s.in.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			if execErr := s.exec(ctx, line); execErr != nil {
				if errors.Is(execErr, errQuit) {
					return nil
				}
				fmt.Fprintf(s.out, "%serror:%s %v\n", colors.Red, colors.Reset, execErr)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(s.out)
				return nil
			}
			return err
		}
	}
}

// announce prints notifications that were not in any earlier snapshot.
func (s *session) announce(snap domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := make(map[string]bool, len(snap))
	for _, n := range snap {
		current[n.ID] = true
		if s.seen[n.ID] {
			continue
		}
		fmt.Fprintf(s.out, "%s %s%s\n", kindColor(n.Kind)+"●"+colors.Reset, n.Title, messageSuffix(n.Message))
	}
	s.seen = current
}

func messageSuffix(msg string) string {
	if msg == "" {
		return ""
	}
	return " - " + msg
}

func kindColor(k domain.Kind) string {
	switch k {
	case domain.KindSuccess:
		return colors.Green
	case domain.KindWarning:
		return colors.Yellow
	case domain.KindError:
		return colors.Red
	default:
		return colors.Blue
	}
}

func (s *session) exec(ctx context.Context, line string) error {
	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(verb) {
	case "info", "success", "warn", "warning", "error":
		return s.show(verb, rest)
	case "list", "ls":
		f, err := domain.ParseFilter(strings.Fields(rest))
		if err != nil {
			return err
		}
		return s.formatter.Format(s.out, s.m.Snapshot().Filter(f))
	case "read":
		id, err := resolveID(s.m.Snapshot().IDs(), rest)
		if err != nil {
			return err
		}
		if s.m.MarkAsRead(id) {
			fmt.Fprintln(s.out, "marked read")
		}
		return nil
	case "read-all":
		fmt.Fprintf(s.out, "%d marked read\n", s.m.MarkAllAsRead())
		return nil
	case "dismiss":
		id, err := resolveID(s.m.Snapshot().IDs(), rest)
		if err != nil {
			return err
		}
		if s.m.Dismiss(id) {
			fmt.Fprintln(s.out, "dismissed")
		}
		return nil
	case "clear":
		fmt.Fprintf(s.out, "%d cleared\n", s.m.ClearAll())
		return nil
	case "settings":
		return writeSettingsTo(s.out, s.m.Settings())
	case "set":
		return s.set(rest)
	case "desktop":
		return s.desktop(ctx, rest)
	case "status":
		line, err := format.RenderStatus(rest, s.m.Snapshot())
		if err != nil {
			return fmt.Errorf("%w (variables: %s)", err, strings.Join(format.TemplateVariables(), ", "))
		}
		fmt.Fprintln(s.out, line)
		return nil
	case "help", "?":
		fmt.Fprintln(s.out, sessionCommandLong)
		return nil
	case "quit", "exit", "q":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q; type \"help\"", verb)
	}
}

// show parses "<title> [-- message]".
func (s *session) show(verb, rest string) error {
	title, message, _ := strings.Cut(rest, "--")
	title = strings.TrimSpace(title)
	message = strings.TrimSpace(message)
	switch strings.ToLower(verb) {
	case "success":
		s.m.ShowSuccess(title, message, nil)
	case "warn", "warning":
		s.m.ShowWarning(title, message, nil)
	case "error":
		s.m.ShowError(title, message, nil)
	default:
		s.m.ShowMessage(title, message, nil)
	}
	return nil
}

func (s *session) set(rest string) error {
	patch, err := settings.ParseAssignments(strings.Fields(rest))
	if err != nil {
		return err
	}
	if len(patch) == 0 {
		return fmt.Errorf("usage: set <key=value>...")
	}
	if _, err := s.m.Settings().Apply(patch); err != nil {
		return err
	}
	s.m.UpdateSettings(patch)
	fmt.Fprintln(s.out, "settings updated")
	return nil
}

func (s *session) desktop(ctx context.Context, rest string) error {
	switch strings.ToLower(rest) {
	case "":
		writeDesktopStatus(s.out, s.m)
		return nil
	case "enable":
		return enableDesktop(ctx, s.out, s.m, DefaultEnableTimeout)
	case "reset":
		if s.m.ResetDesktopPermission() {
			fmt.Fprintln(s.out, "desktop permission reset")
		} else {
			fmt.Fprintf(s.out, "nothing to reset; state is %s\n", s.m.DesktopState())
		}
		return nil
	default:
		return fmt.Errorf("usage: desktop [enable|reset]")
	}
}

// resolveID expands a unique ID prefix.
func resolveID(ids []string, prefix string) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("missing notification id")
	}
	var match string
	for _, id := range ids {
		if id == prefix {
			return id, nil
		}
		if strings.HasPrefix(id, prefix) {
			if match != "" {
				return "", fmt.Errorf("id %q is ambiguous", prefix)
			}
			match = id
		}
	}
	if match == "" {
		return "", fmt.Errorf("no notification with id %q", prefix)
	}
	return match, nil
}

var sessionCmd = NewSessionCmd()

func init() {
	cmd.RootCmd.AddCommand(sessionCmd)
}
