/*
Copyright © 2026 Cristian Oliveira <license@cristianoliveira.dev>
*/
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/cristianoliveira/rx-intray/cmd"
	"github.com/cristianoliveira/rx-intray/internal/config"
	"github.com/cristianoliveira/rx-intray/internal/domain"
	"github.com/cristianoliveira/rx-intray/internal/format"
	"github.com/cristianoliveira/rx-intray/internal/logging"
	"github.com/cristianoliveira/rx-intray/internal/producer/inbox"
	"github.com/cristianoliveira/rx-intray/internal/producer/poll"
	"github.com/spf13/cobra"
)

const watchCommandLong = `Watch the message inbox and show a notification for every new message.

Each *.json file dropped into the inbox directory becomes one notification.
The directory is also rescanned on a schedule so no message is missed, and
a summary notification is shown when a rescan finds something new.

USAGE:
    rx-intray watch [OPTIONS]

OPTIONS:
    --dir DIR            Inbox directory (default: inbox_dir from config)
    --schedule SPEC      Rescan schedule, cron syntax or "@every 30s"
    --format FORMAT      simple, table, compact or json (default: simple)
    -h, --help           Show this help

MESSAGE FILE:
    {"conversation_id": "c-88", "from": "Dr. Patel", "body": "Call back re: Rx 4417"}

EXAMPLES:
    rx-intray watch
    rx-intray watch --dir /tmp/inbox --schedule "@every 10s"`

// watchContext returns the context watch runs under. Tests replace it.
var watchContext = func(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// NewWatchCmd creates the watch command with explicit dependencies.
func NewWatchCmd() *cobra.Command {
	var (
		dir       string
		schedule  string
		formatArg string
	)

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Show notifications for new inbox messages",
		Long:  watchCommandLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ft, err := format.ParseFormatterType(formatArg)
			if err != nil {
				return err
			}
			if dir == "" {
				dir = config.Get("inbox_dir", "")
			}
			if dir == "" {
				return fmt.Errorf("no inbox directory configured")
			}
			if schedule == "" {
				schedule = config.Get("poll_schedule", poll.DefaultSchedule)
			}

			ctx, cancel := watchContext(cmd.Context())
			defer cancel()

			m, err := newManager(ctx, managerConfig{})
			if err != nil {
				return err
			}
			defer m.Close()

			log := logging.GetGlobal()
			watcher := inbox.NewWatcher(dir, m, log)
			poller, err := poll.New(schedule, watcher.Scan, m, log)
			if err != nil {
				return err
			}

			printer := newPrinter(cmd.OutOrStdout(), format.NewFormatter(ft))
			unsubscribe := m.SubscribeFunc(printer.print)
			defer unsubscribe()

			fmt.Fprintf(cmd.ErrOrStderr(), "watching %s (rescan %s)\n", watcher.Dir(), schedule)

			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				poller.Run(ctx)
			}()
			err = watcher.Run(ctx)
			cancel()
			wg.Wait()
			fmt.Fprintln(cmd.ErrOrStderr(), format.Summary(m.Snapshot()))
			return err
		},
	}

	watchCmd.Flags().StringVar(&dir, "dir", "", "Inbox directory")
	watchCmd.Flags().StringVar(&schedule, "schedule", "", "Rescan schedule")
	watchCmd.Flags().StringVar(&formatArg, "format", string(format.FormatterTypeSimple), "Output format")
	return watchCmd
}

// printer writes each notification the first time it appears in a snapshot.
type printer struct {
	mu        sync.Mutex
	w         io.Writer
	formatter format.Formatter
	seen      map[string]bool
}

func newPrinter(w io.Writer, f format.Formatter) *printer {
	return &printer{w: w, formatter: f, seen: make(map[string]bool)}
}

func (p *printer) print(s domain.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var fresh domain.Snapshot
	current := make(map[string]bool, len(s))
	for _, n := range s {
		current[n.ID] = true
		if !p.seen[n.ID] {
			fresh = append(fresh, n)
		}
	}
	p.seen = current
	if len(fresh) == 0 {
		return
	}
	if err := p.formatter.Format(p.w, fresh); err != nil {
		logging.Warn("printing notifications", "error", err)
	}
}

var watchCmd = NewWatchCmd()

func init() {
	cmd.RootCmd.AddCommand(watchCmd)
}
