// Package poll runs a background sync job on a cron schedule and reports its
// outcome as notifications.
package poll

import (
	"context"
	"fmt"
	"sync"

	"github.com/cristianoliveira/rx-intray/internal/domain"
	"github.com/cristianoliveira/rx-intray/internal/logging"
	"github.com/robfig/cron/v3"
)

// DefaultSchedule runs the job once a minute.
const DefaultSchedule = "@every 1m"

// Job performs one sync and returns how many new items it found.
type Job func(ctx context.Context) (int, error)

// Notifier is the part of the notification manager the poller uses.
type Notifier interface {
	ShowSuccess(title, message string, data domain.Data) string
	ShowError(title, message string, data domain.Data) string
}

// Poller runs a Job on a schedule. Runs never overlap: a tick that fires
// while the previous run is still going is skipped.
type Poller struct {
	schedule string
	job      Job
	notifier Notifier
	log      logging.Logger
	cron     *cron.Cron

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// New returns a poller for schedule. The schedule uses the standard five
// field cron syntax or a descriptor such as "@every 30s".
func New(schedule string, job Job, n Notifier, log logging.Logger) (*Poller, error) {
	if log == nil {
		log = logging.Nop()
	}
	if schedule == "" {
		schedule = DefaultSchedule
	}
	p := &Poller{
		schedule: schedule,
		job:      job,
		notifier: n,
		log:      log.With("component", "poll"),
	}
	clog := cronLogger{log: p.log}
	p.cron = cron.New(cron.WithLogger(clog), cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)))
	if _, err := p.cron.AddFunc(schedule, p.tick); err != nil {
		return nil, fmt.Errorf("invalid poll schedule %q: %w", schedule, err)
	}
	return p, nil
}

// Run starts the schedule and blocks until ctx is done. It then cancels the
// context of a running job and waits for the job to return.
func (p *Poller) Run(ctx context.Context) {
	p.mu.Lock()
	p.ctx, p.cancel = context.WithCancel(ctx)
	jobCtx, cancel := p.ctx, p.cancel
	p.mu.Unlock()

	p.cron.Start()
	p.log.Info("polling started", "schedule", p.schedule)
	<-jobCtx.Done()
	cancel()
	<-p.cron.Stop().Done()
	p.log.Info("polling stopped")
}

func (p *Poller) tick() {
	p.mu.Lock()
	ctx := p.ctx
	p.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	p.RunOnce(ctx)
}

// RunOnce runs the job now and reports the outcome: an error becomes an
// error notification and new items become a success notification. Nothing
// is shown when the job finds nothing new.
func (p *Poller) RunOnce(ctx context.Context) {
	found, err := p.job(ctx)
	if err != nil {
		p.log.Warn("sync failed", "error", err)
		p.notifier.ShowError("Sync failed", err.Error(), domain.Data{"schedule": p.schedule})
		return
	}
	if found <= 0 {
		p.log.Debug("sync found nothing new")
		return
	}
	noun := "items"
	if found == 1 {
		noun = "item"
	}
	p.notifier.ShowSuccess("Sync complete", fmt.Sprintf("%d new %s", found, noun), domain.Data{"count": found})
}

// cronLogger forwards cron's diagnostics to the structured logger.
type cronLogger struct {
	log logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}
