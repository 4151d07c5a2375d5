// Package hooks runs user scripts after notification events.
//
// Scripts live in <hooks_dir>/<hook point>/ and run in name order. Only
// executable files are run. Hooks are always asynchronous: they never delay
// the operation that triggered them.
package hooks

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cristianoliveira/rx-intray/internal/config"
	"github.com/cristianoliveira/rx-intray/internal/domain"
	"github.com/cristianoliveira/rx-intray/internal/logging"
)

// Hook points.
const (
	PostShow    = "post-show"
	PostDismiss = "post-dismiss"
	PostClear   = "post-clear"
)

const (
	defaultTimeout       = 30 * time.Second
	defaultMaxConcurrent = 10
)

// Options configure a Runner.
type Options struct {
	Enabled       bool
	Dir           string
	Timeout       time.Duration
	MaxConcurrent int
	Logger        logging.Logger
}

// Runner starts hook scripts and tracks the ones still running.
type Runner struct {
	opts    Options
	log     logging.Logger
	binary  string
	mu      sync.Mutex
	pending int
	wg      sync.WaitGroup
}

// New returns a Runner for opts.
func New(opts Options) *Runner {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = defaultMaxConcurrent
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	binary, _ := os.Executable()
	return &Runner{opts: opts, log: log.With("component", "hooks"), binary: binary}
}

// NewFromConfig returns a Runner configured from hooks_enabled, hooks_dir,
// hooks_timeout (seconds) and max_hooks.
func NewFromConfig(log logging.Logger) *Runner {
	return New(Options{
		Enabled:       config.GetBool("hooks_enabled", true),
		Dir:           config.Get("hooks_dir", ""),
		Timeout:       time.Duration(config.GetInt("hooks_timeout", 30)) * time.Second,
		MaxConcurrent: config.GetInt("max_hooks", defaultMaxConcurrent),
		Logger:        log,
	})
}

// Init creates the hooks directory.
func (r *Runner) Init() error {
	if r.opts.Dir == "" {
		return nil
	}
	if err := os.MkdirAll(r.opts.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create hooks directory %s: %w", r.opts.Dir, err)
	}
	return nil
}

// Run starts every script of hookPoint with env added to the process
// environment. It returns how many scripts were started. Scripts beyond the
// concurrency limit are skipped.
func (r *Runner) Run(hookPoint string, env map[string]string) int {
	if r == nil || !r.opts.Enabled || r.opts.Dir == "" {
		return 0
	}
	scripts := r.scripts(hookPoint)
	if len(scripts) == 0 {
		return 0
	}

	vars := r.baseEnv(hookPoint)
	for k, v := range env {
		vars = append(vars, k+"="+v)
	}

	started := 0
	r.log.Debug("running hooks", "hook_point", hookPoint, "scripts", len(scripts))
	for _, script := range scripts {
		r.mu.Lock()
		if r.pending >= r.opts.MaxConcurrent {
			r.mu.Unlock()
			r.log.Warn("too many hooks pending, skipping", "max", r.opts.MaxConcurrent, "script", script)
			continue
		}
		r.pending++
		r.wg.Add(1)
		r.mu.Unlock()

		started++
		go r.runScript(hookPoint, script, vars)
	}
	return started
}

func (r *Runner) scripts(hookPoint string) []string {
	dir := filepath.Join(r.opts.Dir, hookPoint)
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var scripts []string
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		path := filepath.Join(dir, f.Name())
		info, err := os.Stat(path)
		if err != nil || info.Mode()&0111 == 0 {
			continue
		}
		scripts = append(scripts, path)
	}
	sort.Strings(scripts)
	return scripts
}

func (r *Runner) baseEnv(hookPoint string) []string {
	vars := append([]string(nil), os.Environ()...)
	vars = append(vars,
		"HOOK_POINT="+hookPoint,
		"HOOK_TIMESTAMP="+time.Now().Format(time.RFC3339),
	)
	if r.binary != "" {
		vars = append(vars, "RX_INTRAY_BINARY="+r.binary)
	}
	return vars
}

func (r *Runner) runScript(hookPoint, path string, env []string) {
	name := filepath.Base(path)
	ctx, cancel := context.WithTimeout(context.Background(), r.opts.Timeout)
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("hook panicked", "script", name, "panic", fmt.Sprint(rec))
		}
		cancel()
		r.mu.Lock()
		r.pending--
		r.mu.Unlock()
		r.wg.Done()
	}()

	var output bytes.Buffer
	cmd := exec.CommandContext(ctx, path)
	cmd.Env = env
	cmd.Stdout = &output
	cmd.Stderr = &output
	cmd.WaitDelay = time.Second

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	switch {
	case ctx.Err() == context.DeadlineExceeded:
		r.log.Warn("hook timed out", "hook_point", hookPoint, "script", name, "duration", duration)
	case err != nil:
		r.log.Warn("hook failed", "hook_point", hookPoint, "script", name, "error", err, "output", strings.TrimSpace(output.String()))
	default:
		r.log.Debug("hook completed", "hook_point", hookPoint, "script", name, "duration", duration, "output", strings.TrimSpace(output.String()))
	}
}

// Pending returns the number of scripts still running.
func (r *Runner) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending
}

// Wait blocks until every started script has finished.
func (r *Runner) Wait() {
	if r == nil {
		return
	}
	r.wg.Wait()
}

var nonEnvChars = regexp.MustCompile(`[^A-Z0-9_]+`)

// NotificationEnv returns the hook environment describing n. Data entries
// are exposed as NOTIFICATION_DATA_<KEY>.
func NotificationEnv(n domain.Notification) map[string]string {
	env := map[string]string{
		"NOTIFICATION_ID":        n.ID,
		"NOTIFICATION_TITLE":     n.Title,
		"NOTIFICATION_MESSAGE":   n.Message,
		"NOTIFICATION_KIND":      n.Kind.String(),
		"NOTIFICATION_READ":      strconv.FormatBool(n.Read),
		"NOTIFICATION_TIMESTAMP": n.Timestamp.UTC().Format(time.RFC3339),
	}
	for k, v := range n.Data {
		key := nonEnvChars.ReplaceAllString(strings.ToUpper(k), "_")
		env["NOTIFICATION_DATA_"+key] = fmt.Sprint(v)
	}
	return env
}

// ClearEnv returns the hook environment for a clear that removed count
// notifications.
func ClearEnv(count int) map[string]string {
	return map[string]string{"CLEARED_COUNT": strconv.Itoa(count)}
}
