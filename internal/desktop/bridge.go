package desktop

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cristianoliveira/rx-intray/internal/dedup"
	"github.com/cristianoliveira/rx-intray/internal/domain"
	"github.com/cristianoliveira/rx-intray/internal/logging"
	"golang.org/x/time/rate"
)

// DefaultDisplayTimeout bounds a single Display call.
const DefaultDisplayTimeout = 5 * time.Second

// Options configure a Bridge.
type Options struct {
	Platform Platform
	Logger   logging.Logger
	// Persisted is the last decision saved by the user. A granted or denied
	// decision wins over a platform that reports StateUnrequested.
	Persisted State
	// OnStateChange is called after every transition, outside the bridge lock.
	OnStateChange func(State)
	// Dedup suppresses repeated displays within a window.
	Dedup dedup.Options
	// RatePerMinute caps displays per minute. Zero means unlimited.
	RatePerMinute  int
	DisplayTimeout time.Duration
}

// Bridge owns the permission state machine and mirrors notifications to the
// platform.
type Bridge struct {
	mu       sync.Mutex
	state    State
	pending  *Request
	platform Platform
	onChange func(State)

	log     logging.Logger
	window  *dedup.Window
	limiter *rate.Limiter
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewBridge returns a bridge initialized from the platform's permission state.
func NewBridge(opts Options) *Bridge {
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	platform := opts.Platform
	if platform == nil {
		platform = unsupportedPlatform{}
	}
	timeout := opts.DisplayTimeout
	if timeout <= 0 {
		timeout = DefaultDisplayTimeout
	}

	b := &Bridge{
		platform: platform,
		onChange: opts.OnStateChange,
		log:      log.With("component", "desktop"),
		window:   dedup.NewWindow(opts.Dedup),
		timeout:  timeout,
	}
	if opts.RatePerMinute > 0 {
		b.limiter = rate.NewLimiter(rate.Limit(float64(opts.RatePerMinute)/60), opts.RatePerMinute)
	}

	b.state = platform.PermissionState()
	if b.state == StateUnrequested && (opts.Persisted == StateGranted || opts.Persisted == StateDenied) {
		b.state = opts.Persisted
	}
	if b.state == StateRequested || !b.state.IsValid() {
		b.state = StateUnrequested
	}
	return b
}

// State returns the current permission state.
func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Enable asks for permission when it has not been asked yet. The returned
// request is already settled unless the state was unrequested or requested;
// callers asking during an in-flight request share it. The platform request
// runs in the background and is not cancelled by ctx.
func (b *Bridge) Enable(ctx context.Context) *Request {
	b.mu.Lock()
	switch b.state {
	case StateGranted:
		b.mu.Unlock()
		return resolvedRequest(Result{State: StateGranted})
	case StateUnsupported:
		b.mu.Unlock()
		return resolvedRequest(Result{State: StateUnsupported, Err: ErrUnsupported})
	case StateDenied:
		b.mu.Unlock()
		return resolvedRequest(Result{State: StateDenied, Err: ErrDenied})
	case StateRequested:
		req := b.pending
		b.mu.Unlock()
		return req
	}

	req := newRequest()
	b.pending = req
	b.state = StateRequested
	b.mu.Unlock()

	b.log.Info("requesting desktop notification permission")
	b.emit(StateRequested)
	go b.request(context.WithoutCancel(ctx), req)
	return req
}

func (b *Bridge) request(ctx context.Context, req *Request) {
	granted, err := b.platform.RequestPermission(ctx)

	var res Result
	switch {
	case err != nil:
		res = Result{State: StateUnrequested, Err: fmt.Errorf("request desktop permission: %w", err)}
		b.log.Warn("desktop permission request failed", "error", err)
	case granted:
		res = Result{State: StateGranted}
	default:
		res = Result{State: StateDenied, Err: ErrDenied}
	}

	b.mu.Lock()
	b.state = res.State
	b.pending = nil
	b.mu.Unlock()

	b.log.Info("desktop permission settled", "state", res.State.String())
	b.emit(res.State)
	req.resolve(res)
}

// Reset moves a denied decision back to unrequested so the user can be asked
// again. It reports whether the state changed.
func (b *Bridge) Reset() bool {
	b.mu.Lock()
	if b.state != StateDenied {
		b.mu.Unlock()
		return false
	}
	b.state = StateUnrequested
	b.mu.Unlock()

	b.emit(StateUnrequested)
	return true
}

func (b *Bridge) emit(s State) {
	if b.onChange != nil {
		b.onChange(s)
	}
}

// Mirror shows n on the desktop in the background. It reports whether a
// display was started. Nothing is shown unless permission is granted, and
// repeats within the dedup window or displays beyond the rate limit are
// dropped. Display errors are logged.
func (b *Bridge) Mirror(n domain.Notification) bool {
	if b.State() != StateGranted {
		return false
	}
	record := dedup.Record{Kind: n.Kind.String(), Title: n.Title, Message: n.Message, Data: n.Data}
	if !b.window.Allow(record) {
		b.log.Debug("suppressed duplicate desktop notification", "id", n.ID)
		return false
	}
	if b.limiter != nil && !b.limiter.Allow() {
		b.log.Warn("desktop notification rate limit reached", "id", n.ID)
		return false
	}

	msg := MessageFor(n)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()
		if err := b.platform.Display(ctx, msg); err != nil {
			b.log.Warn("desktop display failed", "id", n.ID, "error", err)
		}
	}()
	return true
}

// Wait blocks until every display started by Mirror has finished.
func (b *Bridge) Wait() {
	b.wg.Wait()
}

type unsupportedPlatform struct{}

func (unsupportedPlatform) PermissionState() State { return StateUnsupported }

func (unsupportedPlatform) RequestPermission(context.Context) (bool, error) {
	return false, ErrUnsupported
}

func (unsupportedPlatform) Display(context.Context, Message) error { return ErrUnsupported }
