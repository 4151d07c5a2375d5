package desktop

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cristianoliveira/rx-intray/internal/dedup"
	"github.com/cristianoliveira/rx-intray/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	timeout = 2 * time.Second
	tick    = 5 * time.Millisecond
)

type stateLog struct {
	mu     sync.Mutex
	states []State
}

func (l *stateLog) record(s State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states = append(l.states, s)
}

func (l *stateLog) all() []State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]State(nil), l.states...)
}

func waitResult(t *testing.T, req *Request) Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	res, err := req.Wait(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded)
	return res
}

func notification(title string) domain.Notification {
	return domain.Notification{ID: title, Title: title, Message: "body", Kind: domain.KindInfo}
}

func TestNewBridgeInitialState(t *testing.T) {
	tests := []struct {
		name      string
		platform  State
		persisted State
		want      State
	}{
		{"platform unrequested", StateUnrequested, "", StateUnrequested},
		{"persisted grant", StateUnrequested, StateGranted, StateGranted},
		{"persisted denial", StateUnrequested, StateDenied, StateDenied},
		{"unsupported wins", StateUnsupported, StateGranted, StateUnsupported},
		{"platform grant wins", StateGranted, StateDenied, StateGranted},
		{"stale requested", StateRequested, "", StateUnrequested},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBridge(Options{Platform: NewMockPlatform(tt.platform), Persisted: tt.persisted})
			assert.Equal(t, tt.want, b.State())
		})
	}
}

func TestNilPlatformIsUnsupported(t *testing.T) {
	b := NewBridge(Options{})
	assert.Equal(t, StateUnsupported, b.State())
	res := waitResult(t, b.Enable(context.Background()))
	assert.ErrorIs(t, res.Err, ErrUnsupported)
}

func TestEnableGrant(t *testing.T) {
	p := NewMockPlatform(StateUnrequested)
	log := &stateLog{}
	b := NewBridge(Options{Platform: p, OnStateChange: log.record})

	req := b.Enable(context.Background())
	assert.Equal(t, StateRequested, b.State())
	_, settled := req.Result()
	assert.False(t, settled)

	p.Resolve(true, nil)
	res := waitResult(t, req)
	assert.True(t, res.OK())
	assert.Equal(t, StateGranted, b.State())
	assert.Equal(t, []State{StateRequested, StateGranted}, log.all())

	again := waitResult(t, b.Enable(context.Background()))
	assert.True(t, again.OK())
	assert.Equal(t, 1, p.Requests())
}

func TestEnableDeny(t *testing.T) {
	p := NewMockPlatform(StateUnrequested)
	b := NewBridge(Options{Platform: p})

	req := b.Enable(context.Background())
	p.Resolve(false, nil)
	res := waitResult(t, req)
	assert.False(t, res.OK())
	assert.ErrorIs(t, res.Err, ErrDenied)
	assert.Equal(t, StateDenied, b.State())

	res = waitResult(t, b.Enable(context.Background()))
	assert.ErrorIs(t, res.Err, ErrDenied)
	assert.Equal(t, 1, p.Requests(), "denied must not ask again")
}

func TestConcurrentEnableSharesRequest(t *testing.T) {
	p := NewMockPlatform(StateUnrequested)
	b := NewBridge(Options{Platform: p})

	first := b.Enable(context.Background())
	second := b.Enable(context.Background())
	assert.Same(t, first, second)

	p.Resolve(true, nil)
	assert.True(t, waitResult(t, first).OK())
	assert.True(t, waitResult(t, second).OK())
	assert.Eventually(t, func() bool { return p.Requests() == 1 }, timeout, tick)
}

func TestEnableIgnoresCallerCancellation(t *testing.T) {
	p := NewMockPlatform(StateUnrequested)
	b := NewBridge(Options{Platform: p})

	ctx, cancel := context.WithCancel(context.Background())
	req := b.Enable(ctx)
	cancel()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer waitCancel()
	_, err := req.Wait(waitCtx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, StateRequested, b.State())

	p.Resolve(true, nil)
	assert.True(t, waitResult(t, req).OK())
}

func TestEnablePlatformErrorReturnsToUnrequested(t *testing.T) {
	p := NewMockPlatform(StateUnrequested)
	b := NewBridge(Options{Platform: p})

	boom := errors.New("dbus unavailable")
	req := b.Enable(context.Background())
	p.Resolve(false, boom)
	res := waitResult(t, req)
	assert.ErrorIs(t, res.Err, boom)
	assert.Equal(t, StateUnrequested, b.State())

	retry := b.Enable(context.Background())
	p.Resolve(true, nil)
	assert.True(t, waitResult(t, retry).OK())
}

func TestEnableUnsupported(t *testing.T) {
	p := NewMockPlatform(StateUnsupported)
	log := &stateLog{}
	b := NewBridge(Options{Platform: p, OnStateChange: log.record})

	res := waitResult(t, b.Enable(context.Background()))
	assert.ErrorIs(t, res.Err, ErrUnsupported)
	assert.Equal(t, StateUnsupported, b.State())
	assert.Empty(t, log.all())
	assert.Equal(t, 0, p.Requests())
}

func TestReset(t *testing.T) {
	p := NewMockPlatform(StateUnrequested)
	log := &stateLog{}
	b := NewBridge(Options{Platform: p, Persisted: StateDenied, OnStateChange: log.record})

	assert.True(t, b.Reset())
	assert.Equal(t, StateUnrequested, b.State())
	assert.False(t, b.Reset())
	assert.Equal(t, []State{StateUnrequested}, log.all())

	req := b.Enable(context.Background())
	p.Resolve(true, nil)
	assert.True(t, waitResult(t, req).OK())
}

func TestMirrorRequiresGrant(t *testing.T) {
	p := NewMockPlatform(StateUnrequested)
	b := NewBridge(Options{Platform: p})

	assert.False(t, b.Mirror(notification("a")))
	b.Wait()
	assert.Empty(t, p.Displayed())
}

func TestMirrorDisplays(t *testing.T) {
	p := NewMockPlatform(StateGranted)
	b := NewBridge(Options{Platform: p})

	n := notification("Refill ready")
	assert.True(t, b.Mirror(n))
	b.Wait()
	assert.Equal(t, []Message{{Title: "Refill ready", Body: "body", Kind: domain.KindInfo}}, p.Displayed())
}

func TestMessageForCopiesData(t *testing.T) {
	n := notification("New message from Dr. Patel")
	n.Data = domain.Data{"conversation_id": "c-88"}

	msg := MessageFor(n)
	n.Data["conversation_id"] = "changed"
	assert.Equal(t, domain.Data{"conversation_id": "c-88"}, msg.Data)
	assert.Nil(t, MessageFor(notification("plain")).Data)
}

func TestMirrorSwallowsDisplayErrors(t *testing.T) {
	p := NewMockPlatform(StateGranted)
	p.FailDisplays(errors.New("no service"))
	b := NewBridge(Options{Platform: p})

	assert.True(t, b.Mirror(notification("a")))
	assert.NotPanics(t, b.Wait)
}

func TestMirrorSuppressesDuplicates(t *testing.T) {
	p := NewMockPlatform(StateGranted)
	b := NewBridge(Options{
		Platform: p,
		Dedup:    dedup.Options{Criteria: dedup.CriteriaContent, Window: time.Minute},
	})

	assert.True(t, b.Mirror(notification("a")))
	assert.False(t, b.Mirror(notification("a")))
	assert.True(t, b.Mirror(notification("b")))
	b.Wait()
	assert.Len(t, p.Displayed(), 2)
}

func TestMirrorRateLimit(t *testing.T) {
	p := NewMockPlatform(StateGranted)
	b := NewBridge(Options{Platform: p, RatePerMinute: 2})

	assert.True(t, b.Mirror(notification("a")))
	assert.True(t, b.Mirror(notification("b")))
	assert.False(t, b.Mirror(notification("c")))
	b.Wait()
	assert.Len(t, p.Displayed(), 2)
}

func TestRequestWaitHonorsContext(t *testing.T) {
	req := newRequest()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := req.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateRequested, res.State)

	req.resolve(Result{State: StateGranted})
	req.resolve(Result{State: StateDenied})
	got, ok := req.Result()
	require.True(t, ok)
	assert.Equal(t, StateGranted, got.State)
}

func TestParseState(t *testing.T) {
	assert.Equal(t, StateGranted, ParseState("granted"))
	assert.Equal(t, StateUnrequested, ParseState(""))
	assert.Equal(t, StateUnrequested, ParseState("maybe"))
}
