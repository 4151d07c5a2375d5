package desktop

import (
	"context"
	"sync"
)

// Result is the outcome of a permission request.
type Result struct {
	State State
	Err   error
}

// OK reports whether permission was granted.
func (r Result) OK() bool {
	return r.Err == nil && r.State == StateGranted
}

// Request is the pending or settled result of asking for permission.
// Every caller that asks while a request is in flight shares it.
type Request struct {
	done   chan struct{}
	once   sync.Once
	result Result
}

func newRequest() *Request {
	return &Request{done: make(chan struct{})}
}

func resolvedRequest(r Result) *Request {
	req := newRequest()
	req.resolve(r)
	return req
}

func (r *Request) resolve(res Result) {
	r.once.Do(func() {
		r.result = res
		close(r.done)
	})
}

// Done is closed once the request has settled.
func (r *Request) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the request settles or ctx is done. The returned error
// is ctx.Err() when ctx ends first, otherwise the result's Err.
// Giving up on Wait does not cancel the request itself.
func (r *Request) Wait(ctx context.Context) (Result, error) {
	select {
	case <-r.done:
		return r.result, r.result.Err
	case <-ctx.Done():
		return Result{State: StateRequested}, ctx.Err()
	}
}

// Result returns the outcome if the request has settled.
func (r *Request) Result() (Result, bool) {
	select {
	case <-r.done:
		return r.result, true
	default:
		return Result{}, false
	}
}
