// Package bus fans registry snapshots out to observers.
//
// Delivery is synchronous and serialized. A publish issued while another
// delivery is running (from an observer, or from another goroutine) is queued
// and handed out by the goroutine already delivering, so observers see
// snapshots in the order they were taken and never run concurrently.
package bus

import (
	"fmt"
	"sync"

	"github.com/cristianoliveira/rx-intray/internal/domain"
	"github.com/cristianoliveira/rx-intray/internal/logging"
)

// Observer receives registry snapshots.
type Observer interface {
	Notify(domain.Snapshot) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(domain.Snapshot) error

// Notify implements Observer.
func (f ObserverFunc) Notify(s domain.Snapshot) error {
	return f(s)
}

// Source produces the snapshot to publish.
type Source interface {
	Snapshot() domain.Snapshot
}

// ID identifies one subscription.
type ID uint64

type entry struct {
	id       ID
	observer Observer
}

type delivery struct {
	target   ID // zero means every observer
	snapshot domain.Snapshot
}

// Bus is the observer registry. The zero value is not usable; use New.
type Bus struct {
	mu        sync.Mutex
	observers []entry
	nextID    ID
	queue     []delivery
	draining  bool
	log       logging.Logger
}

// New returns a bus that reports observer failures to log.
func New(log logging.Logger) *Bus {
	if log == nil {
		log = logging.Nop()
	}
	return &Bus{log: log.With("component", "bus")}
}

// Subscribe registers o after every existing observer. The returned function
// removes exactly this subscription; calling it more than once is a no-op.
func (b *Bus) Subscribe(o Observer) (ID, func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.observers = append(b.observers, entry{id: id, observer: o})
	b.mu.Unlock()

	var once sync.Once
	return id, func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus) remove(id ID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, e := range b.observers {
		if e.id == id {
			b.observers = append(b.observers[:i], b.observers[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered observers.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.observers)
}

// Publish delivers s to every observer in registration order.
func (b *Bus) Publish(s domain.Snapshot) {
	b.enqueue(delivery{snapshot: s.Clone()})
}

// PublishFrom takes a snapshot of src and delivers it to every observer.
// The snapshot is taken in queue order, so concurrent publishers never hand
// out an older state after a newer one.
func (b *Bus) PublishFrom(src Source) {
	b.enqueueFrom(0, src)
}

// Deliver queues s for the observer with id only.
func (b *Bus) Deliver(id ID, s domain.Snapshot) {
	b.enqueue(delivery{target: id, snapshot: s.Clone()})
}

// DeliverFrom takes a snapshot of src and delivers it to the observer with id.
func (b *Bus) DeliverFrom(id ID, src Source) {
	b.enqueueFrom(id, src)
}

func (b *Bus) enqueueFrom(target ID, src Source) {
	b.mu.Lock()
	b.queue = append(b.queue, delivery{target: target, snapshot: src.Snapshot()})
	b.startDrainLocked()
}

func (b *Bus) enqueue(d delivery) {
	b.mu.Lock()
	b.queue = append(b.queue, d)
	b.startDrainLocked()
}

// startDrainLocked releases b.mu and, unless another goroutine is already
// delivering, drains the queue on the caller's goroutine.
func (b *Bus) startDrainLocked() {
	if b.draining {
		b.mu.Unlock()
		return
	}
	b.draining = true
	b.mu.Unlock()
	b.drain()
}

func (b *Bus) drain() {
	for {
		b.mu.Lock()
		if len(b.queue) == 0 {
			b.draining = false
			b.mu.Unlock()
			return
		}
		d := b.queue[0]
		b.queue[0] = delivery{}
		b.queue = b.queue[1:]
		targets := b.targetsLocked(d.target)
		b.mu.Unlock()

		for _, e := range targets {
			if !b.subscribed(e.id) {
				continue
			}
			b.notify(e, d.snapshot)
		}
	}
}

func (b *Bus) targetsLocked(target ID) []entry {
	if target == 0 {
		return append([]entry(nil), b.observers...)
	}
	for _, e := range b.observers {
		if e.id == target {
			return []entry{e}
		}
	}
	return nil
}

func (b *Bus) subscribed(id ID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range b.observers {
		if e.id == id {
			return true
		}
	}
	return false
}

// notify hands one observer its own copy of s. Errors and panics are logged
// and never reach the publisher.
func (b *Bus) notify(e entry, s domain.Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("observer panicked", "observer", uint64(e.id), "panic", fmt.Sprint(r))
		}
	}()
	if err := e.observer.Notify(s.Clone()); err != nil {
		b.log.Warn("observer failed", "observer", uint64(e.id), "error", err)
	}
}
