// Package notify is the toast queue: short messages that appear, stay for a
// few seconds and fade out on their own.
package notify

import (
	"sync"
	"sync/atomic"
	"time"
)

type Variant string

const (
	Default Variant = "default"
	Success Variant = "success"
	Error   Variant = "error"
)

const (
	// EnterDelay is one animation frame.
	EnterDelay   = 16 * time.Millisecond
	Lifetime     = 3000 * time.Millisecond
	ExitDuration = 200 * time.Millisecond
)

// Clock schedules callbacks; tests swap in a manual one.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	Stop() bool
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ids are unique for the process, across queues.
var lastID atomic.Uint64

type Toast struct {
	ID      uint64
	Message string
	Variant Variant
	Visible bool
	Leaving bool
}

type entry struct {
	Toast
	timers []Timer
}

type Queue struct {
	clock   Clock
	changes chan struct{}

	mu      sync.Mutex
	entries []*entry
	closed  bool
}

func New() *Queue {
	return NewWithClock(realClock{})
}

func NewWithClock(clock Clock) *Queue {
	return &Queue{
		clock:   clock,
		changes: make(chan struct{}, 1),
	}
}

// Enqueue appends a toast and returns its id. It becomes visible after one
// frame and starts leaving after Lifetime.
func (q *Queue) Enqueue(message string, variant Variant) uint64 {
	if variant == "" {
		variant = Default
	}
	id := lastID.Add(1)

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return id
	}
	e := &entry{Toast: Toast{ID: id, Message: message, Variant: variant}}
	q.entries = append(q.entries, e)
	e.timers = append(e.timers,
		q.clock.AfterFunc(EnterDelay, func() { q.show(id) }),
		q.clock.AfterFunc(Lifetime, func() { q.Dismiss(id) }),
	)
	q.mu.Unlock()

	q.signal()
	return id
}

func (q *Queue) show(id uint64) {
	q.mu.Lock()
	e := q.find(id)
	if e == nil || e.Leaving {
		q.mu.Unlock()
		return
	}
	e.Visible = true
	q.mu.Unlock()

	q.signal()
}

// Dismiss hides the toast now and removes it after ExitDuration.
func (q *Queue) Dismiss(id uint64) {
	q.mu.Lock()
	e := q.find(id)
	if e == nil || e.Leaving {
		q.mu.Unlock()
		return
	}
	for _, t := range e.timers {
		t.Stop()
	}
	e.Visible = false
	e.Leaving = true
	e.timers = []Timer{q.clock.AfterFunc(ExitDuration, func() { q.remove(id) })}
	q.mu.Unlock()

	q.signal()
}

func (q *Queue) remove(id uint64) {
	q.mu.Lock()
	for i, e := range q.entries {
		if e.ID == id {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			break
		}
	}
	q.mu.Unlock()

	q.signal()
}

func (q *Queue) find(id uint64) *entry {
	for _, e := range q.entries {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// Toasts returns the current entries in insertion order.
func (q *Queue) Toasts() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Toast, len(q.entries))
	for i, e := range q.entries {
		out[i] = e.Toast
	}
	return out
}

// Changes receives a value after any change; bursts coalesce into one.
func (q *Queue) Changes() <-chan struct{} {
	return q.changes
}

func (q *Queue) signal() {
	select {
	case q.changes <- struct{}{}:
	default:
	}
}

// Close stops every pending timer.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	for _, e := range q.entries {
		for _, t := range e.timers {
			t.Stop()
		}
	}
	q.entries = nil
}
