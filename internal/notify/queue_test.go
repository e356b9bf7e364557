package notify

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward, firing due timers in deadline order.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var due []*manualTimer
		for _, t := range c.timers {
			if !t.stopped && !t.fired && t.at <= target {
				due = append(due, t)
			}
		}
		if len(due) == 0 {
			c.now = target
			c.mu.Unlock()
			return
		}
		sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
		next := due[0]
		next.fired = true
		c.now = next.at
		c.mu.Unlock()

		next.f()
	}
}

func TestLifecycle(t *testing.T) {
	clock := &manualClock{}
	q := NewWithClock(clock)

	id := q.Enqueue("Saved", Success)
	toasts := q.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, id, toasts[0].ID)
	assert.False(t, toasts[0].Visible, "not visible before the first frame")

	clock.Advance(EnterDelay)
	assert.True(t, q.Toasts()[0].Visible)

	clock.Advance(Lifetime - EnterDelay - time.Millisecond)
	require.Len(t, q.Toasts(), 1)
	assert.True(t, q.Toasts()[0].Visible)

	clock.Advance(time.Millisecond)
	require.Len(t, q.Toasts(), 1)
	assert.False(t, q.Toasts()[0].Visible)
	assert.True(t, q.Toasts()[0].Leaving)

	clock.Advance(ExitDuration)
	assert.Empty(t, q.Toasts())
}

func TestIDsIncreaseAndOrderIsKept(t *testing.T) {
	clock := &manualClock{}
	q := NewWithClock(clock)
	other := NewWithClock(clock)

	a := q.Enqueue("a", Default)
	b := other.Enqueue("b", Default)
	c := q.Enqueue("c", "")

	assert.Less(t, a, b)
	assert.Less(t, b, c)

	toasts := q.Toasts()
	require.Len(t, toasts, 2)
	assert.Equal(t, "a", toasts[0].Message)
	assert.Equal(t, "c", toasts[1].Message)
	assert.Equal(t, Default, toasts[1].Variant)
}

func TestDismissEarly(t *testing.T) {
	clock := &manualClock{}
	q := NewWithClock(clock)

	id := q.Enqueue("Erreur", Error)
	keep := q.Enqueue("Autre", Default)
	clock.Advance(EnterDelay)

	q.Dismiss(id)
	q.Dismiss(id)
	toasts := q.Toasts()
	require.Len(t, toasts, 2)
	assert.False(t, toasts[0].Visible)

	clock.Advance(ExitDuration)
	toasts = q.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, keep, toasts[0].ID)

	// The original lifetime timer was cancelled; nothing else disappears early.
	clock.Advance(Lifetime - EnterDelay - ExitDuration - time.Millisecond)
	assert.Len(t, q.Toasts(), 1)
}

func TestChangesCoalesce(t *testing.T) {
	clock := &manualClock{}
	q := NewWithClock(clock)

	q.Enqueue("one", Default)
	q.Enqueue("two", Default)

	select {
	case <-q.Changes():
	default:
		t.Fatal("expected a change signal")
	}
	select {
	case <-q.Changes():
		t.Fatal("signals should coalesce")
	default:
	}
}

func TestCloseStopsTimers(t *testing.T) {
	clock := &manualClock{}
	q := NewWithClock(clock)
	q.Enqueue("bye", Default)
	q.Close()

	clock.Advance(Lifetime + ExitDuration)
	assert.Empty(t, q.Toasts())

	q.Enqueue("ignored", Default)
	assert.Empty(t, q.Toasts())
}
