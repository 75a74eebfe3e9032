// Package roundtimer derives the visible countdown from a round deadline.
//
// The deadline is absolute server time in Unix milliseconds, so the countdown
// stays correct across local pauses and reconnects; it is recomputed from the
// clock on every poll rather than decremented.
package roundtimer

import (
	"sync"
	"time"

	"github.com/levanminh04/Network-Programming/internal/actor"
)

// DefaultInterval is the polling period.
const DefaultInterval = 100 * time.Millisecond

// Remaining returns the whole seconds left until deadlineMs, never negative.
func Remaining(deadlineMs int64, now time.Time) int {
	left := deadlineMs - now.UnixMilli()
	if left <= 0 {
		return 0
	}
	return int(left / 1000)
}

// Timer polls the clock and reports each change in whole seconds remaining.
type Timer struct {
	clock    actor.Clock
	interval time.Duration
	onTick   func(remaining int)

	mu        sync.Mutex
	deadline  int64
	remaining int
	gen       uint64
	stop      chan struct{}
}

// New returns an idle Timer. onTick runs on the timer's goroutine.
func New(clock actor.Clock, interval time.Duration, onTick func(remaining int)) *Timer {
	if clock == nil {
		clock = actor.RealClock{}
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	if onTick == nil {
		onTick = func(int) {}
	}
	return &Timer{clock: clock, interval: interval, onTick: onTick}
}

// SetDeadline (re)starts the countdown towards deadlineMs. Setting the
// current deadline again is a no-op; zero stops the timer.
func (t *Timer) SetDeadline(deadlineMs int64) {
	t.mu.Lock()
	if deadlineMs == t.deadline {
		t.mu.Unlock()
		return
	}
	t.haltLocked()
	t.deadline = deadlineMs
	if deadlineMs == 0 {
		t.remaining = 0
		t.mu.Unlock()
		return
	}

	remaining := Remaining(deadlineMs, t.clock.Now())
	t.remaining = remaining
	gen := t.gen
	var stop chan struct{}
	if remaining > 0 {
		stop = make(chan struct{})
		t.stop = stop
	}
	t.mu.Unlock()

	t.emit(gen, remaining)
	if stop != nil {
		go t.run(gen, stop)
	}
}

// Remaining returns the last computed value.
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Stop halts polling. The deadline is forgotten.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.haltLocked()
	t.deadline = 0
}

func (t *Timer) haltLocked() {
	t.gen++
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}

func (t *Timer) run(gen uint64, stop <-chan struct{}) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		t.mu.Lock()
		if gen != t.gen {
			t.mu.Unlock()
			return
		}
		remaining := Remaining(t.deadline, t.clock.Now())
		changed := remaining != t.remaining
		t.remaining = remaining
		done := remaining == 0
		if done {
			t.stop = nil
		}
		t.mu.Unlock()

		if changed {
			t.emit(gen, remaining)
		}
		if done {
			return
		}
	}
}

func (t *Timer) emit(gen uint64, remaining int) {
	t.mu.Lock()
	current := gen == t.gen
	t.mu.Unlock()
	if current {
		t.onTick(remaining)
	}
}
