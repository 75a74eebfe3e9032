package actortest

import (
	"sort"
	"sync"
	"time"

	"github.com/levanminh04/Network-Programming/internal/actor"
)

// FakeClock is a deterministic Clock and Scheduler for tests. Scheduled
// callbacks run when Advance or Set moves the clock past their due time.
type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	pending []*fakeTimer
}

var (
	_ actor.Clock     = (*FakeClock)(nil)
	_ actor.Scheduler = (*FakeClock)(nil)
)

type fakeTimer struct {
	clock *FakeClock
	at    time.Time
	f     func()
}

// Stop implements actor.Timer.
func (t *fakeTimer) Stop() bool {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, p := range c.pending {
		if p == t {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return true
		}
	}
	return false
}

// NewFakeClock returns a FakeClock starting at start.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now implements actor.Clock.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc implements actor.Scheduler.
func (c *FakeClock) AfterFunc(d time.Duration, f func()) actor.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.pending = append(c.pending, t)
	return t
}

// Pending returns the number of scheduled callbacks not yet run or stopped.
func (c *FakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Set moves the clock to t and runs callbacks that became due.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	due := c.takeDueLocked()
	c.mu.Unlock()
	for _, ft := range due {
		ft.f()
	}
}

// Advance moves the clock forward by d and runs callbacks that became due.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	due := c.takeDueLocked()
	c.mu.Unlock()
	for _, ft := range due {
		ft.f()
	}
}

func (c *FakeClock) takeDueLocked() []*fakeTimer {
	var due, rest []*fakeTimer
	for _, t := range c.pending {
		if t.at.After(c.now) {
			rest = append(rest, t)
		} else {
			due = append(due, t)
		}
	}
	c.pending = rest
	sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	return due
}
