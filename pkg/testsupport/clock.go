// Package testsupport holds deterministic doubles shared by package tests:
// a manual clock for debounce timers and a gated data source for ordering
// fetch responses.
package testsupport

import (
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-tutordash/pkg/listing"
)

// FakeClock fires timers only when Advance moves past their deadline.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *FakeClock
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

// NewFakeClock returns a clock at offset zero.
func NewFakeClock() *FakeClock {
	return &FakeClock{}
}

// AfterFunc implements listing.Clock.
func (c *FakeClock) AfterFunc(d time.Duration, fn func()) listing.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward and runs every due timer in deadline
// order on the calling goroutine.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.fn()
	}
}

// Pending counts timers that are neither stopped nor fired.
func (c *FakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

var _ listing.Clock = (*FakeClock)(nil)
