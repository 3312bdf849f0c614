// Package clock abstracts timers so delayed and recurring work can be driven
// by a fake clock in tests.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Timer is a handle to scheduled work.
type Timer interface {
	// Stop prevents further firings. It reports whether the timer was active.
	Stop() bool
}

// Clock schedules one-shot and recurring callbacks.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
	Every(d time.Duration, f func()) Timer
}

// Real is the wall clock. Callbacks run on their own goroutine.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func (Real) Every(d time.Duration, f func()) Timer {
	t := &ticker{t: time.NewTicker(d), done: make(chan struct{})}
	go func() {
		for {
			select {
			case <-t.t.C:
				f()
			case <-t.done:
				return
			}
		}
	}()
	return t
}

type ticker struct {
	t    *time.Ticker
	once sync.Once
	done chan struct{}
}

func (t *ticker) Stop() bool {
	stopped := false
	t.once.Do(func() {
		t.t.Stop()
		close(t.done)
		stopped = true
	})
	return stopped
}

// Fake is a manually advanced clock. Callbacks run synchronously inside
// Advance, in firing order.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*fakeTimer
}

// NewFake returns a fake clock starting at an arbitrary fixed instant.
func NewFake() *Fake {
	return &Fake{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

type fakeTimer struct {
	c      *Fake
	at     time.Time
	period time.Duration
	seq    int
	f      func()
	active bool
}

func (t *fakeTimer) Stop() bool {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	was := t.active
	t.active = false
	return was
}

func (c *Fake) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Fake) AfterFunc(d time.Duration, f func()) Timer {
	return c.schedule(d, 0, f)
}

func (c *Fake) Every(d time.Duration, f func()) Timer {
	return c.schedule(d, d, f)
}

func (c *Fake) schedule(d, period time.Duration, f func()) *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &fakeTimer{c: c, at: c.now.Add(d), period: period, seq: c.seq, f: f, active: true}
	c.timers = append(c.timers, t)
	return t
}

// Pending returns the number of active timers.
func (c *Fake) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if t.active {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, firing every timer that comes due.
func (c *Fake) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		next := c.nextDue(target)
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = next.at
		if next.period > 0 {
			next.at = next.at.Add(next.period)
		} else {
			next.active = false
		}
		f := next.f
		c.mu.Unlock()
		f()
	}
}

// nextDue must be called with c.mu held.
func (c *Fake) nextDue(limit time.Time) *fakeTimer {
	live := c.timers[:0]
	for _, t := range c.timers {
		if t.active {
			live = append(live, t)
		}
	}
	c.timers = live
	sort.SliceStable(c.timers, func(i, j int) bool {
		if c.timers[i].at.Equal(c.timers[j].at) {
			return c.timers[i].seq < c.timers[j].seq
		}
		return c.timers[i].at.Before(c.timers[j].at)
	})
	if len(c.timers) == 0 || c.timers[0].at.After(limit) {
		return nil
	}
	return c.timers[0]
}
