// Package autosave periodically saves the game while it is being played.
package autosave

import (
	"time"

	"darkmanor/pkg/engine/clock"
)

// DefaultPeriod is the time between automatic saves.
const DefaultPeriod = 60 * time.Second

// Saver performs one save. Autosaves are always silent.
type Saver interface {
	Save(silent bool, done func(error))
}

// Scheduler owns at most one recurring timer. Start and Stop must be
// called on the game loop; ticks are posted back to it.
type Scheduler struct {
	clock  clock.Clock
	period time.Duration
	post   func(func())
	saver  Saver

	timer clock.Timer
	gen   uint64
}

// New returns a stopped scheduler. post delivers ticks to the game loop.
func New(c clock.Clock, period time.Duration, post func(func()), saver Saver) *Scheduler {
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Scheduler{clock: c, period: period, post: post, saver: saver}
}

// Running reports whether a timer is active.
func (s *Scheduler) Running() bool { return s.timer != nil }

// Period returns the time between saves.
func (s *Scheduler) Period() time.Duration { return s.period }

// Start begins periodic saving. Starting a running scheduler does nothing.
func (s *Scheduler) Start() {
	if s.timer != nil {
		return
	}
	s.gen++
	gen := s.gen
	s.timer = s.clock.Every(s.period, func() {
		s.post(func() { s.tick(gen) })
	})
}

// Stop cancels the timer. A tick already queued on the loop is dropped.
func (s *Scheduler) Stop() {
	if s.timer == nil {
		return
	}
	s.timer.Stop()
	s.timer = nil
	s.gen++
}

func (s *Scheduler) tick(gen uint64) {
	if s.timer == nil || gen != s.gen {
		return
	}
	s.saver.Save(true, nil)
}
