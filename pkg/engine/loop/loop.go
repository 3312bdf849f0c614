// Package loop serializes all game state mutation onto one goroutine.
//
// Blocking work (network round trips) runs on worker goroutines; its
// continuation is posted back and executed on the loop, so continuations
// never race with input handling or timer ticks.
package loop

import (
	"context"
)

// Runner executes blocking work and delivers its continuation on the
// goroutine that owns game state.
type Runner interface {
	// Spawn runs work off the loop. The returned func, if non-nil, runs on the loop.
	Spawn(work func(ctx context.Context) func())
	// Post queues f to run on the loop.
	Post(f func())
}

// Result is the outcome of an awaited task.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the task succeeded.
func (r Result[T]) OK() bool { return r.Err == nil }

// Await runs work through r and hands its Result to then on the loop.
func Await[T any](r Runner, work func(ctx context.Context) (T, error), then func(Result[T])) {
	r.Spawn(func(ctx context.Context) func() {
		v, err := work(ctx)
		res := Result[T]{Value: v, Err: err}
		return func() { then(res) }
	})
}

// Loop is the production Runner backed by a queue of continuations.
type Loop struct {
	ctx   context.Context
	queue chan func()
}

// New returns a Loop whose workers observe ctx.
func New(ctx context.Context, depth int) *Loop {
	if depth <= 0 {
		depth = 64
	}
	return &Loop{ctx: ctx, queue: make(chan func(), depth)}
}

// C is drained by the owner goroutine, which must run every func it receives.
func (l *Loop) C() <-chan func() { return l.queue }

func (l *Loop) Post(f func()) {
	if f == nil {
		return
	}
	select {
	case l.queue <- f:
	case <-l.ctx.Done():
	}
}

func (l *Loop) Spawn(work func(ctx context.Context) func()) {
	go func() {
		if next := work(l.ctx); next != nil {
			l.Post(next)
		}
	}()
}

// Drain runs every queued continuation without blocking.
func (l *Loop) Drain() int {
	n := 0
	for {
		select {
		case f := <-l.queue:
			f()
			n++
		default:
			return n
		}
	}
}

// Inline runs work and continuations synchronously on the caller. It is
// meant for tests, where it makes async chains deterministic.
type Inline struct {
	Ctx context.Context
}

func (i Inline) context() context.Context {
	if i.Ctx != nil {
		return i.Ctx
	}
	return context.Background()
}

func (i Inline) Spawn(work func(ctx context.Context) func()) {
	if next := work(i.context()); next != nil {
		next()
	}
}

func (i Inline) Post(f func()) {
	if f != nil {
		f()
	}
}
