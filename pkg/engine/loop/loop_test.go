package loop

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAwait_InlineDeliversResult(t *testing.T) {
	var got Result[int]
	Await(Inline{}, func(ctx context.Context) (int, error) { return 7, nil }, func(r Result[int]) { got = r })
	if !got.OK() || got.Value != 7 {
		t.Errorf("Result = %+v, want {7 <nil>}", got)
	}

	boom := errors.New("boom")
	Await(Inline{}, func(ctx context.Context) (int, error) { return 0, boom }, func(r Result[int]) { got = r })
	if got.OK() || !errors.Is(got.Err, boom) {
		t.Errorf("Err = %v, want boom", got.Err)
	}
}

func TestLoop_ContinuationRunsOnOwner(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l := New(ctx, 4)

	started := make(chan struct{})
	Await(l, func(ctx context.Context) (string, error) {
		close(started)
		return "done", nil
	}, func(r Result[string]) {
		if r.Value != "done" {
			t.Errorf("Value = %q, want done", r.Value)
		}
	})

	<-started
	select {
	case f := <-l.C():
		f()
	case <-time.After(2 * time.Second):
		t.Fatal("continuation never posted")
	}
}

func TestLoop_PostAfterCancelDoesNotBlock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	l := New(ctx, 1)
	l.Post(func() {})
	cancel()

	done := make(chan struct{})
	go func() {
		l.Post(func() {})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Post blocked after cancel")
	}
	if n := l.Drain(); n < 1 {
		t.Errorf("Drain() = %d, want >= 1", n)
	}
}
