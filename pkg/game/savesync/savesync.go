// Package savesync saves the game to and loads it from the persistence
// server, deciding per session whether the network is involved at all.
package savesync

import (
	"context"
	"errors"
	"log"

	"github.com/leonelquinteros/gotext"

	"darkmanor/pkg/engine/loop"
	"darkmanor/pkg/game/api"
	"darkmanor/pkg/game/state"
	"darkmanor/pkg/savegame"
)

var (
	// ErrNotReady is returned when there is no running game to save.
	ErrNotReady = errors.New("savesync: game state not ready")
	// ErrNotSynced is returned when a load of the account's save is in
	// flight or failed. Saving then would overwrite a newer document with
	// defaults, so saves wait until a load succeeds.
	ErrNotSynced = errors.New("savesync: saved game not loaded")
)

// Client is the part of the persistence client the engine uses.
type Client interface {
	SaveGame(ctx context.Context, doc savegame.Document) (api.Response, error)
	SyncGame(ctx context.Context) (savegame.Document, error)
	UpdateGame(ctx context.Context, ev savegame.UpdateEvent) (api.Response, error)
}

// Notifier shows a short message to the player.
type Notifier interface {
	Notify(msg string)
}

// NotifierFunc adapts a func to Notifier.
type NotifierFunc func(msg string)

func (f NotifierFunc) Notify(msg string) { f(msg) }

// LoadStatus is the outcome of Load.
type LoadStatus int

const (
	// LoadApplied means a saved game was found and applied.
	LoadApplied LoadStatus = iota
	// LoadFresh means the account has no save; defaults are kept.
	LoadFresh
	// LoadFailed means the save could not be fetched; defaults are kept.
	LoadFailed
	// LoadSkipped means the session never loads from the server.
	LoadSkipped
)

func (s LoadStatus) String() string {
	switch s {
	case LoadApplied:
		return "applied"
	case LoadFresh:
		return "fresh"
	case LoadFailed:
		return "failed"
	default:
		return "skipped"
	}
}

// Engine builds save documents from the game state and reconciles them
// with the server. All methods must be called on the game loop.
type Engine struct {
	ctx    *state.Context
	client Client
	runner loop.Runner
	notify Notifier
	log    *log.Logger

	// rev is the revision of the last document sent or loaded.
	rev int64
	// unsynced is set from the start of a load until it applies a
	// document or finds none.
	unsynced bool
}

// New returns an engine for ctx.
func New(ctx *state.Context, client Client, runner loop.Runner, notify Notifier) *Engine {
	if notify == nil {
		notify = NotifierFunc(func(string) {})
	}
	logger := ctx.Log
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{ctx: ctx, client: client, runner: runner, notify: notify, log: logger}
}

// Revision returns the revision of the last document sent or loaded.
func (e *Engine) Revision() int64 { return e.rev }

// Synced reports whether saves may reach the server.
func (e *Engine) Synced() bool { return !e.unsynced }

// Snapshot builds the document that a save would send.
func (e *Engine) Snapshot() (savegame.Document, error) {
	g := e.ctx.Game
	if g == nil || !g.Ready() || g.Notebook == nil {
		return savegame.Document{}, ErrNotReady
	}
	return g.Document(), nil
}

// Save persists the current game. Silent saves never notify the player;
// other saves notify exactly once, with a confirmation or a failure.
// done, if non-nil, receives the outcome on the loop.
func (e *Engine) Save(silent bool, done func(error)) {
	finish := func(err error) {
		if done != nil {
			done(err)
		}
	}

	doc, err := e.Snapshot()
	if err != nil {
		e.log.Printf("save skipped: %v", err)
		if !silent {
			e.notify.Notify(gotext.Get("Nothing to save yet."))
		}
		finish(err)
		return
	}

	// Guests never reach the server.
	if !e.ctx.Session.IsAuthenticated() {
		if !silent {
			e.notify.Notify(gotext.Get("Playing as guest: progress is not saved."))
		}
		finish(nil)
		return
	}

	if e.unsynced {
		e.log.Printf("save skipped: %v", ErrNotSynced)
		if !silent {
			e.notify.Notify(gotext.Get("Save failed: your saved game has not loaded. Return to the menu to retry."))
		}
		finish(ErrNotSynced)
		return
	}

	e.rev++
	doc.Rev = e.rev
	loop.Await(e.runner, func(ctx context.Context) (api.Response, error) {
		return e.client.SaveGame(ctx, doc)
	}, func(res loop.Result[api.Response]) {
		if res.Err != nil {
			e.log.Printf("save rev %d failed: %v", doc.Rev, res.Err)
			if !silent {
				e.notify.Notify(saveFailureMessage(res.Err))
			}
			finish(res.Err)
			return
		}
		if !silent {
			e.notify.Notify(gotext.Get("Game Saved!"))
		}
		finish(nil)
	})
}

func saveFailureMessage(err error) string {
	if msg, ok := api.IsRejected(err); ok {
		return gotext.Get("Save failed: %s", msg)
	}
	return gotext.Get("Save failed: network error")
}

// Load fetches the saved game and applies it. Missing saves and failures
// both leave the defaults in place; only failures are logged as errors.
// Saves are refused from the start of the load until it applies a
// document or finds none.
func (e *Engine) Load(done func(LoadStatus, error)) {
	finish := func(s LoadStatus, err error) {
		if done != nil {
			done(s, err)
		}
	}

	if !e.ctx.Session.IsAuthenticated() {
		finish(LoadSkipped, nil)
		return
	}

	user := e.ctx.Session.UserID()
	e.unsynced = true
	loop.Await(e.runner, e.client.SyncGame, func(res loop.Result[savegame.Document]) {
		// The player may have logged out while the request was in flight.
		if !e.ctx.Session.IsAuthenticated() || e.ctx.Session.UserID() != user {
			finish(LoadSkipped, nil)
			return
		}
		switch {
		case res.Err == nil:
			e.ctx.Game.Apply(res.Value)
			if res.Value.Rev > e.rev {
				e.rev = res.Value.Rev
			}
			e.unsynced = false
			finish(LoadApplied, nil)
		case errors.Is(res.Err, api.ErrNotFound):
			e.unsynced = false
			e.log.Printf("no saved game for %s, starting fresh", e.ctx.Session.UserID())
			finish(LoadFresh, nil)
		default:
			e.log.Printf("load failed: %v", res.Err)
			finish(LoadFailed, res.Err)
		}
	})
}

// Report sends a partial progress update for authenticated sessions.
// Failures are logged only.
func (e *Engine) Report(ev savegame.UpdateEvent) {
	if !e.ctx.Session.IsAuthenticated() {
		return
	}
	loop.Await(e.runner, func(ctx context.Context) (api.Response, error) {
		return e.client.UpdateGame(ctx, ev)
	}, func(res loop.Result[api.Response]) {
		if res.Err != nil {
			e.log.Printf("update %s %s failed: %v", ev.Type, ev.ID, res.Err)
		}
	})
}

// Reset forgets the local game and the revision counter.
func (e *Engine) Reset() {
	e.rev = 0
	e.unsynced = false
	if e.ctx.Game != nil {
		e.ctx.Game.Reset()
	}
}
