// Package app wires the game together: it owns the loop goroutine, routes
// player intents to whatever the current screen does with them, and hands
// the renderer a fresh frame after every change.
package app

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/leonelquinteros/gotext"

	"darkmanor/pkg/engine/clock"
	engineinput "darkmanor/pkg/engine/input"
	"darkmanor/pkg/engine/loop"
	"darkmanor/pkg/game/autosave"
	"darkmanor/pkg/game/events"
	"darkmanor/pkg/game/gameplay"
	"darkmanor/pkg/game/level"
	"darkmanor/pkg/game/menu"
	"darkmanor/pkg/game/renderer"
	"darkmanor/pkg/game/savesync"
	"darkmanor/pkg/game/screen"
	"darkmanor/pkg/game/session"
	"darkmanor/pkg/game/state"
	"darkmanor/pkg/savegame"
)

// SolvedDialogDelay is how long the "door unlocked" dialog stays open.
const SolvedDialogDelay = 3 * time.Second

// Client is everything the game asks of the persistence server.
type Client interface {
	session.Client
	savesync.Client
}

// Config holds what New needs. Zero durations fall back to the package
// defaults of the components they configure.
type Config struct {
	Layout   *level.Layout
	Client   Client
	Renderer renderer.Renderer

	// Loop is the production runner. When nil, Runner is used and Run only
	// services renderer intents.
	Loop   *loop.Loop
	Runner loop.Runner
	Clock  clock.Clock

	AutosavePeriod     time.Duration
	PauseStopsAutosave bool
	GuestDelay         time.Duration

	Log *log.Logger
}

// entry is the text prompt the app is waiting on.
type entry int

const (
	entryNone entry = iota
	entryLogin
	entryRegister
	entryDelete
	entryAnswer
)

// App is the running client. Every method except Run must be called on
// the loop goroutine.
type App struct {
	ctx      *state.Context
	runner   loop.Runner
	loop     *loop.Loop
	clock    clock.Clock
	render   renderer.Renderer
	log      *log.Logger
	screens  *screen.Machine
	session  *session.Manager
	saves    *savesync.Engine
	autosave *autosave.Scheduler
	play     *gameplay.Gameplay
	menus    map[screen.Screen]*menu.Menu

	entry      entry
	overlay    []string
	dialogStop clock.Timer
	quit       bool
	// quitOnLogin ends the app once a logout started by Quit is done.
	quitOnLogin bool
}

// New builds the game state and every component around it. The app starts
// on the login screen.
func New(cfg Config) *App {
	logger := cfg.Log
	if logger == nil {
		logger = log.Default()
	}
	c := cfg.Clock
	if c == nil {
		c = clock.Real{}
	}
	var runner loop.Runner = cfg.Runner
	if cfg.Loop != nil {
		runner = cfg.Loop
	}
	layout := cfg.Layout
	if layout == nil {
		layout = level.Default()
	}

	a := &App{
		ctx:    state.NewContext(state.NewGame(layout), logger),
		runner: runner,
		loop:   cfg.Loop,
		clock:  c,
		render: cfg.Renderer,
		log:    logger,
		menus: map[screen.Screen]*menu.Menu{
			screen.Login:  menu.LoginMenu(),
			screen.Menu:   menu.MainMenu(),
			screen.Paused: menu.PauseMenu(),
		},
	}

	a.saves = savesync.New(a.ctx, cfg.Client, runner, a)
	a.autosave = autosave.New(c, cfg.AutosavePeriod, runner.Post, a.saves)
	a.screens = screen.New(nil, a.autosave, a.saves, screen.Options{
		PauseStopsAutosave: cfg.PauseStopsAutosave,
		OnEnter:            a.onEnter,
		Log:                logger,
	})
	a.session = session.New(session.Config{
		Session:    a.ctx.Session,
		Client:     cfg.Client,
		Runner:     runner,
		Clock:      c,
		Screens:    a.screens,
		Saver:      a.saves,
		Notifier:   a,
		GuestDelay: cfg.GuestDelay,
		Log:        logger,
	})
	a.play = gameplay.New(a.ctx)

	events.Subscribe(a.ctx.Bus, a.reportSolved)

	return a
}

// Context returns the shared state.
func (a *App) Context() *state.Context { return a.ctx }

// Screen returns the screen being shown.
func (a *App) Screen() screen.Screen { return a.screens.Current() }

// Quitting reports whether the player asked to leave.
func (a *App) Quitting() bool { return a.quit }

// Notify adds msg to the message pane.
func (a *App) Notify(msg string) {
	a.ctx.Game.AddMessage(msg)
}

func (a *App) onEnter(s screen.Screen) {
	if s == screen.Login && a.quitOnLogin {
		a.quit = true
	}
	if m, ok := a.menus[s]; ok {
		m.Reset()
	}
	a.overlay = nil

	if s == screen.Playing && !a.ctx.Game.Ready() {
		a.ctx.Game.Begin()
		a.Notify(gotext.Get("Welcome to The Dark Manor."))
		a.Notify(gotext.Get("You are in the %s.", a.ctx.Game.Room))
	}
}

// reportSolved tells the server about a solved door.
func (a *App) reportSolved(e events.DoorUnlocked) {
	door := a.ctx.Game.Level.Door(e.DoorID)
	if door == nil {
		return
	}
	msg, err := json.Marshal(map[string]any{"door": door.ID, "room": door.Target})
	if err != nil {
		a.log.Printf("door %d: %v", door.ID, err)
		return
	}
	a.saves.Report(savegame.UpdateEvent{Type: savegame.UpdateProblem, ID: door.ProblemID(), Msg: msg})
}

// requestQuit leaves the game. An account-backed session is logged out
// first, which saves silently; the app quits when it reaches the login
// screen.
func (a *App) requestQuit() {
	if !a.ctx.Session.IsAuthenticated() {
		a.quit = true
		return
	}
	a.quitOnLogin = true
	a.session.Logout()
}

// Handle applies one player intent.
func (a *App) Handle(intent engineinput.Intent) {
	if a.quit {
		return
	}

	switch intent.Action {
	case engineinput.ActionNone:
		return
	case engineinput.ActionSubmit:
		a.submit(intent.Values)
		return
	case engineinput.ActionCancelEntry:
		a.cancel()
		return
	}

	if a.entry != entryNone {
		return
	}

	switch a.screens.Current() {
	case screen.Login, screen.Menu:
		if intent.Action == engineinput.ActionQuit {
			a.requestQuit()
			return
		}
		a.handleMenu(intent.Action)
	case screen.Paused:
		switch intent.Action {
		case engineinput.ActionOpenMenu:
			a.screens.SwitchTo(screen.Playing)
		case engineinput.ActionQuit:
		default:
			a.handleMenu(intent.Action)
		}
	case screen.Playing:
		a.handlePlaying(intent.Action)
	}
}

func (a *App) handleMenu(action engineinput.Action) {
	m := a.menus[a.screens.Current()]
	if m == nil {
		return
	}
	item, ok := m.Handle(action)
	if !ok {
		return
	}

	switch item.ID {
	case menu.ItemLogin:
		a.ask(entryLogin, renderer.Credentials(gotext.Get("Login")))
	case menu.ItemRegister:
		a.ask(entryRegister, renderer.Credentials(gotext.Get("Register")))
	case menu.ItemDeleteAccount:
		a.ask(entryDelete, renderer.Credentials(gotext.Get("Delete Account")))
	case menu.ItemGuest:
		a.session.PlayAsGuest()
	case menu.ItemQuit:
		a.requestQuit()
	case menu.ItemStartGame:
		a.screens.SwitchTo(screen.Playing)
	case menu.ItemLogout:
		a.session.Logout()
	case menu.ItemContinue:
		a.screens.SwitchTo(screen.Playing)
	case menu.ItemSaveGame:
		a.saves.Save(false, nil)
	case menu.ItemControls:
		a.toggleControls()
	}
}

func (a *App) handlePlaying(action engineinput.Action) {
	g := a.ctx.Game
	switch action {
	case engineinput.ActionMoveNorth, engineinput.ActionMoveSouth, engineinput.ActionMoveWest, engineinput.ActionMoveEast:
		a.play.Move(action)
	case engineinput.ActionInteract, engineinput.ActionAction:
		a.play.Interact()
		if q, ok := a.play.PendingQuestion(); ok {
			a.ask(entryAnswer, renderer.Answer(q))
		}
	case engineinput.ActionNotebook:
		g.Notebook.Toggle()
	case engineinput.ActionNextTab:
		if g.Notebook.Visible() {
			g.Notebook.CycleTab()
		}
	case engineinput.ActionHint:
		a.toggleControls()
	case engineinput.ActionOpenMenu, engineinput.ActionQuit:
		g.Notebook.Hide()
		a.screens.SwitchTo(screen.Paused)
	}
}

func (a *App) toggleControls() {
	if a.overlay != nil {
		a.overlay = nil
		return
	}
	a.overlay = menu.Controls()
}

func (a *App) ask(e entry, p renderer.Prompt) {
	a.entry = e
	a.render.Prompt(p)
}

func (a *App) submit(values []string) {
	e := a.entry
	a.entry = entryNone

	field := func(i int) string {
		if i < len(values) {
			return values[i]
		}
		return ""
	}

	switch e {
	case entryLogin:
		a.session.Login(field(0), field(1))
	case entryRegister:
		a.session.Register(field(0), field(1))
	case entryDelete:
		a.session.DeleteAccount(field(0), field(1))
	case entryAnswer:
		if a.play.AnswerDoor(field(0)) {
			a.closeDialogLater()
		}
	}
}

func (a *App) cancel() {
	if a.entry == entryAnswer {
		a.play.CancelAnswer()
	}
	a.entry = entryNone
}

// closeDialogLater closes the current dialog after SolvedDialogDelay unless
// something else replaced it first.
func (a *App) closeDialogLater() {
	if a.dialogStop != nil {
		a.dialogStop.Stop()
	}
	g := a.ctx.Game
	text := g.Dialog
	a.dialogStop = a.clock.AfterFunc(SolvedDialogDelay, func() {
		a.runner.Post(func() {
			a.dialogStop = nil
			if g.Dialog == text {
				g.CloseDialog()
			}
		})
	})
}

// Run services intents and loop continuations until the player quits, the
// renderer closes its intent channel, or ctx ends.
func (a *App) Run(ctx context.Context) error {
	defer a.autosave.Stop()

	var queue <-chan func()
	if a.loop != nil {
		queue = a.loop.C()
	}
	intents := a.render.Intents()

	a.render.RenderFrame(a.Frame())
	for {
		select {
		case <-ctx.Done():
			return nil
		case intent, ok := <-intents:
			if !ok {
				return nil
			}
			a.Handle(intent)
		case f := <-queue:
			f()
		}
		if a.quit {
			a.log.Println("quit requested")
			return nil
		}
		a.render.RenderFrame(a.Frame())
	}
}
