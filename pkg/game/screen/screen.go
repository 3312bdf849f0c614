// Package screen decides which top-level screen is shown and runs the
// work tied to entering and leaving each one.
package screen

import (
	"log"

	"darkmanor/pkg/game/savesync"
)

// Screen is a top-level mode of the client.
type Screen int

const (
	Login Screen = iota
	Menu
	Playing
	Paused
)

// All lists every screen.
var All = []Screen{Login, Menu, Playing, Paused}

func (s Screen) String() string {
	switch s {
	case Login:
		return "login"
	case Menu:
		return "menu"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// inPlay reports whether s belongs to a running game session.
func (s Screen) inPlay() bool { return s == Playing || s == Paused }

// View is the visible surface of one screen.
type View interface {
	Show()
	Hide()
	Visible() bool
}

// Group is the basic View: a visibility flag.
type Group struct {
	visible bool
}

func (g *Group) Show()         { g.visible = true }
func (g *Group) Hide()         { g.visible = false }
func (g *Group) Visible() bool { return g.visible }

// Scheduler is the autosave timer.
type Scheduler interface {
	Start()
	Stop()
}

// Loader fetches the saved game.
type Loader interface {
	Load(done func(savesync.LoadStatus, error))
}

// Options configure a Machine.
type Options struct {
	// PauseStopsAutosave stops autosaving while Paused instead of letting
	// it run through the pause.
	PauseStopsAutosave bool
	// OnEnter runs after a screen has been shown.
	OnEnter func(Screen)
	Log     *log.Logger
}

// Machine is the screen state machine. It starts on Login with that view
// shown. It must only be used from the game loop.
type Machine struct {
	views    map[Screen]View
	current  Screen
	autosave Scheduler
	loader   Loader
	opts     Options
	log      *log.Logger
}

// New creates a machine over one view per screen. Missing views get a Group.
func New(views map[Screen]View, autosave Scheduler, loader Loader, opts Options) *Machine {
	m := &Machine{
		views:    make(map[Screen]View, len(All)),
		current:  Login,
		autosave: autosave,
		loader:   loader,
		opts:     opts,
		log:      opts.Log,
	}
	if m.log == nil {
		m.log = log.Default()
	}
	for _, s := range All {
		v, ok := views[s]
		if !ok || v == nil {
			v = &Group{}
		}
		m.views[s] = v
	}
	for _, s := range All {
		m.views[s].Hide()
	}
	m.views[Login].Show()
	return m
}

// Current returns the screen being shown.
func (m *Machine) Current() Screen { return m.current }

// View returns the view of s.
func (m *Machine) View(s Screen) View { return m.views[s] }

// SwitchTo hides every screen, stops work scoped to the screen being left,
// then shows target and starts the work it needs.
func (m *Machine) SwitchTo(target Screen) {
	from := m.current

	for _, s := range All {
		m.views[s].Hide()
	}

	if from.inPlay() && !target.inPlay() {
		m.autosave.Stop()
	}
	if m.opts.PauseStopsAutosave && target == Paused {
		m.autosave.Stop()
	}

	m.current = target
	m.views[target].Show()

	switch target {
	case Menu:
		m.loader.Load(func(status savesync.LoadStatus, err error) {
			if err != nil {
				m.log.Printf("menu: continuing without saved game: %v", err)
			}
		})
	case Playing:
		m.autosave.Start()
	}

	if m.opts.OnEnter != nil {
		m.opts.OnEnter(target)
	}
}
