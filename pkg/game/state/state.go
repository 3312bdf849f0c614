package state

import (
	"github.com/zyedidia/generic/mapset"

	"darkmanor/pkg/game/entities"
	"darkmanor/pkg/game/level"
	"darkmanor/pkg/game/notebook"
	"darkmanor/pkg/savegame"
)

// Game represents the in-memory game state for The Dark Manor.
// It is only touched from the game loop goroutine.
type Game struct {
	Layout *level.Layout
	Level  *level.Level

	Player entities.Point
	Room   string

	Notebook *notebook.Model

	Messages []string

	Revealed    mapset.Set[string]
	SolvedDoors mapset.Set[int]

	// Dialog is the text box currently open, anchored where it was opened.
	Dialog       string
	DialogAnchor entities.Point

	// PendingDoor is the door waiting for an answer, 0 when none.
	PendingDoor int

	ready bool
}

// NewGame creates a new game instance on the given layout
func NewGame(layout *level.Layout) *Game {
	g := &Game{Layout: layout, Notebook: notebook.New()}
	g.Reset()
	return g
}

// Reset rebuilds the level and forgets all progress.
func (g *Game) Reset() {
	g.Level = g.Layout.Build()
	g.Player = g.Level.Start
	g.Room = g.Level.StartRoom
	g.Notebook.Reset()
	g.Messages = make([]string, 0)
	g.Revealed = mapset.New[string]()
	g.Revealed.Put(g.Level.StartRoom)
	g.SolvedDoors = mapset.New[int]()
	g.Dialog = ""
	g.PendingDoor = 0
	g.ready = false
}

// Begin marks gameplay as running; saves are refused before this.
func (g *Game) Begin() { g.ready = true }

// Ready reports whether position and notebook are valid sources for a save.
func (g *Game) Ready() bool { return g.ready }

// AddMessage adds a message to the game's message log
func (g *Game) AddMessage(msg string) {
	const maxMessages = 5
	g.Messages = append(g.Messages, msg)

	// Keep only the last maxMessages
	if len(g.Messages) > maxMessages {
		g.Messages = g.Messages[len(g.Messages)-maxMessages:]
	}
}

// ClearMessages clears all messages
func (g *Game) ClearMessages() {
	g.Messages = make([]string, 0)
}

// OpenDialog shows text anchored at the player's current position.
func (g *Game) OpenDialog(text string) {
	g.Dialog = text
	g.DialogAnchor = g.Player
}

func (g *Game) CloseDialog() { g.Dialog = "" }

// Location is the player's position in save-document form.
func (g *Game) Location() savegame.Location {
	room := g.Room
	if room == "" {
		room = savegame.DefaultRoom
	}
	return savegame.Location{Room: room, X: g.Player.X, Y: g.Player.Y}
}

// ApplyLocation moves the player to a saved position. A position that is
// on no room's floor puts the player back at the start. The rooms between
// the start and the saved room are revealed so the player can walk back.
func (g *Game) ApplyLocation(loc savegame.Location) {
	p := entities.Point{X: loc.X, Y: loc.Y}
	r, ok := g.Level.RoomAt(p)
	if !ok {
		p, r = g.Level.Start, level.Room{Name: g.Level.StartRoom}
	}
	g.Player = p
	g.Room = r.Name
	for _, name := range g.Layout.Route(g.Room) {
		g.Revealed.Put(name)
	}
	g.Revealed.Put(g.Room)
}

// Document builds the complete save document from the current state.
func (g *Game) Document() savegame.Document {
	d := savegame.New()
	d.Location = g.Location()
	d.Notebook = g.Notebook.State()
	return d
}

// Apply replaces position and notebook with a loaded document. Hint
// blocks and residents whose text is already in the notebook do not
// report it again.
func (g *Game) Apply(d savegame.Document) {
	g.ApplyLocation(d.Location)
	g.Notebook.SetState(d.Notebook)

	hints := setOf(d.Notebook.Hints)
	for _, h := range g.Level.Hints {
		if hints.Has(h.Text) {
			h.MarkSaved()
		}
	}
	clues := setOf(d.Notebook.Clues)
	for _, n := range g.Level.NPCs {
		if n.Clue != "" && clues.Has(n.Clue) {
			n.MarkClueGiven()
		}
	}
}

func setOf(items []string) mapset.Set[string] {
	set := mapset.New[string]()
	for _, it := range items {
		set.Put(it)
	}
	return set
}
