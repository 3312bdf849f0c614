package renderer

import "darkmanor/pkg/game/screen"

// Frame is a snapshot of everything on screen. It is built on the game
// loop and handed to the backend, which must not modify it.
type Frame struct {
	Screen screen.Screen
	Status string

	Menu *MenuView

	// Map is set on the Playing and Paused screens.
	Map *MapView

	Dialog   string
	Hint     string
	Notebook *NotebookView
	Overlay  []string
	Messages []string
}

// MenuView is a menu as drawn.
type MenuView struct {
	Title    string
	Items    []MenuItemView
	Selected int
	Help     string
}

// MenuItemView is one menu line.
type MenuItemView struct {
	Label    string
	Disabled bool
}

// MapView is the manor around the player, in manor units.
type MapView struct {
	Level   string
	Room    string
	PlayerX float64
	PlayerY float64
	Rooms   []RoomView
	Doors   []DoorView
	Objects []ObjectView
	// Width and Height bound every room.
	Width, Height float64
}

// RoomView is a room rectangle.
type RoomView struct {
	Name       string
	X, Y, W, H float64
	Revealed   bool
	Current    bool
}

// DoorView is a door marker.
type DoorView struct {
	Name   string
	X, Y   float64
	Locked bool
}

// ObjectKind is what an ObjectView marks.
type ObjectKind int

const (
	ObjectHint ObjectKind = iota
	ObjectNPC
)

// ObjectView is a hint block or NPC in a revealed room.
type ObjectView struct {
	Kind  ObjectKind
	Label string
	X, Y  float64
	Done  bool
}

// NotebookView is the open notebook.
type NotebookView struct {
	Tabs    []string
	Active  int
	Content string
}
