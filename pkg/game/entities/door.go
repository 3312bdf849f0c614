// Package entities contains the interactive objects placed in the manor.
package entities

import "fmt"

// Door connects a room to the room behind it. Locked doors open once
// their puzzle is solved.
type Door struct {
	ID     int
	Room   string // Room the door is in
	Target string // Room the door leads to
	Pos    Point
	Locked bool
	Puzzle *DoorPuzzle
}

// NewDoor creates a new locked door
func NewDoor(id int, room, target string, pos Point) *Door {
	return &Door{
		ID:     id,
		Room:   room,
		Target: target,
		Pos:    pos,
		Locked: true,
	}
}

// Unlock unlocks the door
func (d *Door) Unlock() {
	d.Locked = false
}

// DoorName returns the display name for this door
func (d *Door) DoorName() string {
	return fmt.Sprintf("Door %d", d.ID)
}

// ProblemID is the id reported to the server when the door's puzzle is solved.
func (d *Door) ProblemID() string {
	return fmt.Sprintf("door-%d", d.ID)
}
