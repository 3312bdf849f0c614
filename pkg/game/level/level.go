// Package level loads the manor layout: rooms, doors with their puzzles,
// hint blocks and residents.
package level

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"darkmanor/pkg/game/entities"
)

//go:embed manor.yaml
var defaultLayout []byte

// Layout is the on-disk description of a level.
type Layout struct {
	Name  string     `yaml:"name"`
	Start StartSpec  `yaml:"start"`
	Rooms []RoomSpec `yaml:"rooms"`
	Doors []DoorSpec `yaml:"doors"`
	Hints []HintSpec `yaml:"hints"`
	NPCs  []NPCSpec  `yaml:"npcs"`
}

type StartSpec struct {
	Room string  `yaml:"room"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
}

type RoomSpec struct {
	Name string  `yaml:"name"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
	W    float64 `yaml:"w"`
	H    float64 `yaml:"h"`
}

type PuzzleSpec struct {
	Question string   `yaml:"question"`
	Answers  []string `yaml:"answers"`
	Lesson   string   `yaml:"lesson"`
}

type DoorSpec struct {
	ID     int        `yaml:"id"`
	Room   string     `yaml:"room"`
	Target string     `yaml:"target"`
	X      float64    `yaml:"x"`
	Y      float64    `yaml:"y"`
	Puzzle PuzzleSpec `yaml:"puzzle"`
}

type HintSpec struct {
	ID   string  `yaml:"id"`
	Room string  `yaml:"room"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
	Text string  `yaml:"text"`
}

type NPCSpec struct {
	ID    string   `yaml:"id"`
	Name  string   `yaml:"name"`
	Room  string   `yaml:"room"`
	X     float64  `yaml:"x"`
	Y     float64  `yaml:"y"`
	Lines []string `yaml:"lines"`
	Clue  string   `yaml:"clue"`
}

// Room is an axis-aligned rectangle of floor.
type Room struct {
	Name       string
	X, Y, W, H float64
}

// Contains reports whether p lies on the room's floor.
func (r Room) Contains(p entities.Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Level is a built layout with live entities.
type Level struct {
	Name      string
	StartRoom string
	Start     entities.Point
	Rooms     []Room
	Doors     []*entities.Door
	Hints     []*entities.HintBlock
	NPCs      []*entities.NPC
}

// Parse decodes a layout from YAML.
func Parse(r io.Reader) (*Layout, error) {
	var l Layout
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&l); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// LoadFile parses the layout at path.
func LoadFile(path string) (*Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Default returns the built-in manor layout.
func Default() *Layout {
	l, err := Parse(bytes.NewReader(defaultLayout))
	if err != nil {
		panic(fmt.Sprintf("embedded layout: %v", err))
	}
	return l
}

// Validate checks references between rooms, doors and objects, and that
// every room can be reached from the start.
func (l *Layout) Validate() error {
	if len(l.Rooms) == 0 {
		return errors.New("layout has no rooms")
	}
	rooms := make(map[string]RoomSpec, len(l.Rooms))
	for _, r := range l.Rooms {
		if r.Name == "" {
			return errors.New("room without a name")
		}
		if r.W <= 0 || r.H <= 0 {
			return fmt.Errorf("room %q has no area", r.Name)
		}
		if _, dup := rooms[r.Name]; dup {
			return fmt.Errorf("duplicate room %q", r.Name)
		}
		rooms[r.Name] = r
	}
	start, ok := rooms[l.Start.Room]
	if !ok {
		return fmt.Errorf("start room %q does not exist", l.Start.Room)
	}
	sr := Room{Name: start.Name, X: start.X, Y: start.Y, W: start.W, H: start.H}
	if !sr.Contains(entities.Point{X: l.Start.X, Y: l.Start.Y}) {
		return fmt.Errorf("start position (%v,%v) is outside %q", l.Start.X, l.Start.Y, l.Start.Room)
	}
	ids := make(map[int]bool, len(l.Doors))
	for _, d := range l.Doors {
		if ids[d.ID] {
			return fmt.Errorf("duplicate door id %d", d.ID)
		}
		ids[d.ID] = true
		if _, ok := rooms[d.Room]; !ok {
			return fmt.Errorf("door %d: unknown room %q", d.ID, d.Room)
		}
		if _, ok := rooms[d.Target]; !ok {
			return fmt.Errorf("door %d: unknown target %q", d.ID, d.Target)
		}
		if len(d.Puzzle.Answers) == 0 {
			return fmt.Errorf("door %d: puzzle has no answers", d.ID)
		}
	}
	for _, h := range l.Hints {
		if _, ok := rooms[h.Room]; !ok {
			return fmt.Errorf("hint %q: unknown room %q", h.ID, h.Room)
		}
	}
	for _, n := range l.NPCs {
		if _, ok := rooms[n.Room]; !ok {
			return fmt.Errorf("npc %q: unknown room %q", n.ID, n.Room)
		}
	}
	return l.checkReachable(rooms)
}

// Build creates fresh entities for the layout. Every call returns doors
// that are locked and hints that are unread.
func (l *Layout) Build() *Level {
	lv := &Level{
		Name:      l.Name,
		StartRoom: l.Start.Room,
		Start:     entities.Point{X: l.Start.X, Y: l.Start.Y},
	}
	for _, r := range l.Rooms {
		lv.Rooms = append(lv.Rooms, Room{Name: r.Name, X: r.X, Y: r.Y, W: r.W, H: r.H})
	}
	for _, d := range l.Doors {
		door := entities.NewDoor(d.ID, d.Room, d.Target, entities.Point{X: d.X, Y: d.Y})
		door.Puzzle = &entities.DoorPuzzle{
			Question:       d.Puzzle.Question,
			CorrectAnswers: append([]string(nil), d.Puzzle.Answers...),
			Lesson:         d.Puzzle.Lesson,
		}
		lv.Doors = append(lv.Doors, door)
	}
	for _, h := range l.Hints {
		lv.Hints = append(lv.Hints, entities.NewHintBlock(h.ID, entities.Point{X: h.X, Y: h.Y}, h.Text))
	}
	for _, n := range l.NPCs {
		lv.NPCs = append(lv.NPCs, &entities.NPC{
			ID:    n.ID,
			Name:  n.Name,
			Pos:   entities.Point{X: n.X, Y: n.Y},
			Lines: append([]string(nil), n.Lines...),
			Clue:  n.Clue,
		})
	}
	return lv
}

// RoomAt returns the room containing p.
func (lv *Level) RoomAt(p entities.Point) (Room, bool) {
	for _, r := range lv.Rooms {
		if r.Contains(p) {
			return r, true
		}
	}
	return Room{}, false
}

// Door returns the door with the given id.
func (lv *Level) Door(id int) *entities.Door {
	for _, d := range lv.Doors {
		if d.ID == id {
			return d
		}
	}
	return nil
}
