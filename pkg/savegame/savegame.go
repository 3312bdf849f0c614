// Package savegame defines the persisted game document shared by the client
// and the persistence server.
package savegame

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// DefaultRoom is the room a fresh save starts in.
const DefaultRoom = "Start"

// Location is the player's position in the manor.
type Location struct {
	Room string  `json:"room"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Notebook holds the three ordered, append-only notebook lists.
type Notebook struct {
	Clues   []string `json:"clues"`
	Hints   []string `json:"hints"`
	Lessons []string `json:"lessons"`
}

// NPC is the saved state of a single non-player character.
type NPC struct {
	ID    string `json:"id"`
	State string `json:"state"`
}

// Document is the complete saved game for one account.
type Document struct {
	Location Location       `json:"location"`
	Notebook Notebook       `json:"notebook"`
	Access   map[string]any `json:"access"`
	NPC      []NPC          `json:"npc"`
	Rev      int64          `json:"rev,omitempty"`
}

// New returns a document with the default starting values.
func New() Document {
	return Document{
		Location: Location{Room: DefaultRoom},
		Notebook: Notebook{Clues: []string{}, Hints: []string{}, Lessons: []string{}},
		Access:   map[string]any{},
		NPC:      []NPC{},
	}
}

// Normalize replaces nil collections with empty ones so the document always
// encodes with arrays and objects rather than nulls.
func (d *Document) Normalize() {
	if d.Location.Room == "" {
		d.Location.Room = DefaultRoom
	}
	if d.Notebook.Clues == nil {
		d.Notebook.Clues = []string{}
	}
	if d.Notebook.Hints == nil {
		d.Notebook.Hints = []string{}
	}
	if d.Notebook.Lessons == nil {
		d.Notebook.Lessons = []string{}
	}
	if d.Access == nil {
		d.Access = map[string]any{}
	}
	if d.NPC == nil {
		d.NPC = []NPC{}
	}
}

// UpdateType names a partial update sent through the update channel.
type UpdateType string

const (
	UpdateProblem  UpdateType = "problem"
	UpdateMinigame UpdateType = "minigame"
	UpdateLocation UpdateType = "location"
	UpdateNotebook UpdateType = "notebook"
	UpdateAccess   UpdateType = "access"
	UpdateNPC      UpdateType = "npc"
)

// Valid reports whether t is one of the known update types.
func (t UpdateType) Valid() bool {
	switch t {
	case UpdateProblem, UpdateMinigame, UpdateLocation, UpdateNotebook, UpdateAccess, UpdateNPC:
		return true
	}
	return false
}

// UpdateEvent is a typed partial update. Msg carries the payload for
// location ({room,x,y}) and the free-form detail for everything else.
type UpdateEvent struct {
	Type UpdateType      `json:"type"`
	Msg  json.RawMessage `json:"msg,omitempty"`
	ID   string          `json:"id,omitempty"`
}

//go:embed save.schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiled() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource("save.schema.json", bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile("save.schema.json")
	})
	return schema, schemaErr
}

// Validate checks a raw JSON document against the save schema.
func Validate(raw []byte) error {
	s, err := compiled()
	if err != nil {
		return fmt.Errorf("compile save schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("decode save: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("invalid save: %w", err)
	}
	return nil
}

// Decode validates raw and decodes it into a normalized Document.
func Decode(raw []byte) (Document, error) {
	if err := Validate(raw); err != nil {
		return Document{}, err
	}
	var d Document
	if err := json.Unmarshal(raw, &d); err != nil {
		return Document{}, fmt.Errorf("decode save: %w", err)
	}
	d.Normalize()
	return d, nil
}
