// Package notebook holds the player's notebook: clues, hints and lessons
// learned, plus which tab is being looked at.
package notebook

import (
	"strings"

	"github.com/leonelquinteros/gotext"

	"darkmanor/pkg/savegame"
)

// Category is a notebook tab.
type Category int

const (
	Clues Category = iota
	Hints
	Lessons
)

// Categories lists the tabs in display order.
var Categories = []Category{Clues, Hints, Lessons}

// Title returns the tab label.
func (c Category) Title() string {
	switch c {
	case Clues:
		return gotext.Get("Clues")
	case Hints:
		return gotext.Get("Hints")
	case Lessons:
		return gotext.Get("Lessons")
	default:
		return ""
	}
}

// Placeholder is shown when the category has no entries.
func (c Category) Placeholder() string {
	switch c {
	case Clues:
		return gotext.Get("No clues yet.")
	case Hints:
		return gotext.Get("No hints yet.")
	case Lessons:
		return gotext.Get("No lessons learned yet.")
	default:
		return ""
	}
}

// Next returns the tab after c, wrapping around.
func (c Category) Next() Category {
	return Categories[(int(c)+1)%len(Categories)]
}

// Model is the in-memory notebook. Entries are only ever appended; there
// is no deduplication here, producers decide what is new.
type Model struct {
	clues   []string
	hints   []string
	lessons []string
	active  Category
	visible bool
}

// New returns an empty notebook showing the Clues tab.
func New() *Model {
	return &Model{active: Clues}
}

func (m *Model) AddClue(text string) { m.clues = append(m.clues, text) }

func (m *Model) AddHint(text string) { m.hints = append(m.hints, text) }

func (m *Model) AddLessonLearned(text string) { m.lessons = append(m.lessons, text) }

// Entries returns a copy of the entries in c.
func (m *Model) Entries(c Category) []string {
	switch c {
	case Clues:
		return clone(m.clues)
	case Hints:
		return clone(m.hints)
	case Lessons:
		return clone(m.lessons)
	default:
		return nil
	}
}

func (m *Model) Active() Category { return m.active }

// SetActive switches the displayed tab. Unknown categories are ignored.
func (m *Model) SetActive(c Category) {
	if c < Clues || c > Lessons {
		return
	}
	m.active = c
}

// CycleTab moves to the next tab.
func (m *Model) CycleTab() { m.active = m.active.Next() }

func (m *Model) Visible() bool { return m.visible }

// Toggle flips the notebook overlay and returns the new visibility.
func (m *Model) Toggle() bool {
	m.visible = !m.visible
	return m.visible
}

func (m *Model) Hide() { m.visible = false }

// Content renders the active tab, one entry per line, or the placeholder.
func (m *Model) Content() string {
	entries := m.Entries(m.active)
	if len(entries) == 0 {
		return m.active.Placeholder()
	}
	return strings.Join(entries, "\n")
}

// State captures the lists in the saved-document shape.
func (m *Model) State() savegame.Notebook {
	return savegame.Notebook{
		Clues:   cloneNonNil(m.clues),
		Hints:   cloneNonNil(m.hints),
		Lessons: cloneNonNil(m.lessons),
	}
}

// SetState replaces all three lists. Missing lists become empty.
func (m *Model) SetState(s savegame.Notebook) {
	m.clues = clone(s.Clues)
	m.hints = clone(s.Hints)
	m.lessons = clone(s.Lessons)
}

// Reset empties the notebook and returns to the Clues tab.
func (m *Model) Reset() {
	m.clues, m.hints, m.lessons = nil, nil, nil
	m.active = Clues
	m.visible = false
}

func clone(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func cloneNonNil(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
