package notebook

import (
	"reflect"
	"testing"

	"darkmanor/pkg/savegame"
)

func TestModel_AppendsWithoutDedup(t *testing.T) {
	m := New()
	m.AddHint("Try multiplying first")
	m.AddHint("Try multiplying first")
	m.AddClue("The butler was in the library")
	m.AddLessonLearned("Order of operations")

	if got := m.Entries(Hints); len(got) != 2 {
		t.Errorf("hints = %v, want two entries", got)
	}
	if got := m.Entries(Clues); len(got) != 1 {
		t.Errorf("clues = %v, want one entry", got)
	}
	if got := m.Entries(Lessons); len(got) != 1 {
		t.Errorf("lessons = %v, want one entry", got)
	}
}

func TestModel_ContentPlaceholders(t *testing.T) {
	m := New()
	tests := []struct {
		tab  Category
		want string
	}{
		{Clues, "No clues yet."},
		{Hints, "No hints yet."},
		{Lessons, "No lessons learned yet."},
	}
	for _, tt := range tests {
		m.SetActive(tt.tab)
		if got := m.Content(); got != tt.want {
			t.Errorf("Content() on %s = %q, want %q", tt.tab.Title(), got, tt.want)
		}
	}
}

func TestModel_ContentJoinsInInsertionOrder(t *testing.T) {
	m := New()
	m.AddHint("first")
	m.AddHint("second")
	m.SetActive(Hints)
	if got, want := m.Content(), "first\nsecond"; got != want {
		t.Errorf("Content() = %q, want %q", got, want)
	}
}

func TestModel_StateRoundTrip(t *testing.T) {
	m := New()
	m.AddClue("c1")
	m.AddHint("h1")
	m.AddHint("h2")
	m.AddLessonLearned("l1")

	before := m.State()
	m.SetState(m.State())
	if after := m.State(); !reflect.DeepEqual(before, after) {
		t.Errorf("State after round trip = %+v, want %+v", after, before)
	}
}

func TestModel_SetStateReplaces(t *testing.T) {
	m := New()
	m.AddHint("old")
	m.SetState(savegame.Notebook{Clues: []string{"new clue"}})

	s := m.State()
	if len(s.Hints) != 0 {
		t.Errorf("Hints = %v, want empty", s.Hints)
	}
	if !reflect.DeepEqual(s.Clues, []string{"new clue"}) {
		t.Errorf("Clues = %v, want [new clue]", s.Clues)
	}
	if s.Lessons == nil {
		t.Error("State().Lessons = nil, want empty slice")
	}
}

func TestModel_StateIsACopy(t *testing.T) {
	m := New()
	m.AddHint("h1")
	s := m.State()
	s.Hints[0] = "changed"
	if got := m.Entries(Hints)[0]; got != "h1" {
		t.Errorf("model mutated through State(): %q", got)
	}
}

func TestModel_CycleTabWraps(t *testing.T) {
	m := New()
	m.CycleTab()
	m.CycleTab()
	if m.Active() != Lessons {
		t.Fatalf("Active() = %v, want Lessons", m.Active())
	}
	m.CycleTab()
	if m.Active() != Clues {
		t.Errorf("Active() = %v, want Clues", m.Active())
	}
	m.SetActive(Category(9))
	if m.Active() != Clues {
		t.Errorf("SetActive(9) changed tab to %v", m.Active())
	}
}
