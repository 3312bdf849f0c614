// Package menu provides the selectable menus shown on the login, main and
// pause screens.
package menu

import (
	engineinput "darkmanor/pkg/engine/input"
)

// ItemID identifies what activating an item does.
type ItemID string

const (
	ItemLogin         ItemID = "login"
	ItemRegister      ItemID = "register"
	ItemGuest         ItemID = "guest"
	ItemDeleteAccount ItemID = "delete-account"
	ItemQuit          ItemID = "quit"
	ItemStartGame     ItemID = "start-game"
	ItemLogout        ItemID = "logout"
	ItemContinue      ItemID = "continue"
	ItemSaveGame      ItemID = "save-game"
	ItemControls      ItemID = "controls"
)

// Item is a single menu entry.
type Item struct {
	ID    ItemID
	Label string
	// Help is shown while the item is selected.
	Help     string
	Disabled bool
}

// Menu is a list of items with one selected. It never blocks; the caller
// feeds it actions and acts on whatever it returns.
type Menu struct {
	Title    string
	Items    []Item
	selected int
}

// New creates a menu with the first selectable item selected.
func New(title string, items ...Item) *Menu {
	m := &Menu{Title: title, Items: items}
	m.Reset()
	return m
}

// Reset selects the first selectable item.
func (m *Menu) Reset() {
	m.selected = 0
	for i, item := range m.Items {
		if !item.Disabled {
			m.selected = i
			return
		}
	}
}

// Selected returns the index of the selected item.
func (m *Menu) Selected() int { return m.selected }

// SelectedItem returns the selected item, if any.
func (m *Menu) SelectedItem() (Item, bool) {
	if m.selected < 0 || m.selected >= len(m.Items) || m.Items[m.selected].Disabled {
		return Item{}, false
	}
	return m.Items[m.selected], true
}

// Up moves the selection to the previous selectable item, wrapping around.
func (m *Menu) Up() { m.step(-1) }

// Down moves the selection to the next selectable item, wrapping around.
func (m *Menu) Down() { m.step(1) }

func (m *Menu) step(dir int) {
	n := len(m.Items)
	if n == 0 {
		return
	}
	for i := 1; i <= n; i++ {
		next := ((m.selected+dir*i)%n + n) % n
		if !m.Items[next].Disabled {
			m.selected = next
			return
		}
	}
}

// Select moves the selection to the item with the given id.
func (m *Menu) Select(id ItemID) bool {
	for i, item := range m.Items {
		if item.ID == id && !item.Disabled {
			m.selected = i
			return true
		}
	}
	return false
}

// SetDisabled enables or disables the item with the given id. Disabling
// the selected item moves the selection on.
func (m *Menu) SetDisabled(id ItemID, disabled bool) {
	for i := range m.Items {
		if m.Items[i].ID == id {
			m.Items[i].Disabled = disabled
		}
	}
	if _, ok := m.SelectedItem(); !ok {
		m.Down()
	}
}

// Handle applies a navigation action. It returns the activated item when
// the action confirms the selection.
func (m *Menu) Handle(action engineinput.Action) (Item, bool) {
	switch action {
	case engineinput.ActionMoveNorth:
		m.Up()
	case engineinput.ActionMoveSouth:
		m.Down()
	case engineinput.ActionAction, engineinput.ActionInteract:
		return m.SelectedItem()
	}
	return Item{}, false
}
