package app

import (
	"github.com/leonelquinteros/gotext"

	"darkmanor/pkg/game/entities"
	"darkmanor/pkg/game/menu"
	"darkmanor/pkg/game/notebook"
	"darkmanor/pkg/game/renderer"
	"darkmanor/pkg/game/screen"
	"darkmanor/pkg/game/state"
)

// Frame snapshots what the current screen shows.
func (a *App) Frame() renderer.Frame {
	cur := a.screens.Current()
	g := a.ctx.Game

	f := renderer.Frame{
		Screen:   cur,
		Status:   statusLine(a.ctx.Session),
		Messages: append([]string(nil), g.Messages...),
	}
	if a.overlay != nil {
		f.Overlay = append([]string(nil), a.overlay...)
	}
	if m, ok := a.menus[cur]; ok {
		f.Menu = menuView(m)
	}

	if cur == screen.Playing || cur == screen.Paused {
		f.Map = mapView(g)
		f.Dialog = g.Dialog
		if g.Notebook.Visible() {
			f.Notebook = notebookView(g.Notebook)
		}
	}
	if cur == screen.Playing {
		f.Hint = a.play.InteractionHint()
	}
	return f
}

func statusLine(s *state.Session) string {
	switch s.Mode() {
	case state.ModeAuthenticated:
		return gotext.Get("Logged in as %s", s.UserID())
	case state.ModeGuest:
		return gotext.Get("Playing as guest")
	default:
		return gotext.Get("Not logged in")
	}
}

func menuView(m *menu.Menu) *renderer.MenuView {
	v := &renderer.MenuView{Title: m.Title, Selected: m.Selected()}
	for _, item := range m.Items {
		v.Items = append(v.Items, renderer.MenuItemView{Label: item.Label, Disabled: item.Disabled})
	}
	if item, ok := m.SelectedItem(); ok {
		v.Help = item.Help
	}
	return v
}

func notebookView(nb *notebook.Model) *renderer.NotebookView {
	v := &renderer.NotebookView{Content: nb.Content()}
	for i, c := range notebook.Categories {
		v.Tabs = append(v.Tabs, c.Title())
		if c == nb.Active() {
			v.Active = i
		}
	}
	return v
}

// mapView lays out the manor. Objects are only listed for revealed rooms;
// doors are listed when either side is revealed.
func mapView(g *state.Game) *renderer.MapView {
	lv := g.Level
	v := &renderer.MapView{
		Level:   lv.Name,
		Room:    g.Room,
		PlayerX: g.Player.X,
		PlayerY: g.Player.Y,
	}

	for _, r := range lv.Rooms {
		v.Rooms = append(v.Rooms, renderer.RoomView{
			Name:     r.Name,
			X:        r.X,
			Y:        r.Y,
			W:        r.W,
			H:        r.H,
			Revealed: g.Revealed.Has(r.Name),
			Current:  r.Name == g.Room,
		})
		v.Width = max(v.Width, r.X+r.W)
		v.Height = max(v.Height, r.Y+r.H)
	}

	for _, d := range lv.Doors {
		if !g.Revealed.Has(d.Room) && !g.Revealed.Has(d.Target) {
			continue
		}
		v.Doors = append(v.Doors, renderer.DoorView{Name: d.DoorName(), X: d.Pos.X, Y: d.Pos.Y, Locked: d.Locked})
	}

	revealedAt := func(p entities.Point) bool {
		r, ok := lv.RoomAt(p)
		return ok && g.Revealed.Has(r.Name)
	}
	for _, h := range lv.Hints {
		if revealedAt(h.Pos) {
			v.Objects = append(v.Objects, renderer.ObjectView{Kind: renderer.ObjectHint, Label: "?", X: h.Pos.X, Y: h.Pos.Y, Done: h.IsSaved()})
		}
	}
	for _, n := range lv.NPCs {
		if revealedAt(n.Pos) {
			v.Objects = append(v.Objects, renderer.ObjectView{Kind: renderer.ObjectNPC, Label: n.Name, X: n.Pos.X, Y: n.Pos.Y})
		}
	}
	return v
}
