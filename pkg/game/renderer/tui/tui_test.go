package tui

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gookit/color"

	"darkmanor/pkg/engine/input"
	"darkmanor/pkg/engine/terminal"
	"darkmanor/pkg/game/renderer"
	"darkmanor/pkg/game/screen"
)

func fixedSize() terminal.Size { return terminal.Size{Width: 80, Height: 24} }

// newPipedRenderer returns a renderer reading what the test writes to w.
func newPipedRenderer(t *testing.T) (*TUIRenderer, *os.File) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		r.Close()
		w.Close()
	})
	tr := NewWith(input.NewTerminalFrom(r, io.Discard), io.Discard, fixedSize)
	tr.Init()
	return tr, w
}

func nextIntent(t *testing.T, tr *TUIRenderer) input.Intent {
	t.Helper()
	select {
	case in := <-tr.Intents():
		return in
	case <-time.After(2 * time.Second):
		t.Fatal("no intent")
		return input.Intent{}
	}
}

func TestRun_MapsKeysToIntents(t *testing.T) {
	tr, w := newPipedRenderer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tr.Run(ctx)

	io.WriteString(w, "w\nzzz\nq\n")

	if got := nextIntent(t, tr); got.Action != input.ActionMoveNorth {
		t.Errorf("first intent = %v, want move north", got.Action)
	}
	if got := nextIntent(t, tr); got.Action != input.ActionQuit {
		t.Errorf("second intent = %v, want quit", got.Action)
	}
}

func TestRun_PromptCollectsFields(t *testing.T) {
	tr, w := newPipedRenderer(t)
	tr.Prompt(renderer.Credentials("Login"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tr.Run(ctx)

	io.WriteString(w, "alice\nhunter2\n")

	got := nextIntent(t, tr)
	if got.Action != input.ActionSubmit {
		t.Fatalf("intent = %v, want submit", got.Action)
	}
	if len(got.Values) != 2 || got.Values[0] != "alice" || got.Values[1] != "hunter2" {
		t.Errorf("values = %q", got.Values)
	}
	if tr.currentPrompt().Active() {
		t.Error("prompt still active after answer")
	}
}

func TestRun_EndOfInputQuits(t *testing.T) {
	tr, w := newPipedRenderer(t)
	w.Close()
	if err := tr.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := nextIntent(t, tr); got.Action != input.ActionQuit {
		t.Errorf("intent = %v, want quit", got.Action)
	}
}

func TestWriteFrame_Playing(t *testing.T) {
	tr, _ := newPipedRenderer(t)
	f := renderer.Frame{
		Screen: screen.Playing,
		Status: "Guest",
		Map: &renderer.MapView{
			Room:    "Start",
			PlayerX: 40, PlayerY: 40,
			Width: 200, Height: 100,
			Rooms: []renderer.RoomView{{Name: "Start", W: 100, H: 100, Revealed: true, Current: true}},
			Doors: []renderer.DoorView{{Name: "Door 1", X: 95, Y: 30, Locked: true}},
		},
		Dialog:   "What is 3 x 4?",
		Messages: []string{"Hint added to your notebook."},
	}
	var b strings.Builder
	tr.writeFrame(&b, f)
	out := color.ClearCode(b.String())

	for _, want := range []string{"Start", PlayerIcon, IconDoorLocked, "What is 3 x 4?", "Hint added", "> "} {
		if !strings.Contains(out, want) {
			t.Errorf("frame missing %q:\n%s", want, out)
		}
	}
}

func TestWriteFrame_MenuMarksSelection(t *testing.T) {
	tr, _ := newPipedRenderer(t)
	f := renderer.Frame{
		Screen: screen.Menu,
		Menu: &renderer.MenuView{
			Title:    "Main Menu",
			Items:    []renderer.MenuItemView{{Label: "Start Game"}, {Label: "Logout"}},
			Selected: 1,
		},
	}
	var b strings.Builder
	tr.writeFrame(&b, f)
	out := color.ClearCode(b.String())
	if !strings.Contains(out, "> Logout") || !strings.Contains(out, "  Start Game") {
		t.Errorf("menu not marked:\n%s", out)
	}
}

func TestGrid_HiddenRoomsStayBlank(t *testing.T) {
	m := &renderer.MapView{
		Width: 40, Height: 20,
		PlayerX: 5, PlayerY: 5,
		Rooms: []renderer.RoomView{
			{Name: "A", W: 20, H: 20, Revealed: true},
			{Name: "B", X: 20, W: 20, H: 20},
		},
	}
	g := grid(m)
	if len(g) != 1 || len(g[0]) != 4 {
		t.Fatalf("grid = %dx%d", len(g), len(g[0]))
	}
	if g[0][0].text != PlayerIcon || g[0][1].text != IconFloor {
		t.Errorf("revealed row = %q %q", g[0][0].text, g[0][1].text)
	}
	if g[0][2].text != IconUnknown || g[0][3].text != IconUnknown {
		t.Error("hidden room drawn")
	}
}
