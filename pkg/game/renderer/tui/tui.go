// Package tui is the terminal renderer.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/gookit/color"
	"github.com/leonelquinteros/gotext"

	"darkmanor/pkg/engine/input"
	"darkmanor/pkg/engine/terminal"
	"darkmanor/pkg/game/renderer"
)

// Map icons
const (
	PlayerIcon       = "@"
	IconFloor        = "·"
	IconCurrentFloor = "•"
	IconUnknown      = " "
	IconDoorLocked   = "▣"
	IconDoorUnlocked = "□"
	IconHintUnread   = "?"
	IconHintRead     = "○"
	IconNPC          = "&"
)

const messagesPaneHeight = 5

// Manor units per character cell. Characters are about twice as tall as
// they are wide.
const (
	cellWidth  = 10.0
	cellHeight = 20.0
)

// TUIRenderer is the terminal-based renderer implementation
type TUIRenderer struct {
	term    *input.Terminal
	out     io.Writer
	size    func() terminal.Size
	intents chan input.Intent

	mu     sync.Mutex
	prompt renderer.Prompt

	styles map[renderer.TextStyle]color.Style
}

// New creates a TUI renderer on stdin and stdout.
func New() *TUIRenderer {
	return NewWith(input.NewTerminal(), os.Stdout, terminal.Current)
}

// NewWith creates a TUI renderer on the given terminal and output.
func NewWith(term *input.Terminal, out io.Writer, size func() terminal.Size) *TUIRenderer {
	return &TUIRenderer{
		term:    term,
		out:     out,
		size:    size,
		intents: make(chan input.Intent, 16),
	}
}

// Init initializes the TUI renderer colours
func (t *TUIRenderer) Init() {
	t.styles = map[renderer.TextStyle]color.Style{
		renderer.StyleRoom:        {color.FgBlue},
		renderer.StyleAction:      {color.FgMagenta},
		renderer.StyleActionShort: {color.FgMagenta, color.OpBold},
		renderer.StyleDenied:      {color.FgRed, color.OpBold},
		renderer.StyleItem:        {color.FgMagenta},
		renderer.StyleDoor:        {color.FgYellow, color.OpBold},
		renderer.StyleSubtle:      {color.FgGray, color.OpBold},
		renderer.StylePlayer:      {color.FgGreen, color.BgBlack, color.OpBold},
		renderer.StyleHint:        {color.FgCyan},
		renderer.StyleNPC:         {color.FgGreen},
	}
}

// Intents returns the channel player input is delivered on.
func (t *TUIRenderer) Intents() <-chan input.Intent { return t.intents }

// Prompt switches the next line of input to text entry.
func (t *TUIRenderer) Prompt(p renderer.Prompt) {
	t.mu.Lock()
	t.prompt = p
	t.mu.Unlock()
}

func (t *TUIRenderer) takePrompt() (renderer.Prompt, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := t.prompt
	t.prompt = renderer.Prompt{}
	return p, p.Active()
}

func (t *TUIRenderer) currentPrompt() renderer.Prompt {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.prompt
}

// ShowMessage displays a message to the user
func (t *TUIRenderer) ShowMessage(msg string) {
	fmt.Fprintln(t.out, t.format(msg))
}

// Run reads keys until the input ends, the player interrupts or ctx ends.
func (t *TUIRenderer) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		key, err := t.term.ReadKey()
		if err != nil {
			renderer.Send(ctx, t.intents, input.Intent{Action: input.ActionQuit})
			if errors.Is(err, input.ErrInterrupted) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if p, ok := t.takePrompt(); ok {
			if strings.HasPrefix(key, "arrow_") {
				t.Prompt(p)
				continue
			}
			renderer.Send(ctx, t.intents, t.answer(p, key))
			continue
		}

		intent := input.MapToIntent(input.NewDebouncedInput(input.RawInput{
			Device: input.DeviceTerminal,
			Code:   key,
		}))
		if intent.Action != input.ActionNone {
			renderer.Send(ctx, t.intents, intent)
		}
	}
	return nil
}

// answer collects the remaining fields of p. first is the line already
// typed for the first field.
func (t *TUIRenderer) answer(p renderer.Prompt, first string) input.Intent {
	if first == "escape" {
		return input.Intent{Action: input.ActionCancelEntry}
	}
	values := make([]string, len(p.Fields))
	if first != "enter" {
		values[0] = first
	}
	for i := 1; i < len(p.Fields); i++ {
		fmt.Fprintf(t.out, "%s: ", p.Fields[i].Label)
		var (
			s   string
			err error
		)
		if p.Fields[i].Secret {
			s, err = t.term.ReadSecret()
		} else {
			s, err = t.term.ReadLine()
		}
		if err != nil {
			return input.Intent{Action: input.ActionCancelEntry}
		}
		values[i] = s
	}
	return input.Intent{Action: input.ActionSubmit, Values: values}
}

// RenderFrame clears the screen and draws f.
func (t *TUIRenderer) RenderFrame(f renderer.Frame) {
	var b strings.Builder
	b.WriteString("\033[H\033[2J")
	t.writeFrame(&b, f)
	io.WriteString(t.out, b.String())
}

func (t *TUIRenderer) writeFrame(b *strings.Builder, f renderer.Frame) {
	width := t.size().Width

	if f.Status != "" {
		b.WriteString(t.style(f.Status, renderer.StyleSubtle))
		b.WriteString("\n\n")
	}

	if f.Map != nil {
		t.writeMap(b, f.Map, width)
	}
	if f.Menu != nil {
		t.writeMenu(b, f.Menu)
	}
	if f.Hint != "" {
		b.WriteString(t.format(f.Hint))
		b.WriteString("\n")
	}
	if f.Dialog != "" {
		t.writeBox(b, f.Dialog, width)
	}
	if f.Notebook != nil {
		t.writeNotebook(b, f.Notebook, width)
	}
	for _, line := range f.Overlay {
		b.WriteString("  " + t.format(line) + "\n")
	}

	t.writeMessages(b, f.Messages, width)

	if p := t.currentPrompt(); p.Active() {
		if p.Title != "" {
			b.WriteString(t.format(p.Title) + "\n")
		}
		fmt.Fprintf(b, "%s: ", p.Fields[0].Label)
		return
	}
	b.WriteString("\n> ")
}

func (t *TUIRenderer) writeMenu(b *strings.Builder, m *renderer.MenuView) {
	fmt.Fprintf(b, "=== %s ===\n\n", m.Title)
	for i, item := range m.Items {
		prefix := "  "
		if i == m.Selected {
			prefix = "> "
		}
		label := item.Label
		if item.Disabled {
			label = t.style(label, renderer.StyleSubtle)
		} else if i == m.Selected {
			label = t.style(label, renderer.StyleActionShort)
		}
		b.WriteString(prefix + label + "\n")
	}
	if m.Help != "" {
		b.WriteString("\n" + t.style(m.Help, renderer.StyleSubtle) + "\n")
	}
	b.WriteString("\n" + t.style(gotext.Get("Use up/down to select, Enter to activate"), renderer.StyleSubtle) + "\n")
}

type glyph struct {
	text  string
	style renderer.TextStyle
}

// grid rasterises the map into character cells.
func grid(m *renderer.MapView) [][]glyph {
	cols := int(math.Ceil(m.Width / cellWidth))
	rows := int(math.Ceil(m.Height / cellHeight))
	g := make([][]glyph, rows)
	for r := range g {
		g[r] = make([]glyph, cols)
		for c := range g[r] {
			g[r][c] = glyph{IconUnknown, renderer.StyleNormal}
		}
	}
	put := func(x, y float64, gl glyph) {
		c, r := int(x/cellWidth), int(y/cellHeight)
		if r >= 0 && r < rows && c >= 0 && c < cols {
			g[r][c] = gl
		}
	}

	for _, room := range m.Rooms {
		if !room.Revealed {
			continue
		}
		floor := glyph{IconFloor, renderer.StyleSubtle}
		if room.Current {
			floor = glyph{IconCurrentFloor, renderer.StyleRoom}
		}
		for y := room.Y; y < room.Y+room.H; y += cellHeight {
			for x := room.X; x < room.X+room.W; x += cellWidth {
				put(x, y, floor)
			}
		}
	}
	for _, o := range m.Objects {
		switch o.Kind {
		case renderer.ObjectHint:
			if o.Done {
				put(o.X, o.Y, glyph{IconHintRead, renderer.StyleSubtle})
			} else {
				put(o.X, o.Y, glyph{IconHintUnread, renderer.StyleHint})
			}
		case renderer.ObjectNPC:
			put(o.X, o.Y, glyph{IconNPC, renderer.StyleNPC})
		}
	}
	for _, d := range m.Doors {
		if d.Locked {
			put(d.X, d.Y, glyph{IconDoorLocked, renderer.StyleDoor})
		} else {
			put(d.X, d.Y, glyph{IconDoorUnlocked, renderer.StyleItem})
		}
	}
	put(m.PlayerX, m.PlayerY, glyph{PlayerIcon, renderer.StylePlayer})
	return g
}

func (t *TUIRenderer) writeMap(b *strings.Builder, m *renderer.MapView, width int) {
	if m.Level != "" {
		b.WriteString(t.style(m.Level, renderer.StyleAction) + "\n")
	}
	b.WriteString(t.format("%s ROOM{%s}", gotext.Get("You are in the"), m.Room) + "\n\n")

	g := grid(m)
	indent := 0
	if len(g) > 0 {
		indent = (width - len(g[0])) / 2
	}
	if indent < 0 {
		indent = 0
	}
	pad := strings.Repeat(" ", indent)
	for _, row := range g {
		b.WriteString(pad)
		for _, gl := range row {
			b.WriteString(t.style(gl.text, gl.style))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func (t *TUIRenderer) writeBox(b *strings.Builder, text string, width int) {
	inner := width - 6
	if inner > 60 {
		inner = 60
	}
	lines := terminal.Wrap(renderer.Plain(text), inner)
	border := strings.Repeat("─", inner+2)
	b.WriteString("┌" + border + "┐\n")
	for _, l := range lines {
		b.WriteString("│ " + l + strings.Repeat(" ", inner-len([]rune(l))) + " │\n")
	}
	b.WriteString("└" + border + "┘\n")
}

func (t *TUIRenderer) writeNotebook(b *strings.Builder, n *renderer.NotebookView, width int) {
	b.WriteString("\n" + t.style(gotext.Get("Notebook"), renderer.StyleAction) + "  ")
	for i, tab := range n.Tabs {
		if i == n.Active {
			b.WriteString("[" + t.style(tab, renderer.StyleActionShort) + "] ")
		} else {
			b.WriteString(" " + t.style(tab, renderer.StyleSubtle) + "  ")
		}
	}
	b.WriteString("\n")
	for _, l := range terminal.Wrap(n.Content, width-4) {
		b.WriteString("  " + l + "\n")
	}
}

// writeMessages renders the messages log pane
func (t *TUIRenderer) writeMessages(b *strings.Builder, msgs []string, width int) {
	label := " " + gotext.Get("Messages") + " "
	labelLen := len([]rune(label))
	sideLen := (width - labelLen) / 2
	if sideLen < 1 {
		sideLen = 1
	}
	rightLen := width - sideLen - labelLen
	if rightLen < 1 {
		rightLen = 1
	}

	b.WriteString("\n" + t.style(strings.Repeat("─", sideLen)+label+strings.Repeat("─", rightLen), renderer.StyleSubtle) + "\n")
	if len(msgs) == 0 {
		b.WriteString(t.style("  "+gotext.Get("(no messages)"), renderer.StyleSubtle) + "\n")
	}
	if len(msgs) > messagesPaneHeight {
		msgs = msgs[len(msgs)-messagesPaneHeight:]
	}
	for _, msg := range msgs {
		b.WriteString("  " + t.format(msg) + "\n")
	}
	b.WriteString(t.style(strings.Repeat("─", width), renderer.StyleSubtle) + "\n")
}

func (t *TUIRenderer) style(text string, s renderer.TextStyle) string {
	if st, ok := t.styles[s]; ok {
		return st.Sprint(text)
	}
	return text
}

// format renders markup with the terminal colours.
func (t *TUIRenderer) format(msg string, args ...any) string {
	var b strings.Builder
	for _, span := range renderer.Markup(msg, args...) {
		b.WriteString(t.style(span.Text, span.Style))
	}
	return b.String()
}
