package ebiten

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/leonelquinteros/gotext"

	"darkmanor/pkg/game/renderer"
)

const margin = 16.0

// Draw renders the current frame (Ebiten interface)
func (e *EbitenRenderer) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)

	f := e.currentFrame()
	if e.fontSource == nil {
		ebitenutil.DebugPrint(screen, gotext.Get("Loading fonts failed; see the log."))
		return
	}

	face := e.getFontFace()
	w, h := float64(e.windowWidth), float64(e.windowHeight)
	y := margin

	if f.Status != "" {
		e.drawColoredText(screen, f.Status, margin, y, colorSubtle, face)
		y += lineHeight(face)
	}

	// The bottom of the window holds the message log.
	messagesTop := h - margin - lineHeight(face)*float64(len(f.Messages)+1)

	if f.Map != nil {
		y = e.drawMap(screen, f.Map, y, w, messagesTop-y-lineHeight(face)*4)
	}
	if f.Menu != nil {
		e.drawMenu(screen, f.Menu, w, h)
	}
	if f.Hint != "" {
		e.drawMarkup(screen, f.Hint, margin, y, face)
		y += lineHeight(face)
	}
	if f.Dialog != "" {
		e.drawPanel(screen, f.Dialog, margin, y, w-2*margin)
	}
	if f.Notebook != nil {
		e.drawNotebook(screen, f.Notebook, w, h)
	}
	if len(f.Overlay) > 0 {
		e.drawPanel(screen, strings.Join(f.Overlay, "\n"), w/4, h/4, w/2)
	}

	e.drawMessages(screen, f.Messages, messagesTop)

	e.promptMutex.Lock()
	p := e.prompt
	values := append([]string(nil), p.values...)
	e.promptMutex.Unlock()
	if p.active() {
		e.drawPrompt(screen, p, values, w, h)
	}
}

// mapTransform fits the manor into a box of width bw and height bh.
type mapTransform struct {
	scale, ox, oy float64
}

func fitMap(m *renderer.MapView, x, y, bw, bh float64) mapTransform {
	if m.Width <= 0 || m.Height <= 0 {
		return mapTransform{scale: 1, ox: x, oy: y}
	}
	scale := bw / m.Width
	if s := bh / m.Height; s < scale {
		scale = s
	}
	return mapTransform{scale: scale, ox: x + (bw-m.Width*scale)/2, oy: y}
}

func (t mapTransform) point(x, y float64) (float32, float32) {
	return float32(t.ox + x*t.scale), float32(t.oy + y*t.scale)
}

// drawMap draws the revealed rooms, doors, objects and the player. It
// returns the y position below the map.
func (e *EbitenRenderer) drawMap(screen *ebiten.Image, m *renderer.MapView, top, width, maxHeight float64) float64 {
	face := e.getFontFace()
	e.drawMarkup(screen, fmt.Sprintf("%s ROOM{%s}", gotext.Get("You are in the"), m.Room), margin, top, face)
	top += lineHeight(face) * 1.5

	if maxHeight < 100 {
		maxHeight = 100
	}
	t := fitMap(m, margin, top, width-2*margin, maxHeight)
	mapW, mapH := float32(m.Width*t.scale), float32(m.Height*t.scale)
	ox, oy := t.point(0, 0)
	vector.DrawFilledRect(screen, ox, oy, mapW, mapH, colorMapBackground, false)

	for _, r := range m.Rooms {
		if !r.Revealed {
			continue
		}
		x, y := t.point(r.X, r.Y)
		rw, rh := float32(r.W*t.scale), float32(r.H*t.scale)
		floor := colorFloor
		if r.Current {
			floor = colorFloorCurrent
		}
		vector.DrawFilledRect(screen, x, y, rw, rh, floor, false)
		vector.StrokeRect(screen, x, y, rw, rh, 1, colorWall, false)
		e.drawColoredText(screen, r.Name, float64(x)+4, float64(y)+2, colorSubtle, face)
	}

	marker := float32(e.tileSize) / 3
	for _, o := range m.Objects {
		x, y := t.point(o.X, o.Y)
		var c color.Color = colorNPC
		if o.Kind == renderer.ObjectHint {
			c = colorHint
			if o.Done {
				c = colorHintRead
			}
		}
		vector.DrawFilledCircle(screen, x, y, marker, c, true)
	}
	for _, d := range m.Doors {
		x, y := t.point(d.X, d.Y)
		var c color.Color = colorDoorUnlocked
		if d.Locked {
			c = colorDoorLocked
		}
		vector.DrawFilledRect(screen, x-marker/2, y-marker, marker, marker*2, c, false)
	}

	px, py := t.point(m.PlayerX, m.PlayerY)
	vector.DrawFilledCircle(screen, px, py, marker*1.2, colorPlayer, true)

	return float64(oy+mapH) + margin
}

// drawPanel draws wrapped text on a panel.
func (e *EbitenRenderer) drawPanel(screen *ebiten.Image, msg string, x, y, width float64) {
	face := e.getFontFace()
	lines := wrapText(renderer.Plain(msg), width-2*margin, face)
	height := lineHeight(face)*float64(len(lines)) + margin
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(width), float32(height), colorPanelBackground, false)
	vector.StrokeRect(screen, float32(x), float32(y), float32(width), float32(height), 1, colorAction, false)
	for i, l := range lines {
		e.drawColoredText(screen, l, x+margin, y+margin/2+float64(i)*lineHeight(face), colorText, face)
	}
}

func (e *EbitenRenderer) drawMenu(screen *ebiten.Image, m *renderer.MenuView, w, h float64) {
	face := e.getFontFace()
	titleFace := e.getTitleFontFace()
	lh := lineHeight(face)

	panelW := w / 2
	panelH := lineHeight(titleFace) + lh*float64(len(m.Items)+3) + margin*2
	x, y := (w-panelW)/2, (h-panelH)/2
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(panelW), float32(panelH), colorPanelBackground, false)

	tw, _ := text.Measure(m.Title, titleFace, 0)
	e.drawColoredText(screen, m.Title, x+(panelW-tw)/2, y+margin, colorAction, titleFace)
	y += margin + lineHeight(titleFace) + lh/2

	for i, item := range m.Items {
		c := colorText
		if item.Disabled {
			c = colorSubtle
		}
		if i == m.Selected {
			vector.DrawFilledRect(screen, float32(x+margin), float32(y-2), float32(panelW-2*margin), float32(lh), colorFocusBackground, false)
			c = colorPlayer
		}
		e.drawColoredText(screen, item.Label, x+margin*2, y, c, face)
		y += lh
	}
	if m.Help != "" {
		e.drawColoredText(screen, m.Help, x+margin, y+lh/2, colorSubtle, face)
	}
}

func (e *EbitenRenderer) drawNotebook(screen *ebiten.Image, n *renderer.NotebookView, w, h float64) {
	face := e.getFontFace()
	panelW := w / 3
	x, y := w-panelW-margin, margin*3
	panelH := h/2 - margin
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(panelW), float32(panelH), colorPanelBackground, false)
	vector.StrokeRect(screen, float32(x), float32(y), float32(panelW), float32(panelH), 1, colorAction, false)

	tx := x + margin
	for i, tab := range n.Tabs {
		c := colorSubtle
		if i == n.Active {
			c = colorAction
		}
		e.drawColoredText(screen, tab, tx, y+margin/2, c, face)
		tx += text.Advance(tab, face) + margin
	}
	for i, l := range wrapText(n.Content, panelW-2*margin, face) {
		e.drawColoredText(screen, l, x+margin, y+margin/2+lineHeight(face)*float64(i+2), colorText, face)
	}
}

func (e *EbitenRenderer) drawMessages(screen *ebiten.Image, msgs []string, top float64) {
	face := e.getFontFace()
	e.drawColoredText(screen, gotext.Get("Messages"), margin, top, colorSubtle, face)
	for i, m := range msgs {
		e.drawMarkup(screen, m, margin*2, top+lineHeight(face)*float64(i+1), face)
	}
}

func (e *EbitenRenderer) drawPrompt(screen *ebiten.Image, p promptState, values []string, w, h float64) {
	face := e.getFontFace()
	lh := lineHeight(face)
	panelW := w / 2
	panelH := lh*float64(len(p.prompt.Fields)+2) + margin*2
	x, y := (w-panelW)/2, (h-panelH)/2
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(panelW), float32(panelH), colorMapBackground, false)
	vector.StrokeRect(screen, float32(x), float32(y), float32(panelW), float32(panelH), 2, colorAction, false)

	y += margin
	e.drawColoredText(screen, p.prompt.Title, x+margin, y, colorAction, face)
	y += lh * 1.5
	for i, field := range p.prompt.Fields {
		v := values[i]
		if field.Secret {
			v = strings.Repeat("*", len(v))
		}
		if i == p.field {
			v += "_"
		}
		c := colorSubtle
		if i == p.field {
			c = colorText
		}
		e.drawColoredText(screen, field.Label+": "+v, x+margin, y, c, face)
		y += lh
	}
}
