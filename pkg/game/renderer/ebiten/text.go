package ebiten

import (
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"darkmanor/pkg/game/renderer"
)

// styleColor maps a markup style to the palette.
func styleColor(s renderer.TextStyle) color.Color {
	switch s {
	case renderer.StyleRoom:
		return colorHint
	case renderer.StyleAction, renderer.StyleActionShort:
		return colorAction
	case renderer.StyleDenied:
		return colorDenied
	case renderer.StyleItem, renderer.StyleNPC:
		return colorNPC
	case renderer.StyleDoor:
		return colorDoorLocked
	case renderer.StyleSubtle:
		return colorSubtle
	case renderer.StylePlayer:
		return colorPlayer
	case renderer.StyleHint:
		return colorHint
	default:
		return colorText
	}
}

// lineHeight returns the distance between baselines for face.
func lineHeight(face *text.GoTextFace) float64 {
	return face.Size * 1.4
}

// drawColoredText draws str with its top-left corner at x, y. Newlines
// start new lines.
func (e *EbitenRenderer) drawColoredText(screen *ebiten.Image, str string, x, y float64, col color.Color, face *text.GoTextFace) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(col)
	op.LineSpacing = lineHeight(face)
	text.Draw(screen, str, face, op)
}

// drawMarkup draws one line of markup, colouring each span. It returns the
// x position after the last span.
func (e *EbitenRenderer) drawMarkup(screen *ebiten.Image, msg string, x, y float64, face *text.GoTextFace) float64 {
	for _, span := range renderer.Markup(msg) {
		e.drawColoredText(screen, span.Text, x, y, styleColor(span.Style), face)
		x += text.Advance(span.Text, face)
	}
	return x
}

// wrapText breaks str into lines no wider than width pixels.
func wrapText(str string, width float64, face *text.GoTextFace) []string {
	var out []string
	for _, para := range strings.Split(str, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			if text.Advance(line+" "+w, face) > width {
				out = append(out, line)
				line = w
				continue
			}
			line += " " + w
		}
		out = append(out, line)
	}
	return out
}
