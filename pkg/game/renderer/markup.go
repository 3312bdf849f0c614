package renderer

import (
	"fmt"
	"regexp"
	"strings"
)

// TextStyle is a semantic style a backend maps to its own colours.
type TextStyle int

const (
	StyleNormal TextStyle = iota
	StyleRoom
	StyleAction
	StyleActionShort
	StyleDenied
	StyleItem
	StyleDoor
	StyleSubtle
	StylePlayer
	StyleHint
	StyleNPC
)

// Span is a run of text in one style.
type Span struct {
	Text  string
	Style TextStyle
}

var markupFunctions = regexp.MustCompile(`([A-Z_]+){([^{}]+)}`)

// Markup formats msg and splits it into styled spans. Recognised markup is
// ROOM{name}, ITEM{text}, DOOR{text}, DENIED{text}, HINT{text}, NPC{text}
// and ACTION{key}, whose first character is emphasised.
func Markup(msg string, args ...any) []Span {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}

	var spans []Span
	add := func(text string, style TextStyle) {
		if text == "" {
			return
		}
		if n := len(spans); n > 0 && spans[n-1].Style == style {
			spans[n-1].Text += text
			return
		}
		spans = append(spans, Span{Text: text, Style: style})
	}

	last := 0
	for _, m := range markupFunctions.FindAllStringSubmatchIndex(msg, -1) {
		add(msg[last:m[0]], StyleNormal)
		function := msg[m[2]:m[3]]
		operand := msg[m[4]:m[5]]
		switch function {
		case "ROOM":
			add(operand, StyleRoom)
		case "ITEM":
			add(operand, StyleItem)
		case "DOOR":
			add(operand, StyleDoor)
		case "DENIED":
			add(operand, StyleDenied)
		case "HINT":
			add(operand, StyleHint)
		case "NPC":
			add(operand, StyleNPC)
		case "ACTION":
			add(operand[:1], StyleActionShort)
			add(operand[1:], StyleAction)
		default:
			add(msg[m[0]:m[1]], StyleNormal)
		}
		last = m[1]
	}
	add(msg[last:], StyleNormal)
	return spans
}

// Plain returns msg with markup removed.
func Plain(msg string, args ...any) string {
	var b strings.Builder
	for _, s := range Markup(msg, args...) {
		b.WriteString(s.Text)
	}
	return b.String()
}
