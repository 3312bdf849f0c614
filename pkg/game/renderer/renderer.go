// Package renderer defines what a rendering backend draws and how it
// reports player input back to the game loop.
package renderer

import (
	"context"

	"github.com/leonelquinteros/gotext"

	engineinput "darkmanor/pkg/engine/input"
)

// Renderer is a rendering backend. RenderFrame, Prompt and ShowMessage are
// called from the game loop; Run owns the backend's own thread of control.
type Renderer interface {
	// Init prepares colours, fonts and windows.
	Init()

	// RenderFrame replaces the picture being shown.
	RenderFrame(f Frame)

	// Intents delivers the player's input.
	Intents() <-chan engineinput.Intent

	// Prompt asks the player to fill in text fields. The answer arrives as
	// an ActionSubmit intent carrying one value per field, or as
	// ActionCancelEntry.
	Prompt(p Prompt)

	// ShowMessage displays a message outside of any frame.
	ShowMessage(msg string)

	// Run blocks until the player closes the backend or ctx ends.
	Run(ctx context.Context) error
}

// PromptField is one line of text entry.
type PromptField struct {
	Label  string
	Secret bool
}

// Prompt is a request for text entry.
type Prompt struct {
	Title  string
	Fields []PromptField
}

// Active reports whether p asks for anything.
func (p Prompt) Active() bool { return len(p.Fields) > 0 }

// Credentials is the username and password prompt.
func Credentials(title string) Prompt {
	return Prompt{Title: title, Fields: []PromptField{
		{Label: gotext.Get("Username")},
		{Label: gotext.Get("Password"), Secret: true},
	}}
}

// Answer is the single-field prompt used for door puzzles.
func Answer(question string) Prompt {
	return Prompt{Title: question, Fields: []PromptField{{Label: gotext.Get("Answer")}}}
}

// Send delivers an intent without blocking the caller for long: it gives
// up when ctx ends.
func Send(ctx context.Context, ch chan<- engineinput.Intent, intent engineinput.Intent) bool {
	select {
	case ch <- intent:
		return true
	case <-ctx.Done():
		return false
	}
}
