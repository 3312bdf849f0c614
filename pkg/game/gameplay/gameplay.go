// Package gameplay provides core game logic for player movement and interactions.
//
// Interactive objects publish on the event bus; the notebook, the room
// visibility layer and the door puzzles are subscribers.
package gameplay

import (
	"github.com/leonelquinteros/gotext"

	"darkmanor/pkg/game/events"
	"darkmanor/pkg/game/state"
)

// InteractRadius is how close the player must be to use an object. Open
// dialogs close once the player walks further than this from where they
// were opened.
const InteractRadius = 25.0

// Gameplay applies player intents to the game state of a Context.
type Gameplay struct {
	ctx *state.Context
}

// New subscribes the gameplay consumers to ctx.Bus.
func New(ctx *state.Context) *Gameplay {
	gp := &Gameplay{ctx: ctx}

	events.Subscribe(ctx.Bus, func(e events.HintFound) {
		ctx.Game.Notebook.AddHint(e.Text)
		ctx.Game.AddMessage(gotext.Get("Hint added to your notebook."))
	})
	events.Subscribe(ctx.Bus, func(e events.ClueFound) {
		ctx.Game.Notebook.AddClue(e.Text)
		ctx.Game.AddMessage(gotext.Get("Clue added to your notebook."))
	})
	events.Subscribe(ctx.Bus, func(e events.LessonLearned) {
		ctx.Game.Notebook.AddLessonLearned(e.Text)
	})
	events.Subscribe(ctx.Bus, gp.onDoorAttempted)
	events.Subscribe(ctx.Bus, gp.revealBehindDoor)

	return gp
}

func (gp *Gameplay) game() *state.Game { return gp.ctx.Game }

// revealBehindDoor is the room visibility layer: an unlocked door shows
// the rooms on both of its sides, so solving it from the far side opens
// the way back.
func (gp *Gameplay) revealBehindDoor(e events.DoorUnlocked) {
	g := gp.game()
	door := g.Level.Door(e.DoorID)
	if door == nil {
		return
	}
	g.Revealed.Put(door.Room)
	g.Revealed.Put(door.Target)
}
