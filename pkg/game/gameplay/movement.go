package gameplay

import (
	engineinput "darkmanor/pkg/engine/input"
	"darkmanor/pkg/game/entities"
)

// StepSize is how far one movement intent carries the player.
const StepSize = 8.0

// CanEnter checks if the player can stand at p: it must be on the floor of
// a room that has been revealed.
func (gp *Gameplay) CanEnter(p entities.Point) bool {
	g := gp.game()
	r, ok := g.Level.RoomAt(p)
	if !ok {
		return false
	}
	return g.Revealed.Has(r.Name)
}

// Move steps the player in the direction of a movement action and reports
// whether the player moved. Moving closes dialogs left behind.
func (gp *Gameplay) Move(action engineinput.Action) bool {
	g := gp.game()
	if g.PendingDoor != 0 {
		return false
	}

	dx, dy := 0.0, 0.0
	switch action {
	case engineinput.ActionMoveNorth:
		dy = -StepSize
	case engineinput.ActionMoveSouth:
		dy = StepSize
	case engineinput.ActionMoveWest:
		dx = -StepSize
	case engineinput.ActionMoveEast:
		dx = StepSize
	default:
		return false
	}

	target := entities.Point{X: g.Player.X + dx, Y: g.Player.Y + dy}
	if !gp.CanEnter(target) {
		return false
	}

	g.Player = target
	if r, ok := g.Level.RoomAt(target); ok && r.Name != g.Room {
		g.Room = r.Name
		g.AddMessage(r.Name)
	}

	if g.Dialog != "" && g.Player.Dist(g.DialogAnchor) > InteractRadius {
		g.CloseDialog()
	}
	return true
}
