package gameplay

import (
	"github.com/leonelquinteros/gotext"
)

// InteractionHint returns a prompt for the object within reach, or "" when
// there is nothing to interact with or a dialog is already open.
func (gp *Gameplay) InteractionHint() string {
	g := gp.game()
	if g.Dialog != "" || g.PendingDoor != 0 {
		return ""
	}

	t := gp.nearest()
	switch t.kind {
	case targetHint:
		if t.hint.IsSaved() {
			return gotext.Get("Press E/Enter to read again")
		}
		return gotext.Get("Press E/Enter to examine")
	case targetNPC:
		return gotext.Get("Press E/Enter to talk to %s", t.npc.Name)
	case targetDoor:
		return gotext.Get("%s is locked. Press E/Enter to try it", t.door.DoorName())
	default:
		return ""
	}
}
