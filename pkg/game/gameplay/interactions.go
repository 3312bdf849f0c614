package gameplay

import (
	"github.com/leonelquinteros/gotext"

	"darkmanor/pkg/game/entities"
	"darkmanor/pkg/game/events"
)

type targetKind int

const (
	targetNone targetKind = iota
	targetHint
	targetNPC
	targetDoor
)

type target struct {
	kind targetKind
	dist float64
	hint *entities.HintBlock
	npc  *entities.NPC
	door *entities.Door
}

// nearest returns the closest object within InteractRadius. Unlocked doors
// are not interactable.
func (gp *Gameplay) nearest() target {
	g := gp.game()
	best := target{kind: targetNone, dist: InteractRadius}
	consider := func(t target) {
		if t.dist <= best.dist {
			best = t
		}
	}
	for _, h := range g.Level.Hints {
		consider(target{kind: targetHint, dist: g.Player.Dist(h.Pos), hint: h})
	}
	for _, n := range g.Level.NPCs {
		consider(target{kind: targetNPC, dist: g.Player.Dist(n.Pos), npc: n})
	}
	for _, d := range g.Level.Doors {
		if !d.Locked {
			continue
		}
		consider(target{kind: targetDoor, dist: g.Player.Dist(d.Pos), door: d})
	}
	return best
}

// Interact uses whatever is within reach. An open dialog is closed
// instead. Returns true if an interaction occurred.
func (gp *Gameplay) Interact() bool {
	g := gp.game()
	if g.PendingDoor != 0 {
		return false
	}
	if g.Dialog != "" {
		g.CloseDialog()
		return true
	}

	t := gp.nearest()
	switch t.kind {
	case targetHint:
		text, first := t.hint.Read()
		g.OpenDialog(text)
		if first {
			gp.ctx.Bus.Emit(events.HintFound{Source: t.hint.ID, Text: text})
		}
	case targetNPC:
		line, clue := t.npc.Talk()
		g.OpenDialog(t.npc.Name + ": " + line)
		if clue != "" {
			gp.ctx.Bus.Emit(events.ClueFound{Source: t.npc.ID, Text: clue})
		}
	case targetDoor:
		gp.ctx.Bus.Emit(events.DoorAttempted{DoorID: t.door.ID})
	default:
		return false
	}
	return true
}

// onDoorAttempted is the door puzzle consumer: it asks for an answer to
// the door's problem unless that door is already solved.
func (gp *Gameplay) onDoorAttempted(e events.DoorAttempted) {
	g := gp.game()
	if g.SolvedDoors.Has(e.DoorID) {
		return
	}
	door := g.Level.Door(e.DoorID)
	if door == nil || door.Puzzle == nil {
		return
	}
	g.PendingDoor = door.ID
	g.OpenDialog(door.Puzzle.Question)
}

// PendingQuestion returns the question awaiting an answer, if any.
func (gp *Gameplay) PendingQuestion() (string, bool) {
	g := gp.game()
	if g.PendingDoor == 0 {
		return "", false
	}
	door := g.Level.Door(g.PendingDoor)
	if door == nil || door.Puzzle == nil {
		return "", false
	}
	return door.Puzzle.Question, true
}

// AnswerDoor checks an answer for the pending door. A correct answer
// unlocks the door and reports it on the bus.
func (gp *Gameplay) AnswerDoor(answer string) bool {
	g := gp.game()
	door := g.Level.Door(g.PendingDoor)
	g.PendingDoor = 0
	if door == nil || door.Puzzle == nil {
		return false
	}

	if !door.Puzzle.CheckAnswer(answer) {
		g.OpenDialog(gotext.Get("That answer isn't quite right.\nCheck your hints and try again."))
		return false
	}

	door.Unlock()
	g.SolvedDoors.Put(door.ID)
	g.OpenDialog(gotext.Get("You solved the problem!\nDoor %d is now unlocked.", door.ID))
	gp.ctx.Bus.Emit(events.DoorUnlocked{DoorID: door.ID})
	if door.Puzzle.Lesson != "" {
		gp.ctx.Bus.Emit(events.LessonLearned{Text: door.Puzzle.Lesson})
	}
	return true
}

// CancelAnswer abandons the pending door question.
func (gp *Gameplay) CancelAnswer() {
	g := gp.game()
	if g.PendingDoor == 0 {
		return
	}
	g.PendingDoor = 0
	g.CloseDialog()
}
