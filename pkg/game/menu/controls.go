package menu

import (
	"fmt"
	"strings"

	"github.com/leonelquinteros/gotext"

	engineinput "darkmanor/pkg/engine/input"
)

var controlActions = []engineinput.Action{
	engineinput.ActionMoveNorth,
	engineinput.ActionMoveSouth,
	engineinput.ActionMoveWest,
	engineinput.ActionMoveEast,
	engineinput.ActionInteract,
	engineinput.ActionNotebook,
	engineinput.ActionNextTab,
	engineinput.ActionOpenMenu,
	engineinput.ActionHint,
}

// Controls lists the current bindings, one line per action.
func Controls() []string {
	byAction := engineinput.GetBindingsByAction()
	lines := make([]string, 0, len(controlActions))
	for _, act := range controlActions {
		codes := strings.Join(byAction[act], ", ")
		if codes == "" {
			codes = gotext.Get("(unbound)")
		}
		lines = append(lines, fmt.Sprintf("%s: %s", engineinput.ActionName(act), codes))
	}
	return lines
}
