package input

import (
	"sort"
	"strings"
	"time"
)

// Device represents a physical input source.
type Device int

const (
	DeviceUnknown Device = iota
	DeviceKeyboard
	DeviceGamepad
	DeviceTerminal
)

// Action represents a high‑level intent in the game.
type Action int

const (
	ActionNone Action = iota

	// Movement
	ActionMoveNorth
	ActionMoveSouth
	ActionMoveWest
	ActionMoveEast

	// Meta / UI
	ActionHint
	ActionQuit
	ActionOpenMenu    // Pause in game, back out of menus
	ActionAction      // Generic "action/confirm" (e.g., Enter/A)
	ActionInteract    // Interact with objects (E, Enter, A button)
	ActionNotebook    // Toggle the notebook
	ActionNextTab     // Cycle notebook tabs
	ActionSubmit      // Text entry finished; Intent.Values holds the fields
	ActionCancelEntry // Text entry abandoned
)

// Intent is the 4th‑layer, high‑level description of what the player wants to do.
type Intent struct {
	Action Action
	// Values carries the fields collected by a text prompt for ActionSubmit.
	Values []string
}

// RawInput is the 1st‑layer event emitted directly from an input device.
// Code is a device‑specific identifier (e.g. "KeyW", "arrow_up", "GamepadDPadUp").
type RawInput struct {
	Device    Device
	Code      string
	Timestamp time.Time
}

// DebouncedInput is the 2nd‑layer representation after debouncing/deduplication.
type DebouncedInput struct {
	Device Device
	Code   string
}

// NewDebouncedInput converts a raw event to a debounced event.
func NewDebouncedInput(raw RawInput) DebouncedInput {
	return DebouncedInput{
		Device: raw.Device,
		Code:   raw.Code,
	}
}

// defaultBindings maps raw codes to actions (3rd-layer bindings).
// Multiple codes may point to the same Action.
func defaultBindings() map[string]Action {
	return map[string]Action{
		// Movement (arrows, words, WASD, Vim)
		"arrow_up":    ActionMoveNorth,
		"north":       ActionMoveNorth,
		"w":           ActionMoveNorth,
		"k":           ActionMoveNorth,
		"arrow_down":  ActionMoveSouth,
		"south":       ActionMoveSouth,
		"s":           ActionMoveSouth,
		"j":           ActionMoveSouth,
		"arrow_left":  ActionMoveWest,
		"west":        ActionMoveWest,
		"a":           ActionMoveWest,
		"h":           ActionMoveWest,
		"arrow_right": ActionMoveEast,
		"east":        ActionMoveEast,
		"d":           ActionMoveEast,
		"l":           ActionMoveEast,

		// Help / hint
		"?":    ActionHint,
		"hint": ActionHint,

		// Quit
		"quit": ActionQuit,
		"q":    ActionQuit,

		// Menu / pause
		"menu":   ActionOpenMenu,
		"p":      ActionOpenMenu,
		"escape": ActionOpenMenu,

		// Notebook
		"n":        ActionNotebook,
		"notebook": ActionNotebook,
		"tab":      ActionNextTab,
		"t":        ActionNextTab,

		// Controller/gamepad specific bindings
		"gamepad_dpad_up":    ActionMoveNorth,
		"gamepad_dpad_down":  ActionMoveSouth,
		"gamepad_dpad_left":  ActionMoveWest,
		"gamepad_dpad_right": ActionMoveEast,

		// Interaction (E, Enter, A button)
		"e":         ActionInteract,
		"enter":     ActionInteract,
		"gamepad_a": ActionInteract, // A button / Cross

		// Generic action/confirm inputs (reserved, not unbindable)
		"action": ActionAction,

		"gamepad_b":     ActionOpenMenu, // B button / Circle
		"gamepad_y":     ActionNotebook,
		"gamepad_start": ActionOpenMenu, // Start button
	}
}

var bindings = defaultBindings()

// MapToIntent is the 3rd+4th layer: it applies the current bindings to a
// debounced input and returns a high‑level Intent.
func MapToIntent(ev DebouncedInput) Intent {
	if act, ok := bindings[ev.Code]; ok {
		return Intent{Action: act}
	}
	return Intent{Action: ActionNone}
}

// ActionName returns a human-friendly name for an action.
func ActionName(a Action) string {
	switch a {
	case ActionMoveNorth:
		return "Move North"
	case ActionMoveSouth:
		return "Move South"
	case ActionMoveWest:
		return "Move West"
	case ActionMoveEast:
		return "Move East"
	case ActionHint:
		return "Hint"
	case ActionQuit:
		return "Quit"
	case ActionOpenMenu:
		return "Pause"
	case ActionAction:
		return "Action"
	case ActionInteract:
		return "Interact"
	case ActionNotebook:
		return "Notebook"
	case ActionNextTab:
		return "Next Tab"
	case ActionSubmit:
		return "Submit"
	case ActionCancelEntry:
		return "Cancel"
	default:
		return "None"
	}
}

// GetBindingsByAction returns the current bindings grouped by action.
func GetBindingsByAction() map[Action][]string {
	result := make(map[Action][]string)
	for code, act := range bindings {
		result[act] = append(result[act], code)
	}
	// Stable ordering so the help text doesn't flicker.
	for act, codes := range result {
		sort.Strings(codes)
		result[act] = codes
	}
	return result
}

func isReservedCode(code string) bool {
	switch code {
	case "arrow_up", "arrow_down", "arrow_left", "arrow_right", "e", "enter", "gamepad_a", "escape":
		return true
	}
	return false
}

// SetSingleBinding replaces all bindings for the given action with a single code.
// Arrow keys, the interaction keys and escape can't be rebound.
func SetSingleBinding(action Action, code string) {
	if action == ActionAction || action == ActionInteract {
		return
	}
	for c, a := range bindings {
		if isReservedCode(c) {
			continue
		}
		if a == action {
			delete(bindings, c)
		}
	}
	if code != "" && !isReservedCode(code) {
		bindings[code] = action
	}
}

// ResetBindings restores the default bindings.
func ResetBindings() {
	bindings = defaultBindings()
}

// ParseAction looks an action up by its ActionName, ignoring case and spaces.
func ParseAction(name string) (Action, bool) {
	want := strings.ReplaceAll(strings.ToLower(name), " ", "")
	want = strings.ReplaceAll(want, "_", "")
	for a := ActionMoveNorth; a <= ActionCancelEntry; a++ {
		if strings.ReplaceAll(strings.ToLower(ActionName(a)), " ", "") == want {
			return a, true
		}
	}
	return ActionNone, false
}
