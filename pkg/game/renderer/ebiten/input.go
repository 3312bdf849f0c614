package ebiten

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	engineinput "darkmanor/pkg/engine/input"
)

type keyCode struct {
	key  ebiten.Key
	code string
}

// repeatKeys fire again while held.
var repeatKeys = []keyCode{
	{ebiten.KeyArrowUp, "arrow_up"},
	{ebiten.KeyArrowDown, "arrow_down"},
	{ebiten.KeyArrowLeft, "arrow_left"},
	{ebiten.KeyArrowRight, "arrow_right"},
	{ebiten.KeyW, "w"},
	{ebiten.KeyS, "s"},
	{ebiten.KeyA, "a"},
	{ebiten.KeyD, "d"},
	{ebiten.KeyK, "k"},
	{ebiten.KeyJ, "j"},
	{ebiten.KeyH, "h"},
	{ebiten.KeyL, "l"},
}

// pressKeys fire once per press.
var pressKeys = []keyCode{
	{ebiten.KeyEnter, "enter"},
	{ebiten.KeyKPEnter, "enter"},
	{ebiten.KeyE, "e"},
	{ebiten.KeyEscape, "escape"},
	{ebiten.KeyP, "p"},
	{ebiten.KeyN, "n"},
	{ebiten.KeyTab, "tab"},
	{ebiten.KeyT, "t"},
	{ebiten.KeyQ, "q"},
}

// Update handles input (Ebiten interface)
func (e *EbitenRenderer) Update() error {
	// Log window opening on first update (confirms window is actually running)
	if !e.windowOpenedLogged {
		e.windowOpenedLogged = true
		w, h := ebiten.WindowSize()
		e.log.Printf("Main window opened successfully (%dx%d)", w, h)
	}

	if e.ctx.Err() != nil {
		return ebiten.Termination
	}

	if e.handlePromptInput() {
		return nil
	}

	e.handleZoom()

	// Check for gamepad input first, then fall back to keyboard (raw layer)
	if intent := e.checkGamepadInput(); intent.Action != engineinput.ActionNone {
		e.send(intent)
	} else if intent := e.checkInput(); intent.Action != engineinput.ActionNone {
		e.send(intent)
	}
	return nil
}

// handlePromptInput edits the active prompt. It reports whether a prompt
// consumed this update's input.
func (e *EbitenRenderer) handlePromptInput() bool {
	e.promptMutex.Lock()
	defer e.promptMutex.Unlock()

	p := &e.prompt
	if !p.active() {
		return false
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		e.prompt = promptState{}
		e.send(engineinput.Intent{Action: engineinput.ActionCancelEntry})
		return true
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		if v := p.values[p.field]; len(v) > 0 {
			p.values[p.field] = v[:len(v)-1]
		}
		return true
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyKPEnter) || inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		if p.field < len(p.values)-1 {
			p.field++
			return true
		}
		values := p.values
		e.prompt = promptState{}
		e.send(engineinput.Intent{Action: engineinput.ActionSubmit, Values: values})
		return true
	}

	for _, r := range ebiten.AppendInputChars(nil) {
		if r >= 32 && r != 127 {
			p.values[p.field] += string(r)
		}
	}
	return true
}

// handleZoom handles =/- for font/tile size adjustment
func (e *EbitenRenderer) handleZoom() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadAdd):
		e.setTileSize(e.tileSize + tileSizeStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadSubtract):
		e.setTileSize(e.tileSize - tileSizeStep)
	case inpututil.IsKeyJustPressed(ebiten.Key0) || inpututil.IsKeyJustPressed(ebiten.KeyNumpad0):
		e.setTileSize(defaultTileSize)
	}
}

func (e *EbitenRenderer) setTileSize(size int) {
	if size < minTileSize || size > maxTileSize || size == e.tileSize {
		return
	}
	e.tileSize = size
	e.invalidateFontCache()
	if e.saveZoom != nil {
		if err := e.saveZoom(size); err != nil {
			// Not critical
			e.log.Printf("Warning: could not save preferences: %v", err)
		}
	}
}

// shouldRepeatKey checks if a key/button should trigger (initial press or repeat)
func (e *EbitenRenderer) shouldRepeatKey(pressed bool, code string) bool {
	now := time.Now().UnixMilli()
	state, exists := e.keyRepeatState[code]

	if !pressed {
		delete(e.keyRepeatState, code)
		return false
	}
	if !exists {
		e.keyRepeatState[code] = keyRepeatInfo{firstPressed: now, lastRepeat: now}
		return true
	}
	if now-state.firstPressed >= keyRepeatInitialDelay && now-state.lastRepeat >= keyRepeatInterval {
		state.lastRepeat = now
		e.keyRepeatState[code] = state
		return true
	}
	return false
}

func mapCode(code string) engineinput.Intent {
	return engineinput.MapToIntent(engineinput.NewDebouncedInput(engineinput.RawInput{
		Device:    engineinput.DeviceKeyboard,
		Code:      code,
		Timestamp: time.Now(),
	}))
}

// checkInput checks the keyboard and returns the corresponding Intent.
func (e *EbitenRenderer) checkInput() engineinput.Intent {
	intent := engineinput.Intent{Action: engineinput.ActionNone}
	for _, k := range repeatKeys {
		// Every key is polled so released keys leave the repeat table.
		if e.shouldRepeatKey(ebiten.IsKeyPressed(k.key), k.code) && intent.Action == engineinput.ActionNone {
			intent = mapCode(k.code)
		}
	}
	if intent.Action != engineinput.ActionNone {
		return intent
	}

	// Help
	if inpututil.IsKeyJustPressed(ebiten.KeySlash) && ebiten.IsKeyPressed(ebiten.KeyShift) {
		return mapCode("?")
	}
	for _, k := range pressKeys {
		if inpututil.IsKeyJustPressed(k.key) {
			return mapCode(k.code)
		}
	}
	return intent
}

type buttonCode struct {
	button ebiten.StandardGamepadButton
	code   string
}

var gamepadButtons = []buttonCode{
	{ebiten.StandardGamepadButtonLeftTop, "gamepad_dpad_up"},
	{ebiten.StandardGamepadButtonLeftBottom, "gamepad_dpad_down"},
	{ebiten.StandardGamepadButtonLeftLeft, "gamepad_dpad_left"},
	{ebiten.StandardGamepadButtonLeftRight, "gamepad_dpad_right"},
	{ebiten.StandardGamepadButtonRightBottom, "gamepad_a"},
	{ebiten.StandardGamepadButtonRightRight, "gamepad_b"},
	{ebiten.StandardGamepadButtonRightTop, "gamepad_y"},
	{ebiten.StandardGamepadButtonCenterRight, "gamepad_start"},
}

// checkGamepadInput checks connected controllers with a standard layout.
func (e *EbitenRenderer) checkGamepadInput() engineinput.Intent {
	var ids []ebiten.GamepadID
	ids = ebiten.AppendGamepadIDs(ids[:0])

	for _, id := range ids {
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}
		for _, b := range gamepadButtons {
			if inpututil.IsStandardGamepadButtonJustPressed(id, b.button) {
				return engineinput.MapToIntent(engineinput.NewDebouncedInput(engineinput.RawInput{
					Device: engineinput.DeviceGamepad,
					Code:   b.code,
				}))
			}
		}
	}
	return engineinput.Intent{Action: engineinput.ActionNone}
}
