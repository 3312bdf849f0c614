// Package ebiten provides an Ebiten-based 2D graphical renderer for The Dark Manor.
package ebiten

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	engineinput "darkmanor/pkg/engine/input"
	"darkmanor/pkg/game/renderer"
)

// keyRepeatInfo tracks the repeat state for a key or button
type keyRepeatInfo struct {
	firstPressed int64 // Timestamp when first pressed (milliseconds)
	lastRepeat   int64 // Timestamp when last repeat event was sent (milliseconds)
}

// promptState is the text entry in progress.
type promptState struct {
	prompt renderer.Prompt
	field  int
	values []string
}

func (p *promptState) active() bool { return p.prompt.Active() }

// EbitenRenderer is the Ebiten-based graphical renderer
type EbitenRenderer struct {
	ctx context.Context
	log *log.Logger

	// Window dimensions
	windowWidth  int
	windowHeight int

	// Tile size for rendering (adjustable with +/-)
	tileSize int
	saveZoom func(int) error

	fontSource          *text.GoTextFaceSource
	cachedFace          *text.GoTextFace
	cachedFaceSize      float64
	cachedTitleFace     *text.GoTextFace
	cachedTitleFaceSize float64

	// Current frame (set by RenderFrame on the game loop)
	frame      renderer.Frame
	frameMutex sync.RWMutex

	promptMutex sync.Mutex
	prompt      promptState

	inputChan chan engineinput.Intent

	keyRepeatState map[string]keyRepeatInfo

	windowOpenedLogged bool
}

// New creates an Ebiten renderer. tileSize is the initial zoom level and
// saveZoom, if set, persists zoom changes.
func New(tileSize int, saveZoom func(int) error, logger *log.Logger) *EbitenRenderer {
	if tileSize < minTileSize || tileSize > maxTileSize {
		tileSize = defaultTileSize
	}
	if logger == nil {
		logger = log.Default()
	}
	return &EbitenRenderer{
		ctx:            context.Background(),
		log:            logger,
		windowWidth:    1024,
		windowHeight:   768,
		tileSize:       tileSize,
		saveZoom:       saveZoom,
		inputChan:      make(chan engineinput.Intent, 32),
		keyRepeatState: make(map[string]keyRepeatInfo),
	}
}

// Init loads fonts and sets up the window
func (e *EbitenRenderer) Init() {
	if err := e.loadFonts(); err != nil {
		e.log.Printf("ebiten: loading fonts: %v", err)
	}
	ebiten.SetWindowSize(e.windowWidth, e.windowHeight)
	ebiten.SetWindowTitle("The Dark Manor")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
}

// Intents returns the channel input is delivered on.
func (e *EbitenRenderer) Intents() <-chan engineinput.Intent { return e.inputChan }

// RenderFrame stores f; it is drawn on the next Draw.
func (e *EbitenRenderer) RenderFrame(f renderer.Frame) {
	e.frameMutex.Lock()
	e.frame = f
	e.frameMutex.Unlock()
}

func (e *EbitenRenderer) currentFrame() renderer.Frame {
	e.frameMutex.RLock()
	defer e.frameMutex.RUnlock()
	return e.frame
}

// Prompt starts text entry.
func (e *EbitenRenderer) Prompt(p renderer.Prompt) {
	e.promptMutex.Lock()
	e.prompt = promptState{prompt: p, values: make([]string, len(p.Fields))}
	e.promptMutex.Unlock()
}

// ShowMessage logs msg; the game shows its own messages in the frame.
func (e *EbitenRenderer) ShowMessage(msg string) {
	e.log.Print(renderer.Plain(msg))
}

// Run opens the window and blocks until it is closed or ctx ends. It must
// be called from the main goroutine.
func (e *EbitenRenderer) Run(ctx context.Context) error {
	e.ctx = ctx
	err := ebiten.RunGame(e)
	e.send(engineinput.Intent{Action: engineinput.ActionQuit})
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// send delivers an intent without blocking the Ebiten thread.
func (e *EbitenRenderer) send(intent engineinput.Intent) {
	select {
	case e.inputChan <- intent:
	default:
		// Channel full, drop input
	}
}

// Layout returns the game's logical screen size (Ebiten interface)
func (e *EbitenRenderer) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != e.windowWidth || outsideHeight != e.windowHeight {
		e.windowWidth = outsideWidth
		e.windowHeight = outsideHeight
	}
	return outsideWidth, outsideHeight
}
