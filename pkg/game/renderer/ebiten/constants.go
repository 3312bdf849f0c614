package ebiten

import "image/color"

// Color palette
var (
	colorBackground      = color.RGBA{26, 26, 46, 255}    // Dark blue-gray
	colorMapBackground   = color.RGBA{15, 15, 26, 255}    // Darker for map area
	colorPlayer          = color.RGBA{0, 255, 0, 255}     // Bright green
	colorWall            = color.RGBA{180, 180, 200, 255} // Room outlines
	colorFloor           = color.RGBA{60, 60, 80, 255}    // Revealed floor
	colorFloorCurrent    = color.RGBA{80, 80, 110, 255}   // Floor of the room the player is in
	colorDoorLocked      = color.RGBA{255, 255, 0, 255}   // Bright yellow
	colorDoorUnlocked    = color.RGBA{0, 220, 0, 255}     // Bright green
	colorHint            = color.RGBA{100, 200, 255, 255} // Unread hint
	colorHintRead        = color.RGBA{120, 120, 140, 255} // Hint already in the notebook
	colorNPC             = color.RGBA{220, 170, 255, 255} // Bright purple
	colorSubtle          = color.RGBA{120, 130, 180, 255} // Soft blue-purple-gray
	colorText            = color.RGBA{200, 210, 245, 255} // Soft off-white with blue-purple tint
	colorAction          = color.RGBA{180, 150, 250, 255} // Blue-purple
	colorDenied          = color.RGBA{255, 100, 100, 255} // Bright red
	colorPanelBackground = color.RGBA{30, 30, 50, 220}    // Semi-transparent dark
	colorFocusBackground = color.RGBA{60, 80, 100, 200}   // Selected menu item
)

// Tile size constraints. The tile size is the zoom level: it scales the
// fonts and the map.
const (
	defaultTileSize = 24
	minTileSize     = 12
	maxTileSize     = 64
	tileSizeStep    = 4
	baseFontSize    = 16.0 // Base font size at default tile size
)

const (
	keyRepeatInitialDelay = 500 // Initial delay before first repeat (milliseconds)
	keyRepeatInterval     = 100 // Interval between repeat events (milliseconds)
)
