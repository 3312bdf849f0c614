package ebiten

import (
	"bytes"

	"github.com/hajimehoshi/ebiten/v2/examples/resources/fonts"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// loadFonts parses the bundled UI font.
func (e *EbitenRenderer) loadFonts() error {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(fonts.MPlus1pRegular_ttf))
	if err != nil {
		return err
	}
	e.fontSource = src
	return nil
}

// getUIFontSize returns the font size for UI text, scaled to the tile size
func (e *EbitenRenderer) getUIFontSize() float64 {
	size := baseFontSize * float64(e.tileSize) / defaultTileSize
	if size < 10 {
		size = 10
	}
	return size
}

// getFontFace returns a cached face at the current UI size
func (e *EbitenRenderer) getFontFace() *text.GoTextFace {
	size := e.getUIFontSize()
	if e.cachedFace == nil || e.cachedFaceSize != size {
		e.cachedFaceSize = size
		e.cachedFace = &text.GoTextFace{
			Source: e.fontSource,
			Size:   size,
		}
	}
	return e.cachedFace
}

// getTitleFontFace returns a face 4pt larger than UI text for titles
func (e *EbitenRenderer) getTitleFontFace() *text.GoTextFace {
	size := e.getUIFontSize() + 4
	if e.cachedTitleFace == nil || e.cachedTitleFaceSize != size {
		e.cachedTitleFaceSize = size
		e.cachedTitleFace = &text.GoTextFace{
			Source: e.fontSource,
			Size:   size,
		}
	}
	return e.cachedTitleFace
}

// invalidateFontCache clears cached font faces (call when tile size changes)
func (e *EbitenRenderer) invalidateFontCache() {
	e.cachedFace = nil
	e.cachedTitleFace = nil
}
