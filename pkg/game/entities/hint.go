package entities

import "math"

// Point is a position in manor units.
type Point struct {
	X, Y float64
}

// Dist returns the euclidean distance between two points.
func (p Point) Dist(o Point) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// HintBlock is an object in a room that shows a hint when examined.
type HintBlock struct {
	ID    string
	Pos   Point
	Text  string
	saved bool // true once the hint has been reported
}

// NewHintBlock creates a hint block that has not been read yet
func NewHintBlock(id string, pos Point, text string) *HintBlock {
	return &HintBlock{ID: id, Pos: pos, Text: text}
}

// Read returns the hint text and whether this is the first read.
// Only the first read counts as finding the hint.
func (h *HintBlock) Read() (text string, first bool) {
	first = !h.saved
	h.saved = true
	return h.Text, first
}

// MarkSaved records the hint as already reported without reading it.
func (h *HintBlock) MarkSaved() { h.saved = true }

// IsSaved returns true if the hint has already been reported
func (h *HintBlock) IsSaved() bool {
	return h.saved
}
