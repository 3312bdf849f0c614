package entities

import "strings"

// DoorPuzzle is the math problem guarding a door.
type DoorPuzzle struct {
	Question       string
	CorrectAnswers []string
	Lesson         string // Added to the notebook when solved
}

// CheckAnswer reports whether input matches one of the accepted answers.
// Surrounding whitespace is ignored.
func (p *DoorPuzzle) CheckAnswer(input string) bool {
	normalized := strings.TrimSpace(input)
	if normalized == "" {
		return false
	}
	for _, a := range p.CorrectAnswers {
		if normalized == strings.TrimSpace(a) {
			return true
		}
	}
	return false
}
