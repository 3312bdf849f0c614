package entities

// NPC is a resident of the manor the player can talk to.
type NPC struct {
	ID    string
	Name  string
	Pos   Point
	Lines []string
	Clue  string

	next      int
	clueGiven bool
}

// Talk returns the next dialogue line, cycling through Lines, and the clue
// if this is the first conversation.
func (n *NPC) Talk() (line, clue string) {
	if len(n.Lines) > 0 {
		line = n.Lines[n.next%len(n.Lines)]
		n.next++
	}
	if !n.clueGiven && n.Clue != "" {
		n.clueGiven = true
		clue = n.Clue
	}
	return line, clue
}

// MarkClueGiven stops the resident from handing out the clue again.
func (n *NPC) MarkClueGiven() { n.clueGiven = true }
