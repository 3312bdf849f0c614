// Package state holds the session and game state shared by the game's
// components. Components receive it through a Context instead of globals.
package state

import (
	"log"

	"darkmanor/pkg/game/events"
)

// Mode is the authentication mode of the current session.
type Mode int

const (
	ModeUnauthenticated Mode = iota
	ModeGuest
	ModeAuthenticated
)

func (m Mode) String() string {
	switch m {
	case ModeGuest:
		return "guest"
	case ModeAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Session records who is playing. It is never persisted.
type Session struct {
	mode   Mode
	userID string
}

func (s *Session) Mode() Mode { return s.mode }

func (s *Session) UserID() string { return s.userID }

func (s *Session) IsGuest() bool { return s.mode == ModeGuest }

func (s *Session) IsAuthenticated() bool { return s.mode == ModeAuthenticated }

// Authenticate switches to an account-backed session.
func (s *Session) Authenticate(userID string) {
	s.mode = ModeAuthenticated
	s.userID = userID
}

// PlayAsGuest switches to a session that never reaches the server.
func (s *Session) PlayAsGuest() {
	s.mode = ModeGuest
	s.userID = ""
}

// Reset forgets the session.
func (s *Session) Reset() {
	s.mode = ModeUnauthenticated
	s.userID = ""
}

// Context bundles the state every component is handed.
type Context struct {
	Session *Session
	Game    *Game
	Bus     *events.Bus
	Log     *log.Logger
}

// NewContext returns a context with a fresh unauthenticated session.
func NewContext(g *Game, logger *log.Logger) *Context {
	if logger == nil {
		logger = log.Default()
	}
	return &Context{
		Session: &Session{},
		Game:    g,
		Bus:     events.NewBus(),
		Log:     logger,
	}
}
