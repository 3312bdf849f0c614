// Package session handles registration, login, guest play and logout, and
// moves the client between the login screen and the main menu.
package session

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/leonelquinteros/gotext"

	"darkmanor/pkg/engine/clock"
	"darkmanor/pkg/engine/loop"
	"darkmanor/pkg/game/api"
	"darkmanor/pkg/game/screen"
	"darkmanor/pkg/game/state"
)

// DefaultGuestDelay is how long the guest notice stays up before the menu.
const DefaultGuestDelay = 3 * time.Second

// Client is the account part of the persistence client.
type Client interface {
	Register(ctx context.Context, user, pass string) (api.Response, error)
	Login(ctx context.Context, user, pass string) (api.Response, error)
	Logout(ctx context.Context) (api.Response, error)
	DeleteUser(ctx context.Context, user, pass string) (api.Response, error)
}

// Navigator switches screens.
type Navigator interface {
	SwitchTo(screen.Screen)
}

// Saver is the save engine as seen from a logout.
type Saver interface {
	Save(silent bool, done func(error))
	Reset()
}

// Notifier shows a short message to the player.
type Notifier interface {
	Notify(msg string)
}

// Manager owns every change to the Session.
type Manager struct {
	session *state.Session
	client  Client
	runner  loop.Runner
	clock   clock.Clock
	screens Navigator
	saver   Saver
	notify  Notifier
	log     *log.Logger

	guestDelay time.Duration
	guestTimer clock.Timer
	busy       bool
	loggingOut bool
}

// Config holds the Manager's collaborators.
type Config struct {
	Session    *state.Session
	Client     Client
	Runner     loop.Runner
	Clock      clock.Clock
	Screens    Navigator
	Saver      Saver
	Notifier   Notifier
	GuestDelay time.Duration
	Log        *log.Logger
}

// New returns a Manager.
func New(cfg Config) *Manager {
	m := &Manager{
		session:    cfg.Session,
		client:     cfg.Client,
		runner:     cfg.Runner,
		clock:      cfg.Clock,
		screens:    cfg.Screens,
		saver:      cfg.Saver,
		notify:     cfg.Notifier,
		log:        cfg.Log,
		guestDelay: cfg.GuestDelay,
	}
	if m.clock == nil {
		m.clock = clock.Real{}
	}
	if m.guestDelay <= 0 {
		m.guestDelay = DefaultGuestDelay
	}
	if m.log == nil {
		m.log = log.Default()
	}
	return m
}

// Busy reports whether a credential request is in flight.
func (m *Manager) Busy() bool { return m.busy }

func validCredentials(user, pass string) bool {
	return strings.TrimSpace(user) != "" && pass != ""
}

// Register creates an account. The player stays on the login screen and
// logs in separately.
func (m *Manager) Register(user, pass string) {
	if m.busy {
		return
	}
	if !validCredentials(user, pass) {
		m.notify.Notify(gotext.Get("Enter a username and password."))
		return
	}
	m.busy = true
	user = strings.TrimSpace(user)
	loop.Await(m.runner, func(ctx context.Context) (api.Response, error) {
		return m.client.Register(ctx, user, pass)
	}, func(res loop.Result[api.Response]) {
		m.busy = false
		if res.Err != nil {
			m.log.Printf("register %s: %v", user, res.Err)
			m.notify.Notify(failureMessage(res.Err, gotext.Get("Registration failed"), gotext.Get("Network error during registration")))
			return
		}
		m.notify.Notify(gotext.Get("Registration successful! Please log in."))
	})
}

// Login checks the credentials with the server. On success the session
// becomes authenticated and the menu is shown.
func (m *Manager) Login(user, pass string) {
	if m.busy {
		return
	}
	if !validCredentials(user, pass) {
		m.notify.Notify(gotext.Get("Enter a username and password."))
		return
	}
	m.cancelGuestTimer()
	m.busy = true
	user = strings.TrimSpace(user)
	loop.Await(m.runner, func(ctx context.Context) (api.Response, error) {
		return m.client.Login(ctx, user, pass)
	}, func(res loop.Result[api.Response]) {
		m.busy = false
		if res.Err != nil {
			m.session.Reset()
			m.log.Printf("login %s: %v", user, res.Err)
			m.notify.Notify(failureMessage(res.Err, gotext.Get("Login failed"), gotext.Get("Network error during login")))
			return
		}
		id := res.Value.User
		if id == "" {
			id = user
		}
		m.session.Authenticate(id)
		m.log.Printf("logged in as %s", id)
		m.screens.SwitchTo(screen.Menu)
	})
}

// PlayAsGuest starts an unsaved session without contacting the server and
// shows the menu after the guest notice has been up for a while.
func (m *Manager) PlayAsGuest() {
	if m.busy {
		return
	}
	m.cancelGuestTimer()
	m.session.PlayAsGuest()
	m.notify.Notify(gotext.Get("Playing as guest - progress will not be saved to your account."))
	m.guestTimer = m.clock.AfterFunc(m.guestDelay, func() {
		m.runner.Post(func() {
			m.guestTimer = nil
			if !m.session.IsGuest() {
				return
			}
			m.screens.SwitchTo(screen.Menu)
		})
	})
}

func (m *Manager) cancelGuestTimer() {
	if m.guestTimer != nil {
		m.guestTimer.Stop()
		m.guestTimer = nil
	}
}

// Logout saves silently when the session is account-backed, ends the
// server session, and returns to the login screen whatever happened.
// Calls made while a logout is in flight are ignored.
func (m *Manager) Logout() {
	if m.loggingOut {
		return
	}
	m.cancelGuestTimer()

	if !m.session.IsAuthenticated() {
		m.finishLogout()
		return
	}

	m.loggingOut = true
	m.saver.Save(true, func(err error) {
		if err != nil {
			m.log.Printf("logout: final save failed: %v", err)
		}
		loop.Await(m.runner, m.client.Logout, func(res loop.Result[api.Response]) {
			if res.Err != nil {
				m.log.Printf("logout: %v", res.Err)
			}
			m.loggingOut = false
			m.finishLogout()
		})
	})
}

func (m *Manager) finishLogout() {
	m.session.Reset()
	m.saver.Reset()
	m.screens.SwitchTo(screen.Login)
}

// DeleteAccount removes the account after checking its credentials. A
// logged-in player is returned to the login screen.
func (m *Manager) DeleteAccount(user, pass string) {
	if m.busy {
		return
	}
	if !validCredentials(user, pass) {
		m.notify.Notify(gotext.Get("Enter a username and password."))
		return
	}
	m.busy = true
	user = strings.TrimSpace(user)
	loop.Await(m.runner, func(ctx context.Context) (api.Response, error) {
		return m.client.DeleteUser(ctx, user, pass)
	}, func(res loop.Result[api.Response]) {
		m.busy = false
		if res.Err != nil {
			m.log.Printf("delete %s: %v", user, res.Err)
			m.notify.Notify(failureMessage(res.Err, gotext.Get("Account deletion failed"), gotext.Get("Network error during account deletion")))
			return
		}
		m.notify.Notify(gotext.Get("Account deleted."))
		if m.session.UserID() == user {
			m.finishLogout()
		}
	})
}

// failureMessage prefers the server's own reason for a rejection.
func failureMessage(err error, rejected, network string) string {
	if msg, ok := api.IsRejected(err); ok {
		if msg != "" {
			return msg
		}
		return rejected
	}
	if api.IsTransport(err) {
		return network
	}
	return rejected
}
