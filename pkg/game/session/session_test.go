package session

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"testing"
	"time"

	"darkmanor/pkg/engine/clock"
	"darkmanor/pkg/engine/loop"
	"darkmanor/pkg/game/api"
	"darkmanor/pkg/game/screen"
	"darkmanor/pkg/game/state"
)

type fakeClient struct {
	calls []string

	registerErr error
	loginErr    error
	logoutErr   error
	deleteErr   error
	loginUser   string
}

func (f *fakeClient) Register(ctx context.Context, user, pass string) (api.Response, error) {
	f.calls = append(f.calls, "register")
	return api.Response{OK: f.registerErr == nil}, f.registerErr
}

func (f *fakeClient) Login(ctx context.Context, user, pass string) (api.Response, error) {
	f.calls = append(f.calls, "login")
	if f.loginErr != nil {
		return api.Response{}, f.loginErr
	}
	return api.Response{OK: true, User: f.loginUser}, nil
}

func (f *fakeClient) Logout(ctx context.Context) (api.Response, error) {
	f.calls = append(f.calls, "logout")
	return api.Response{OK: f.logoutErr == nil}, f.logoutErr
}

func (f *fakeClient) DeleteUser(ctx context.Context, user, pass string) (api.Response, error) {
	f.calls = append(f.calls, "delete")
	return api.Response{OK: f.deleteErr == nil}, f.deleteErr
}

type navigator struct{ screens []screen.Screen }

func (n *navigator) SwitchTo(s screen.Screen) { n.screens = append(n.screens, s) }

func (n *navigator) last() (screen.Screen, bool) {
	if len(n.screens) == 0 {
		return 0, false
	}
	return n.screens[len(n.screens)-1], true
}

type fakeSaver struct {
	saves  []bool
	resets int
	err    error
	client *fakeClient

	// hold keeps done callbacks until the test calls them.
	hold    bool
	pending []func(error)
}

func (f *fakeSaver) Save(silent bool, done func(error)) {
	f.saves = append(f.saves, silent)
	if f.client != nil {
		f.client.calls = append(f.client.calls, "save")
	}
	if done == nil {
		return
	}
	if f.hold {
		f.pending = append(f.pending, done)
		return
	}
	done(f.err)
}

func (f *fakeSaver) Reset() { f.resets++ }

type recorder struct{ msgs []string }

func (r *recorder) Notify(msg string) { r.msgs = append(r.msgs, msg) }

func (r *recorder) last() string {
	if len(r.msgs) == 0 {
		return ""
	}
	return r.msgs[len(r.msgs)-1]
}

type fixture struct {
	m       *Manager
	session *state.Session
	client  *fakeClient
	nav     *navigator
	saver   *fakeSaver
	notes   *recorder
	clock   *clock.Fake
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		session: &state.Session{},
		client:  &fakeClient{},
		nav:     &navigator{},
		notes:   &recorder{},
		clock:   clock.NewFake(),
	}
	f.saver = &fakeSaver{client: f.client}
	f.m = New(Config{
		Session:  f.session,
		Client:   f.client,
		Runner:   loop.Inline{},
		Clock:    f.clock,
		Screens:  f.nav,
		Saver:    f.saver,
		Notifier: f.notes,
		Log:      log.New(io.Discard, "", 0),
	})
	return f
}

func TestLogin_SuccessAuthenticatesAndShowsMenu(t *testing.T) {
	f := newFixture(t)
	f.client.loginUser = "alice"

	f.m.Login("alice", "pw")

	if !f.session.IsAuthenticated() || f.session.UserID() != "alice" {
		t.Fatalf("session = %v %q", f.session.Mode(), f.session.UserID())
	}
	if s, ok := f.nav.last(); !ok || s != screen.Menu {
		t.Errorf("screens = %v, want menu", f.nav.screens)
	}
}

func TestLogin_RejectedShowsServerMessage(t *testing.T) {
	f := newFixture(t)
	f.client.loginErr = &api.Error{Kind: api.KindRejected, Op: "login", Status: http.StatusUnauthorized, Message: "Invalid credentials"}

	f.m.Login("alice", "bad")

	if f.session.Mode() != state.ModeUnauthenticated {
		t.Errorf("mode = %v, want unauthenticated", f.session.Mode())
	}
	if len(f.nav.screens) != 0 {
		t.Errorf("screen changed to %v", f.nav.screens)
	}
	if got := f.notes.last(); got != "Invalid credentials" {
		t.Errorf("notice = %q", got)
	}
}

func TestLogin_NetworkError(t *testing.T) {
	f := newFixture(t)
	f.client.loginErr = &api.Error{Kind: api.KindTransport, Op: "login", Err: errors.New("connection refused")}

	f.m.Login("alice", "pw")

	if got := f.notes.last(); got != "Network error during login" {
		t.Errorf("notice = %q", got)
	}
}

func TestLogin_EmptyCredentialsNeverCallServer(t *testing.T) {
	f := newFixture(t)
	f.m.Login("  ", "pw")
	f.m.Register("bob", "")
	if len(f.client.calls) != 0 {
		t.Errorf("calls = %v", f.client.calls)
	}
	if len(f.notes.msgs) != 2 {
		t.Errorf("notices = %v", f.notes.msgs)
	}
}

func TestRegister_StaysOnLogin(t *testing.T) {
	f := newFixture(t)
	f.m.Register("bob", "pw")

	if f.session.IsAuthenticated() {
		t.Error("register authenticated the session")
	}
	if len(f.nav.screens) != 0 {
		t.Errorf("screens = %v", f.nav.screens)
	}
	if got := f.notes.last(); got != "Registration successful! Please log in." {
		t.Errorf("notice = %q", got)
	}
}

func TestRegister_Conflict(t *testing.T) {
	f := newFixture(t)
	f.client.registerErr = &api.Error{Kind: api.KindRejected, Op: "register", Status: http.StatusConflict}
	f.m.Register("bob", "pw")
	if got := f.notes.last(); got != "Registration failed" {
		t.Errorf("notice = %q", got)
	}
}

func TestPlayAsGuest_MenuAfterDelay(t *testing.T) {
	f := newFixture(t)
	f.m.PlayAsGuest()

	if !f.session.IsGuest() {
		t.Fatal("session not guest")
	}
	if len(f.client.calls) != 0 {
		t.Errorf("guest contacted server: %v", f.client.calls)
	}
	f.clock.Advance(DefaultGuestDelay - time.Millisecond)
	if len(f.nav.screens) != 0 {
		t.Fatal("menu shown before delay")
	}
	f.clock.Advance(time.Millisecond)
	if s, ok := f.nav.last(); !ok || s != screen.Menu {
		t.Errorf("screens = %v, want menu", f.nav.screens)
	}
}

func TestLogout_BeforeGuestDelayCancelsMenu(t *testing.T) {
	f := newFixture(t)
	f.m.PlayAsGuest()
	f.m.Logout()
	f.clock.Advance(time.Minute)

	if len(f.nav.screens) != 1 || f.nav.screens[0] != screen.Login {
		t.Errorf("screens = %v, want [login]", f.nav.screens)
	}
	if f.clock.Pending() != 0 {
		t.Error("guest timer still pending")
	}
}

func TestLogout_AuthenticatedSavesThenLogsOut(t *testing.T) {
	f := newFixture(t)
	f.session.Authenticate("alice")

	f.m.Logout()

	if len(f.saver.saves) != 1 || !f.saver.saves[0] {
		t.Errorf("saves = %v, want one silent save", f.saver.saves)
	}
	want := []string{"save", "logout"}
	if len(f.client.calls) != 2 || f.client.calls[0] != want[0] || f.client.calls[1] != want[1] {
		t.Errorf("calls = %v, want %v", f.client.calls, want)
	}
	if f.session.Mode() != state.ModeUnauthenticated || f.saver.resets != 1 {
		t.Errorf("mode=%v resets=%d", f.session.Mode(), f.saver.resets)
	}
	if s, _ := f.nav.last(); s != screen.Login {
		t.Errorf("screens = %v", f.nav.screens)
	}
}

func TestLogout_IgnoredWhileInFlight(t *testing.T) {
	f := newFixture(t)
	f.session.Authenticate("alice")
	f.saver.hold = true

	f.m.Logout()
	f.m.Logout()
	if len(f.saver.pending) != 1 {
		t.Fatalf("saves started = %d, want 1", len(f.saver.pending))
	}
	f.saver.pending[0](nil)

	want := []string{"save", "logout"}
	if len(f.client.calls) != 2 || f.client.calls[0] != want[0] || f.client.calls[1] != want[1] {
		t.Errorf("calls = %v, want %v", f.client.calls, want)
	}
	if len(f.nav.screens) != 1 || f.saver.resets != 1 {
		t.Errorf("screens = %v, resets = %d, want one logout", f.nav.screens, f.saver.resets)
	}

	f.session.Authenticate("alice")
	f.saver.hold = false
	f.m.Logout()
	if f.session.IsAuthenticated() {
		t.Error("a later logout was ignored")
	}
}

func TestLogout_FailuresStillReturnToLogin(t *testing.T) {
	f := newFixture(t)
	f.session.Authenticate("alice")
	f.saver.err = errors.New("save failed")
	f.client.logoutErr = &api.Error{Kind: api.KindTransport, Op: "logout"}

	f.m.Logout()

	if f.session.Mode() != state.ModeUnauthenticated {
		t.Errorf("mode = %v", f.session.Mode())
	}
	if s, _ := f.nav.last(); s != screen.Login {
		t.Errorf("screens = %v", f.nav.screens)
	}
}

func TestLogout_GuestSkipsNetwork(t *testing.T) {
	f := newFixture(t)
	f.session.PlayAsGuest()
	f.m.Logout()
	if len(f.client.calls) != 0 || len(f.saver.saves) != 0 {
		t.Errorf("calls=%v saves=%v", f.client.calls, f.saver.saves)
	}
}

func TestDeleteAccount_LoggedInUserReturnsToLogin(t *testing.T) {
	f := newFixture(t)
	f.session.Authenticate("alice")

	f.m.DeleteAccount("alice", "pw")

	if got := f.notes.last(); got != "Account deleted." {
		t.Errorf("notice = %q", got)
	}
	if f.session.IsAuthenticated() {
		t.Error("session survived account deletion")
	}
}

func TestDeleteAccount_NotFound(t *testing.T) {
	f := newFixture(t)
	f.client.deleteErr = &api.Error{Kind: api.KindNotFound, Op: "delete", Status: http.StatusNotFound, Message: "User not found"}
	f.m.DeleteAccount("ghost", "pw")
	if got := f.notes.last(); got != "Account deletion failed" {
		t.Errorf("notice = %q", got)
	}
}
