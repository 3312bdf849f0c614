package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"darkmanor/pkg/game/api"
	"darkmanor/pkg/savegame"
	"darkmanor/pkg/server/auth"
	"darkmanor/pkg/server/store"
)

type fixture struct {
	srv   *httptest.Server
	store *store.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	a := auth.New(st, auth.Config{Secret: []byte("secret"), TTL: 30 * time.Minute, BcryptCost: 4})
	s := New(st, a, []string{"http://localhost:8080/"}, log.New(io.Discard, "", 0))
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, store: st}
}

func (f *fixture) client(t *testing.T) *api.Client {
	t.Helper()
	c, err := api.New(f.srv.URL)
	if err != nil {
		t.Fatalf("api.New() error = %v", err)
	}
	return c
}

func (f *fixture) loggedIn(t *testing.T, user string) *api.Client {
	t.Helper()
	ctx := context.Background()
	c := f.client(t)
	if _, err := c.Register(ctx, user, "pw"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := c.Login(ctx, user, "pw"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	return c
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	h, err := f.client(t).Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if !h.OK || h.DBStatus != "connected" {
		t.Errorf("health = %+v", h)
	}
}

func TestRegister_DuplicateAndEmpty(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)
	ctx := context.Background()

	res, err := c.Register(ctx, "alice", "pw")
	if err != nil || res.Message != "Successfully Registered" {
		t.Fatalf("Register() = %+v, %v", res, err)
	}

	_, err = c.Register(ctx, "alice", "pw")
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusConflict || apiErr.Message != "Username already in use" {
		t.Errorf("duplicate error = %v", err)
	}

	_, err = c.Register(ctx, " ", "pw")
	if msg, ok := api.IsRejected(err); !ok || msg != "Username and password are required" {
		t.Errorf("empty error = %v", err)
	}
}

func TestLogin_Rejected(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)
	ctx := context.Background()
	_, _ = c.Register(ctx, "alice", "pw")

	_, err := c.Login(ctx, "alice", "wrong")
	if msg, ok := api.IsRejected(err); !ok || msg != "Invalid username or password" {
		t.Errorf("error = %v", err)
	}
}

func TestLogin_ReturnsUser(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)
	ctx := context.Background()
	_, _ = c.Register(ctx, "alice", "pw")

	res, err := c.Login(ctx, "alice", "pw")
	if err != nil || res.User != "alice" || res.Message != "Successfully Authorized" {
		t.Errorf("Login() = %+v, %v", res, err)
	}
}

func TestGameEndpointsRequireSession(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)
	ctx := context.Background()

	if _, err := c.SyncGame(ctx); errors.Is(err, api.ErrNotFound) || err == nil {
		t.Errorf("SyncGame() error = %v, want rejection", err)
	}
	_, err := c.SaveGame(ctx, savegame.New())
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Errorf("SaveGame() error = %v, want 401", err)
	}
}

func TestSaveThenSync(t *testing.T) {
	f := newFixture(t)
	c := f.loggedIn(t, "alice")
	ctx := context.Background()

	if _, err := c.SyncGame(ctx); !errors.Is(err, api.ErrNotFound) {
		t.Fatalf("first SyncGame() error = %v, want ErrNotFound", err)
	}

	doc := savegame.New()
	doc.Location = savegame.Location{Room: "Start", X: 10, Y: 20}
	doc.Notebook.Hints = []string{"h"}
	doc.Rev = 1
	if _, err := c.SaveGame(ctx, doc); err != nil {
		t.Fatalf("SaveGame() error = %v", err)
	}

	got, err := c.SyncGame(ctx)
	if err != nil {
		t.Fatalf("SyncGame() error = %v", err)
	}
	if got.Location != doc.Location || len(got.Notebook.Hints) != 1 || got.Rev != 1 {
		t.Errorf("SyncGame() = %+v", got)
	}
}

func TestSave_StaleRevision(t *testing.T) {
	f := newFixture(t)
	c := f.loggedIn(t, "alice")
	ctx := context.Background()

	doc := savegame.New()
	doc.Rev = 3
	if _, err := c.SaveGame(ctx, doc); err != nil {
		t.Fatal(err)
	}
	doc.Rev = 2
	_, err := c.SaveGame(ctx, doc)
	if msg, ok := api.IsRejected(err); !ok || msg != "Stale save" {
		t.Errorf("error = %v", err)
	}
}

func TestSave_InvalidDocument(t *testing.T) {
	f := newFixture(t)
	c := f.loggedIn(t, "alice")

	doc := savegame.New()
	doc.Notebook.Hints = make([]string, 1001)
	_, err := c.SaveGame(context.Background(), doc)
	if msg, ok := api.IsRejected(err); !ok || !strings.HasPrefix(msg, "Invalid save") {
		t.Errorf("error = %v", err)
	}
}

func TestUpdate_LocationAndProblem(t *testing.T) {
	f := newFixture(t)
	c := f.loggedIn(t, "alice")
	ctx := context.Background()

	loc, _ := json.Marshal(savegame.Location{Room: "Hallway", X: 200, Y: 30})
	if _, err := c.UpdateGame(ctx, savegame.UpdateEvent{Type: savegame.UpdateLocation, Msg: loc}); err != nil {
		t.Fatalf("location update error = %v", err)
	}
	for i := 0; i < 2; i++ {
		ev := savegame.UpdateEvent{Type: savegame.UpdateProblem, ID: "door-1", Msg: json.RawMessage(`{"door":1}`)}
		if _, err := c.UpdateGame(ctx, ev); err != nil {
			t.Fatalf("problem update error = %v", err)
		}
	}
	if _, err := c.UpdateGame(ctx, savegame.UpdateEvent{Type: savegame.UpdateNPC, ID: "butler", Msg: json.RawMessage(`"talked"`)}); err != nil {
		t.Fatalf("npc update error = %v", err)
	}

	got, err := c.SyncGame(ctx)
	if err != nil {
		t.Fatalf("SyncGame() error = %v", err)
	}
	if got.Location.Room != "Hallway" || got.Location.X != 200 {
		t.Errorf("location = %+v", got.Location)
	}

	u, _ := f.store.UserByName(ctx, "alice")
	done, _ := f.store.Completions(ctx, u.ID)
	if len(done) != 1 || done[0].Kind != "problem" || done[0].ItemID != "door-1" {
		t.Errorf("completions = %+v", done)
	}
	if n, _ := f.store.CountUpdates(ctx, u.ID); n != 1 {
		t.Errorf("updates = %d, want 1", n)
	}
}

func TestUpdate_RejectsUnknownType(t *testing.T) {
	f := newFixture(t)
	c := f.loggedIn(t, "alice")
	_, err := c.UpdateGame(context.Background(), savegame.UpdateEvent{Type: "teleport"})
	if msg, ok := api.IsRejected(err); !ok || msg != "Unknown update type" {
		t.Errorf("error = %v", err)
	}
}

func TestLogout_EndsSession(t *testing.T) {
	f := newFixture(t)
	c := f.loggedIn(t, "alice")
	ctx := context.Background()

	if _, err := c.Logout(ctx); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, err := c.Logout(ctx); err == nil {
		t.Error("second Logout() succeeded")
	}
	if _, err := c.SyncGame(ctx); err == nil || errors.Is(err, api.ErrNotFound) {
		t.Errorf("SyncGame() after logout error = %v", err)
	}
}

func TestLogin_ElsewhereEndsOldSession(t *testing.T) {
	f := newFixture(t)
	first := f.loggedIn(t, "alice")
	second := f.client(t)
	ctx := context.Background()
	if _, err := second.Login(ctx, "alice", "pw"); err != nil {
		t.Fatal(err)
	}

	if _, err := first.SaveGame(ctx, savegame.New()); err == nil {
		t.Error("old session still valid")
	}
	if _, err := second.SaveGame(ctx, savegame.New()); err != nil {
		t.Errorf("new session error = %v", err)
	}
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	c := f.loggedIn(t, "alice")
	ctx := context.Background()
	_, _ = c.SaveGame(ctx, savegame.New())

	if _, err := c.DeleteUser(ctx, "alice", "bad"); err == nil {
		t.Fatal("delete with wrong password succeeded")
	}
	if _, err := c.DeleteUser(ctx, "alice", "pw"); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	if _, err := c.Login(ctx, "alice", "pw"); err == nil {
		t.Error("login after delete succeeded")
	}
	if _, err := f.store.UserByName(ctx, "alice"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("user survived: %v", err)
	}
}

func TestCORS(t *testing.T) {
	f := newFixture(t)

	req, _ := http.NewRequest(http.MethodOptions, f.srv.URL+"/login", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	req.Header.Set("Access-Control-Request-Method", "POST")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNoContent {
		t.Errorf("preflight status = %d", res.StatusCode)
	}
	if res.Header.Get("Access-Control-Allow-Origin") != "http://localhost:8080" || res.Header.Get("Access-Control-Allow-Credentials") != "true" {
		t.Errorf("headers = %v", res.Header)
	}

	req.Header.Set("Origin", "http://evil.example")
	res, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusForbidden || res.Header.Get("Access-Control-Allow-Origin") != "" {
		t.Errorf("foreign preflight = %d %v", res.StatusCode, res.Header)
	}
}
