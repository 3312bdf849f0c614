package store

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"darkmanor/pkg/savegame"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "db", "test.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustUser(t *testing.T, s *Store, name string) User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), name, "hash")
	if err != nil {
		t.Fatalf("CreateUser(%q) error = %v", name, err)
	}
	return u
}

func TestCreateUser_DuplicateIsConflict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustUser(t, s, "alice")

	if _, err := s.CreateUser(ctx, "ALICE", "other"); !errors.Is(err, ErrConflict) {
		t.Errorf("CreateUser(ALICE) error = %v, want ErrConflict", err)
	}
	if _, err := s.UserByName(ctx, "bob"); !errors.Is(err, ErrNotFound) {
		t.Errorf("UserByName(bob) error = %v, want ErrNotFound", err)
	}
	u, err := s.UserByName(ctx, "alice")
	if err != nil || u.PasswordHash != "hash" {
		t.Errorf("UserByName(alice) = %+v, %v", u, err)
	}
}

func TestReplaceSession_KeepsOnlyNewest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "alice")
	exp := time.Now().Add(time.Hour)

	if err := s.ReplaceSession(ctx, Session{ID: "one", UserID: u.ID, ExpiresAt: exp}); err != nil {
		t.Fatal(err)
	}
	if err := s.ReplaceSession(ctx, Session{ID: "two", UserID: u.ID, ExpiresAt: exp}); err != nil {
		t.Fatal(err)
	}

	if _, err := s.SessionByID(ctx, "one"); !errors.Is(err, ErrNotFound) {
		t.Errorf("old session error = %v, want ErrNotFound", err)
	}
	sess, err := s.SessionByID(ctx, "two")
	if err != nil || sess.Username != "alice" {
		t.Errorf("SessionByID(two) = %+v, %v", sess, err)
	}
}

func TestSessionByID_Expired(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "alice")
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	if err := s.ReplaceSession(ctx, Session{ID: "s", UserID: u.ID, ExpiresAt: now.Add(time.Minute)}); err != nil {
		t.Fatal(err)
	}
	now = now.Add(time.Minute)
	if _, err := s.SessionByID(ctx, "s"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestPutSave_RejectsStaleRevisions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "alice")

	if err := s.PutSave(ctx, u.ID, 2, []byte(`{"rev":2}`)); err != nil {
		t.Fatal(err)
	}
	for _, rev := range []int64{1, 2} {
		if err := s.PutSave(ctx, u.ID, rev, []byte(`{}`)); !errors.Is(err, ErrStale) {
			t.Errorf("PutSave(rev %d) error = %v, want ErrStale", rev, err)
		}
	}
	if err := s.PutSave(ctx, u.ID, 0, []byte(`{"unversioned":true}`)); err != nil {
		t.Fatal(err)
	}

	sv, err := s.GetSave(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if sv.Rev != 2 || string(sv.Doc) != `{"unversioned":true}` {
		t.Errorf("save = rev %d %s", sv.Rev, sv.Doc)
	}
}

func TestGetSave_NotFound(t *testing.T) {
	s := newTestStore(t)
	u := mustUser(t, s, "alice")
	if _, err := s.GetSave(context.Background(), u.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestPatchLocation_CreatesAndKeepsNotebook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "alice")

	if err := s.PatchLocation(ctx, u.ID, savegame.Location{Room: "Hallway", X: 200, Y: 30}); err != nil {
		t.Fatal(err)
	}

	doc := savegame.New()
	doc.Notebook.Clues = []string{"c"}
	doc.Location = savegame.Location{Room: "Start", X: 1, Y: 2}
	raw, _ := json.Marshal(doc)
	if err := s.PutSave(ctx, u.ID, 1, raw); err != nil {
		t.Fatal(err)
	}
	if err := s.PatchLocation(ctx, u.ID, savegame.Location{X: 5, Y: 6}); err != nil {
		t.Fatal(err)
	}

	sv, err := s.GetSave(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	got, err := savegame.Decode(sv.Doc)
	if err != nil {
		t.Fatalf("stored save invalid: %v", err)
	}
	if got.Location != (savegame.Location{Room: savegame.DefaultRoom, X: 5, Y: 6}) {
		t.Errorf("location = %+v", got.Location)
	}
	if len(got.Notebook.Clues) != 1 || sv.Rev != 1 {
		t.Errorf("clues = %v rev = %d", got.Notebook.Clues, sv.Rev)
	}
}

func TestRecordCompletion_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "alice")

	first, err := s.RecordCompletion(ctx, u.ID, "problem", "door-1")
	if err != nil || !first {
		t.Fatalf("first = %v, %v", first, err)
	}
	again, err := s.RecordCompletion(ctx, u.ID, "problem", "door-1")
	if err != nil || again {
		t.Errorf("again = %v, %v", again, err)
	}
	list, err := s.Completions(ctx, u.ID)
	if err != nil || len(list) != 1 || list[0].ItemID != "door-1" {
		t.Errorf("Completions() = %+v, %v", list, err)
	}
}

func TestDeleteUser_RemovesEverything(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "alice")
	other := mustUser(t, s, "bob")

	_ = s.ReplaceSession(ctx, Session{ID: "s", UserID: u.ID, ExpiresAt: time.Now().Add(time.Hour)})
	_ = s.PutSave(ctx, u.ID, 1, []byte(`{}`))
	_, _ = s.RecordCompletion(ctx, u.ID, "problem", "door-1")
	_ = s.AppendUpdate(ctx, u.ID, "npc", "butler", []byte(`"talked"`))
	_ = s.AppendUpdate(ctx, other.ID, "npc", "butler", nil)

	if err := s.DeleteUser(ctx, u.ID); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}

	if _, err := s.UserByName(ctx, "alice"); !errors.Is(err, ErrNotFound) {
		t.Errorf("user survived: %v", err)
	}
	if _, err := s.SessionByID(ctx, "s"); !errors.Is(err, ErrNotFound) {
		t.Errorf("session survived: %v", err)
	}
	if _, err := s.GetSave(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("save survived: %v", err)
	}
	if n, _ := s.CountUpdates(ctx, u.ID); n != 0 {
		t.Errorf("updates = %d", n)
	}
	if n, _ := s.CountUpdates(ctx, other.ID); n != 1 {
		t.Errorf("other user's updates = %d, want 1", n)
	}
	if err := s.DeleteUser(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteUser() error = %v, want ErrNotFound", err)
	}
}
