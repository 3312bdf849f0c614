package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"darkmanor/pkg/server/store"
)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "auth.db"))
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return New(st, Config{Secret: []byte("test-secret"), TTL: 30 * time.Minute, BcryptCost: 4}), st
}

// requestWith returns a request carrying the cookie the service would set.
func requestWith(t *testing.T, s *Service, token string) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	s.WriteCookie(rec, token)
	req := httptest.NewRequest(http.MethodGet, "/game/sync", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestLogin_CookieAuthenticates(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	if _, err := s.Register(ctx, "alice", "pw"); err != nil {
		t.Fatal(err)
	}

	token, u, err := s.Login(ctx, "alice", "pw")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if u.Username != "alice" || token == "" {
		t.Fatalf("Login() = %q, %+v", token, u)
	}

	sess, err := s.Authenticate(ctx, requestWith(t, s, token))
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if sess.UserID != u.ID || sess.Username != "alice" {
		t.Errorf("session = %+v", sess)
	}
}

func TestWriteCookie_Attributes(t *testing.T) {
	s, _ := newTestService(t)
	rec := httptest.NewRecorder()
	s.WriteCookie(rec, "tok")

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %v", cookies)
	}
	c := cookies[0]
	if c.Name != CookieName || !c.HttpOnly || c.MaxAge != 1800 {
		t.Errorf("cookie = %+v", c)
	}
	if !strings.HasPrefix(c.Value, "Bearer ") {
		t.Errorf("value = %q, want Bearer prefix", c.Value)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	_, _ = s.Register(ctx, "alice", "pw")

	for _, tc := range []struct{ user, pass string }{{"alice", "nope"}, {"bob", "pw"}} {
		if _, _, err := s.Login(ctx, tc.user, tc.pass); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login(%s, %s) error = %v, want ErrInvalidCredentials", tc.user, tc.pass, err)
		}
	}
}

func TestRegister_Duplicate(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	_, _ = s.Register(ctx, "alice", "pw")
	if _, err := s.Register(ctx, "alice", "pw2"); !errors.Is(err, store.ErrConflict) {
		t.Errorf("error = %v, want store.ErrConflict", err)
	}
}

func TestLogin_SecondLoginEndsFirstSession(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	_, _ = s.Register(ctx, "alice", "pw")

	first, _, _ := s.Login(ctx, "alice", "pw")
	second, _, _ := s.Login(ctx, "alice", "pw")

	if _, err := s.Authenticate(ctx, requestWith(t, s, first)); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("first token error = %v, want ErrUnauthenticated", err)
	}
	if _, err := s.Authenticate(ctx, requestWith(t, s, second)); err != nil {
		t.Errorf("second token error = %v", err)
	}
}

func TestAuthenticate_Rejects(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	_, _ = s.Register(ctx, "alice", "pw")
	token, _, _ := s.Login(ctx, "alice", "pw")

	t.Run("no cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if _, err := s.Authenticate(ctx, req); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("error = %v", err)
		}
	})
	t.Run("other secret", func(t *testing.T) {
		other := New(s.store, Config{Secret: []byte("other"), BcryptCost: 4})
		if _, err := other.Authenticate(ctx, requestWith(t, s, token)); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("error = %v", err)
		}
	})
	t.Run("expired", func(t *testing.T) {
		late := New(s.store, Config{Secret: []byte("test-secret"), BcryptCost: 4})
		late.now = func() time.Time { return time.Now().Add(time.Hour) }
		if _, err := late.Authenticate(ctx, requestWith(t, s, token)); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("error = %v", err)
		}
	})
	t.Run("after logout", func(t *testing.T) {
		sess, err := s.Authenticate(ctx, requestWith(t, s, token))
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Logout(ctx, sess.UserID); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Authenticate(ctx, requestWith(t, s, token)); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("error = %v", err)
		}
	})
}

func TestDelete_ChecksPassword(t *testing.T) {
	s, st := newTestService(t)
	ctx := context.Background()
	_, _ = s.Register(ctx, "alice", "pw")

	if err := s.Delete(ctx, "alice", "bad"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Delete(bad) error = %v", err)
	}
	if err := s.Delete(ctx, "alice", "pw"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := st.UserByName(ctx, "alice"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("user survived: %v", err)
	}
}
