// Package httpapi serves the persistence API used by the game client.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/zyedidia/generic/mapset"

	"darkmanor/pkg/savegame"
	"darkmanor/pkg/server/auth"
	"darkmanor/pkg/server/store"
)

const maxBody = 1 << 20

// Store is the part of the store the handlers use directly.
type Store interface {
	Ping(ctx context.Context) error
	PutSave(ctx context.Context, userID, rev int64, doc []byte) error
	GetSave(ctx context.Context, userID int64) (store.Save, error)
	PatchLocation(ctx context.Context, userID int64, loc savegame.Location) error
	RecordCompletion(ctx context.Context, userID int64, kind, itemID string) (bool, error)
	AppendUpdate(ctx context.Context, userID int64, typ, itemID string, msg []byte) error
}

// Server holds the handlers' dependencies.
type Server struct {
	store   Store
	auth    *auth.Service
	origins mapset.Set[string]
	log     *log.Logger
}

// New returns a Server. Requests from origins get CORS headers allowing
// credentials.
func New(st Store, a *auth.Service, origins []string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{store: st, auth: a, origins: mapset.New[string](), log: logger}
	for _, o := range origins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			s.origins.Put(o)
		}
	}
	return s
}

// Handler returns the complete API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("HEAD /health", s.handleHealth)
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.authed(s.handleLogout))
	mux.HandleFunc("DELETE /delete", s.handleDelete)
	mux.HandleFunc("POST /game/save", s.authed(s.handleSave))
	mux.HandleFunc("GET /game/sync", s.authed(s.handleSync))
	mux.HandleFunc("PUT /game/update", s.authed(s.handleUpdate))

	return s.logRequests(s.cors(gzhttp.GzipHandler(mux)))
}

type envelope struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	User    string `json:"user,omitempty"`
}

type credentials struct {
	User string `json:"user"`
	Pass string `json:"pass"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, envelope{OK: true, Message: msg})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{OK: false, Message: msg})
}

func readBody(r *http.Request) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r.Body, maxBody))
}

func decode(r *http.Request, v any) error {
	raw, err := readBody(r)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func (s *Server) readCredentials(w http.ResponseWriter, r *http.Request) (credentials, bool) {
	var c credentials
	if err := decode(r, &c); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request")
		return credentials{}, false
	}
	c.User = strings.TrimSpace(c.User)
	if c.User == "" || c.Pass == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return credentials{}, false
	}
	return c, true
}

func (s *Server) internal(w http.ResponseWriter, op string, err error) {
	s.log.Printf("%s: %v", op, err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

type health struct {
	OK       bool   `json:"ok"`
	DBStatus string `json:"db_status"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	h := health{OK: true, DBStatus: "connected"}
	if err := s.store.Ping(ctx); err != nil {
		s.log.Printf("health: %v", err)
		h = health{OK: false, DBStatus: "disconnected"}
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	c, ok := s.readCredentials(w, r)
	if !ok {
		return
	}
	_, err := s.auth.Register(r.Context(), c.User, c.Pass)
	switch {
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "Username already in use")
	case err != nil:
		s.internal(w, "register", err)
	default:
		writeOK(w, "Successfully Registered")
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	c, ok := s.readCredentials(w, r)
	if !ok {
		return
	}
	token, u, err := s.auth.Login(r.Context(), c.User, c.Pass)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
	case err != nil:
		s.internal(w, "login", err)
	default:
		s.auth.WriteCookie(w, token)
		writeJSON(w, http.StatusOK, envelope{OK: true, Message: "Successfully Authorized", User: u.Username})
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, sess store.Session) {
	if err := s.auth.Logout(r.Context(), sess.UserID); err != nil {
		s.internal(w, "logout", err)
		return
	}
	s.auth.ClearCookie(w)
	writeOK(w, "Successfully logged out")
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	c, ok := s.readCredentials(w, r)
	if !ok {
		return
	}
	current, authErr := s.auth.Authenticate(r.Context(), r)

	err := s.auth.Delete(r.Context(), c.User, c.Pass)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case err != nil:
		s.internal(w, "delete", err)
	default:
		if authErr == nil && strings.EqualFold(current.Username, c.User) {
			s.auth.ClearCookie(w)
		}
		writeOK(w, "Account deleted")
	}
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request, sess store.Session) {
	raw, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request")
		return
	}
	doc, err := savegame.Decode(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid save: %v", err))
		return
	}
	out, err := json.Marshal(doc)
	if err != nil {
		s.internal(w, "save", err)
		return
	}

	err = s.store.PutSave(r.Context(), sess.UserID, doc.Rev, out)
	switch {
	case errors.Is(err, store.ErrStale):
		writeError(w, http.StatusConflict, "Stale save")
	case err != nil:
		s.internal(w, "save", err)
	default:
		writeOK(w, "Game saved")
	}
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request, sess store.Session) {
	sv, err := s.store.GetSave(r.Context(), sess.UserID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "No save found")
		return
	}
	if err != nil {
		s.internal(w, "sync", err)
		return
	}

	var doc savegame.Document
	if err := json.Unmarshal(sv.Doc, &doc); err != nil {
		s.internal(w, "sync", fmt.Errorf("stored save for user %d: %w", sess.UserID, err))
		return
	}
	doc.Normalize()
	doc.Rev = sv.Rev
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request, sess store.Session) {
	var ev savegame.UpdateEvent
	if err := decode(r, &ev); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request")
		return
	}
	if !ev.Type.Valid() {
		writeError(w, http.StatusBadRequest, "Unknown update type")
		return
	}

	ctx := r.Context()
	switch ev.Type {
	case savegame.UpdateLocation:
		var loc savegame.Location
		if err := json.Unmarshal(ev.Msg, &loc); err != nil {
			writeError(w, http.StatusBadRequest, "Malformed location")
			return
		}
		if err := s.store.PatchLocation(ctx, sess.UserID, loc); err != nil {
			s.internal(w, "update location", err)
			return
		}
	case savegame.UpdateProblem, savegame.UpdateMinigame:
		id := strings.TrimSpace(ev.ID)
		if id == "" {
			writeError(w, http.StatusBadRequest, "Missing id")
			return
		}
		first, err := s.store.RecordCompletion(ctx, sess.UserID, string(ev.Type), id)
		if err != nil {
			s.internal(w, "update completion", err)
			return
		}
		if first {
			s.log.Printf("user %s completed %s %s", sess.Username, ev.Type, id)
		}
	default:
		if err := s.store.AppendUpdate(ctx, sess.UserID, string(ev.Type), ev.ID, ev.Msg); err != nil {
			s.internal(w, "update", err)
			return
		}
	}
	writeOK(w, "Progress updated")
}

// authed resolves the session before calling h; requests without one get
// 401.
func (s *Server) authed(h func(http.ResponseWriter, *http.Request, store.Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.auth.Authenticate(r.Context(), r)
		if errors.Is(err, auth.ErrUnauthenticated) {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		if err != nil {
			s.internal(w, "authenticate", err)
			return
		}
		h(w, r, sess)
	}
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowed := origin != "" && s.origins.Has(strings.TrimRight(origin, "/"))
		if allowed {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, HEAD, POST, PUT, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Accept")
			h.Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			if !allowed {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond))
	})
}
