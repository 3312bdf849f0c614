// Package auth handles passwords, sessions and the session cookie of the
// persistence server.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"darkmanor/pkg/server/store"
)

// CookieName is the session cookie.
const CookieName = "access_token"

const bearerPrefix = "Bearer "

var (
	// ErrInvalidCredentials is returned for an unknown user or a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUnauthenticated is returned when a request carries no valid session.
	ErrUnauthenticated = errors.New("not authenticated")
)

// Store is the part of the store the service needs.
type Store interface {
	CreateUser(ctx context.Context, username, passwordHash string) (store.User, error)
	UserByName(ctx context.Context, username string) (store.User, error)
	DeleteUser(ctx context.Context, userID int64) error
	ReplaceSession(ctx context.Context, sess store.Session) error
	SessionByID(ctx context.Context, id string) (store.Session, error)
	DeleteSessions(ctx context.Context, userID int64) error
}

// Config configures a Service.
type Config struct {
	Secret        []byte
	TTL           time.Duration
	BcryptCost    int
	SecureCookies bool
}

// Service issues and checks sessions.
type Service struct {
	store  Store
	secret []byte
	ttl    time.Duration
	cost   int
	secure bool
	now    func() time.Time
}

// New returns a Service.
func New(st Store, cfg Config) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Minute
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		store:  st,
		secret: cfg.Secret,
		ttl:    cfg.TTL,
		cost:   cfg.BcryptCost,
		secure: cfg.SecureCookies,
		now:    time.Now,
	}
}

type claims struct {
	jwt.RegisteredClaims
}

// Register creates an account. A taken username is store.ErrConflict.
func (s *Service) Register(ctx context.Context, username, password string) (store.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return store.User{}, fmt.Errorf("hash password: %w", err)
	}
	return s.store.CreateUser(ctx, username, string(hash))
}

// Verify checks a username and password.
func (s *Service) Verify(ctx context.Context, username, password string) (store.User, error) {
	u, err := s.store.UserByName(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return store.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return store.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return store.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Login verifies the credentials and starts a session, ending any other
// session of the user. It returns the signed token for the cookie.
func (s *Service) Login(ctx context.Context, username, password string) (string, store.User, error) {
	u, err := s.Verify(ctx, username, password)
	if err != nil {
		return "", store.User{}, err
	}

	now := s.now()
	sess := store.Session{ID: uuid.NewString(), UserID: u.ID, CreatedAt: now, ExpiresAt: now.Add(s.ttl)}
	if err := s.store.ReplaceSession(ctx, sess); err != nil {
		return "", store.User{}, fmt.Errorf("store session: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{jwt.RegisteredClaims{
		ID:        sess.ID,
		Subject:   u.Username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
	}})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", store.User{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, u, nil
}

// Authenticate resolves the session behind the request's cookie.
func (s *Service) Authenticate(ctx context.Context, r *http.Request) (store.Session, error) {
	raw, ok := readCookie(r)
	if !ok {
		return store.Session{}, ErrUnauthenticated
	}

	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || c.ID == "" {
		return store.Session{}, ErrUnauthenticated
	}

	sess, err := s.store.SessionByID(ctx, c.ID)
	if errors.Is(err, store.ErrNotFound) {
		return store.Session{}, ErrUnauthenticated
	}
	if err != nil {
		return store.Session{}, err
	}
	return sess, nil
}

// Logout ends every session of the user.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	return s.store.DeleteSessions(ctx, userID)
}

// Delete removes an account after checking its password.
func (s *Service) Delete(ctx context.Context, username, password string) error {
	u, err := s.Verify(ctx, username, password)
	if err != nil {
		return err
	}
	return s.store.DeleteUser(ctx, u.ID)
}

// WriteCookie sets the session cookie.
func (s *Service) WriteCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    bearerPrefix + token,
		Path:     "/",
		MaxAge:   int(s.ttl / time.Second),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: s.sameSite(),
	})
}

// ClearCookie expires the session cookie.
func (s *Service) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: s.sameSite(),
		MaxAge:   -1,
	})
}

// Browsers only send cross-site cookies that are both SameSite=None and
// Secure.
func (s *Service) sameSite() http.SameSite {
	if s.secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func readCookie(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie == nil {
		return "", false
	}
	value := strings.TrimSpace(cookie.Value)
	value = strings.TrimSpace(strings.TrimPrefix(value, strings.TrimSpace(bearerPrefix)))
	if value == "" {
		return "", false
	}
	return value, true
}
