// Package store persists accounts, sessions, saved games and progress in
// SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"darkmanor/pkg/savegame"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a record already exists.
	ErrConflict = errors.New("record conflict")
	// ErrStale is returned when a save is not newer than the stored one.
	ErrStale = errors.New("stale save")
)

// User is an account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Session is a login. A user has at most one.
type Session struct {
	ID        string
	UserID    int64
	Username  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Save is the stored document of one account.
type Save struct {
	UserID    int64
	Rev       int64
	Doc       []byte
	UpdatedAt time.Time
}

// Completion is a solved problem or finished minigame.
type Completion struct {
	Kind        string
	ItemID      string
	CompletedAt time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Store is the SQLite-backed persistence layer.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, now: time.Now}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE COLLATE NOCASE,
			password_hash TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS sessions_user ON sessions(user_id);`,
		`CREATE TABLE IF NOT EXISTS saves (
			user_id INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			rev INTEGER NOT NULL,
			doc TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS completions (
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			kind TEXT NOT NULL,
			item_id TEXT NOT NULL,
			completed_at INTEGER NOT NULL,
			PRIMARY KEY (user_id, kind, item_id)
		);`,
		`CREATE TABLE IF NOT EXISTS updates (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			type TEXT NOT NULL,
			item_id TEXT NOT NULL,
			msg TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func isConstraintError(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

// CreateUser adds an account. Usernames are unique regardless of case.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (User, error) {
	u := User{Username: username, PasswordHash: passwordHash, CreatedAt: s.now().UTC()}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)`,
		u.Username, u.PasswordHash, toMillis(u.CreatedAt))
	if err != nil {
		if isConstraintError(err) {
			return User{}, ErrConflict
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}
	if u.ID, err = res.LastInsertId(); err != nil {
		return User{}, fmt.Errorf("create user id: %w", err)
	}
	return u, nil
}

// UserByName looks an account up by username.
func (s *Store) UserByName(ctx context.Context, username string) (User, error) {
	var (
		u       User
		created int64
	)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`, username)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt = fromMillis(created)
	return u, nil
}

// DeleteUser removes an account with its sessions, save and progress.
func (s *Store) DeleteUser(ctx context.Context, userID int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"sessions", "saves", "completions", "updates"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE user_id = ?`, userID); err != nil {
				return fmt.Errorf("delete %s: %w", table, err)
			}
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ReplaceSession stores sess as the only session of its user.
func (s *Store) ReplaceSession(ctx context.Context, sess Session) error {
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = s.now()
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, sess.UserID); err != nil {
			return fmt.Errorf("delete old sessions: %w", err)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
			sess.ID, sess.UserID, toMillis(sess.CreatedAt), toMillis(sess.ExpiresAt))
		if err != nil {
			if isConstraintError(err) {
				return ErrConflict
			}
			return fmt.Errorf("create session: %w", err)
		}
		return nil
	})
}

// SessionByID returns an unexpired session.
func (s *Store) SessionByID(ctx context.Context, id string) (Session, error) {
	var (
		sess             Session
		created, expires int64
	)
	row := s.db.QueryRowContext(ctx, `
SELECT s.id, s.user_id, u.username, s.created_at, s.expires_at
FROM sessions s JOIN users u ON u.id = s.user_id
WHERE s.id = ?`, id)
	if err := row.Scan(&sess.ID, &sess.UserID, &sess.Username, &created, &expires); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, fmt.Errorf("get session: %w", err)
	}
	sess.CreatedAt = fromMillis(created)
	sess.ExpiresAt = fromMillis(expires)
	if !s.now().Before(sess.ExpiresAt) {
		return Session{}, ErrNotFound
	}
	return sess, nil
}

// DeleteSessions ends every session of a user.
func (s *Store) DeleteSessions(ctx context.Context, userID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	return nil
}

// PutSave replaces the stored document. A positive rev must be newer than
// the stored revision or ErrStale is returned; rev 0 always overwrites and
// keeps the stored revision.
func (s *Store) PutSave(ctx context.Context, userID, rev int64, doc []byte) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stored, found, err := currentRev(ctx, tx, userID)
		if err != nil {
			return err
		}
		if rev > 0 && found && rev <= stored {
			return ErrStale
		}
		if rev == 0 {
			rev = stored
		}
		return upsertSave(ctx, tx, userID, rev, doc, s.now())
	})
}

// GetSave returns the stored document.
func (s *Store) GetSave(ctx context.Context, userID int64) (Save, error) {
	var (
		sv      Save
		doc     string
		updated int64
	)
	row := s.db.QueryRowContext(ctx, `SELECT user_id, rev, doc, updated_at FROM saves WHERE user_id = ?`, userID)
	if err := row.Scan(&sv.UserID, &sv.Rev, &doc, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Save{}, ErrNotFound
		}
		return Save{}, fmt.Errorf("get save: %w", err)
	}
	sv.Doc = []byte(doc)
	sv.UpdatedAt = fromMillis(updated)
	return sv, nil
}

// PatchLocation moves the player in the stored document, creating a
// default document when the account has none.
func (s *Store) PatchLocation(ctx context.Context, userID int64, loc savegame.Location) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		doc := savegame.New()
		var raw string
		rev := int64(0)
		err := tx.QueryRowContext(ctx, `SELECT rev, doc FROM saves WHERE user_id = ?`, userID).Scan(&rev, &raw)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return fmt.Errorf("get save: %w", err)
		default:
			if err := json.Unmarshal([]byte(raw), &doc); err != nil {
				return fmt.Errorf("decode stored save: %w", err)
			}
			doc.Normalize()
		}

		doc.Location = loc
		if doc.Location.Room == "" {
			doc.Location.Room = savegame.DefaultRoom
		}
		out, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode save: %w", err)
		}
		return upsertSave(ctx, tx, userID, rev, out, s.now())
	})
}

// RecordCompletion marks kind/itemID done. It reports whether this is the
// first time.
func (s *Store) RecordCompletion(ctx context.Context, userID int64, kind, itemID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO completions (user_id, kind, item_id, completed_at) VALUES (?, ?, ?, ?)`,
		userID, kind, itemID, toMillis(s.now()))
	if err != nil {
		return false, fmt.Errorf("record completion: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record completion rows affected: %w", err)
	}
	return n > 0, nil
}

// Completions lists a user's completions in the order they happened.
func (s *Store) Completions(ctx context.Context, userID int64) ([]Completion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, item_id, completed_at FROM completions WHERE user_id = ? ORDER BY completed_at, kind, item_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	var out []Completion
	for rows.Next() {
		var (
			c  Completion
			at int64
		)
		if err := rows.Scan(&c.Kind, &c.ItemID, &at); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		c.CompletedAt = fromMillis(at)
		out = append(out, c)
	}
	return out, rows.Err()
}

// AppendUpdate logs a progress update that has no dedicated handling.
func (s *Store) AppendUpdate(ctx context.Context, userID int64, typ, itemID string, msg []byte) error {
	if msg == nil {
		msg = []byte("null")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO updates (user_id, type, item_id, msg, created_at) VALUES (?, ?, ?, ?, ?)`,
		userID, typ, itemID, string(msg), toMillis(s.now()))
	if err != nil {
		return fmt.Errorf("append update: %w", err)
	}
	return nil
}

// CountUpdates returns how many logged updates a user has.
func (s *Store) CountUpdates(ctx context.Context, userID int64) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM updates WHERE user_id = ?`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count updates: %w", err)
	}
	return n, nil
}

func currentRev(ctx context.Context, tx *sql.Tx, userID int64) (int64, bool, error) {
	var rev int64
	err := tx.QueryRowContext(ctx, `SELECT rev FROM saves WHERE user_id = ?`, userID).Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get save rev: %w", err)
	}
	return rev, true, nil
}

func upsertSave(ctx context.Context, tx *sql.Tx, userID, rev int64, doc []byte, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
INSERT INTO saves (user_id, rev, doc, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET rev = excluded.rev, doc = excluded.doc, updated_at = excluded.updated_at`,
		userID, rev, string(doc), toMillis(at))
	if err != nil {
		return fmt.Errorf("upsert save: %w", err)
	}
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
