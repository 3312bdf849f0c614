// Package api is the client for the persistence server: accounts,
// sessions and the saved game.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"darkmanor/pkg/savegame"
)

const maxBody = 1 << 20

// Response is the envelope every mutating endpoint answers with.
type Response struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	User    string `json:"user,omitempty"`
}

// Credentials is the body of register, login and delete.
type Credentials struct {
	User string `json:"user"`
	Pass string `json:"pass"`
}

// Health is the answer of the health probe.
type Health struct {
	OK       bool   `json:"ok"`
	DBStatus string `json:"db_status"`
}

// Client talks to the persistence server. The session cookie set by Login
// is kept in the client's cookie jar and sent on every later call.
type Client struct {
	base *url.URL
	http *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its Jar is replaced
// with a fresh cookie jar if nil.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New returns a client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api url %q must be absolute", baseURL)
	}
	c := &Client{base: u, http: &http.Client{Timeout: 10 * time.Second}}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		c.http.Jar = jar
	}
	return c, nil
}

// BaseURL returns the server address.
func (c *Client) BaseURL() string { return c.base.String() }

func (c *Client) Register(ctx context.Context, user, pass string) (Response, error) {
	return c.call(ctx, "register", http.MethodPost, "/register", Credentials{User: user, Pass: pass})
}

func (c *Client) Login(ctx context.Context, user, pass string) (Response, error) {
	return c.call(ctx, "login", http.MethodPost, "/login", Credentials{User: user, Pass: pass})
}

func (c *Client) Logout(ctx context.Context) (Response, error) {
	return c.call(ctx, "logout", http.MethodPost, "/logout", nil)
}

func (c *Client) DeleteUser(ctx context.Context, user, pass string) (Response, error) {
	return c.call(ctx, "delete", http.MethodDelete, "/delete", Credentials{User: user, Pass: pass})
}

// SaveGame replaces the account's saved game with doc.
func (c *Client) SaveGame(ctx context.Context, doc savegame.Document) (Response, error) {
	doc.Normalize()
	return c.call(ctx, "save", http.MethodPost, "/game/save", doc)
}

// UpdateGame sends a partial update.
func (c *Client) UpdateGame(ctx context.Context, ev savegame.UpdateEvent) (Response, error) {
	return c.call(ctx, "update", http.MethodPut, "/game/update", ev)
}

// SyncGame fetches the account's saved game. A missing save is reported
// as an error matching ErrNotFound.
func (c *Client) SyncGame(ctx context.Context) (savegame.Document, error) {
	const op = "sync"
	status, body, err := c.do(ctx, op, http.MethodGet, "/game/sync", nil)
	if err != nil {
		return savegame.Document{}, err
	}
	if status == http.StatusNotFound {
		return savegame.Document{}, &Error{Kind: KindNotFound, Op: op, Status: status, Message: envelopeMessage(body)}
	}
	if status < 200 || status > 299 {
		return savegame.Document{}, failure(op, status, body)
	}
	var doc savegame.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return savegame.Document{}, &Error{Kind: KindTransport, Op: op, Status: status, Err: fmt.Errorf("decode save: %w", err)}
	}
	doc.Normalize()
	return doc, nil
}

// Health probes the server and its database.
func (c *Client) Health(ctx context.Context) (Health, error) {
	const op = "health"
	status, body, err := c.do(ctx, op, http.MethodGet, "/health", nil)
	if err != nil {
		return Health{}, err
	}
	var h Health
	if err := json.Unmarshal(body, &h); err != nil {
		return Health{}, &Error{Kind: KindTransport, Op: op, Status: status, Err: err}
	}
	return h, nil
}

// WaitHealthy polls Health with exponential backoff until the server
// reports a connected database or maxWait elapses.
func (c *Client) WaitHealthy(ctx context.Context, initial, maxWait time.Duration) (Health, error) {
	b := backoff.NewExponentialBackOff()
	if initial > 0 {
		b.InitialInterval = initial
	}
	return backoff.Retry(ctx, func() (Health, error) {
		h, err := c.Health(ctx)
		if err != nil {
			return h, err
		}
		if !h.OK {
			return h, fmt.Errorf("database %s", h.DBStatus)
		}
		return h, nil
	}, backoff.WithBackOff(b), backoff.WithMaxElapsedTime(maxWait))
}

// call performs a request answered by a Response envelope. Anything other
// than a 2xx answer carrying ok:true is an *Error.
func (c *Client) call(ctx context.Context, op, method, path string, in any) (Response, error) {
	status, body, err := c.do(ctx, op, method, path, in)
	if err != nil {
		return Response{}, err
	}
	var resp Response
	if jerr := json.Unmarshal(body, &resp); jerr != nil {
		return Response{}, failure(op, status, body)
	}
	if !resp.OK {
		msg := resp.Message
		if msg == "" {
			msg = http.StatusText(status)
		}
		return resp, &Error{Kind: KindRejected, Op: op, Status: status, Message: msg}
	}
	if status < 200 || status > 299 {
		return resp, failure(op, status, body)
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, in any) (int, []byte, error) {
	var rd io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return 0, nil, &Error{Kind: KindTransport, Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, rd)
	if err != nil {
		return 0, nil, &Error{Kind: KindTransport, Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return 0, nil, &Error{Kind: KindTransport, Op: op, Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
	if err != nil {
		return res.StatusCode, nil, &Error{Kind: KindTransport, Op: op, Status: res.StatusCode, Err: err}
	}
	return res.StatusCode, body, nil
}

// failure classifies a non-success answer: a readable ok:false envelope is
// a rejection, anything else a transport failure.
func failure(op string, status int, body []byte) error {
	var resp Response
	if err := json.Unmarshal(body, &resp); err == nil && !resp.OK && resp.Message != "" {
		return &Error{Kind: KindRejected, Op: op, Status: status, Message: resp.Message}
	}
	return &Error{Kind: KindTransport, Op: op, Status: status, Err: errors.New(http.StatusText(status))}
}

func envelopeMessage(body []byte) string {
	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return ""
	}
	return resp.Message
}
