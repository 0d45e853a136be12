package zabbix

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zbridge-io/zbridge/core/logx"
	"github.com/zbridge-io/zbridge/core/secret"
	"github.com/zbridge-io/zbridge/internal/tokenstore"
)

// Credentials identify a Zabbix API user.
type Credentials struct {
	User     string
	Password string
}

// Client issues JSON-RPC calls against one Zabbix endpoint and owns the
// authenticated session for it. A single Client is shared across all bridge
// callers; mu totally orders login, logout, and authenticated calls on the
// shared token, which is the pooled-session discipline the bridge relies on.
type Client struct {
	endpoint string
	creds    Credentials
	httpc    *http.Client
	timeout  time.Duration
	tokens   tokenstore.Store

	mu     sync.Mutex
	nextID atomic.Int64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// WithTokenStore replaces the in-memory token store, e.g. with the
// Redis-backed store so replicas share one session.
func WithTokenStore(s tokenstore.Store) Option {
	return func(c *Client) { c.tokens = s }
}

// NewClient constructs a Client for the given endpoint. timeout bounds each
// backend round trip; zero disables the bound.
func NewClient(endpoint string, creds Credentials, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		creds:    creds,
		httpc:    http.DefaultClient,
		timeout:  timeout,
		tokens:   tokenstore.NewMemoryStore(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// request is the JSON-RPC 2.0 request body sent to the Zabbix endpoint.
type request struct {
	JSONRPC string  `json:"jsonrpc"`
	Method  string  `json:"method"`
	Params  any     `json:"params"`
	ID      int64   `json:"id"`
	Auth    *string `json:"auth,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *apiErrorBody   `json:"error"`
	ID      int64           `json:"id"`
}

type apiErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// Login authenticates against the backend and stores the returned token.
func (c *Client) Login(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loginLocked(ctx)
}

func (c *Client) loginLocked(ctx context.Context) error {
	if c.creds.User == "" {
		return ErrAuthRequired
	}
	params := map[string]string{"username": c.creds.User, "password": c.creds.Password}
	raw, err := c.roundTrip(ctx, "user.login", params, nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return &AuthError{Reason: apiErr.Message}
		}
		return err
	}
	var token string
	if json.Unmarshal(raw, &token) != nil || token == "" {
		return &AuthError{Reason: "login returned no token"}
	}
	c.tokens.Put(token)
	logx.Log.Info().Str("endpoint", c.endpoint).Str("user", c.creds.User).Str("token", secret.Mask(token)).Msg("zabbix session opened")
	return nil
}

// Logout ends the session. The local token is cleared unconditionally: a
// remote failure is logged but never blocks local cleanup, because a token
// the backend may or may not still honor is useless to us either way. With
// no token held this is a no-op.
func (c *Client) Logout(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	token := c.tokens.Get()
	if token == "" {
		return nil
	}
	c.tokens.Clear()
	if _, err := c.roundTrip(ctx, "user.logout", map[string]string{}, &token); err != nil {
		logx.Log.Warn().Err(err).Msg("zabbix logout failed; local session cleared anyway")
		return err
	}
	logx.Log.Debug().Str("endpoint", c.endpoint).Msg("zabbix session closed")
	return nil
}

// Call issues one JSON-RPC request. When requiresAuth is set, a session is
// established first if none exists, and a token the backend has invalidated
// is dropped so the next call logs in again.
func (c *Client) Call(ctx context.Context, method string, params any, requiresAuth bool) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var auth *string
	if requiresAuth {
		token := c.tokens.Get()
		if token == "" {
			if err := c.loginLocked(ctx); err != nil {
				return nil, err
			}
			token = c.tokens.Get()
		}
		auth = &token
	}
	raw, err := c.roundTrip(ctx, method, params, auth)
	if err != nil && IsAuthFailure(err) {
		c.tokens.Clear()
	}
	return raw, err
}

// roundTrip performs one HTTP POST to the endpoint with a fresh request id.
// Ids come from a process-local counter starting at 1 and are never reused.
func (c *Client) roundTrip(ctx context.Context, method string, params any, auth *string) (json.RawMessage, error) {
	id := c.nextID.Add(1)
	body, err := json.Marshal(request{JSONRPC: "2.0", Method: method, Params: params, ID: id, Auth: auth})
	if err != nil {
		return nil, err
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json-rpc")
	logx.Log.Debug().Str("method", method).Int64("id", id).Msg("zabbix rpc")
	resp, err := c.httpc.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s after %s", ErrTimeout, method, c.timeout)
		}
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("zabbix: unexpected status %s", resp.Status)
	}
	var r response
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("zabbix: malformed response: %w", err)
	}
	if r.Error != nil {
		return nil, &APIError{Code: r.Error.Code, Message: r.Error.Message, Data: r.Error.Data}
	}
	return r.Result, nil
}

// LastRequestID returns the most recently issued request id.
func (c *Client) LastRequestID() int64 {
	return c.nextID.Load()
}

// Authenticated reports whether a session token is currently held.
func (c *Client) Authenticated() bool {
	return c.tokens.Get() != ""
}
