// Package authclient wraps the identity provider's HTTP surface and owns
// the token store holding the current session token.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/finleyb/convexbridge/internal/autherr"
	"github.com/finleyb/convexbridge/internal/endpoint"
	"github.com/finleyb/convexbridge/internal/store"
)

// Client performs the provider's sign-in, session-validation and
// sign-out calls and keeps the current session token cached in memory,
// backed by a TokenStore for persistence across process runs.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      store.TokenStore
	delegate   SignInDelegate
	listener   TokenListener

	mu     sync.RWMutex
	token  string
	loaded bool
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client (30s timeout)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTokenStore replaces the default in-memory token store
func WithTokenStore(s store.TokenStore) Option {
	return func(c *Client) {
		c.store = s
	}
}

// WithSignInDelegate enables interactive sign-in via the given delegate
func WithSignInDelegate(d SignInDelegate) Option {
	return func(c *Client) {
		c.delegate = d
	}
}

// WithTokenListener registers a sink for token change notifications
func WithTokenListener(l TokenListener) Option {
	return func(c *Client) {
		c.listener = l
	}
}

// NewClient creates an auth client for the given server base URL. The URL
// is normalized to the canonical auth root once, at construction.
func NewClient(serverURL string, opts ...Option) (*Client, error) {
	baseURL, err := endpoint.Normalize(serverURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		store:      store.NewMemoryStore(),
	}

	for _, opt := range opts {
		opt(c)
	}

	log.Debug().
		Str("baseUrl", baseURL).
		Bool("interactive", c.delegate != nil).
		Msg("auth client initialized")

	return c, nil
}

// BaseURL returns the normalized auth-root URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HTTPClient returns the underlying HTTP client so collaborators making
// their own provider calls share one transport and timeout configuration.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Token returns the current session token, loading it from the token
// store on first access. Returns empty string when no token exists.
func (c *Client) Token() string {
	c.mu.RLock()
	if c.loaded {
		token := c.token
		c.mu.RUnlock()
		return token
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return c.token
	}

	token, err := c.store.RetrieveToken()
	if err != nil {
		log.Debug().Err(err).Msg("failed to read session token from store")
		return ""
	}

	c.token = token
	c.loaded = true
	return token
}

// SignIn runs the interactive sign-in flow through the configured
// delegate and persists the resulting session token. Fails with
// ErrCapabilityUnavailable when no delegate is configured and with
// ErrMissingToken when the handshake succeeds but the payload carries no
// usable session.
func (c *Client) SignIn(ctx context.Context) (*SessionData, error) {
	c.mu.RLock()
	delegate := c.delegate
	c.mu.RUnlock()

	if delegate == nil {
		return nil, autherr.ErrCapabilityUnavailable
	}

	data, err := delegate.SignIn(ctx, c)
	if err != nil {
		return nil, err
	}

	if data == nil || data.Session == nil || data.Session.Token == "" {
		return nil, autherr.ErrMissingToken
	}

	c.setToken(data.Session.Token)

	log.Info().Msg("interactive sign-in succeeded")
	return data, nil
}

// GetSession validates the current session token against the server and
// returns the (re-)hydrated session payload. A 2xx response with an empty
// body yields (nil, nil): validation succeeded, hydration did not. If the
// server rotates the token, the replacement is persisted before returning.
func (c *Client) GetSession(ctx context.Context) (*SessionData, error) {
	token := c.Token()
	if token == "" {
		return nil, autherr.ErrMissingToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/session", nil)
	if err != nil {
		return nil, err
	}

	env, err := c.do(req, "get session", token)
	if err != nil {
		return nil, err
	}

	if env.Data != nil && env.Data.Session != nil && env.Data.Session.Token != "" && env.Data.Session.Token != token {
		log.Debug().Msg("server rotated session token")
		c.setToken(env.Data.Session.Token)
	}

	return env.Data, nil
}

// SignOut terminates the server-side session and clears the token store.
// Failures are propagated, not swallowed: an error means the caller may
// be left with a server session and local token in inconsistent states.
func (c *Client) SignOut(ctx context.Context) error {
	token := c.Token()

	if token != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/signout", nil)
		if err != nil {
			return err
		}

		if _, err := c.do(req, "sign out", token); err != nil {
			return err
		}
	}

	if err := c.clearToken(); err != nil {
		return fmt.Errorf("failed to clear token store: %w", err)
	}

	log.Info().Msg("signed out")
	return nil
}

// PostSignIn posts a JSON body to the named sign-in mechanism endpoint
// and decodes the session envelope. Used by SignInDelegate implementations.
func (c *Client) PostSignIn(ctx context.Context, mechanism string, body any) (*SessionData, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+mechanism, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	env, err := c.do(req, "sign in", "")
	if err != nil {
		return nil, err
	}

	return env.Data, nil
}

// do executes a request against the provider, classifying failures into
// the shared taxonomy. token, when non-empty, is sent as bearer credential.
func (c *Client) do(req *http.Request, op, token string) (*Envelope, error) {
	correlationID := uuid.New().String()
	req.Header.Set("X-Correlation-ID", correlationID)
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	logger := log.With().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Str("correlationId", correlationID).
		Logger()

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Debug().Err(err).Msg("provider request failed")
		return nil, &autherr.TransportError{Op: op, Cause: err}
	}
	defer resp.Body.Close()

	logger.Debug().
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("provider request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &autherr.InvalidResponseError{Status: resp.StatusCode, Body: string(body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &autherr.TransportError{Op: op, Cause: err}
	}

	// Some endpoints return 2xx with no body at all. Treat that the same
	// as an envelope without data.
	if len(bytes.TrimSpace(body)) == 0 {
		return &Envelope{Success: true}, nil
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &autherr.DecodeError{Cause: err}
	}

	return &env, nil
}

// setToken persists a new session token. A store write failure is logged
// and tolerated: the in-memory token still serves the current process.
func (c *Client) setToken(token string) {
	if err := c.store.StoreToken(token); err != nil {
		log.Warn().Err(err).Msg("failed to persist session token, keeping it in-memory only")
	}

	c.mu.Lock()
	c.token = token
	c.loaded = true
	listener := c.listener
	c.mu.Unlock()

	if listener != nil {
		listener.TokenChanged(token)
	}
}

// clearToken removes the session token from the store and memory
func (c *Client) clearToken() error {
	err := c.store.DeleteToken()

	c.mu.Lock()
	c.token = ""
	c.loaded = true
	listener := c.listener
	c.mu.Unlock()

	if listener != nil {
		listener.TokenChanged("")
	}

	return err
}
