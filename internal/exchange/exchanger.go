// Package exchange trades a valid provider session token for a
// Convex-scoped platform token.
package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/finleyb/convexbridge/internal/autherr"
)

// tokenPath is where the provider mounts the Convex token endpoint,
// relative to the auth root.
const tokenPath = "/convex/token"

// Exchanger fetches platform tokens from the provider's exchange
// endpoint. The result is never persisted; every credential-producing
// call re-fetches.
type Exchanger struct {
	baseURL    string
	httpClient *http.Client
}

// New creates an exchanger rooted at the given normalized auth-root URL
func New(baseURL string, httpClient *http.Client) *Exchanger {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Exchanger{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// Exchange issues one bearer-authenticated request with the session token
// and returns the platform token from the single-field response body.
// An empty session token is a contract violation by the caller and fails
// with ErrMissingToken without a network call.
func (e *Exchanger) Exchange(ctx context.Context, sessionToken string) (string, error) {
	if sessionToken == "" {
		return "", fmt.Errorf("%w: exchange requires a session token", autherr.ErrMissingToken)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+tokenPath, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+sessionToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Correlation-ID", uuid.New().String())

	start := time.Now()
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", &autherr.TransportError{Op: "token exchange", Cause: err}
	}
	defer resp.Body.Close()

	log.Debug().
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("token exchange completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &autherr.InvalidResponseError{Status: resp.StatusCode, Body: string(body)}
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", &autherr.DecodeError{Cause: err}
	}
	if payload.Token == "" {
		return "", &autherr.DecodeError{Cause: fmt.Errorf("response carried no token field")}
	}

	return payload.Token, nil
}
