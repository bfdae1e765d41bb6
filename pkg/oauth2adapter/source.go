// Package oauth2adapter exposes the credential broker through the
// golang.org/x/oauth2 TokenSource interface, for callers already built
// around that contract. The broker core does not depend on oauth2; only
// deployments importing this package link it.
package oauth2adapter

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/finleyb/convexbridge/internal/authclient"
	"github.com/finleyb/convexbridge/internal/broker"
	"github.com/finleyb/convexbridge/internal/store"
)

// tokenSource produces a fresh platform token per call. No caching: the
// broker deliberately re-fetches on every credential-producing call, and
// callers wanting reuse wrap this in oauth2.ReuseTokenSource.
type tokenSource struct {
	ctx    context.Context
	broker *broker.Broker
}

var _ oauth2.TokenSource = (*tokenSource)(nil)

// New creates a TokenSource for the given server base URL, restoring the
// session from the OS keychain. ctx bounds every token fetch made through
// the source.
func New(ctx context.Context, serverURL string) (oauth2.TokenSource, error) {
	b, err := broker.New(serverURL, true,
		authclient.WithTokenStore(store.NewKeyringStore(serverURL)),
	)
	if err != nil {
		return nil, err
	}
	return NewWithBroker(ctx, b), nil
}

// NewWithBroker wraps an existing broker
func NewWithBroker(ctx context.Context, b *broker.Broker) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, broker: b}
}

// Token validates the current session and exchanges it for a platform
// token. Errors surface unchanged from the broker's taxonomy.
func (ts *tokenSource) Token() (*oauth2.Token, error) {
	cred, err := ts.broker.GetSession(ts.ctx)
	if err != nil {
		return nil, err
	}

	idToken := broker.ExtractIDToken(cred)
	return &oauth2.Token{
		AccessToken: idToken,
		TokenType:   "Bearer",
		Expiry:      platformExpiry(idToken),
	}, nil
}

// platformExpiry reads the exp claim of the platform JWT without
// verifying its signature; the zero time means no known expiry.
func platformExpiry(idToken string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return time.Time{}
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
