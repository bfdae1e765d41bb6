// Package broker orchestrates the auth client and the token exchanger
// into the four credential operations: interactive login, cached login,
// session refresh, and logout.
package broker

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/finleyb/convexbridge/internal/autherr"
	"github.com/finleyb/convexbridge/internal/authclient"
	"github.com/finleyb/convexbridge/internal/exchange"
)

// Broker produces Convex credentials from provider sessions. Operations
// are single-shot: at most one session-validating call followed by one
// exchange call, no internal retries, no coordination between concurrent
// invocations.
type Broker struct {
	client             *authclient.Client
	exchanger          *exchange.Exchanger
	enableCachedLogins bool
}

// New creates a broker for the given server base URL. The URL is
// normalized once; construction fails with ErrInvalidEndpoint when it
// cannot be parsed. opts are forwarded to the underlying auth client.
func New(serverURL string, enableCachedLogins bool, opts ...authclient.Option) (*Broker, error) {
	client, err := authclient.NewClient(serverURL, opts...)
	if err != nil {
		return nil, err
	}
	return NewWithClient(client, enableCachedLogins), nil
}

// NewWithClient creates a broker around a pre-built auth client
func NewWithClient(client *authclient.Client, enableCachedLogins bool) *Broker {
	return &Broker{
		client:             client,
		exchanger:          exchange.New(client.BaseURL(), client.HTTPClient()),
		enableCachedLogins: enableCachedLogins,
	}
}

// Login runs the interactive sign-in flow and exchanges the resulting
// session for a credential. Fails with ErrCapabilityUnavailable when the
// runtime has no interactive sign-in delegate. When refreshUser is set,
// an extra get-session round trip re-hydrates the user before the
// exchange, for callers that consider the sign-in response's embedded
// user stale.
func (b *Broker) Login(ctx context.Context, refreshUser bool) (*Credential, error) {
	data, err := b.client.SignIn(ctx)
	if err != nil {
		return nil, err
	}

	if refreshUser {
		refreshed, err := b.client.GetSession(ctx)
		if err != nil {
			return nil, err
		}
		if refreshed != nil {
			data = refreshed
		}
	}

	idToken, err := b.exchanger.Exchange(ctx, b.client.Token())
	if err != nil {
		return nil, err
	}

	log.Info().Bool("refreshUser", refreshUser).Msg("interactive login produced credential")
	return credentialFrom(idToken, data), nil
}

// LoginFromCache restores a session from the token store. It fails with
// ErrCachedLoginDisabled when the broker was constructed with cached
// logins off, and with ErrMissingToken when the store is empty; neither
// case makes a network call. Otherwise the cached token is validated
// against the server and exchanged.
func (b *Broker) LoginFromCache(ctx context.Context) (*Credential, error) {
	if !b.enableCachedLogins {
		return nil, autherr.ErrCachedLoginDisabled
	}

	if b.client.Token() == "" {
		return nil, autherr.ErrMissingToken
	}

	cred, err := b.GetSession(ctx)
	if err != nil {
		return nil, err
	}

	log.Info().Msg("cached login produced credential")
	return cred, nil
}

// GetSession validates the current session token and exchanges it for a
// credential. Callable independent of the cached-login flag; used for
// explicit session refresh. A 2xx validation response with no body still
// yields a credential, with nil user and expiry.
func (b *Broker) GetSession(ctx context.Context) (*Credential, error) {
	data, err := b.client.GetSession(ctx)
	if err != nil {
		return nil, err
	}

	idToken, err := b.exchanger.Exchange(ctx, b.client.Token())
	if err != nil {
		return nil, err
	}

	return credentialFrom(idToken, data), nil
}

// Logout signs out of the provider and clears the token store. Failures
// are propagated so callers can detect an inconsistent half-signed-out
// state.
func (b *Broker) Logout(ctx context.Context) error {
	return b.client.SignOut(ctx)
}
