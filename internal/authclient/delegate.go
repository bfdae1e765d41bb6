package authclient

import (
	"context"
)

// SignInDelegate performs the interactive sign-in handshake against the
// provider. Implementations own the mechanism-specific part of the flow
// (which sign-in endpoint to call and with what payload); the Client owns
// transport, decoding, and token persistence.
//
// A Client constructed without a delegate reports the interactive
// capability as unavailable rather than failing at the network layer.
type SignInDelegate interface {
	// SignIn drives the provider handshake and returns the resulting
	// session payload. Implementations should use Client.PostSignIn so
	// response decoding and error classification stay uniform.
	SignIn(ctx context.Context, client *Client) (*SessionData, error)
}

// EmailSignIn is a credential-based sign-in delegate driving the
// provider's email mechanism. Intended for development and integration
// tests; production deployments plug in their platform's native delegate.
type EmailSignIn struct {
	Email    string
	Password string
}

var _ SignInDelegate = (*EmailSignIn)(nil)

// SignIn posts the email credentials to the provider's email sign-in endpoint
func (d *EmailSignIn) SignIn(ctx context.Context, client *Client) (*SessionData, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{
		Email:    d.Email,
		Password: d.Password,
	}

	return client.PostSignIn(ctx, "sign-in/email", body)
}

// TokenListener receives session token change notifications. The zero
// token value signals the token was cleared. Listeners are invoked
// synchronously from the mutating call and must not block.
type TokenListener interface {
	TokenChanged(token string)
}
