package oauth2adapter

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/finleyb/convexbridge/internal/authclient"
	"github.com/finleyb/convexbridge/internal/broker"
	"github.com/finleyb/convexbridge/internal/store"
	"github.com/finleyb/convexbridge/internal/stubserver"
)

func signTestToken(t *testing.T, key []byte, exp time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestTokenSource_Token(t *testing.T) {
	stub, err := stubserver.New([]byte("adapter-test-key"))
	if err != nil {
		t.Fatalf("stubserver.New failed: %v", err)
	}
	server := httptest.NewServer(stub.Router())
	defer server.Close()

	s := store.NewMemoryStore()
	b, err := broker.New(server.URL, true,
		authclient.WithTokenStore(s),
		authclient.WithSignInDelegate(&authclient.EmailSignIn{Email: "dev@example.com", Password: "hunter2"}),
	)
	if err != nil {
		t.Fatalf("broker.New failed: %v", err)
	}
	if _, err := b.Login(context.Background(), false); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	source := NewWithBroker(context.Background(), b)

	token, err := source.Token()
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}

	if token.AccessToken == "" {
		t.Error("expected access token")
	}
	if token.TokenType != "Bearer" {
		t.Errorf("expected Bearer token type, got %q", token.TokenType)
	}
	if token.Expiry.IsZero() {
		t.Error("expected expiry from JWT exp claim")
	}
	if !token.Valid() {
		t.Error("expected token to report valid")
	}
}

func TestTokenSource_NoSession(t *testing.T) {
	stub, err := stubserver.New([]byte("adapter-test-key"))
	if err != nil {
		t.Fatalf("stubserver.New failed: %v", err)
	}
	server := httptest.NewServer(stub.Router())
	defer server.Close()

	b, err := broker.New(server.URL, true, authclient.WithTokenStore(store.NewMemoryStore()))
	if err != nil {
		t.Fatalf("broker.New failed: %v", err)
	}

	source := NewWithBroker(context.Background(), b)

	if _, err := source.Token(); err == nil {
		t.Error("expected error when no session exists")
	}
}

func TestPlatformExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed := signTestToken(t, []byte("k"), exp)

	got := platformExpiry(signed)
	if !got.Equal(exp) {
		t.Errorf("expected %v, got %v", exp, got)
	}

	if !platformExpiry("not-a-jwt").IsZero() {
		t.Error("expected zero time for opaque token")
	}
}
