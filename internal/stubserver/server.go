// Package stubserver implements the identity-provider HTTP surface the
// broker consumes, for local development and integration tests: email
// sign-in, session validation, sign-out, and the Convex token exchange
// endpoint.
package stubserver

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	defaultSessionTTL = 7 * 24 * time.Hour
	platformTokenTTL  = 1 * time.Hour

	issuer   = "convexbridge-stub"
	audience = "convex"
)

// Server is the stub identity provider
type Server struct {
	sessions   *sessionTable
	signingKey []byte

	// rotateOnValidate makes every successful session validation issue a
	// replacement token, matching providers that roll sessions.
	rotateOnValidate bool
}

// Option configures a Server
type Option func(*Server)

// WithRotateOnValidate makes GET /api/auth/session rotate the session token
func WithRotateOnValidate() Option {
	return func(s *Server) {
		s.rotateOnValidate = true
	}
}

// New creates a stub server signing platform tokens with the given key
func New(signingKey []byte, opts ...Option) (*Server, error) {
	sessions, err := newSessionTable(defaultSessionTTL)
	if err != nil {
		return nil, err
	}

	s := &Server{
		sessions:   sessions,
		signingKey: signingKey,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Router builds the HTTP routes of the stub provider
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/sign-in/email", s.signInEmail)
		r.Get("/session", s.getSession)
		r.Post("/signout", s.signOut)
		r.Get("/convex/token", s.convexToken)
	})

	return r
}

// envelope mirrors the provider response wrapper consumed by the broker
type envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

type sessionBody struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type userBody struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
}

// signInEmail accepts any non-empty email/password pair. The user ID is
// derived deterministically from the email so repeated sign-ins map to
// the same user.
func (s *Server) signInEmail(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false})
		return
	}
	if body.Email == "" || body.Password == "" {
		writeJSON(w, http.StatusUnauthorized, envelope{Success: false})
		return
	}

	userID := uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+body.Email)).String()

	rec, err := s.sessions.create(userID, body.Email)
	if err != nil {
		log.Error().Err(err).Msg("failed to create session")
		writeJSON(w, http.StatusInternalServerError, envelope{Success: false})
		return
	}

	log.Info().Str("userId", userID).Msg("email sign-in")
	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Data: map[string]any{
			"session": sessionBody{Token: rec.Token, ExpiresAt: time.Unix(rec.Expires, 0).UTC()},
			"user":    userBody{ID: rec.UserID, Email: rec.Email, EmailVerified: true},
		},
	})
}

// getSession validates the bearer session token and re-hydrates the
// session payload, rotating the token when configured to.
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.authorize(w, r)
	if !ok {
		return
	}

	if s.rotateOnValidate {
		rotated, err := s.sessions.rotate(rec)
		if err != nil {
			log.Error().Err(err).Msg("failed to rotate session")
			writeJSON(w, http.StatusInternalServerError, envelope{Success: false})
			return
		}
		rec = rotated
	}

	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Data: map[string]any{
			"session": sessionBody{Token: rec.Token, ExpiresAt: time.Unix(rec.Expires, 0).UTC()},
			"user":    userBody{ID: rec.UserID, Email: rec.Email, EmailVerified: true},
		},
	})
}

// signOut terminates the bearer session
func (s *Server) signOut(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.authorize(w, r)
	if !ok {
		return
	}

	if err := s.sessions.delete(rec.Token); err != nil {
		log.Error().Err(err).Msg("failed to delete session")
		writeJSON(w, http.StatusInternalServerError, envelope{Success: false})
		return
	}

	log.Info().Str("userId", rec.UserID).Msg("signed out")
	writeJSON(w, http.StatusOK, envelope{Success: true})
}

// convexToken exchanges a valid session for a signed platform JWT
func (s *Server) convexToken(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.authorize(w, r)
	if !ok {
		return
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": rec.UserID,
		"iss": issuer,
		"aud": audience,
		"exp": now.Add(platformTokenTTL).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		log.Error().Err(err).Msg("failed to sign platform token")
		writeJSON(w, http.StatusInternalServerError, envelope{Success: false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": signed})
}

// authorize resolves the bearer session token, writing a 401 when the
// header is missing or the session is unknown or expired.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request) (*sessionRecord, bool) {
	token := bearerToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, envelope{Success: false})
		return nil, false
	}

	rec, err := s.sessions.getByToken(token)
	if err != nil {
		log.Error().Err(err).Msg("session lookup failed")
		writeJSON(w, http.StatusInternalServerError, envelope{Success: false})
		return nil, false
	}
	if rec == nil {
		writeJSON(w, http.StatusUnauthorized, envelope{Success: false})
		return nil, false
	}

	return rec, true
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode json response")
	}
}
