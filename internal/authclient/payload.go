package authclient

import "time"

// Envelope is the provider's response wrapper. Data may be absent even
// when Success is true.
type Envelope struct {
	Success bool         `json:"success"`
	Data    *SessionData `json:"data,omitempty"`
}

// SessionData carries the session and user returned by sign-in and
// session-validation calls. Either field may be nil.
type SessionData struct {
	Session *Session `json:"session,omitempty"`
	User    *User    `json:"user,omitempty"`
}

// Session is the provider-issued session record. Token is opaque.
type Session struct {
	Token     string     `json:"token"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// User is the provider-supplied profile record
type User struct {
	ID            string `json:"id"`
	Email         string `json:"email,omitempty"`
	Name          string `json:"name,omitempty"`
	Image         string `json:"image,omitempty"`
	EmailVerified bool   `json:"emailVerified,omitempty"`
}
