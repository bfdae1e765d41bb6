// Package store persists the provider session token across process runs.
package store

// TokenStore persists a single opaque session token. Each call is atomic;
// no multi-call transactional guarantee is provided. An empty string from
// RetrieveToken means no token is stored and is not an error.
type TokenStore interface {
	StoreToken(token string) error
	RetrieveToken() (string, error)
	DeleteToken() error
}
