package config

import "errors"

var (
	// ErrMissingServerURL indicates that no server base URL is configured
	ErrMissingServerURL = errors.New("BRIDGE_SERVER_URL is required")
)
