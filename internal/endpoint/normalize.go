// Package endpoint derives the canonical auth-root URL from a configured
// server base URL.
package endpoint

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/finleyb/convexbridge/internal/autherr"
)

// AuthRootPath is the fixed path segment sequence all auth endpoints are
// mounted under.
const AuthRootPath = "/api/auth"

// Normalize produces the canonical auth-root URL for a server base URL.
// If the path already ends with the auth root (case-insensitive), the URL
// is returned with only its trailing slash trimmed; otherwise the auth
// root is appended. Normalize is idempotent.
func Normalize(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", autherr.ErrInvalidEndpoint, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q is missing a scheme or host", autherr.ErrInvalidEndpoint, raw)
	}

	path := strings.TrimRight(u.Path, "/")
	if !strings.HasSuffix(strings.ToLower(path), AuthRootPath) {
		path += AuthRootPath
	}
	u.Path = path

	return u.String(), nil
}
