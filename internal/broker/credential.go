package broker

import (
	"time"

	"github.com/finleyb/convexbridge/internal/authclient"
)

// Credential is the unified output of every credential-producing broker
// operation. IDToken is always populated on success; User and ExpiresAt
// are best-effort hydration and may be nil.
type Credential struct {
	IDToken   string
	User      *authclient.User
	ExpiresAt *time.Time
}

// ExtractIDToken projects the platform token out of a credential.
// Pure, no side effects, cannot fail.
func ExtractIDToken(cred *Credential) string {
	if cred == nil {
		return ""
	}
	return cred.IDToken
}

// credentialFrom combines an exchanged platform token with whatever
// session data hydration produced. data may be nil (validated session,
// empty body).
func credentialFrom(idToken string, data *authclient.SessionData) *Credential {
	cred := &Credential{IDToken: idToken}
	if data != nil {
		cred.User = data.User
		if data.Session != nil {
			cred.ExpiresAt = data.Session.ExpiresAt
		}
	}
	return cred
}
