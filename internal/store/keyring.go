package store

import (
	"github.com/rs/zerolog/log"
	"github.com/zalando/go-keyring"
)

const (
	keyringService = "com.finleyb.convexbridge"
	keyringAccount = "session-token"
)

// KeyringStore persists the session token in the OS keychain.
type KeyringStore struct {
	service string
	account string
}

var _ TokenStore = (*KeyringStore)(nil)

// NewKeyringStore creates a keychain-backed token store. origin scopes the
// stored token to a single auth server so two deployments do not clobber
// each other's sessions.
func NewKeyringStore(origin string) *KeyringStore {
	account := keyringAccount
	if origin != "" {
		account = origin + ":" + keyringAccount
	}
	return &KeyringStore{
		service: keyringService,
		account: account,
	}
}

// StoreToken writes the session token to the keychain
func (s *KeyringStore) StoreToken(token string) error {
	if err := keyring.Set(s.service, s.account, token); err != nil {
		log.Debug().
			Err(err).
			Str("account", s.account).
			Msg("failed to store session token in keyring")
		return err
	}

	log.Debug().
		Str("account", s.account).
		Msg("session token stored in keyring")

	return nil
}

// RetrieveToken reads the session token from the keychain.
// Returns empty string if no token is stored (not an error).
func (s *KeyringStore) RetrieveToken() (string, error) {
	token, err := keyring.Get(s.service, s.account)
	if err == keyring.ErrNotFound {
		log.Debug().
			Str("account", s.account).
			Msg("no session token found in keyring")
		return "", nil
	}
	if err != nil {
		log.Debug().
			Err(err).
			Str("account", s.account).
			Msg("failed to read session token from keyring")
		return "", err
	}

	return token, nil
}

// DeleteToken removes the session token from the keychain.
// Deleting an absent token is not an error.
func (s *KeyringStore) DeleteToken() error {
	if err := keyring.Delete(s.service, s.account); err != nil && err != keyring.ErrNotFound {
		log.Debug().
			Err(err).
			Str("account", s.account).
			Msg("failed to delete session token from keyring")
		return err
	}

	log.Debug().
		Str("account", s.account).
		Msg("session token deleted from keyring")

	return nil
}
