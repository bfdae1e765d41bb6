package store

import "sync"

// MemoryStore keeps the session token in process memory. Used for tests
// and for environments without a usable keychain.
type MemoryStore struct {
	mu    sync.Mutex
	token string
	set   bool
}

var _ TokenStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory token store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// StoreToken replaces the stored token
func (s *MemoryStore) StoreToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.set = true
	return nil
}

// RetrieveToken returns the stored token, or empty string if none is stored
func (s *MemoryStore) RetrieveToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.set {
		return "", nil
	}
	return s.token, nil
}

// DeleteToken clears the stored token
func (s *MemoryStore) DeleteToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.set = false
	return nil
}
