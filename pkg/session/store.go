// Package session abstracts bearer-token storage away from the API client so
// callers can plug in whatever persistence their host environment offers.
package session

import "sync"

// TokenStore provides the current bearer token, if any. Clear is called when
// the server rejects the token so stale credentials are not re-sent.
type TokenStore interface {
	Token() (string, bool)
	Clear()
}

// MemoryStore is an in-memory TokenStore safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
	set   bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Set stores a token.
func (s *MemoryStore) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.set = token != ""
}

// Token returns the stored token and whether one is present.
func (s *MemoryStore) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.set
}

// Clear discards the stored token.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.set = false
}
