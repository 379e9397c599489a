package credentials

import (
	"context"
	"fmt"
	"sync"
)

// Store resolves credential identifiers to credentials. The real
// store (a secrets manager, an orchestrator's credential vault) lives
// in the embedding application; this interface is the seam.
type Store interface {
	// Lookup resolves id to a credential. A missing id is an error.
	Lookup(ctx context.Context, id string) (Credential, error)
}

// MemoryStore is an in-process Store backed by a map. It is safe for
// concurrent use and intended for tests and simple embeddings.
type MemoryStore struct {
	mu    sync.RWMutex
	creds map[string]Credential
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{creds: make(map[string]Credential)}
}

// Put registers cred under id, replacing any previous entry.
func (s *MemoryStore) Put(id string, cred Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[id] = cred
}

// Delete removes the entry for id.
func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.creds, id)
}

// Lookup implements Store.
func (s *MemoryStore) Lookup(_ context.Context, id string) (Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.creds[id]
	if !ok {
		return nil, fmt.Errorf("credential %q not found", id)
	}
	return cred, nil
}

var _ Store = (*MemoryStore)(nil)
