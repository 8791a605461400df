// Package token issues and resolves the opaque tracking tokens embedded in
// lure links. A token binds a public URL fragment to a (campaign, recipient)
// pair without exposing either ID.
package token

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Resolve for tokens never issued in this
// store's lifetime.
var ErrNotFound = errors.New("tracking token not found")

// Binding is the identity pair a token resolves to.
type Binding struct {
	CampaignID  uuid.UUID
	RecipientID uuid.UUID
}

// Store binds opaque tokens to recipient identity. Implementations must be
// safe for concurrent use from many request handlers.
type Store interface {
	// Issue mints a new unguessable token for the pair and records the
	// mapping. Re-issuing for the same pair mints a fresh token; earlier
	// tokens stay valid.
	Issue(ctx context.Context, campaignID, recipientID uuid.UUID) (string, error)

	// Resolve returns the binding for a previously issued token, or
	// ErrNotFound.
	Resolve(ctx context.Context, token string) (Binding, error)
}

// MemoryStore is the default process-local Store: a map guarded by a single
// mutex. Both operations take the lock for their full critical section, so
// issues and resolves are serialized, never torn. Entries are never evicted;
// the map lives until process exit. Lost on restart.
type MemoryStore struct {
	mu       sync.Mutex
	bindings map[string]Binding
}

// NewMemoryStore creates an empty in-memory token store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{bindings: make(map[string]Binding)}
}

// Issue implements Store. Tokens are UUIDv4 strings (122 random bits).
func (s *MemoryStore) Issue(_ context.Context, campaignID, recipientID uuid.UUID) (string, error) {
	t := uuid.New().String()
	s.mu.Lock()
	s.bindings[t] = Binding{CampaignID: campaignID, RecipientID: recipientID}
	s.mu.Unlock()
	return t, nil
}

// Resolve implements Store.
func (s *MemoryStore) Resolve(_ context.Context, token string) (Binding, error) {
	s.mu.Lock()
	b, ok := s.bindings[token]
	s.mu.Unlock()
	if !ok {
		return Binding{}, ErrNotFound
	}
	return b, nil
}

// Len reports the number of live tokens. Test helper; nothing evicts, so
// the count only grows.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bindings)
}
