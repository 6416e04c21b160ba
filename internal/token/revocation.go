package token

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// RevocationStore holds the set of revoked session tokens. Entries are
// keyed by SHA-256 hash of the raw token so the store never contains a
// usable credential. The ttl passed to Revoke is the remaining life of
// the token; once it elapses the entry may be dropped, since natural
// expiry makes the token invalid anyway.
type RevocationStore interface {
	Revoke(ctx context.Context, raw string, ttl time.Duration) error
	IsRevoked(ctx context.Context, raw string) bool
}

// hashToken returns the hex SHA-256 digest of a raw token string.
func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// memoryRevocationStore is the in-process fallback used when Redis is
// unavailable. Entries live until the process exits or the deadline
// check prunes them on read; growth is bounded by the token validity
// window times the logout rate.
type memoryRevocationStore struct {
	mu      sync.RWMutex
	revoked map[string]time.Time // token hash -> natural expiry
}

// NewMemoryRevocationStore returns a mutex-guarded in-memory store.
func NewMemoryRevocationStore() RevocationStore {
	return &memoryRevocationStore{revoked: make(map[string]time.Time)}
}

func (m *memoryRevocationStore) Revoke(_ context.Context, raw string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[hashToken(raw)] = time.Now().Add(ttl)
	return nil
}

func (m *memoryRevocationStore) IsRevoked(_ context.Context, raw string) bool {
	key := hashToken(raw)
	m.mu.RLock()
	deadline, ok := m.revoked[key]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	if time.Now().After(deadline) {
		// The token has expired on its own; the entry is dead weight.
		m.mu.Lock()
		delete(m.revoked, key)
		m.mu.Unlock()
		return false
	}
	return true
}
