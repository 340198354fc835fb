package memory

import (
	"context"
	"sync"
	"time"
)

// TokenDenylist lista de tokens revocados en proceso; se usa cuando no hay Redis configurado.
type TokenDenylist struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

// NewTokenDenylist crea la lista vacía.
func NewTokenDenylist() *TokenDenylist {
	return &TokenDenylist{expires: make(map[string]time.Time), now: time.Now}
}

// Revoke marca el token como revocado durante ttl.
func (l *TokenDenylist) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for id, exp := range l.expires {
		if !exp.After(now) {
			delete(l.expires, id)
		}
	}
	l.expires[tokenID] = now.Add(ttl)
	return nil
}

// IsRevoked true si el token fue revocado y la marca no expiró.
func (l *TokenDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	exp, ok := l.expires[tokenID]
	return ok && exp.After(l.now()), nil
}
