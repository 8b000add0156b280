package usecase

import "sync"

// TokenVault keeps access tokens of users whose purchases are being tracked.
// Tokens live in memory only and are dropped once tracking ends.
type TokenVault struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// NewTokenVault constructs an empty TokenVault.
func NewTokenVault() *TokenVault {
	return &TokenVault{tokens: make(map[string]string)}
}

// Put stores token for order. Empty tokens are ignored.
func (v *TokenVault) Put(orderID, token string) {
	if orderID == "" || token == "" {
		return
	}
	v.mu.Lock()
	v.tokens[orderID] = token
	v.mu.Unlock()
}

// Get returns token stored for order.
func (v *TokenVault) Get(orderID string) (string, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	token, ok := v.tokens[orderID]
	return token, ok
}

// Delete forgets token of order.
func (v *TokenVault) Delete(orderID string) {
	v.mu.Lock()
	delete(v.tokens, orderID)
	v.mu.Unlock()
}
