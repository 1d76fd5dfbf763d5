package cache

import (
	"sync"
	"time"
)

// Token is a bearer token bound to the shop it was issued by.
type Token struct {
	AccessToken string
	BaseURL     string
	ExpiresAt   time.Time
}

// TokenCache holds one bearer token until its expiry.
type TokenCache struct {
	mu    sync.RWMutex
	token Token
}

func NewTokenCache() *TokenCache {
	return &TokenCache{}
}

// Get returns the cached token while now is before its expiry.
func (c *TokenCache) Get(now time.Time) (Token, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token.AccessToken == "" || !now.Before(c.token.ExpiresAt) {
		return Token{}, false
	}
	return c.token, true
}

func (c *TokenCache) Set(t Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = t
}

func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = Token{}
}
