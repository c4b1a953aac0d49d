package domain

import "time"

// TokenClaims is the verified payload of a bearer token. The subject is the
// tenant every store operation is scoped to; nothing else in the token is
// load-bearing here.
type TokenClaims struct {
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	IssuedAt  time.Time `json:"issued_at"`
}

// IsExpired checks whether the claims have expired
func (c *TokenClaims) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}
