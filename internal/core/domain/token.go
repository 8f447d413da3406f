package domain

import "time"

// TokenClaims is the verified content of a bearer token.
type TokenClaims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	// Extra holds every non-registered claim carried by the token.
	Extra map[string]any
}

// Role returns the role claim, or the empty role when absent.
func (c *TokenClaims) Role() Role {
	s, _ := c.Extra["role"].(string)
	return Role(s)
}
