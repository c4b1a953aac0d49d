package driven

import "github.com/tessera-labs/tessera-core/internal/core/domain"

// TokenVerifier validates bearer tokens and extracts the tenant identity.
// Token issuance lives with the identity provider, not here; Mint exists so
// tests and operational tooling can produce valid tokens against the same
// secret.
type TokenVerifier interface {
	// ParseToken verifies a token and returns its claims
	ParseToken(token string) (*domain.TokenClaims, error)

	// Mint creates a signed token for the given claims
	Mint(claims *domain.TokenClaims) (string, error)
}
