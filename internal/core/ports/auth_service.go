package ports

import (
	"context"

	"github.com/gkats/catalog-api/internal/core/domain"
)

// AuthService covers account registration and credential login. Both return
// a freshly issued bearer token for the user.
type AuthService interface {
	Register(ctx context.Context, firstName, lastName, email, password string) (string, *domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}

// PasswordHasher produces and checks salted one-way password digests.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify returns false, nil on a mismatch and domain.ErrCredentialFormat
	// when hashed is not a digest this hasher produced.
	Verify(plaintext, hashed string) (bool, error)
}

// TokenService issues and validates signed, time-bounded bearer tokens.
type TokenService interface {
	Issue(subject string, extra map[string]any) (string, error)
	Validate(token string) (*domain.TokenClaims, error)
	ExtractSubject(token string) (string, error)
}

// LoginThrottle limits repeated logins per key.
type LoginThrottle interface {
	// Allow counts an attempt for key and reports whether it is within the
	// limit. Counting and checking happen as one step.
	Allow(ctx context.Context, key string) (bool, error)
	// Reset clears the count after a successful login.
	Reset(ctx context.Context, key string) error
}
