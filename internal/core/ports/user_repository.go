package ports

import (
	"context"

	"github.com/gkats/catalog-api/internal/core/domain"
)

// UserRepository is the identity store. Implementations must enforce email
// uniqueness atomically and report a violation as domain.ErrUserExists.
type UserRepository interface {
	// FindByEmail returns domain.ErrUserNotFound when no user has the email.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Save inserts the user when ID is empty (assigning it) and replaces the
	// stored record otherwise.
	Save(ctx context.Context, user *domain.User) (*domain.User, error)
}
