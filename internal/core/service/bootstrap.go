package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gkats/catalog-api/internal/core/domain"
	"github.com/gkats/catalog-api/internal/core/ports"
)

// AdminAccount describes the administrator created at startup.
type AdminAccount struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// EnsureAdmin creates the administrator account unless a user with its email
// already exists. Losing an insert race to a concurrent bootstrap counts as
// success, so repeated or parallel runs leave exactly one such user.
func EnsureAdmin(ctx context.Context, repo ports.UserRepository, hasher ports.PasswordHasher, admin AdminAccount, log zerolog.Logger) error {
	if admin.Email == "" || admin.Password == "" {
		return fmt.Errorf("bootstrap admin: %w: email and password are required", domain.ErrInvalidInput)
	}

	exists, err := repo.ExistsByEmail(ctx, admin.Email)
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if exists {
		log.Info().Str("email", admin.Email).Msg("admin user found")
		return nil
	}

	hash, err := hasher.Hash(admin.Password)
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	now := time.Now().UTC()
	created, err := repo.Save(ctx, &domain.User{
		FirstName:    admin.FirstName,
		LastName:     admin.LastName,
		Email:        admin.Email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			log.Info().Str("email", admin.Email).Msg("admin user created concurrently")
			return nil
		}
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	log.Info().Str("email", created.Email).Str("user_id", created.ID).Msg("admin user created")
	return nil
}
