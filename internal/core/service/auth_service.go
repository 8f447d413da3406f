package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gkats/catalog-api/internal/metrics"
	"github.com/gkats/catalog-api/internal/core/domain"
	"github.com/gkats/catalog-api/internal/core/ports"
)

// AuthService implements registration and login.
type AuthService struct {
	repo     ports.UserRepository
	hasher   ports.PasswordHasher
	tokens   ports.TokenService
	throttle ports.LoginThrottle
	audit    ports.AuditRecorder
	log      zerolog.Logger
	now      func() time.Time

	// dummyHash is verified against when the email is unknown so both
	// failure paths of Login cost one hash comparison.
	dummyHash string
}

// AuthOption wires optional collaborators into AuthService.
type AuthOption func(*AuthService)

// WithThrottle enables per-email limiting of login attempts. Every attempt
// counts against the limit until a successful login resets it.
func WithThrottle(t ports.LoginThrottle) AuthOption {
	return func(s *AuthService) { s.throttle = t }
}

// WithAudit sends register and login events to r.
func WithAudit(r ports.AuditRecorder) AuthOption {
	return func(s *AuthService) { s.audit = r }
}

func NewAuthService(repo ports.UserRepository, hasher ports.PasswordHasher, tokens ports.TokenService, log zerolog.Logger, opts ...AuthOption) (*AuthService, error) {
	dummy, err := hasher.Hash("catalog-api-dummy-password")
	if err != nil {
		return nil, fmt.Errorf("auth: prepare dummy hash: %w", err)
	}

	s := &AuthService{
		repo:      repo,
		hasher:    hasher,
		tokens:    tokens,
		log:       log,
		now:       time.Now,
		dummyHash: dummy,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register creates a USER account and returns a token for it. The existence
// check is a fast path only; the repository's unique index decides races.
func (s *AuthService) Register(ctx context.Context, firstName, lastName, email, password string) (string, *domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("register: %w", err)
	}
	if exists {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "conflict").Inc()
		return "", nil, domain.ErrUserExists
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", nil, err
	}

	now := s.now().UTC()
	created, err := s.repo.Save(ctx, &domain.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			metrics.AuthAttemptsTotal.WithLabelValues("register", "conflict").Inc()
			return "", nil, domain.ErrUserExists
		}
		return "", nil, fmt.Errorf("register: %w", err)
	}

	token, err := s.issue(created)
	if err != nil {
		return "", nil, err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("register", "success").Inc()
	s.record(domain.EventRegister, created.Email)
	s.log.Info().Str("user_id", created.ID).Msg("user registered")
	return token, created, nil
}

// Login verifies the credentials and returns a token. Unknown email and
// wrong password both yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		ok, err := s.throttle.Allow(ctx, email)
		if err != nil {
			s.log.Warn().Err(err).Msg("login throttle unavailable, allowing attempt")
		} else if !ok {
			metrics.AuthAttemptsTotal.WithLabelValues("login", "throttled").Inc()
			return "", nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.AuthAttemptsTotal.WithLabelValues("login", "failure").Inc()
			s.record(domain.EventLoginFailure, email)
		}
		return "", nil, err
	}

	token, err := s.issue(user)
	if err != nil {
		return "", nil, err
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, email); err != nil {
			s.log.Warn().Err(err).Msg("failed to reset login throttle")
		}
	}
	metrics.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()
	s.record(domain.EventLoginSuccess, user.Email)
	return token, user, nil
}

func (s *AuthService) authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_, _ = s.hasher.Verify(password, s.dummyHash)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("stored password hash is corrupt")
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) issue(user *domain.User) (string, error) {
	token, err := s.tokens.Issue(user.Email, map[string]any{"role": string(user.Role)})
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

func (s *AuthService) record(kind domain.AuthEventKind, email string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(domain.AuthEvent{
		ID:         uuid.NewString(),
		Kind:       kind,
		Email:      email,
		OccurredAt: s.now().UTC(),
	})
}
