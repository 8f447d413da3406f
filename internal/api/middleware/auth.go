package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gkats/catalog-api/internal/metrics"
	"github.com/gkats/catalog-api/internal/core/domain"
	"github.com/gkats/catalog-api/internal/core/ports"
)

// Context keys set by Auth.
const (
	UserKey  = "user"
	EmailKey = "email"
	RoleKey  = "role"
)

// Auth guards a route group with a bearer token. Every rejection surfaces as
// domain.ErrUnauthenticated so callers cannot tell why a token was refused.
// The subject is resolved against users on every request; the role comes
// from the stored user, not from the token.
func Auth(tokens ports.TokenService, users ports.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return reject("missing_header")
			}

			scheme, raw, ok := strings.Cut(authHeader, " ")
			raw = strings.TrimSpace(raw)
			if !ok || !strings.EqualFold(scheme, "bearer") || raw == "" {
				return reject("malformed_header")
			}

			claims, err := tokens.Validate(raw)
			if err != nil {
				if errors.Is(err, domain.ErrTokenExpired) {
					return reject("expired")
				}
				return reject("invalid")
			}

			user, err := users.FindByEmail(c.Request().Context(), claims.Subject)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					return reject("unknown_user")
				}
				return err
			}

			c.Set(UserKey, user)
			c.Set(EmailKey, user.Email)
			c.Set(RoleKey, user.Role)

			return next(c)
		}
	}
}

func reject(reason string) error {
	metrics.TokensRejectedTotal.WithLabelValues(reason).Inc()
	return domain.ErrUnauthenticated
}
