package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/gkats/catalog-api/internal/api/middleware"
	"github.com/gkats/catalog-api/internal/core/domain"
)

// currentUser returns the identity attached by the Auth middleware. A route
// mounted without the gate has none and is treated as unauthenticated.
func currentUser(c echo.Context) (*domain.User, error) {
	user, ok := c.Get(middleware.UserKey).(*domain.User)
	if !ok || user == nil {
		return nil, domain.ErrUnauthenticated
	}
	return user, nil
}
