package ports

import (
	"context"

	"github.com/gkats/catalog-api/internal/core/domain"
)

// ProductRepository defines persistence operations for the catalog.
type ProductRepository interface {
	List(ctx context.Context) ([]*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	// FindByCategory matches the category exactly, ignoring case.
	FindByCategory(ctx context.Context, category string) ([]*domain.Product, error)
	// FindByPriceRange matches min <= price <= max.
	FindByPriceRange(ctx context.Context, min, max float64) ([]*domain.Product, error)
	// SearchByName matches name substrings, ignoring case.
	SearchByName(ctx context.Context, name string) ([]*domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id string) error
}
