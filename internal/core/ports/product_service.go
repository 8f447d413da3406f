package ports

import (
	"context"

	"github.com/gkats/catalog-api/internal/core/domain"
)

// CreateProductInput carries the fields of a new catalog entry.
type CreateProductInput struct {
	Name        string
	Description string
	Category    string
	Price       float64
	Quantity    int
	ImageURL    string
}

// ProductService defines catalog use cases.
type ProductService interface {
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ProductsByCategory(ctx context.Context, category string) ([]*domain.Product, error)
	ProductsByPriceRange(ctx context.Context, min, max float64) ([]*domain.Product, error)
	SearchProducts(ctx context.Context, name string) ([]*domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}
