package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gkats/catalog-api/internal/metrics"
	"github.com/gkats/catalog-api/internal/core/domain"
	"github.com/gkats/catalog-api/internal/core/ports"
)

type ProductService struct {
	repo   ports.ProductRepository
	logger zerolog.Logger
}

func NewProductService(repo ports.ProductRepository, logger zerolog.Logger) *ProductService {
	return &ProductService{repo: repo, logger: logger}
}

func (s *ProductService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.List(ctx)
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ProductService) ProductsByCategory(ctx context.Context, category string) ([]*domain.Product, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, fmt.Errorf("%w: category is required", domain.ErrInvalidInput)
	}
	return s.repo.FindByCategory(ctx, category)
}

// ProductsByPriceRange returns products priced within [min, max].
func (s *ProductService) ProductsByPriceRange(ctx context.Context, min, max float64) ([]*domain.Product, error) {
	if min < 0 || max < min {
		return nil, fmt.Errorf("%w: price range [%g, %g]", domain.ErrInvalidInput, min, max)
	}
	return s.repo.FindByPriceRange(ctx, min, max)
}

func (s *ProductService) SearchProducts(ctx context.Context, name string) ([]*domain.Product, error) {
	return s.repo.SearchByName(ctx, strings.TrimSpace(name))
}

func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

func (s *ProductService) CreateProduct(ctx context.Context, input ports.CreateProductInput) (*domain.Product, error) {
	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.Product{
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		Price:       input.Price,
		Quantity:    input.Quantity,
		ImageURL:    input.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create product")
		return nil, err
	}

	metrics.ProductWritesTotal.WithLabelValues("create").Inc()
	s.logger.Info().Str("product_id", created.ID).Str("category", created.Category).Msg("product created")
	return created, nil
}

// UpdateProduct applies patch to the stored product. Nil patch fields keep
// their current values.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(p)
	p.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	metrics.ProductWritesTotal.WithLabelValues("update").Inc()
	s.logger.Info().Str("product_id", id).Msg("product updated")
	return p, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	metrics.ProductWritesTotal.WithLabelValues("delete").Inc()
	s.logger.Info().Str("product_id", id).Msg("product deleted")
	return nil
}
