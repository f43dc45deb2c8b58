package core

import (
	"context"
	"fmt"

	"shopfront.dev/ecommerce-backend/internal/store"
)

type ProductStore interface {
	ListProducts(ctx context.Context, filter store.ProductFilter) ([]store.Product, error)
}

type CatalogService struct {
	products ProductStore
}

func NewCatalogService(products ProductStore) *CatalogService {
	return &CatalogService{products: products}
}

// ListProducts returns products matching every non-empty filter field: an
// exact category and a case-insensitive substring of the name.
func (s *CatalogService) ListProducts(ctx context.Context, filter store.ProductFilter) ([]store.Product, error) {
	products, err := s.products.ListProducts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}
