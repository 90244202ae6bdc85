// Package service implements the storefront's business logic.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/exclusivos-baez/storefront-api/internal/domain"
)

// ProductFetcher loads the product list from the commerce backend.
type ProductFetcher interface {
	FetchProducts(ctx context.Context) ([]domain.Product, error)
}

// ProductCache holds a recently fetched product list.
type ProductCache interface {
	Get(ctx context.Context) ([]domain.Product, bool, error)
	Set(ctx context.Context, products []domain.Product) error
}

// CatalogService serves the shop screen's product list. Reads go through a
// short-lived cache; a fetch failure yields an error and never a partial list.
type CatalogService struct {
	fetcher ProductFetcher
	cache   ProductCache
	logger  *slog.Logger
}

// NewCatalogService creates a new catalog service. cache may be nil, in which
// case every call hits the commerce backend.
func NewCatalogService(fetcher ProductFetcher, cache ProductCache, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		fetcher: fetcher,
		cache:   cache,
		logger:  logger,
	}
}

// ListProducts returns the first page of products in upstream order.
func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if s.cache != nil {
		products, ok, err := s.cache.Get(ctx)
		if err != nil {
			// A broken cache degrades to a direct fetch.
			s.logger.WarnContext(ctx, "catalog cache read failed",
				slog.String("error", err.Error()),
			)
		} else if ok {
			return products, nil
		}
	}

	products, err := s.fetcher.FetchProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, products); err != nil {
			s.logger.WarnContext(ctx, "catalog cache write failed",
				slog.String("error", err.Error()),
			)
		}
	}

	return products, nil
}
