package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/exclusivos-baez/storefront-api/internal/domain"
)

const catalogKey = "catalog:products"

// CatalogCache holds the last good product list from the commerce backend.
// A short TTL keeps the shop screen fresh while absorbing bursts of traffic
// that would otherwise each hit the Storefront API.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalogCache creates a Redis-backed product list cache.
func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		client: client,
		ttl:    ttl,
	}
}

// Get returns the cached product list, or ok=false on a miss. Cache errors
// are returned so the caller can log them, but a miss is not an error.
func (c *CatalogCache) Get(ctx context.Context) ([]domain.Product, bool, error) {
	data, err := c.client.Get(ctx, catalogKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get catalog: %w", err)
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, false, fmt.Errorf("unmarshal catalog: %w", err)
	}

	return products, true, nil
}

// Set stores the product list with the configured TTL.
func (c *CatalogCache) Set(ctx context.Context, products []domain.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}

	if err := c.client.Set(ctx, catalogKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set catalog: %w", err)
	}

	return nil
}
