package rollups

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/plumehq/plume-backend/pkg/logger"
	"github.com/plumehq/plume-backend/pkg/redis"
)

// Cache is a Redis read-through layer over rollup snapshots. Every method is
// best-effort: a cache failure is logged and treated as a miss so the caller
// falls back to the database.
type Cache struct {
	client *redis.Client
	logg   *logger.Logger
	ttl    time.Duration
}

// NewCache builds the rollup cache. A nil client disables caching.
func NewCache(client *redis.Client, logg *logger.Logger, ttl time.Duration) *Cache {
	return &Cache{client: client, logg: logg, ttl: ttl}
}

// Get returns the cached DTO, or nil on miss.
func (c *Cache) Get(ctx context.Context, productID uuid.UUID) *RollupDTO {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := c.client.Get(ctx, c.client.RollupKey(productID.String()))
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "rollup cache read failed")
		}
		return nil
	}
	var dto RollupDTO
	if err := json.Unmarshal([]byte(raw), &dto); err != nil {
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "rollup cache entry corrupt")
		return nil
	}
	return &dto
}

// Set stores the DTO for the configured TTL.
func (c *Cache) Set(ctx context.Context, dto *RollupDTO) {
	if c == nil || c.client == nil || dto == nil {
		return
	}
	raw, err := json.Marshal(dto)
	if err != nil {
		return
	}
	key := c.client.RollupKey(dto.ProductID.String())
	if err := c.client.Set(ctx, key, string(raw), c.ttl); err != nil {
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "rollup cache write failed")
	}
}

// Invalidate drops the cached entry for a product.
func (c *Cache) Invalidate(ctx context.Context, productID uuid.UUID) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, c.client.RollupKey(productID.String())); err != nil {
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "rollup cache invalidation failed")
	}
}
