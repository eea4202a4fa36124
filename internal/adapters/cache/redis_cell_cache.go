package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"shipment-plan-service/internal/domain"
	"shipment-plan-service/internal/ports"
)

// RedisCellCache is a read-through cache over an AggregatesProvider.
// The optimization core never caches; latency control for aggregate
// lookups belongs to this collaborator.
//
// A cache failure degrades to the underlying provider rather than
// failing the lookup. Absent routes are not cached, so a route gaining
// its first records becomes visible immediately.
type RedisCellCache struct {
	client *redis.Client
	next   ports.AggregatesProvider
	ttl    time.Duration
}

func NewRedisCellCache(client *redis.Client, next ports.AggregatesProvider, ttl time.Duration) *RedisCellCache {
	return &RedisCellCache{client: client, next: next, ttl: ttl}
}

func cacheKey(key domain.RouteKey) string {
	return "costcell:" + key.Supply + "|" + key.Demand
}

func (c *RedisCellCache) GetCostCell(ctx context.Context, key domain.RouteKey) (*domain.CostCell, error) {
	payload, err := c.client.Get(ctx, cacheKey(key)).Bytes()
	if err == nil {
		var cell domain.CostCell
		if err := json.Unmarshal(payload, &cell); err == nil {
			return &cell, nil
		}
		log.Printf("cell cache: corrupt entry for %s, refetching", key)
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("cell cache: get %s failed: %v", key, err)
	}

	cell, err := c.next.GetCostCell(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("cell cache: fetch %s: %w", key, err)
	}
	if cell == nil {
		return nil, nil
	}

	if payload, err := json.Marshal(cell); err == nil {
		if err := c.client.Set(ctx, cacheKey(key), payload, c.ttl).Err(); err != nil {
			log.Printf("cell cache: set %s failed: %v", key, err)
		}
	}

	return cell, nil
}
