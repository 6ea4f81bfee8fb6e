// Package catalog exposes read-only catalog and staff lookups with an
// optional redis read-through cache in front of the store.
package catalog

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"salonbook/internal/model"
)

// Source is the underlying read-only data access.
type Source interface {
	GetServices(ctx context.Context, ids []string) ([]model.Service, error)
	ListServices(ctx context.Context) ([]model.Service, error)
	ListStaff(ctx context.Context) ([]model.StaffMember, error)
}

// Cache is a read-through cache over Source. With no redis client it is a
// transparent pass-through.
type Cache struct {
	source Source
	redis  *redis.Client
	ttl    time.Duration
}

// New creates the catalog facade.
func New(source Source) *Cache {
	return &Cache{source: source}
}

// UseRedis configures optional caching for list endpoints.
func (c *Cache) UseRedis(client *redis.Client, ttl time.Duration) {
	c.redis = client
	c.ttl = ttl
}

// GetServices resolves an ordered id list. Individual lookups bypass the
// cache: they feed commits, which must read fresh durations.
func (c *Cache) GetServices(ctx context.Context, ids []string) ([]model.Service, error) {
	return c.source.GetServices(ctx, ids)
}

// ListServices returns the catalog, cached.
func (c *Cache) ListServices(ctx context.Context) ([]model.Service, error) {
	var out []model.Service
	if c.readCache(ctx, "catalog:services", &out) {
		return out, nil
	}
	out, err := c.source.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	c.writeCache(ctx, "catalog:services", out)
	return out, nil
}

// ListStaff returns all staff with rules, cached. Bookings are never
// cached: conflict checks always read fresh.
func (c *Cache) ListStaff(ctx context.Context) ([]model.StaffMember, error) {
	var out []model.StaffMember
	if c.readCache(ctx, "catalog:staff", &out) {
		return out, nil
	}
	out, err := c.source.ListStaff(ctx)
	if err != nil {
		return nil, err
	}
	c.writeCache(ctx, "catalog:staff", out)
	return out, nil
}

// Invalidate drops cached entries whose key matches one of the prefixes.
func (c *Cache) Invalidate(ctx context.Context, prefixes ...string) {
	if c.redis == nil {
		return
	}
	for _, p := range prefixes {
		if !strings.HasPrefix(p, "catalog:") {
			p = "catalog:" + p
		}
		_ = c.redis.Del(ctx, p).Err()
	}
}

func (c *Cache) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.ttl <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(val), out) == nil
}

func (c *Cache) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.ttl <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	// Cache failures degrade to direct reads.
	_ = c.redis.Set(ctx, key, data, c.ttl).Err()
}
