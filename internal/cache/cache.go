// Package cache keeps recently loaded reference item lists in Redis so list
// endpoints do not hit the database on every poll. Entries are invalidated
// on any mutation of their scope and expire on their own otherwise.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/refdata-dev/reftab/internal/metrics"
	"github.com/refdata-dev/reftab/internal/refdata"
)

const defaultTTL = 5 * time.Minute

// ItemCache caches normalized item lists per (tenant, table, business).
type ItemCache struct {
	R   *redis.Client
	TTL time.Duration
}

// New returns a cache with the default TTL.
func New(r *redis.Client) *ItemCache {
	return &ItemCache{R: r, TTL: defaultTTL}
}

func key(tenantID, table, businessID string) string {
	// Tenant and business IDs never contain ':', table keys are identifiers.
	return strings.Join([]string{"reftab", "items", tenantID, table, businessID}, ":")
}

func optionsKey(table string) string {
	return "reftab:options:" + table
}

// Get returns the cached list and whether it was present.
func (c *ItemCache) Get(ctx context.Context, tenantID, table, businessID string) ([]refdata.Item, bool, error) {
	if c == nil || c.R == nil {
		return nil, false, nil
	}
	data, err := c.R.Get(ctx, key(tenantID, table, businessID)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheMisses.Inc()
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var items []refdata.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false, fmt.Errorf("decode cached items: %w", err)
	}
	metrics.CacheHits.Inc()
	return items, true, nil
}

// Set stores the list under its scope.
func (c *ItemCache) Set(ctx context.Context, tenantID, table, businessID string, items []refdata.Item) error {
	if c == nil || c.R == nil {
		return nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	ttl := c.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return c.R.Set(ctx, key(tenantID, table, businessID), data, ttl).Err()
}

// Invalidate drops every cached list for the table under the tenant. The
// business dimension is wiped wholesale because a mutation of a tenant-wide
// row (business_id NULL) affects every business scope.
func (c *ItemCache) Invalidate(ctx context.Context, tenantID, table string) error {
	if c == nil || c.R == nil {
		return nil
	}
	pattern := key(tenantID, table, "*")
	iter := c.R.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.R.Del(ctx, keys...).Err()
}

// GetOptions returns cached relation options for a parent table.
func (c *ItemCache) GetOptions(ctx context.Context, table string) ([]refdata.Option, bool, error) {
	if c == nil || c.R == nil {
		return nil, false, nil
	}
	data, err := c.R.Get(ctx, optionsKey(table)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var opts []refdata.Option
	if err := json.Unmarshal(data, &opts); err != nil {
		return nil, false, fmt.Errorf("decode cached options: %w", err)
	}
	return opts, true, nil
}

// SetOptions stores relation options for a parent table.
func (c *ItemCache) SetOptions(ctx context.Context, table string, opts []refdata.Option) error {
	if c == nil || c.R == nil {
		return nil
	}
	data, err := json.Marshal(opts)
	if err != nil {
		return err
	}
	ttl := c.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return c.R.Set(ctx, optionsKey(table), data, ttl).Err()
}

// InvalidateOptions drops cached options for a parent table.
func (c *ItemCache) InvalidateOptions(ctx context.Context, table string) error {
	if c == nil || c.R == nil {
		return nil
	}
	return c.R.Del(ctx, optionsKey(table)).Err()
}
