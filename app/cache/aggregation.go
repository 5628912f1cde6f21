package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/rss-curator/app/feed"
)

// TTL bounds how long an aggregation is served before it is recomputed.
const TTL = 900 * time.Second

const keyPrefix = "curator:items"

type entry struct {
	Items     []feed.Item `json:"items"`
	CreatedAt int64       `json:"created_at"`
}

// AggregationCache stores merged item lists per scope. Entries are never
// refreshed in the background; a read after TTL recomputes.
type AggregationCache struct {
	store Store
	now   func() time.Time
}

func NewAggregationCache(store Store) *AggregationCache {
	return &AggregationCache{
		store: store,
		now:   time.Now,
	}
}

// WithClock replaces the time source used for entry ages.
func (c *AggregationCache) WithClock(now func() time.Time) *AggregationCache {
	c.now = now
	return c
}

func (c *AggregationCache) Backend() string {
	return c.store.Name()
}

// GetOrCompute serves scope from the store when the entry is younger than
// TTL, otherwise runs compute and stores its full result.
func (c *AggregationCache) GetOrCompute(ctx context.Context, scope feed.Scope, compute feed.ComputeFunc) ([]feed.Item, error) {
	key := Key(scope)

	if items, ok := c.lookup(ctx, key); ok {
		slog.Debug("Aggregation cache hit", "scope", scope.String())
		return items, nil
	}

	items, cacheable, err := compute(ctx, scope)
	if err != nil {
		return nil, err
	}
	if !cacheable {
		return items, nil
	}

	data, err := json.Marshal(entry{Items: items, CreatedAt: c.now().Unix()})
	if err != nil {
		return nil, fmt.Errorf("failed to encode cache entry: %w", err)
	}

	if err := c.store.Set(ctx, key, data, TTL); err != nil {
		slog.Warn("Failed to store aggregation", "scope", scope.String(), "error", err)
	}

	return items, nil
}

// Invalidate drops the combined entry and the entry of sourceID.
func (c *AggregationCache) Invalidate(ctx context.Context, sourceID string) error {
	keys := []string{Key(feed.ScopeAll)}
	if sourceID != "" {
		keys = append(keys, Key(feed.ScopeFor(sourceID)))
	}

	if err := c.store.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("failed to invalidate cache for %s: %w", sourceID, err)
	}

	slog.Debug("Aggregation cache invalidated", "source", sourceID)
	return nil
}

func (c *AggregationCache) lookup(ctx context.Context, key string) ([]feed.Item, bool) {
	data, found, err := c.store.Get(ctx, key)
	if err != nil {
		slog.Warn("Failed to read aggregation cache", "key", key, "error", err)
		return nil, false
	}
	if !found {
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		// unreadable entries are treated as a miss and dropped
		c.store.Delete(ctx, key)
		return nil, false
	}

	age := c.now().Unix() - e.CreatedAt
	if age >= int64(TTL/time.Second) {
		return nil, false
	}

	if e.Items == nil {
		e.Items = []feed.Item{}
	}
	return e.Items, true
}

func Key(scope feed.Scope) string {
	if scope.IsAll() {
		return keyPrefix
	}
	return keyPrefix + ":" + scope.SourceID()
}
