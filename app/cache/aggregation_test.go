package cache

import (
	"context"
	"testing"
	"time"

	"github.com/lysyi3m/rss-curator/app/feed"
)

type countingCompute struct {
	calls map[feed.Scope]int
	items []feed.Item
	found bool
}

func newCountingCompute(items []feed.Item) *countingCompute {
	return &countingCompute{calls: make(map[feed.Scope]int), items: items, found: true}
}

func (c *countingCompute) run(ctx context.Context, scope feed.Scope) ([]feed.Item, bool, error) {
	c.calls[scope]++
	return c.items, c.found, nil
}

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	return f.now
}

func newTestCache() (*AggregationCache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	return NewAggregationCache(NewMemoryStore()).WithClock(clock.Now), clock
}

func TestGetOrComputeHitWithinTTL(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache()
	compute := newCountingCompute([]feed.Item{{Title: "one", PublishedAt: 10}})

	if _, err := c.GetOrCompute(ctx, feed.ScopeAll, compute.run); err != nil {
		t.Fatal(err)
	}

	clock.now = clock.now.Add(TTL - time.Second)
	items, err := c.GetOrCompute(ctx, feed.ScopeAll, compute.run)
	if err != nil {
		t.Fatal(err)
	}

	if compute.calls[feed.ScopeAll] != 1 {
		t.Errorf("Expected one compute within TTL, got %d", compute.calls[feed.ScopeAll])
	}
	if len(items) != 1 || items[0].Title != "one" {
		t.Errorf("Expected cached item, got %+v", items)
	}
}

func TestGetOrComputeExpiresAtTTL(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache()
	compute := newCountingCompute([]feed.Item{{Title: "one"}})

	c.GetOrCompute(ctx, feed.ScopeAll, compute.run)

	clock.now = clock.now.Add(TTL)
	c.GetOrCompute(ctx, feed.ScopeAll, compute.run)

	if compute.calls[feed.ScopeAll] != 2 {
		t.Errorf("Expected entry aged exactly TTL to be recomputed, got %d computes", compute.calls[feed.ScopeAll])
	}
}

func TestGetOrComputeScopesAreSeparate(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache()
	compute := newCountingCompute([]feed.Item{{Title: "one"}})

	c.GetOrCompute(ctx, feed.ScopeAll, compute.run)
	c.GetOrCompute(ctx, feed.ScopeFor("a"), compute.run)
	c.GetOrCompute(ctx, feed.ScopeFor("a"), compute.run)

	if compute.calls[feed.ScopeAll] != 1 || compute.calls[feed.ScopeFor("a")] != 1 {
		t.Errorf("Expected one compute per scope, got %v", compute.calls)
	}
}

func TestGetOrComputeSkipsEmptySourceSet(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache()
	compute := newCountingCompute([]feed.Item{})
	compute.found = false

	c.GetOrCompute(ctx, feed.ScopeAll, compute.run)
	c.GetOrCompute(ctx, feed.ScopeAll, compute.run)

	if compute.calls[feed.ScopeAll] != 2 {
		t.Errorf("Expected no cache write without sources, got %d computes", compute.calls[feed.ScopeAll])
	}
}

func TestInvalidate(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache()
	compute := newCountingCompute([]feed.Item{{Title: "one"}})

	c.GetOrCompute(ctx, feed.ScopeAll, compute.run)
	c.GetOrCompute(ctx, feed.ScopeFor("a"), compute.run)
	c.GetOrCompute(ctx, feed.ScopeFor("b"), compute.run)

	if err := c.Invalidate(ctx, "a"); err != nil {
		t.Fatal(err)
	}

	c.GetOrCompute(ctx, feed.ScopeAll, compute.run)
	c.GetOrCompute(ctx, feed.ScopeFor("a"), compute.run)
	c.GetOrCompute(ctx, feed.ScopeFor("b"), compute.run)

	if compute.calls[feed.ScopeAll] != 2 {
		t.Errorf("Expected combined entry to be recomputed, got %d", compute.calls[feed.ScopeAll])
	}
	if compute.calls[feed.ScopeFor("a")] != 2 {
		t.Errorf("Expected source entry to be recomputed, got %d", compute.calls[feed.ScopeFor("a")])
	}
	if compute.calls[feed.ScopeFor("b")] != 1 {
		t.Errorf("Expected unrelated source to stay cached, got %d", compute.calls[feed.ScopeFor("b")])
	}
}

func TestCorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := NewAggregationCache(store)
	compute := newCountingCompute([]feed.Item{{Title: "fresh"}})

	store.Set(ctx, Key(feed.ScopeAll), []byte("{not json"), TTL)

	items, err := c.GetOrCompute(ctx, feed.ScopeAll, compute.run)
	if err != nil {
		t.Fatal(err)
	}
	if compute.calls[feed.ScopeAll] != 1 || items[0].Title != "fresh" {
		t.Error("Expected corrupt entry to be recomputed")
	}
}

func TestKey(t *testing.T) {
	if Key(feed.ScopeAll) != "curator:items" {
		t.Errorf("Unexpected key for all: %s", Key(feed.ScopeAll))
	}
	if Key(feed.ScopeFor("tech")) != "curator:items:tech" {
		t.Errorf("Unexpected key for source: %s", Key(feed.ScopeFor("tech")))
	}
}
