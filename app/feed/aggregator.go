package feed

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
)

// PerSourceLimit is how many of a source's most recent items survive into
// an aggregation.
const PerSourceLimit = 10

type SourceResolver interface {
	ResolveSources(ctx context.Context, scope Scope) ([]Source, error)
}

type ItemFetcher interface {
	Fetch(ctx context.Context, url string) ([]Item, error)
}

// ComputeFunc produces the full aggregation for a scope. The bool reports
// whether any source was registered; results from an empty source set are
// never cached.
type ComputeFunc func(ctx context.Context, scope Scope) ([]Item, bool, error)

type ResultCache interface {
	GetOrCompute(ctx context.Context, scope Scope, compute ComputeFunc) ([]Item, error)
}

type Aggregator struct {
	sources  SourceResolver
	fetcher  ItemFetcher
	filterer *Filterer
	cache    ResultCache
}

func NewAggregator(sources SourceResolver, fetcher ItemFetcher) *Aggregator {
	return &Aggregator{
		sources:  sources,
		fetcher:  fetcher,
		filterer: NewFilterer(),
	}
}

// WithCache routes Aggregate through cache.
func (a *Aggregator) WithCache(cache ResultCache) *Aggregator {
	a.cache = cache
	return a
}

// Aggregate returns at most limit items of scope, newest first. A limit of
// zero or less returns the full list.
func (a *Aggregator) Aggregate(ctx context.Context, scope Scope, limit int) ([]Item, error) {
	var (
		items []Item
		err   error
	)

	if a.cache != nil {
		items, err = a.cache.GetOrCompute(ctx, scope, a.Collect)
	} else {
		items, _, err = a.Collect(ctx, scope)
	}
	if err != nil {
		return nil, err
	}

	return Truncate(items, limit), nil
}

// Collect fetches every source of scope in order and merges their items.
// A source that fails to fetch contributes nothing.
func (a *Aggregator) Collect(ctx context.Context, scope Scope) ([]Item, bool, error) {
	sources, err := a.sources.ResolveSources(ctx, scope)
	if err != nil {
		return nil, false, fmt.Errorf("failed to resolve sources for %s: %w", scope, err)
	}
	if len(sources) == 0 {
		slog.Debug("No sources registered", "scope", scope.String())
		return []Item{}, false, nil
	}

	merged := make([]Item, 0, len(sources)*PerSourceLimit)
	failed := 0
	for _, src := range sources {
		items, err := a.fetcher.Fetch(ctx, src.URL)
		if err != nil {
			failed++
			slog.Warn("Failed to fetch source", "source", src.ID, "url", src.URL, "error", err)
			continue
		}

		items = MostRecent(items, PerSourceLimit)
		items = a.filterer.Visible(items, src.Filters)
		for _, item := range items {
			// feeds without a title fall back to the registered name
			item.Source = cmp.Or(item.Source, src.Name, src.ID)
			merged = append(merged, item)
		}
	}

	SortByPublished(merged)

	slog.Info("Aggregation completed",
		"scope", scope.String(),
		"sources", len(sources),
		"failed", failed,
		"items", len(merged))

	return merged, true, nil
}

// SortByPublished orders items newest first. Items with equal timestamps
// keep their relative order.
func SortByPublished(items []Item) {
	slices.SortStableFunc(items, func(a, b Item) int {
		switch {
		case a.PublishedAt > b.PublishedAt:
			return -1
		case a.PublishedAt < b.PublishedAt:
			return 1
		default:
			return 0
		}
	})
}

// MostRecent returns the n newest items, newest first. The input is not
// modified.
func MostRecent(items []Item, n int) []Item {
	sorted := slices.Clone(items)
	SortByPublished(sorted)
	return Truncate(sorted, n)
}

func Truncate(items []Item, n int) []Item {
	if n <= 0 || len(items) <= n {
		return items
	}
	return items[:n]
}
