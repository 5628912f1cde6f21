package curator

import (
	"context"
	"log/slog"

	"github.com/lysyi3m/rss-curator/app/apperr"
	"github.com/lysyi3m/rss-curator/app/feed"
)

func (c *Curator) ListSources(ctx context.Context) ([]feed.Source, error) {
	sources, err := c.sources.ListSources(ctx)
	if err != nil {
		return nil, apperr.Storage("failed to list sources", err)
	}
	return sources, nil
}

// SaveSource creates or edits src. The cached aggregations that include it
// are dropped when its URL, name or filters change.
func (c *Curator) SaveSource(ctx context.Context, src feed.Source) error {
	if err := feed.ValidateSource(src); err != nil {
		return apperr.Config(err.Error())
	}

	changed, err := c.sources.UpsertSourceWithChangeDetection(ctx, src)
	if err != nil {
		return apperr.Storage("failed to save source", err)
	}

	if changed {
		c.invalidate(ctx, src.ID)
	}
	return nil
}

// DeleteSource reports false when id is unknown.
func (c *Curator) DeleteSource(ctx context.Context, id string) (bool, error) {
	deleted, err := c.sources.DeleteSource(ctx, id)
	if err != nil {
		return false, apperr.Storage("failed to delete source", err)
	}
	if deleted {
		c.invalidate(ctx, id)
	}
	return deleted, nil
}

// ReloadSources re-reads the feeds directory and stores every source it
// finds. Sources only known to the registry are left in place.
func (c *Curator) ReloadSources(ctx context.Context) (int, error) {
	sources, err := c.loader.Run()
	if err != nil {
		return 0, apperr.Config(err.Error())
	}

	changed := 0
	for _, src := range sources {
		srcChanged, err := c.sources.UpsertSourceWithChangeDetection(ctx, src)
		if err != nil {
			return 0, apperr.Storage("failed to save source", err)
		}
		if srcChanged {
			changed++
			c.invalidate(ctx, src.ID)
		}
	}

	slog.Info("Sources reloaded", "count", len(sources), "changed", changed)
	return len(sources), nil
}

func (c *Curator) invalidate(ctx context.Context, sourceID string) {
	if err := c.cache.Invalidate(ctx, sourceID); err != nil {
		slog.Warn("Failed to invalidate cache", "source", sourceID, "error", err)
	}
}
