package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lysyi3m/rss-curator/app/feed"
)

// FeedRepository is the source registry.
type FeedRepository struct {
	db *DB
}

func NewFeedRepository(db *DB) *FeedRepository {
	return &FeedRepository{db: db}
}

// ListSources returns every registered source ordered by id.
func (r *FeedRepository) ListSources(ctx context.Context) ([]feed.Source, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, feed_url, filters
		FROM feeds
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query feeds: %w", err)
	}
	defer rows.Close()

	sources := []feed.Source{}
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, *src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feeds: %w", err)
	}

	return sources, nil
}

// GetSource returns nil when id is not registered.
func (r *FeedRepository) GetSource(ctx context.Context, id string) (*feed.Source, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, feed_url, filters
		FROM feeds
		WHERE id = ?
	`, id)

	src, err := scanSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return src, nil
}

func (r *FeedRepository) GetSourceCount(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM feeds`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count feeds: %w", err)
	}
	return count, nil
}

// ResolveSources returns the sources of scope. An unknown source id yields
// an empty set.
func (r *FeedRepository) ResolveSources(ctx context.Context, scope feed.Scope) ([]feed.Source, error) {
	if scope.IsAll() {
		return r.ListSources(ctx)
	}

	src, err := r.GetSource(ctx, scope.SourceID())
	if err != nil {
		return nil, err
	}
	if src == nil {
		return []feed.Source{}, nil
	}
	return []feed.Source{*src}, nil
}

// UpsertSourceWithChangeDetection stores src and reports whether anything that
// shapes its aggregated items (URL, name or filters) differs from the stored
// row. A new source counts as changed.
func (r *FeedRepository) UpsertSourceWithChangeDetection(ctx context.Context, src feed.Source) (bool, error) {
	existing, err := r.GetSource(ctx, src.ID)
	if err != nil {
		return false, fmt.Errorf("failed to check existing feed: %w", err)
	}

	filters, err := json.Marshal(src.Filters)
	if err != nil {
		return false, fmt.Errorf("failed to encode filters: %w", err)
	}

	changed := existing == nil
	if existing != nil {
		stored, err := json.Marshal(existing.Filters)
		if err != nil {
			return false, fmt.Errorf("failed to encode stored filters: %w", err)
		}
		changed = existing.URL != src.URL ||
			existing.Name != src.Name ||
			string(stored) != string(filters)
	}

	now := unixNow()
	if existing != nil {
		_, err = r.db.ExecContext(ctx, `
			UPDATE feeds
			SET name = ?, feed_url = ?, filters = ?, updated_at = ?
			WHERE id = ?
		`, src.Name, src.URL, string(filters), now, src.ID)
	} else {
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO feeds (id, name, feed_url, filters, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, src.ID, src.Name, src.URL, string(filters), now, now)
	}
	if err != nil {
		return false, fmt.Errorf("failed to upsert feed: %w", err)
	}

	return changed, nil
}

// DeleteSource reports false when id was not registered.
func (r *FeedRepository) DeleteSource(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM feeds WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete feed: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSource(row rowScanner) (*feed.Source, error) {
	var (
		src     feed.Source
		filters string
	)

	if err := row.Scan(&src.ID, &src.Name, &src.URL, &filters); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan feed: %w", err)
	}

	if filters != "" {
		if err := json.Unmarshal([]byte(filters), &src.Filters); err != nil {
			return nil, fmt.Errorf("failed to decode filters for %s: %w", src.ID, err)
		}
	}

	return &src, nil
}
