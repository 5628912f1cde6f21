package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// DraftRepository tracks which feed item links have been turned into drafts.
type DraftRepository struct {
	db *DB
}

func NewDraftRepository(db *DB) *DraftRepository {
	return &DraftRepository{db: db}
}

// Record stores a new DraftRecord. Repeated links are kept; the latest
// draft wins on lookup.
func (r *DraftRepository) Record(ctx context.Context, documentID int64, link string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO draft_records (document_id, original_link, created_at)
		VALUES (?, ?, ?)
	`, documentID, link, unixNow())
	if err != nil {
		return fmt.Errorf("failed to record draft for %s: %w", link, err)
	}
	return nil
}

// FindLatestDraft returns the highest document id recorded for link. The
// match is exact.
func (r *DraftRepository) FindLatestDraft(ctx context.Context, link string) (int64, bool, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		SELECT document_id
		FROM draft_records
		WHERE original_link = ?
		ORDER BY document_id DESC
		LIMIT 1
	`, link).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to find draft for %s: %w", link, err)
	}
	return id, true, nil
}
