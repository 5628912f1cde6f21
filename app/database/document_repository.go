package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type DocumentRepository struct {
	db *DB
}

func NewDocumentRepository(db *DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create inserts doc and returns its id. Status defaults to draft.
func (r *DocumentRepository) Create(ctx context.Context, doc Document) (int64, error) {
	if doc.Status == "" {
		doc.Status = DocumentStatusDraft
	}
	createdAt := doc.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO documents (title, content, status, author, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, doc.Title, doc.Content, doc.Status, doc.Author, createdAt.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to insert document: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get document id: %w", err)
	}
	return id, nil
}

// Get returns nil when id does not exist.
func (r *DocumentRepository) Get(ctx context.Context, id int64) (*Document, error) {
	var (
		doc       Document
		createdAt int64
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT id, title, content, status, author, created_at
		FROM documents
		WHERE id = ?
	`, id).Scan(&doc.ID, &doc.Title, &doc.Content, &doc.Status, &doc.Author, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %d: %w", id, err)
	}

	doc.CreatedAt = time.Unix(createdAt, 0)
	return &doc, nil
}
