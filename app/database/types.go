package database

import (
	"time"
)

const DocumentStatusDraft = "draft"

type Document struct {
	ID        int64
	Title     string
	Content   string
	Status    string
	Author    string
	CreatedAt time.Time
}

// DraftRecord links a created document to the feed item link it was
// rewritten from. Records are insert-only.
type DraftRecord struct {
	DocumentID   int64
	OriginalLink string
	CreatedAt    time.Time
}
