// Package publish turns a feed item into a rewritten draft document.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lysyi3m/rss-curator/app/apperr"
	"github.com/lysyi3m/rss-curator/app/database"
)

type Rewriter interface {
	Rewrite(ctx context.Context, content, systemPrompt, credential string) (string, error)
}

type DocumentStore interface {
	Create(ctx context.Context, doc database.Document) (int64, error)
}

type DraftTracker interface {
	Record(ctx context.Context, documentID int64, link string) error
}

type Request struct {
	Title        string
	Link         string
	Content      string
	Credential   string
	SystemPrompt string
	Author       string
}

type Result struct {
	DocumentID int64  `json:"document_id"`
	EditURL    string `json:"edit_url"`
}

// Workflow is deliberately not idempotent: publishing the same link twice
// yields two documents and two draft records.
type Workflow struct {
	rewriter  Rewriter
	documents DocumentStore
	drafts    DraftTracker
	baseURL   string
}

func NewWorkflow(rewriter Rewriter, documents DocumentStore, drafts DraftTracker, baseURL string) *Workflow {
	return &Workflow{
		rewriter:  rewriter,
		documents: documents,
		drafts:    drafts,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

func (w *Workflow) Publish(ctx context.Context, req Request) (Result, error) {
	if req.Credential == "" {
		return Result{}, apperr.Config("credential missing")
	}

	text, err := w.rewriter.Rewrite(ctx, req.Content, req.SystemPrompt, req.Credential)
	if err != nil {
		return Result{}, err
	}

	id, err := w.documents.Create(ctx, database.Document{
		Title:   req.Title,
		Content: text,
		Status:  database.DocumentStatusDraft,
		Author:  req.Author,
	})
	if err != nil {
		slog.Error("Failed to create draft", "link", req.Link, "error", err)
		return Result{}, apperr.Storage("insert failed", err)
	}

	// the document exists at this point; a lost record only hides the
	// "already rewritten" marker
	if err := w.drafts.Record(ctx, id, req.Link); err != nil {
		slog.Warn("Failed to record draft", "document_id", id, "link", req.Link, "error", err)
	}

	slog.Info("Draft published", "document_id", id, "link", req.Link, "author", req.Author)

	return Result{DocumentID: id, EditURL: w.EditURL(id)}, nil
}

// EditURL is where a created document can be viewed.
func (w *Workflow) EditURL(id int64) string {
	return fmt.Sprintf("%s/api/documents/%d", w.baseURL, id)
}
