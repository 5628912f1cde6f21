package publish

import (
	"context"
	"errors"
	"testing"

	"github.com/lysyi3m/rss-curator/app/apperr"
	"github.com/lysyi3m/rss-curator/app/database"
)

type fakeRewriter struct {
	calls int
	text  string
	err   error
}

func (f *fakeRewriter) Rewrite(ctx context.Context, content, systemPrompt, credential string) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeDocuments struct {
	nextID int64
	docs   []database.Document
	err    error
}

func (f *fakeDocuments) Create(ctx context.Context, doc database.Document) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.nextID++
	doc.ID = f.nextID
	f.docs = append(f.docs, doc)
	return f.nextID, nil
}

type fakeDrafts struct {
	records map[int64]string
	err     error
}

func (f *fakeDrafts) Record(ctx context.Context, documentID int64, link string) error {
	if f.err != nil {
		return f.err
	}
	if f.records == nil {
		f.records = make(map[int64]string)
	}
	f.records[documentID] = link
	return nil
}

func validRequest() Request {
	return Request{
		Title:        "Original title",
		Link:         "https://example.com/post",
		Content:      "<p>original</p>",
		Credential:   "secret",
		SystemPrompt: "rewrite",
		Author:       "editor",
	}
}

func TestPublishCreatesDraft(t *testing.T) {
	rewriter := &fakeRewriter{text: "<h2>new</h2>"}
	docs := &fakeDocuments{}
	drafts := &fakeDrafts{}

	result, err := NewWorkflow(rewriter, docs, drafts, "http://localhost:8080/").Publish(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if result.DocumentID != 1 {
		t.Errorf("Expected document id 1, got %d", result.DocumentID)
	}
	if result.EditURL != "http://localhost:8080/api/documents/1" {
		t.Errorf("Unexpected edit url %q", result.EditURL)
	}

	doc := docs.docs[0]
	if doc.Title != "Original title" || doc.Content != "<h2>new</h2>" || doc.Author != "editor" || doc.Status != database.DocumentStatusDraft {
		t.Errorf("Unexpected document: %+v", doc)
	}
	if drafts.records[1] != "https://example.com/post" {
		t.Errorf("Expected draft record for link, got %v", drafts.records)
	}
}

func TestPublishWithoutCredential(t *testing.T) {
	rewriter := &fakeRewriter{text: "x"}
	docs := &fakeDocuments{}

	req := validRequest()
	req.Credential = ""

	_, err := NewWorkflow(rewriter, docs, &fakeDrafts{}, "").Publish(context.Background(), req)
	if !errors.Is(err, apperr.ErrConfig) {
		t.Fatalf("Expected config error, got %v", err)
	}
	if rewriter.calls != 0 {
		t.Errorf("Expected no rewrite calls, got %d", rewriter.calls)
	}
	if len(docs.docs) != 0 {
		t.Error("Expected no documents to be created")
	}
}

func TestPublishTwiceIsNotIdempotent(t *testing.T) {
	rewriter := &fakeRewriter{text: "x"}
	docs := &fakeDocuments{}
	drafts := &fakeDrafts{}
	workflow := NewWorkflow(rewriter, docs, drafts, "")

	first, err := workflow.Publish(context.Background(), validRequest())
	if err != nil {
		t.Fatal(err)
	}
	second, err := workflow.Publish(context.Background(), validRequest())
	if err != nil {
		t.Fatal(err)
	}

	if first.DocumentID == second.DocumentID {
		t.Error("Expected two distinct documents")
	}
	if len(drafts.records) != 2 || rewriter.calls != 2 {
		t.Errorf("Expected two records and two rewrites, got %d and %d", len(drafts.records), rewriter.calls)
	}
}

func TestPublishRewriteErrorPassesThrough(t *testing.T) {
	rewriteErr := apperr.API("rate limited")
	docs := &fakeDocuments{}

	_, err := NewWorkflow(&fakeRewriter{err: rewriteErr}, docs, &fakeDrafts{}, "").Publish(context.Background(), validRequest())
	if err != rewriteErr {
		t.Errorf("Expected rewrite error unchanged, got %v", err)
	}
	if len(docs.docs) != 0 {
		t.Error("Expected no document after failed rewrite")
	}
}

func TestPublishStorageFailure(t *testing.T) {
	drafts := &fakeDrafts{}
	docs := &fakeDocuments{err: errors.New("disk full")}

	_, err := NewWorkflow(&fakeRewriter{text: "x"}, docs, drafts, "").Publish(context.Background(), validRequest())
	if !errors.Is(err, apperr.ErrStorage) {
		t.Fatalf("Expected storage error, got %v", err)
	}
	if err.Error() != "insert failed" {
		t.Errorf("Expected 'insert failed', got %q", err.Error())
	}
	if len(drafts.records) != 0 {
		t.Error("Expected no draft record after failed insert")
	}
}

func TestPublishRecordFailureKeepsDocument(t *testing.T) {
	docs := &fakeDocuments{}

	result, err := NewWorkflow(&fakeRewriter{text: "x"}, docs, &fakeDrafts{err: errors.New("locked")}, "").Publish(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Expected publish to succeed, got %v", err)
	}
	if result.DocumentID != 1 || len(docs.docs) != 1 {
		t.Errorf("Expected created document to be returned, got %+v", result)
	}
}
