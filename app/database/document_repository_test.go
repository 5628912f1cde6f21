package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestDocumentRepositoryCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepository(newTestDB(t))

	id, err := repo.Create(ctx, Document{Title: "Hello", Content: "<h2>Body</h2>", Author: "editor"})
	if err != nil {
		t.Fatal(err)
	}

	doc, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if doc == nil {
		t.Fatal("Expected document to exist")
	}
	if doc.Title != "Hello" || doc.Content != "<h2>Body</h2>" || doc.Author != "editor" {
		t.Errorf("Unexpected document: %+v", doc)
	}
	if doc.Status != DocumentStatusDraft {
		t.Errorf("Expected status draft, got %s", doc.Status)
	}

	missing, err := repo.Get(ctx, id+100)
	if err != nil || missing != nil {
		t.Errorf("Expected nil for missing document, got %+v err=%v", missing, err)
	}
}

func TestDocumentRepositoryIDsIncrease(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepository(newTestDB(t))

	first, _ := repo.Create(ctx, Document{Title: "a", Content: "a", Author: "admin"})
	second, _ := repo.Create(ctx, Document{Title: "a", Content: "a", Author: "admin"})

	if second <= first {
		t.Errorf("Expected increasing ids, got %d then %d", first, second)
	}
}

func TestDocumentRepositoryCreateFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer sqlDB.Close()

	repo := NewDocumentRepository(&DB{DB: sqlDB})

	mock.ExpectExec("INSERT INTO documents").
		WillReturnError(errors.New("database is locked"))

	if _, err := repo.Create(context.Background(), Document{Title: "t", Content: "c", Author: "admin"}); err == nil {
		t.Error("Expected error when insert fails")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
