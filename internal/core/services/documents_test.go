package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tessera-labs/tessera-core/internal/core/domain"
	"github.com/tessera-labs/tessera-core/internal/core/ports/driven/mocks"
)

// Test helper to create DocumentService with mocks
func createTestDocumentService(t *testing.T) (
	*documentService,
	*mocks.MockMetadataStore,
	*mocks.MockTaskQueue,
) {
	t.Helper()

	metadata := mocks.NewMockMetadataStore()
	queue := mocks.NewMockTaskQueue()
	svc := NewDocumentService(metadata, queue).(*documentService)

	return svc, metadata, queue
}

// TestRegister_Success tests document registration and task enqueuing
func TestRegister_Success(t *testing.T) {
	svc, metadata, queue := createTestDocumentService(t)
	ctx := context.Background()

	doc, err := svc.Register(ctx, "user-1", "report.pdf", "/uploads/user-1/report.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID == "" {
		t.Error("expected generated document ID")
	}
	if doc.Status != domain.StatusQueued {
		t.Errorf("expected status queued, got %s", doc.Status)
	}
	if doc.OwnerID != "user-1" {
		t.Errorf("expected owner user-1, got %s", doc.OwnerID)
	}

	// The record exists in the store
	saved, err := metadata.Get(ctx, doc.ID)
	if err != nil {
		t.Fatalf("document not persisted: %v", err)
	}
	if saved.Filename != "report.pdf" {
		t.Errorf("expected filename 'report.pdf', got '%s'", saved.Filename)
	}

	// A pipeline task is waiting
	if queue.PendingCount() != 1 {
		t.Fatalf("expected 1 pending task, got %d", queue.PendingCount())
	}
	task, _ := queue.Dequeue(ctx)
	if task.Type != domain.TaskTypeProcessDocument {
		t.Errorf("expected process task, got %s", task.Type)
	}
	if task.DocumentID() != doc.ID {
		t.Errorf("expected task for %s, got %s", doc.ID, task.DocumentID())
	}
	if task.OwnerID != "user-1" {
		t.Errorf("expected task owner user-1, got %s", task.OwnerID)
	}
}

// TestRegister_MissingFields tests input validation
func TestRegister_MissingFields(t *testing.T) {
	svc, _, queue := createTestDocumentService(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		ownerID  string
		filename string
		rawPath  string
	}{
		{"no owner", "", "report.pdf", "/uploads/report.pdf"},
		{"no filename", "user-1", "", "/uploads/report.pdf"},
		{"no raw path", "user-1", "report.pdf", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.ownerID, tc.filename, tc.rawPath)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}

	if queue.PendingCount() != 0 {
		t.Errorf("expected no enqueued tasks, got %d", queue.PendingCount())
	}
}

// TestRegister_EnqueueFails tests that a queue failure surfaces but leaves the record
func TestRegister_EnqueueFails(t *testing.T) {
	svc, metadata, queue := createTestDocumentService(t)
	ctx := context.Background()

	queue.EnqueueErr = errors.New("queue unavailable")

	_, err := svc.Register(ctx, "user-1", "report.pdf", "/uploads/user-1/report.pdf")
	if err == nil {
		t.Fatal("expected error when enqueue fails")
	}

	// The queued record stays behind so a reprocess can pick it up
	docs, _ := metadata.ListByOwner(ctx, "user-1", 10, 0)
	if len(docs) != 1 {
		t.Errorf("expected 1 document despite enqueue failure, got %d", len(docs))
	}
}

// TestGet_Success tests document retrieval by the owner
func TestGet_Success(t *testing.T) {
	svc, metadata, _ := createTestDocumentService(t)
	ctx := context.Background()

	metadata.Put(&domain.Document{ID: "doc-1", OwnerID: "user-1", Filename: "a.pdf"})

	doc, err := svc.Get(ctx, "user-1", "doc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID != "doc-1" {
		t.Errorf("expected doc-1, got %s", doc.ID)
	}
}

// TestGet_NotFound tests retrieval of a missing document
func TestGet_NotFound(t *testing.T) {
	svc, _, _ := createTestDocumentService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, "user-1", "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// TestGet_Forbidden tests that another tenant's document is not served
func TestGet_Forbidden(t *testing.T) {
	svc, metadata, _ := createTestDocumentService(t)
	ctx := context.Background()

	metadata.Put(&domain.Document{ID: "doc-1", OwnerID: "user-1", Filename: "a.pdf"})

	_, err := svc.Get(ctx, "user-2", "doc-1")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

// TestList_ScopedToOwner tests that listing never crosses tenants
func TestList_ScopedToOwner(t *testing.T) {
	svc, metadata, _ := createTestDocumentService(t)
	ctx := context.Background()

	now := time.Now()
	metadata.Put(&domain.Document{ID: "doc-1", OwnerID: "user-1", CreatedAt: now.Add(-2 * time.Hour)})
	metadata.Put(&domain.Document{ID: "doc-2", OwnerID: "user-1", CreatedAt: now.Add(-time.Hour)})
	metadata.Put(&domain.Document{ID: "doc-3", OwnerID: "user-2", CreatedAt: now})

	docs, err := svc.List(ctx, "user-1", 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents for user-1, got %d", len(docs))
	}
	// Newest first
	if docs[0].ID != "doc-2" || docs[1].ID != "doc-1" {
		t.Errorf("expected newest-first ordering, got %s then %s", docs[0].ID, docs[1].ID)
	}
}

// TestList_EmptyOwner tests listing for a tenant with no documents
func TestList_EmptyOwner(t *testing.T) {
	svc, _, _ := createTestDocumentService(t)
	ctx := context.Background()

	docs, err := svc.List(ctx, "user-1", 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected empty list, got %d", len(docs))
	}
}

// TestReprocess_Success tests re-run enqueuing for an owned document
func TestReprocess_Success(t *testing.T) {
	svc, metadata, queue := createTestDocumentService(t)
	ctx := context.Background()

	metadata.Put(&domain.Document{
		ID:          "doc-1",
		OwnerID:     "user-1",
		Status:      domain.StatusFailed,
		ErrorDetail: "embed stage: worker unreachable",
	})

	if err := svc.Reprocess(ctx, "user-1", "doc-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if queue.PendingCount() != 1 {
		t.Fatalf("expected 1 pending task, got %d", queue.PendingCount())
	}
	task, _ := queue.Dequeue(ctx)
	if task.Type != domain.TaskTypeReprocessDocument {
		t.Errorf("expected reprocess task, got %s", task.Type)
	}
	if task.DocumentID() != "doc-1" {
		t.Errorf("expected task for doc-1, got %s", task.DocumentID())
	}
}

// TestReprocess_NotFound tests reprocessing a missing document
func TestReprocess_NotFound(t *testing.T) {
	svc, _, queue := createTestDocumentService(t)
	ctx := context.Background()

	err := svc.Reprocess(ctx, "user-1", "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if queue.PendingCount() != 0 {
		t.Errorf("expected no enqueued tasks, got %d", queue.PendingCount())
	}
}

// TestReprocess_Forbidden tests reprocessing another tenant's document
func TestReprocess_Forbidden(t *testing.T) {
	svc, metadata, queue := createTestDocumentService(t)
	ctx := context.Background()

	metadata.Put(&domain.Document{ID: "doc-1", OwnerID: "user-1"})

	err := svc.Reprocess(ctx, "user-2", "doc-1")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if queue.PendingCount() != 0 {
		t.Errorf("expected no enqueued tasks, got %d", queue.PendingCount())
	}
}
