package mongodb

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/tessera-labs/tessera-core/internal/core/domain"
)

func newTestMetadataStore(t *testing.T) *MetadataStore {
	t.Helper()

	uri := os.Getenv("TESSERA_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TESSERA_TEST_MONGO_URI not set; skipping Mongo integration test")
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("mongo connect: %v", err)
	}

	ctx := context.Background()
	if err := client.Ping(ctx, nil); err != nil {
		t.Fatalf("mongo ping: %v", err)
	}

	coll := client.Database("tessera_test").Collection("documents_" + t.Name())

	// Clean up collection before and after test.
	_ = coll.Drop(ctx)
	t.Cleanup(func() {
		_ = coll.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	store := NewMetadataStore(coll)
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	return store
}

func TestMetadataStore_CreateAndGet(t *testing.T) {
	store := newTestMetadataStore(t)
	ctx := context.Background()

	doc := domain.NewDocument("user-1", "report.pdf", "/data/raw/report.pdf")
	if err := store.Create(ctx, doc); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.Get(ctx, doc.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.OwnerID != "user-1" {
		t.Errorf("expected owner user-1, got %s", got.OwnerID)
	}
	if got.Filename != "report.pdf" {
		t.Errorf("expected filename report.pdf, got %s", got.Filename)
	}
	if got.Status != domain.StatusQueued {
		t.Errorf("expected status queued, got %s", got.Status)
	}
}

func TestMetadataStore_Create_Duplicate(t *testing.T) {
	store := newTestMetadataStore(t)
	ctx := context.Background()

	doc := domain.NewDocument("user-1", "report.pdf", "/data/raw/report.pdf")
	if err := store.Create(ctx, doc); err != nil {
		t.Fatalf("create: %v", err)
	}

	err := store.Create(ctx, doc)
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestMetadataStore_Get_NotFound(t *testing.T) {
	store := newTestMetadataStore(t)

	_, err := store.Get(context.Background(), "missing-id")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMetadataStore_ListByOwner(t *testing.T) {
	store := newTestMetadataStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		doc := domain.NewDocument("user-1", "doc.pdf", "/data/raw/doc.pdf")
		doc.CreatedAt = time.Now().Add(time.Duration(i) * time.Second)
		if err := store.Create(ctx, doc); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	other := domain.NewDocument("user-2", "other.pdf", "/data/raw/other.pdf")
	if err := store.Create(ctx, other); err != nil {
		t.Fatalf("create: %v", err)
	}

	docs, err := store.ListByOwner(ctx, "user-1", 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(docs))
	}
	// Newest first
	if docs[0].CreatedAt.Before(docs[1].CreatedAt) {
		t.Error("expected newest document first")
	}

	page, err := store.ListByOwner(ctx, "user-1", 2, 1)
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if len(page) != 2 {
		t.Errorf("expected 2 documents with limit 2 offset 1, got %d", len(page))
	}
}

func TestMetadataStore_SetStatus(t *testing.T) {
	store := newTestMetadataStore(t)
	ctx := context.Background()

	doc := domain.NewDocument("user-1", "report.pdf", "/data/raw/report.pdf")
	if err := store.Create(ctx, doc); err != nil {
		t.Fatalf("create: %v", err)
	}

	err := store.SetStatus(ctx, doc.ID, domain.StatusFailed, "extract stage: worker unreachable")
	if err != nil {
		t.Fatalf("set status: %v", err)
	}

	got, err := store.Get(ctx, doc.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.StatusFailed {
		t.Errorf("expected status failed, got %s", got.Status)
	}
	if got.ErrorDetail != "extract stage: worker unreachable" {
		t.Errorf("unexpected error detail: %s", got.ErrorDetail)
	}

	// Clearing the detail on a re-run
	if err := store.SetStatus(ctx, doc.ID, domain.StatusProcessing, ""); err != nil {
		t.Fatalf("set status: %v", err)
	}
	got, _ = store.Get(ctx, doc.ID)
	if got.ErrorDetail != "" {
		t.Errorf("expected cleared error detail, got %s", got.ErrorDetail)
	}
}

func TestMetadataStore_SetStatus_NotFound(t *testing.T) {
	store := newTestMetadataStore(t)

	err := store.SetStatus(context.Background(), "missing-id", domain.StatusCompleted, "")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMetadataStore_SetExtractedPath(t *testing.T) {
	store := newTestMetadataStore(t)
	ctx := context.Background()

	doc := domain.NewDocument("user-1", "report.pdf", "/data/raw/report.pdf")
	if err := store.Create(ctx, doc); err != nil {
		t.Fatalf("create: %v", err)
	}

	err := store.SetExtractedPath(ctx, doc.ID, "/data/extracted/report.md")
	if err != nil {
		t.Fatalf("set extracted path: %v", err)
	}

	got, err := store.Get(ctx, doc.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ExtractedPath != "/data/extracted/report.md" {
		t.Errorf("unexpected extracted path: %s", got.ExtractedPath)
	}
}

func TestMetadataStore_ListStaleProcessing(t *testing.T) {
	store := newTestMetadataStore(t)
	ctx := context.Background()

	stale := domain.NewDocument("user-1", "stale.pdf", "/data/raw/stale.pdf")
	stale.Status = domain.StatusProcessing
	stale.UpdatedAt = time.Now().Add(-time.Hour)
	if err := store.Create(ctx, stale); err != nil {
		t.Fatalf("create: %v", err)
	}

	fresh := domain.NewDocument("user-1", "fresh.pdf", "/data/raw/fresh.pdf")
	fresh.Status = domain.StatusProcessing
	if err := store.Create(ctx, fresh); err != nil {
		t.Fatalf("create: %v", err)
	}

	done := domain.NewDocument("user-1", "done.pdf", "/data/raw/done.pdf")
	done.Status = domain.StatusCompleted
	done.UpdatedAt = time.Now().Add(-time.Hour)
	if err := store.Create(ctx, done); err != nil {
		t.Fatalf("create: %v", err)
	}

	docs, err := store.ListStaleProcessing(ctx, time.Now().Add(-30*time.Minute), 10)
	if err != nil {
		t.Fatalf("list stale: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 stale document, got %d", len(docs))
	}
	if docs[0].ID != stale.ID {
		t.Errorf("expected stale document %s, got %s", stale.ID, docs[0].ID)
	}
}

func TestMetadataStore_Delete(t *testing.T) {
	store := newTestMetadataStore(t)
	ctx := context.Background()

	doc := domain.NewDocument("user-1", "report.pdf", "/data/raw/report.pdf")
	if err := store.Create(ctx, doc); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := store.Delete(ctx, doc.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	_, err := store.Get(ctx, doc.ID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	err = store.Delete(ctx, doc.ID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}
