package services

import (
	"context"
	"errors"
	"testing"

	"github.com/tessera-labs/tessera-core/internal/core/domain"
	"github.com/tessera-labs/tessera-core/internal/core/ports/driven/mocks"
)

// Test helper to create GraphQueryService with mocks
func createTestGraphQueryService(t *testing.T) (
	*graphQueryService,
	*mocks.MockGraphStore,
	*mocks.MockMetadataStore,
) {
	t.Helper()

	graph := mocks.NewMockGraphStore()
	metadata := mocks.NewMockMetadataStore()
	svc := NewGraphQueryService(graph, metadata).(*graphQueryService)

	return svc, graph, metadata
}

func linkWithEntities(t *testing.T, graph *mocks.MockGraphStore, ownerID, documentID, filename string, entities ...domain.Entity) {
	t.Helper()
	ctx := context.Background()
	if err := graph.EnsureUser(ctx, ownerID); err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	if err := graph.LinkDocument(ctx, ownerID, documentID, filename); err != nil {
		t.Fatalf("link document: %v", err)
	}
	if len(entities) > 0 {
		if err := graph.UpsertEntities(ctx, documentID, entities); err != nil {
			t.Fatalf("upsert entities: %v", err)
		}
	}
}

// TestEntitiesForDocument_Success tests entity listing for an owned document
func TestEntitiesForDocument_Success(t *testing.T) {
	svc, graph, metadata := createTestGraphQueryService(t)
	ctx := context.Background()

	metadata.Put(&domain.Document{ID: "doc-1", OwnerID: "user-1"})
	linkWithEntities(t, graph, "user-1", "doc-1", "report.pdf",
		domain.Entity{Name: "Acme Corp", Type: "ORG"},
		domain.Entity{Name: "Jane Smith", Type: "PERSON"},
	)

	entities, err := svc.EntitiesForDocument(ctx, "user-1", "doc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entities) != 2 {
		t.Errorf("expected 2 entities, got %d", len(entities))
	}
}

// TestEntitiesForDocument_NotFound tests a document with no metadata record
func TestEntitiesForDocument_NotFound(t *testing.T) {
	svc, _, _ := createTestGraphQueryService(t)
	ctx := context.Background()

	_, err := svc.EntitiesForDocument(ctx, "user-1", "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// TestEntitiesForDocument_Forbidden tests cross-tenant access denial
func TestEntitiesForDocument_Forbidden(t *testing.T) {
	svc, graph, metadata := createTestGraphQueryService(t)
	ctx := context.Background()

	metadata.Put(&domain.Document{ID: "doc-1", OwnerID: "user-1"})
	linkWithEntities(t, graph, "user-1", "doc-1", "report.pdf",
		domain.Entity{Name: "Acme Corp", Type: "ORG"},
	)

	_, err := svc.EntitiesForDocument(ctx, "user-2", "doc-1")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

// TestEntitiesForDocument_GraphNeverWritten tests a failed document whose
// graph nodes were never created
func TestEntitiesForDocument_GraphNeverWritten(t *testing.T) {
	svc, _, metadata := createTestGraphQueryService(t)
	ctx := context.Background()

	metadata.Put(&domain.Document{
		ID:          "doc-1",
		OwnerID:     "user-1",
		Status:      domain.StatusFailed,
		ErrorDetail: "graph stage: worker unreachable",
	})

	entities, err := svc.EntitiesForDocument(ctx, "user-1", "doc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entities) != 0 {
		t.Errorf("expected no entities, got %d", len(entities))
	}
}

// TestDocumentsForEntity_Success tests the reverse traversal
func TestDocumentsForEntity_Success(t *testing.T) {
	svc, graph, _ := createTestGraphQueryService(t)
	ctx := context.Background()

	acme := domain.Entity{Name: "Acme Corp", Type: "ORG"}
	linkWithEntities(t, graph, "user-1", "doc-1", "report.pdf", acme)
	linkWithEntities(t, graph, "user-1", "doc-2", "notes.md", acme)
	linkWithEntities(t, graph, "user-1", "doc-3", "other.txt",
		domain.Entity{Name: "Jane Smith", Type: "PERSON"})

	docs, err := svc.DocumentsForEntity(ctx, "user-1", acme)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("expected 2 documents containing the entity, got %d", len(docs))
	}
	for _, d := range docs {
		if d.Filename == "" {
			t.Error("expected filename on entity documents")
		}
	}
}

// TestDocumentsForEntity_TenantIsolation tests that the traversal never
// crosses into another tenant's subgraph
func TestDocumentsForEntity_TenantIsolation(t *testing.T) {
	svc, graph, _ := createTestGraphQueryService(t)
	ctx := context.Background()

	acme := domain.Entity{Name: "Acme Corp", Type: "ORG"}
	linkWithEntities(t, graph, "user-1", "doc-1", "report.pdf", acme)
	linkWithEntities(t, graph, "user-2", "doc-2", "secret.pdf", acme)

	docs, err := svc.DocumentsForEntity(ctx, "user-1", acme)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].DocumentID != "doc-1" {
		t.Errorf("expected doc-1, got %s", docs[0].DocumentID)
	}
}

// TestDocumentsForEntity_InvalidInput tests entity validation
func TestDocumentsForEntity_InvalidInput(t *testing.T) {
	svc, _, _ := createTestGraphQueryService(t)
	ctx := context.Background()

	_, err := svc.DocumentsForEntity(ctx, "user-1", domain.Entity{Name: "Acme Corp"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for missing type, got %v", err)
	}

	_, err = svc.DocumentsForEntity(ctx, "user-1", domain.Entity{Type: "ORG"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for missing name, got %v", err)
	}
}
