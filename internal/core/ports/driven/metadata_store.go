package driven

import (
	"context"
	"time"

	"github.com/tessera-labs/tessera-core/internal/core/domain"
)

// MetadataStore is the durable record of every document's identity, owner,
// file locations, and pipeline status (PostgreSQL or MongoDB).
type MetadataStore interface {
	// Create persists a new document record
	Create(ctx context.Context, doc *domain.Document) error

	// Get retrieves a document by ID
	Get(ctx context.Context, id string) (*domain.Document, error)

	// ListByOwner retrieves an owner's documents, newest first
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Document, error)

	// SetStatus records a status transition. An empty errorDetail clears
	// any previous detail, which is what a re-run relies on.
	SetStatus(ctx context.Context, id string, status domain.DocumentStatus, errorDetail string) error

	// SetExtractedPath records where the rendered extraction artifact lives
	SetExtractedPath(ctx context.Context, id string, path string) error

	// ListStaleProcessing returns documents that have sat in processing
	// since before the cutoff, oldest first
	ListStaleProcessing(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Document, error)

	// Delete removes a document record. The pipeline never calls this;
	// it exists for external cleanup.
	Delete(ctx context.Context, id string) error

	// Ping checks if the store is reachable
	Ping(ctx context.Context) error
}
