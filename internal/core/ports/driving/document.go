package driving

import (
	"context"

	"github.com/tessera-labs/tessera-core/internal/core/domain"
)

// DocumentService manages document registration and status access.
// Every operation is scoped to the calling tenant.
type DocumentService interface {
	// Register creates a queued document record for a file that already
	// lives on shared storage and enqueues its pipeline run
	Register(ctx context.Context, ownerID, filename, rawPath string) (*domain.Document, error)

	// Get retrieves a document. Fails with ErrForbidden when the caller
	// does not own it.
	Get(ctx context.Context, ownerID, id string) (*domain.Document, error)

	// List retrieves the caller's documents, newest first
	List(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Document, error)

	// Reprocess enqueues a fresh pipeline run for a document the caller
	// owns. Allowed from any status; the run itself resets status.
	Reprocess(ctx context.Context, ownerID, id string) error
}
