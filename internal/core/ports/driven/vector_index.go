package driven

import (
	"context"

	"github.com/tessera-labs/tessera-core/internal/core/domain"
)

// VectorIndex stores chunk embeddings tagged by tenant and document and
// answers tenant-scoped nearest-neighbor queries (pgvector).
type VectorIndex interface {
	// EnsureSchema idempotently creates the backing table and ANN index
	// with the configured fixed dimension, and primes the index for
	// searching. Safe to call on every process start; Search fails with
	// ErrIndexNotReady until it has run.
	EnsureSchema(ctx context.Context) error

	// UpsertChunks replaces all vector records for (ownerID, documentID)
	// with the given records, atomically. Fails with ErrDimensionMismatch
	// if any embedding's length differs from the index dimension; in that
	// case no records are written and none are removed.
	UpsertChunks(ctx context.Context, ownerID, documentID string, records []domain.VectorRecord) error

	// Search returns up to topK records nearest to queryVector, restricted
	// to ownerID. The tenant filter is part of the search predicate, not a
	// post-filter. Results are ordered by increasing distance, ties broken
	// by insertion order.
	Search(ctx context.Context, ownerID string, queryVector []float32, topK int) ([]domain.VectorMatch, error)

	// DeleteDocument removes all records for (ownerID, documentID)
	DeleteDocument(ctx context.Context, ownerID, documentID string) error

	// Dimension returns the fixed vector dimension the index enforces
	Dimension() int

	// HealthCheck verifies the index is available
	HealthCheck(ctx context.Context) error
}
