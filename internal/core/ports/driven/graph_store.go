package driven

import (
	"context"

	"github.com/tessera-labs/tessera-core/internal/core/domain"
)

// GraphStore maintains the ownership/entity graph (Neo4j). Every write is a
// set-oriented merge: running the same batch twice leaves the graph exactly
// as running it once does.
type GraphStore interface {
	// EnsureUser merge-creates the User node for a tenant
	EnsureUser(ctx context.Context, ownerID string) error

	// LinkDocument merge-creates the Document node and the OWNS edge from
	// the owner's User node. Re-invocation never duplicates either.
	LinkDocument(ctx context.Context, ownerID, documentID, filename string) error

	// UpsertEntities merge-creates Entity nodes and CONTAINS_ENTITY edges
	// from the document, batched in one request. Fails with
	// ErrDocumentNodeMissing if the Document node has not been linked yet.
	UpsertEntities(ctx context.Context, documentID string, entities []domain.Entity) error

	// EntitiesForDocument returns the entities contained in one of the
	// owner's documents, traversed through the OWNS edge so other tenants'
	// documents are unreachable by construction.
	EntitiesForDocument(ctx context.Context, ownerID, documentID string) ([]domain.Entity, error)

	// DocumentsForEntity returns the owner's documents that contain the
	// given entity.
	DocumentsForEntity(ctx context.Context, ownerID string, entity domain.Entity) ([]domain.EntityDocument, error)

	// HealthCheck verifies the graph store is available
	HealthCheck(ctx context.Context) error
}
