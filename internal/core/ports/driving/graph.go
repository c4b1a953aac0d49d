package driving

import (
	"context"

	"github.com/tessera-labs/tessera-core/internal/core/domain"
)

// GraphQueryService answers relationship queries over the caller's own
// subgraph. Traversals start at the caller's User node, so tenant isolation
// falls out of the OWNS edge.
type GraphQueryService interface {
	// EntitiesForDocument lists the entities extracted from a document the
	// caller owns
	EntitiesForDocument(ctx context.Context, ownerID, documentID string) ([]domain.Entity, error)

	// DocumentsForEntity lists the caller's documents containing an entity
	DocumentsForEntity(ctx context.Context, ownerID string, entity domain.Entity) ([]domain.EntityDocument, error)
}
