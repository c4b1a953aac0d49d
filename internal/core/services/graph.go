package services

import (
	"context"
	"fmt"

	"github.com/tessera-labs/tessera-core/internal/core/domain"
	"github.com/tessera-labs/tessera-core/internal/core/ports/driven"
	"github.com/tessera-labs/tessera-core/internal/core/ports/driving"
)

// Ensure graphQueryService implements GraphQueryService
var _ driving.GraphQueryService = (*graphQueryService)(nil)

// graphQueryService implements the GraphQueryService interface
type graphQueryService struct {
	graph    driven.GraphStore
	metadata driven.MetadataStore
}

// NewGraphQueryService creates a new GraphQueryService
func NewGraphQueryService(
	graph driven.GraphStore,
	metadata driven.MetadataStore,
) driving.GraphQueryService {
	return &graphQueryService{
		graph:    graph,
		metadata: metadata,
	}
}

// EntitiesForDocument lists the entities extracted from a document the caller owns
func (s *graphQueryService) EntitiesForDocument(ctx context.Context, ownerID, documentID string) ([]domain.Entity, error) {
	// Ownership is checked against the metadata store, which is authoritative
	// even for documents whose graph nodes were never written.
	doc, err := s.metadata.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}

	return s.graph.EntitiesForDocument(ctx, ownerID, documentID)
}

// DocumentsForEntity lists the caller's documents containing an entity
func (s *graphQueryService) DocumentsForEntity(ctx context.Context, ownerID string, entity domain.Entity) ([]domain.EntityDocument, error) {
	if entity.Name == "" || entity.Type == "" {
		return nil, fmt.Errorf("%w: entity name and type are required", domain.ErrInvalidInput)
	}
	return s.graph.DocumentsForEntity(ctx, ownerID, entity)
}
