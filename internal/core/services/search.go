package services

import (
	"context"
	"fmt"
	"time"

	"github.com/tessera-labs/tessera-core/internal/core/domain"
	"github.com/tessera-labs/tessera-core/internal/core/ports/driven"
	"github.com/tessera-labs/tessera-core/internal/core/ports/driving"
)

// Ensure searchService implements SearchService
var _ driving.SearchService = (*searchService)(nil)

// searchService implements the SearchService interface
type searchService struct {
	vectors  driven.VectorIndex
	embedder driven.EmbeddingClient
}

// NewSearchService creates a new SearchService
func NewSearchService(
	vectors driven.VectorIndex,
	embedder driven.EmbeddingClient,
) driving.SearchService {
	return &searchService{
		vectors:  vectors,
		embedder: embedder,
	}
}

// Search embeds the query and returns the caller's nearest chunks
func (s *searchService) Search(ctx context.Context, ownerID, query string, topK int) (*domain.SearchResult, error) {
	start := time.Now()

	if query == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}

	// Apply defaults
	if topK <= 0 {
		topK = 20
	}
	if topK > 100 {
		topK = 100
	}

	queryVector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(queryVector) != s.vectors.Dimension() {
		return nil, fmt.Errorf("%w: query vector has %d dimensions, index expects %d",
			domain.ErrDimensionMismatch, len(queryVector), s.vectors.Dimension())
	}

	matches, err := s.vectors.Search(ctx, ownerID, queryVector, topK)
	if err != nil {
		return nil, err
	}

	return &domain.SearchResult{
		Query:   query,
		Results: matches,
		Took:    time.Since(start).Seconds(),
	}, nil
}
