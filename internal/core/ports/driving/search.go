package driving

import (
	"context"

	"github.com/tessera-labs/tessera-core/internal/core/domain"
)

// SearchService answers tenant-scoped similarity queries
type SearchService interface {
	// Search embeds the query and returns the caller's nearest chunks
	Search(ctx context.Context, ownerID, query string, topK int) (*domain.SearchResult, error)
}
