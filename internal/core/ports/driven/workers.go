package driven

import (
	"context"

	"github.com/tessera-labs/tessera-core/internal/core/domain"
)

// The three worker clients wrap the external GPU services that run the
// heavy pipeline stages. Each call maps failures onto the domain sentinels
// (ErrWorkerUnreachable, ErrWorkerRejected, ErrWorkerProtocol) and never
// retries on its own; retry policy belongs to the coordinator so call
// counts stay observable.

// ExtractResult is what the extraction worker produces for one document
type ExtractResult struct {
	// MarkdownPath is the rendered text artifact on shared storage
	MarkdownPath string

	// Chunks are the extracted spans in document order
	Chunks []domain.Chunk
}

// ExtractionClient calls the document extraction worker
type ExtractionClient interface {
	// Extract parses the file at rawPath into ordered chunks
	Extract(ctx context.Context, rawPath string) (*ExtractResult, error)

	// HealthCheck verifies the worker is available
	HealthCheck(ctx context.Context) error
}

// EmbeddingClient calls the embedding worker
type EmbeddingClient interface {
	// Embed returns one vector per input text, positionally aligned with
	// the input. A response of a different length is a protocol error.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery embeds a single search query
	EmbedQuery(ctx context.Context, query string) ([]float32, error)

	// HealthCheck verifies the worker is available
	HealthCheck(ctx context.Context) error
}

// GraphBuilderClient calls the graph extraction worker
type GraphBuilderClient interface {
	// BuildGraph derives entities from the document's chunks. The returned
	// entities are what the coordinator merges into the graph store.
	BuildGraph(ctx context.Context, documentID, ownerID string, chunks []domain.Chunk) ([]domain.Entity, error)

	// HealthCheck verifies the worker is available
	HealthCheck(ctx context.Context) error
}
