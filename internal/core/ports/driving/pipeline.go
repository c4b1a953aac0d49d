package driving

import (
	"context"

	"github.com/tessera-labs/tessera-core/internal/core/domain"
)

// PipelineOrchestrator drives one document through every pipeline stage:
// extract, embed, index, graph-build. A run records its progress in the
// metadata store and converts stage failures into a terminal failed status
// rather than returning them; only failures to persist state itself
// propagate out.
type PipelineOrchestrator interface {
	// Run processes the document end to end. It fails with ErrNotFound if
	// the document does not exist.
	Run(ctx context.Context, documentID string) (*domain.PipelineResult, error)
}
