package gpunode

import (
	"context"
	"time"

	"github.com/tessera-labs/tessera-core/internal/core/domain"
	"github.com/tessera-labs/tessera-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.GraphBuilderClient = (*GraphBuilderClient)(nil)

// GraphBuilderClient calls the graph extraction worker
type GraphBuilderClient struct {
	client
}

// GraphBuilderConfig holds graph worker connection configuration
type GraphBuilderConfig struct {
	// BaseURL is the graph worker endpoint (e.g., http://localhost:8003)
	BaseURL string

	// Timeout bounds one graph build. Entity extraction runs an LLM over
	// every chunk, so this is the slowest worker call.
	Timeout time.Duration

	// ConnectTimeout bounds dialing the worker
	ConnectTimeout time.Duration
}

// NewGraphBuilderClient creates a new graph worker client
func NewGraphBuilderClient(cfg GraphBuilderConfig) *GraphBuilderClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultGraphTimeout
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = DefaultGraphConnectTimeout
	}
	return &GraphBuilderClient{
		client: newClient(cfg.BaseURL, cfg.Timeout, cfg.ConnectTimeout),
	}
}

type buildGraphRequest struct {
	DocID  string         `json:"doc_id"`
	UserID string         `json:"user_id"`
	Chunks []domain.Chunk `json:"chunks"`
}

type buildGraphResponse struct {
	DocID    string          `json:"doc_id"`
	Entities []domain.Entity `json:"entities"`
}

// BuildGraph derives entities from the document's chunks. The returned
// entities are what the coordinator merges into the graph store.
func (c *GraphBuilderClient) BuildGraph(ctx context.Context, documentID, ownerID string, chunks []domain.Chunk) ([]domain.Entity, error) {
	req := buildGraphRequest{
		DocID:  documentID,
		UserID: ownerID,
		Chunks: chunks,
	}

	var resp buildGraphResponse
	if err := c.postJSON(ctx, "/build-graph", req, &resp); err != nil {
		return nil, err
	}
	return resp.Entities, nil
}

// HealthCheck verifies the worker is available
func (c *GraphBuilderClient) HealthCheck(ctx context.Context) error {
	return c.healthCheck(ctx)
}
