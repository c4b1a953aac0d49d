package gpunode

import (
	"context"
	"fmt"
	"time"

	"github.com/tessera-labs/tessera-core/internal/core/domain"
	"github.com/tessera-labs/tessera-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.EmbeddingClient = (*EmbeddingClient)(nil)

// EmbeddingClient calls the embedding worker
type EmbeddingClient struct {
	client
}

// EmbeddingConfig holds embedding worker connection configuration
type EmbeddingConfig struct {
	// BaseURL is the embedding worker endpoint (e.g., http://localhost:8002)
	BaseURL string

	// Timeout bounds one embedding call
	Timeout time.Duration

	// ConnectTimeout bounds dialing the worker
	ConnectTimeout time.Duration
}

// NewEmbeddingClient creates a new embedding worker client
func NewEmbeddingClient(cfg EmbeddingConfig) *EmbeddingClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultEmbeddingTimeout
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = DefaultEmbeddingConnectTimeout
	}
	return &EmbeddingClient{
		client: newClient(cfg.BaseURL, cfg.Timeout, cfg.ConnectTimeout),
	}
}

type embedDocumentsRequest struct {
	Texts []string `json:"texts"`
}

type embedDocumentsResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

type embedQueryRequest struct {
	Text string `json:"text"`
}

type embedQueryResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed returns one vector per input text, positionally aligned with the
// input. The length check is what lets every caller rely on records[i]
// belonging to texts[i].
func (c *EmbeddingClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var resp embedDocumentsResponse
	if err := c.postJSON(ctx, "/embed-documents", embedDocumentsRequest{Texts: texts}, &resp); err != nil {
		return nil, err
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts",
			domain.ErrWorkerProtocol, len(resp.Embeddings), len(texts))
	}
	return resp.Embeddings, nil
}

// EmbedQuery embeds a single search query
func (c *EmbeddingClient) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	var resp embedQueryResponse
	if err := c.postJSON(ctx, "/embed-query", embedQueryRequest{Text: query}, &resp); err != nil {
		return nil, err
	}

	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding for query", domain.ErrWorkerProtocol)
	}
	return resp.Embedding, nil
}

// HealthCheck verifies the worker is available
func (c *EmbeddingClient) HealthCheck(ctx context.Context) error {
	return c.healthCheck(ctx)
}
