package gpunode

import (
	"context"
	"time"

	"github.com/tessera-labs/tessera-core/internal/core/domain"
	"github.com/tessera-labs/tessera-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ExtractionClient = (*ExtractionClient)(nil)

// ExtractionClient calls the document extraction worker
type ExtractionClient struct {
	client
	outputDir string
}

// ExtractionConfig holds extraction worker connection configuration
type ExtractionConfig struct {
	// BaseURL is the extraction worker endpoint (e.g., http://localhost:8001)
	BaseURL string

	// OutputDir is the shared-storage directory the worker writes the
	// rendered markdown artifact into
	OutputDir string

	// Timeout bounds one extraction call
	Timeout time.Duration

	// ConnectTimeout bounds dialing the worker
	ConnectTimeout time.Duration
}

// NewExtractionClient creates a new extraction worker client
func NewExtractionClient(cfg ExtractionConfig) *ExtractionClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultExtractionTimeout
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = DefaultExtractionConnectTimeout
	}
	return &ExtractionClient{
		client:    newClient(cfg.BaseURL, cfg.Timeout, cfg.ConnectTimeout),
		outputDir: cfg.OutputDir,
	}
}

type extractRequest struct {
	InputFilePath       string `json:"input_file_path"`
	OutputDirectoryPath string `json:"output_directory_path,omitempty"`
}

type extractResponse struct {
	ExtractedMarkdownPath string         `json:"extracted_markdown_path"`
	Chunks                []domain.Chunk `json:"chunks"`
}

// Extract parses the file at rawPath into ordered chunks
func (c *ExtractionClient) Extract(ctx context.Context, rawPath string) (*driven.ExtractResult, error) {
	req := extractRequest{
		InputFilePath:       rawPath,
		OutputDirectoryPath: c.outputDir,
	}

	var resp extractResponse
	if err := c.postJSON(ctx, "/process", req, &resp); err != nil {
		return nil, err
	}

	return &driven.ExtractResult{
		MarkdownPath: resp.ExtractedMarkdownPath,
		Chunks:       resp.Chunks,
	}, nil
}

// HealthCheck verifies the worker is available
func (c *ExtractionClient) HealthCheck(ctx context.Context) error {
	return c.healthCheck(ctx)
}
