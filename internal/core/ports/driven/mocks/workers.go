package mocks

import (
	"context"
	"sync"

	"github.com/tessera-labs/tessera-core/internal/core/domain"
	"github.com/tessera-labs/tessera-core/internal/core/ports/driven"
)

// MockExtractionClient is a mock ExtractionClient. Call counts are exported
// so retry policy stays observable in tests.
type MockExtractionClient struct {
	mu sync.Mutex

	Result *driven.ExtractResult
	Err    error

	// ExtractFn overrides Result/Err when set; it receives the 1-based
	// call number so tests can fail transiently.
	ExtractFn func(call int, rawPath string) (*driven.ExtractResult, error)

	Calls     int
	LastPath  string
	HealthErr error
}

func (m *MockExtractionClient) Extract(ctx context.Context, rawPath string) (*driven.ExtractResult, error) {
	m.mu.Lock()
	m.Calls++
	call := m.Calls
	m.LastPath = rawPath
	m.mu.Unlock()

	if m.ExtractFn != nil {
		return m.ExtractFn(call, rawPath)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}

func (m *MockExtractionClient) HealthCheck(ctx context.Context) error {
	return m.HealthErr
}

// MockEmbeddingClient is a mock EmbeddingClient
type MockEmbeddingClient struct {
	mu sync.Mutex

	// Dimension sizes generated vectors when Vectors is nil
	Dimension int
	Vectors   [][]float32
	Err       error

	EmbedFn func(call int, texts []string) ([][]float32, error)

	QueryVector []float32
	QueryErr    error

	Calls      int
	QueryCalls int
	LastTexts  []string
	HealthErr  error
}

func (m *MockEmbeddingClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.Calls++
	call := m.Calls
	m.LastTexts = texts
	m.mu.Unlock()

	if m.EmbedFn != nil {
		return m.EmbedFn(call, texts)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Vectors != nil {
		return m.Vectors, nil
	}

	// One vector per text; vary the first component so ranking tests get
	// distinct distances in input order.
	out := make([][]float32, len(texts))
	for i := range texts {
		v := make([]float32, m.Dimension)
		if m.Dimension > 0 {
			v[0] = float32(i + 1)
		}
		out[i] = v
	}
	return out, nil
}

func (m *MockEmbeddingClient) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	m.mu.Lock()
	m.QueryCalls++
	m.mu.Unlock()

	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	if m.QueryVector != nil {
		return m.QueryVector, nil
	}
	return make([]float32, m.Dimension), nil
}

func (m *MockEmbeddingClient) HealthCheck(ctx context.Context) error {
	return m.HealthErr
}

// MockGraphBuilderClient is a mock GraphBuilderClient
type MockGraphBuilderClient struct {
	mu sync.Mutex

	Entities []domain.Entity
	Err      error

	BuildGraphFn func(call int, documentID, ownerID string, chunks []domain.Chunk) ([]domain.Entity, error)

	Calls     int
	LastDocID string
	HealthErr error
}

func (m *MockGraphBuilderClient) BuildGraph(ctx context.Context, documentID, ownerID string, chunks []domain.Chunk) ([]domain.Entity, error) {
	m.mu.Lock()
	m.Calls++
	call := m.Calls
	m.LastDocID = documentID
	m.mu.Unlock()

	if m.BuildGraphFn != nil {
		return m.BuildGraphFn(call, documentID, ownerID, chunks)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Entities, nil
}

func (m *MockGraphBuilderClient) HealthCheck(ctx context.Context) error {
	return m.HealthErr
}
