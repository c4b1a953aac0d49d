package mocks

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/tessera-labs/tessera-core/internal/core/domain"
)

// MockVectorIndex is an in-memory VectorIndex with real distance ranking,
// tenant filtering, and dimension enforcement, so service tests exercise
// the same invariants the pgvector adapter upholds.
type MockVectorIndex struct {
	mu        sync.RWMutex
	dimension int
	ready     bool
	records   []storedRecord
	seq       int

	UpsertCalls int

	// Custom behavior hooks (optional)
	UpsertFn func(ownerID, documentID string, records []domain.VectorRecord) error
	SearchFn func(ownerID string, queryVector []float32, topK int) ([]domain.VectorMatch, error)
}

type storedRecord struct {
	domain.VectorRecord
	seq int
}

// NewMockVectorIndex creates a mock index with the given fixed dimension
func NewMockVectorIndex(dimension int) *MockVectorIndex {
	return &MockVectorIndex{dimension: dimension}
}

func (m *MockVectorIndex) EnsureSchema(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ready = true
	return nil
}

func (m *MockVectorIndex) UpsertChunks(ctx context.Context, ownerID, documentID string, records []domain.VectorRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertCalls++

	if m.UpsertFn != nil {
		return m.UpsertFn(ownerID, documentID, records)
	}

	// Dimension check happens before anything is removed or written
	for _, r := range records {
		if len(r.Embedding) != m.dimension {
			return fmt.Errorf("%w: got %d, index dimension %d",
				domain.ErrDimensionMismatch, len(r.Embedding), m.dimension)
		}
	}

	kept := m.records[:0]
	for _, r := range m.records {
		if !(r.OwnerID == ownerID && r.DocumentID == documentID) {
			kept = append(kept, r)
		}
	}
	m.records = kept

	for _, r := range records {
		m.seq++
		m.records = append(m.records, storedRecord{VectorRecord: r, seq: m.seq})
	}
	return nil
}

func (m *MockVectorIndex) Search(ctx context.Context, ownerID string, queryVector []float32, topK int) ([]domain.VectorMatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.SearchFn != nil {
		return m.SearchFn(ownerID, queryVector, topK)
	}
	if !m.ready {
		return nil, domain.ErrIndexNotReady
	}

	type scored struct {
		match domain.VectorMatch
		seq   int
	}
	var hits []scored
	for _, r := range m.records {
		if r.OwnerID != ownerID {
			continue
		}
		hits = append(hits, scored{
			match: domain.VectorMatch{
				DocumentID: r.DocumentID,
				ChunkIndex: r.ChunkIndex,
				ChunkText:  r.ChunkText,
				Distance:   l2Distance(queryVector, r.Embedding),
			},
			seq: r.seq,
		})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].match.Distance != hits[j].match.Distance {
			return hits[i].match.Distance < hits[j].match.Distance
		}
		return hits[i].seq < hits[j].seq
	})
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}

	matches := make([]domain.VectorMatch, len(hits))
	for i, h := range hits {
		matches[i] = h.match
	}
	return matches, nil
}

func (m *MockVectorIndex) DeleteDocument(ctx context.Context, ownerID, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.records[:0]
	for _, r := range m.records {
		if !(r.OwnerID == ownerID && r.DocumentID == documentID) {
			kept = append(kept, r)
		}
	}
	m.records = kept
	return nil
}

func (m *MockVectorIndex) Dimension() int {
	return m.dimension
}

func (m *MockVectorIndex) HealthCheck(ctx context.Context) error {
	return nil
}

// Helper methods for testing

// RecordCount returns the number of stored records for an owner/document pair
func (m *MockVectorIndex) RecordCount(ownerID, documentID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, r := range m.records {
		if r.OwnerID == ownerID && r.DocumentID == documentID {
			n++
		}
	}
	return n
}

// TotalRecords returns the number of stored records across all tenants
func (m *MockVectorIndex) TotalRecords() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// SetReady overrides the primed state (for NotReady tests)
func (m *MockVectorIndex) SetReady(ready bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ready = ready
}

func l2Distance(a, b []float32) float64 {
	var sum float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		d := float64(a[i] - b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
