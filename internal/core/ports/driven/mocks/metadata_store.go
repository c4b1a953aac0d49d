package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tessera-labs/tessera-core/internal/core/domain"
)

// StatusChange records one SetStatus call for test assertions
type StatusChange struct {
	DocumentID  string
	Status      domain.DocumentStatus
	ErrorDetail string
}

// MockMetadataStore is a mock implementation of MetadataStore for testing
type MockMetadataStore struct {
	mu        sync.RWMutex
	documents map[string]*domain.Document
	history   []StatusChange

	// Custom behavior hooks (optional)
	CreateFn           func(doc *domain.Document) error
	GetFn              func(id string) (*domain.Document, error)
	SetStatusFn        func(id string, status domain.DocumentStatus, errorDetail string) error
	SetExtractedPathFn func(id, path string) error
	PingFn             func() error
}

// NewMockMetadataStore creates a new MockMetadataStore
func NewMockMetadataStore() *MockMetadataStore {
	return &MockMetadataStore{
		documents: make(map[string]*domain.Document),
	}
}

func (m *MockMetadataStore) Create(ctx context.Context, doc *domain.Document) error {
	if m.CreateFn != nil {
		if err := m.CreateFn(doc); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.documents[doc.ID]; exists {
		return domain.ErrAlreadyExists
	}
	m.documents[doc.ID] = doc
	return nil
}

func (m *MockMetadataStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	if m.GetFn != nil {
		return m.GetFn(id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (m *MockMetadataStore) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var docs []*domain.Document
	for _, doc := range m.documents {
		if doc.OwnerID == ownerID {
			copied := *doc
			docs = append(docs, &copied)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})

	if offset >= len(docs) {
		return []*domain.Document{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(docs) {
		end = len(docs)
	}
	return docs[offset:end], nil
}

func (m *MockMetadataStore) SetStatus(ctx context.Context, id string, status domain.DocumentStatus, errorDetail string) error {
	if m.SetStatusFn != nil {
		if err := m.SetStatusFn(id, status, errorDetail); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.documents[id]
	if !ok {
		return domain.ErrNotFound
	}
	doc.Status = status
	doc.ErrorDetail = errorDetail
	doc.UpdatedAt = time.Now()
	m.history = append(m.history, StatusChange{DocumentID: id, Status: status, ErrorDetail: errorDetail})
	return nil
}

func (m *MockMetadataStore) SetExtractedPath(ctx context.Context, id string, path string) error {
	if m.SetExtractedPathFn != nil {
		if err := m.SetExtractedPathFn(id, path); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.documents[id]
	if !ok {
		return domain.ErrNotFound
	}
	doc.ExtractedPath = path
	doc.UpdatedAt = time.Now()
	return nil
}

func (m *MockMetadataStore) ListStaleProcessing(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var docs []*domain.Document
	for _, doc := range m.documents {
		if doc.Status == domain.StatusProcessing && doc.UpdatedAt.Before(cutoff) {
			copied := *doc
			docs = append(docs, &copied)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UpdatedAt.Before(docs[j].UpdatedAt)
	})
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

func (m *MockMetadataStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.documents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.documents, id)
	return nil
}

func (m *MockMetadataStore) Ping(ctx context.Context) error {
	if m.PingFn != nil {
		return m.PingFn()
	}
	return nil
}

// Helper methods for testing

// StatusHistory returns every SetStatus call in order
func (m *MockMetadataStore) StatusHistory() []StatusChange {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]StatusChange, len(m.history))
	copy(out, m.history)
	return out
}

// Put inserts a document directly, bypassing Create checks
func (m *MockMetadataStore) Put(doc *domain.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[doc.ID] = doc
}

func (m *MockMetadataStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents = make(map[string]*domain.Document)
	m.history = nil
}
