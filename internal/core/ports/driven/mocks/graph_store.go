package mocks

import (
	"context"
	"sync"

	"github.com/tessera-labs/tessera-core/internal/core/domain"
)

// MockGraphStore is an in-memory GraphStore with merge semantics, so
// idempotence tests can assert node and edge counts after repeated writes.
type MockGraphStore struct {
	mu        sync.RWMutex
	users     map[string]struct{}
	documents map[string]graphDocument
	contains  map[string][]domain.Entity // documentID -> entities, set semantics

	EnsureUserCalls     int
	LinkDocumentCalls   int
	UpsertEntitiesCalls int

	// Custom behavior hooks (optional)
	EnsureUserFn     func(ownerID string) error
	LinkDocumentFn   func(ownerID, documentID, filename string) error
	UpsertEntitiesFn func(documentID string, entities []domain.Entity) error
}

type graphDocument struct {
	ownerID  string
	filename string
}

// NewMockGraphStore creates a new MockGraphStore
func NewMockGraphStore() *MockGraphStore {
	return &MockGraphStore{
		users:     make(map[string]struct{}),
		documents: make(map[string]graphDocument),
		contains:  make(map[string][]domain.Entity),
	}
}

func (m *MockGraphStore) EnsureUser(ctx context.Context, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EnsureUserCalls++
	if m.EnsureUserFn != nil {
		return m.EnsureUserFn(ownerID)
	}
	m.users[ownerID] = struct{}{}
	return nil
}

func (m *MockGraphStore) LinkDocument(ctx context.Context, ownerID, documentID, filename string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LinkDocumentCalls++
	if m.LinkDocumentFn != nil {
		return m.LinkDocumentFn(ownerID, documentID, filename)
	}
	// Merge: a second link with the same key changes nothing
	m.documents[documentID] = graphDocument{ownerID: ownerID, filename: filename}
	return nil
}

func (m *MockGraphStore) UpsertEntities(ctx context.Context, documentID string, entities []domain.Entity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertEntitiesCalls++
	if m.UpsertEntitiesFn != nil {
		return m.UpsertEntitiesFn(documentID, entities)
	}
	if _, ok := m.documents[documentID]; !ok {
		return domain.ErrDocumentNodeMissing
	}

	existing := m.contains[documentID]
	seen := make(map[domain.Entity]struct{}, len(existing))
	for _, e := range existing {
		seen[e] = struct{}{}
	}
	for _, e := range entities {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		existing = append(existing, e)
	}
	m.contains[documentID] = existing
	return nil
}

func (m *MockGraphStore) EntitiesForDocument(ctx context.Context, ownerID, documentID string) ([]domain.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.documents[documentID]
	if !ok || doc.ownerID != ownerID {
		// Unreachable through the owner's subgraph
		return []domain.Entity{}, nil
	}
	out := make([]domain.Entity, len(m.contains[documentID]))
	copy(out, m.contains[documentID])
	return out, nil
}

func (m *MockGraphStore) DocumentsForEntity(ctx context.Context, ownerID string, entity domain.Entity) ([]domain.EntityDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.EntityDocument
	for docID, doc := range m.documents {
		if doc.ownerID != ownerID {
			continue
		}
		for _, e := range m.contains[docID] {
			if e == entity {
				out = append(out, domain.EntityDocument{DocumentID: docID, Filename: doc.filename})
				break
			}
		}
	}
	return out, nil
}

func (m *MockGraphStore) HealthCheck(ctx context.Context) error {
	return nil
}

// Helper methods for testing

// HasUser reports whether an owner's User node exists
func (m *MockGraphStore) HasUser(ownerID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.users[ownerID]
	return ok
}

// DocumentOwner returns the owner a document was linked under
func (m *MockGraphStore) DocumentOwner(documentID string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.documents[documentID]
	return doc.ownerID, ok
}

// EntityCount returns the number of distinct entities linked to a document
func (m *MockGraphStore) EntityCount(documentID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.contains[documentID])
}

func (m *MockGraphStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = make(map[string]struct{})
	m.documents = make(map[string]graphDocument)
	m.contains = make(map[string][]domain.Entity)
	m.EnsureUserCalls = 0
	m.LinkDocumentCalls = 0
	m.UpsertEntitiesCalls = 0
}
