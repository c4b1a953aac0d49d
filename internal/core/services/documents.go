package services

import (
	"context"
	"fmt"

	"github.com/tessera-labs/tessera-core/internal/core/domain"
	"github.com/tessera-labs/tessera-core/internal/core/ports/driven"
	"github.com/tessera-labs/tessera-core/internal/core/ports/driving"
)

// Ensure documentService implements DocumentService
var _ driving.DocumentService = (*documentService)(nil)

// documentService implements the DocumentService interface
type documentService struct {
	metadata driven.MetadataStore
	queue    driven.TaskQueue
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	metadata driven.MetadataStore,
	queue driven.TaskQueue,
) driving.DocumentService {
	return &documentService{
		metadata: metadata,
		queue:    queue,
	}
}

// Register creates a queued document record and enqueues its pipeline run
func (s *documentService) Register(ctx context.Context, ownerID, filename, rawPath string) (*domain.Document, error) {
	if ownerID == "" || filename == "" || rawPath == "" {
		return nil, fmt.Errorf("%w: owner id, filename and raw path are required", domain.ErrInvalidInput)
	}

	doc := domain.NewDocument(ownerID, filename, rawPath)
	if err := s.metadata.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	task := domain.NewProcessDocumentTask(ownerID, doc.ID)
	if err := s.queue.Enqueue(ctx, task); err != nil {
		return nil, fmt.Errorf("enqueue pipeline task: %w", err)
	}

	return doc, nil
}

// Get retrieves a document by ID, enforcing ownership
func (s *documentService) Get(ctx context.Context, ownerID, id string) (*domain.Document, error) {
	doc, err := s.metadata.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}
	return doc, nil
}

// List retrieves the caller's documents, newest first
func (s *documentService) List(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Document, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset < 0 {
		offset = 0
	}
	return s.metadata.ListByOwner(ctx, ownerID, limit, offset)
}

// Reprocess enqueues a fresh pipeline run for an existing document
func (s *documentService) Reprocess(ctx context.Context, ownerID, id string) error {
	doc, err := s.metadata.Get(ctx, id)
	if err != nil {
		return err
	}
	if doc.OwnerID != ownerID {
		return domain.ErrForbidden
	}

	task := domain.NewReprocessDocumentTask(ownerID, doc.ID)
	if err := s.queue.Enqueue(ctx, task); err != nil {
		return fmt.Errorf("enqueue pipeline task: %w", err)
	}
	return nil
}
