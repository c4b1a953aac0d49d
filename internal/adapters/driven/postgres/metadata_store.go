package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/tessera-labs/tessera-core/internal/core/domain"
	"github.com/tessera-labs/tessera-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.MetadataStore = (*MetadataStore)(nil)

// MetadataStore implements driven.MetadataStore using PostgreSQL
type MetadataStore struct {
	db *DB
}

// NewMetadataStore creates a new MetadataStore
func NewMetadataStore(db *DB) *MetadataStore {
	return &MetadataStore{db: db}
}

// Create persists a new document record
func (s *MetadataStore) Create(ctx context.Context, doc *domain.Document) error {
	query := `
		INSERT INTO documents (id, owner_id, filename, raw_path, extracted_path, status, error_detail, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.db.ExecContext(ctx, query,
		doc.ID,
		doc.OwnerID,
		doc.Filename,
		doc.RawPath,
		doc.ExtractedPath,
		doc.Status,
		doc.ErrorDetail,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	return err
}

// Get retrieves a document by ID
func (s *MetadataStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	query := `
		SELECT id, owner_id, filename, raw_path, extracted_path, status, error_detail, created_at, updated_at
		FROM documents
		WHERE id = $1
	`

	return s.scanDocument(s.db.QueryRowContext(ctx, query, id))
}

// ListByOwner retrieves an owner's documents, newest first
func (s *MetadataStore) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Document, error) {
	query := `
		SELECT id, owner_id, filename, raw_path, extracted_path, status, error_detail, created_at, updated_at
		FROM documents
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return s.scanDocuments(rows)
}

// SetStatus records a status transition. Writing the same status again is
// allowed; it bumps updated_at, which the stale-document reaper relies on.
func (s *MetadataStore) SetStatus(ctx context.Context, id string, status domain.DocumentStatus, errorDetail string) error {
	query := `
		UPDATE documents
		SET status = $1, error_detail = $2, updated_at = NOW()
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, status, errorDetail, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// SetExtractedPath records where the rendered extraction artifact lives
func (s *MetadataStore) SetExtractedPath(ctx context.Context, id string, path string) error {
	query := `
		UPDATE documents
		SET extracted_path = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := s.db.ExecContext(ctx, query, path, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// ListStaleProcessing returns documents stuck in processing since before the
// cutoff, oldest first so the longest-stuck are resubmitted first
func (s *MetadataStore) ListStaleProcessing(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Document, error) {
	query := `
		SELECT id, owner_id, filename, raw_path, extracted_path, status, error_detail, created_at, updated_at
		FROM documents
		WHERE status = $1 AND updated_at < $2
		ORDER BY updated_at ASC
		LIMIT $3
	`

	rows, err := s.db.QueryContext(ctx, query, domain.StatusProcessing, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return s.scanDocuments(rows)
}

// Delete removes a document record
func (s *MetadataStore) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM documents WHERE id = $1`
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// Ping checks if the store is reachable
func (s *MetadataStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *MetadataStore) scanDocument(row *sql.Row) (*domain.Document, error) {
	var doc domain.Document

	err := row.Scan(
		&doc.ID,
		&doc.OwnerID,
		&doc.Filename,
		&doc.RawPath,
		&doc.ExtractedPath,
		&doc.Status,
		&doc.ErrorDetail,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &doc, nil
}

func (s *MetadataStore) scanDocuments(rows *sql.Rows) ([]*domain.Document, error) {
	var docs []*domain.Document
	for rows.Next() {
		var doc domain.Document

		err := rows.Scan(
			&doc.ID,
			&doc.OwnerID,
			&doc.Filename,
			&doc.RawPath,
			&doc.ExtractedPath,
			&doc.Status,
			&doc.ErrorDetail,
			&doc.CreatedAt,
			&doc.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		docs = append(docs, &doc)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return docs, nil
}
