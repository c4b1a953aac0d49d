package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/pgvector/pgvector-go"

	"github.com/tessera-labs/tessera-core/internal/core/domain"
	"github.com/tessera-labs/tessera-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex implements driven.VectorIndex on PostgreSQL with the pgvector
// extension. Chunk embeddings live in a document_chunks table whose vector
// column is created with the configured dimension, and an HNSW index serves
// approximate nearest-neighbor queries. The bigserial primary key preserves
// insertion order for equal-distance tie-breaks.
type VectorIndex struct {
	db  *DB
	cfg VectorIndexConfig

	mu    sync.Mutex
	ready bool
}

// VectorIndexConfig holds the index parameters. The dimension is fixed at
// table creation; changing it requires a new table and a re-embed of every
// document.
type VectorIndexConfig struct {
	// Dimension is the embedding length the index enforces
	Dimension int

	// M is the HNSW per-node link count at build time
	M int

	// EfConstruction is the HNSW candidate-list size at build time
	EfConstruction int

	// EfSearch is the HNSW candidate-list size at query time. It is raised
	// to topK per query when a caller asks for more rows than this.
	EfSearch int
}

// DefaultVectorIndexConfig returns sensible defaults
func DefaultVectorIndexConfig() VectorIndexConfig {
	return VectorIndexConfig{
		Dimension:      domain.DefaultVectorDimension,
		M:              16,
		EfConstruction: 64,
		EfSearch:       100,
	}
}

// NewVectorIndex creates a new VectorIndex. Zero config fields fall back to
// the defaults.
func NewVectorIndex(db *DB, cfg VectorIndexConfig) *VectorIndex {
	def := DefaultVectorIndexConfig()
	if cfg.Dimension <= 0 {
		cfg.Dimension = def.Dimension
	}
	if cfg.M <= 0 {
		cfg.M = def.M
	}
	if cfg.EfConstruction <= 0 {
		cfg.EfConstruction = def.EfConstruction
	}
	if cfg.EfSearch <= 0 {
		cfg.EfSearch = def.EfSearch
	}

	return &VectorIndex{db: db, cfg: cfg}
}

// EnsureSchema idempotently creates the extension, table, and HNSW index,
// then marks the index ready for searching. The DDL is assembled here rather
// than embedded because the vector column width is a runtime setting.
func (v *VectorIndex) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`
		CREATE EXTENSION IF NOT EXISTS vector;

		CREATE TABLE IF NOT EXISTS document_chunks (
			id BIGSERIAL PRIMARY KEY,
			owner_id VARCHAR(255) NOT NULL,
			document_id VARCHAR(36) NOT NULL,
			chunk_index INTEGER NOT NULL,
			chunk_text TEXT NOT NULL,
			embedding vector(%d) NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_document_chunks_owner_doc ON document_chunks (owner_id, document_id);

		CREATE INDEX IF NOT EXISTS idx_document_chunks_embedding ON document_chunks
			USING hnsw (embedding vector_l2_ops) WITH (m = %d, ef_construction = %d);
	`, v.cfg.Dimension, v.cfg.M, v.cfg.EfConstruction)

	if _, err := v.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure vector schema: %w", err)
	}

	v.mu.Lock()
	v.ready = true
	v.mu.Unlock()

	return nil
}

// UpsertChunks replaces all records for (ownerID, documentID) in one
// transaction. Every embedding is dimension-checked before the transaction
// opens, so a bad batch never removes the previous records.
func (v *VectorIndex) UpsertChunks(ctx context.Context, ownerID, documentID string, records []domain.VectorRecord) error {
	for i, record := range records {
		if len(record.Embedding) != v.cfg.Dimension {
			return fmt.Errorf("%w: record %d has %d dimensions, index expects %d",
				domain.ErrDimensionMismatch, i, len(record.Embedding), v.cfg.Dimension)
		}
	}

	return v.db.Transaction(ctx, func(tx *sql.Tx) error {
		deleteQuery := `DELETE FROM document_chunks WHERE owner_id = $1 AND document_id = $2`
		if _, err := tx.ExecContext(ctx, deleteQuery, ownerID, documentID); err != nil {
			return err
		}

		if len(records) == 0 {
			return nil
		}

		insertQuery := `
			INSERT INTO document_chunks (owner_id, document_id, chunk_index, chunk_text, embedding)
			VALUES ($1, $2, $3, $4, $5)
		`

		stmt, err := tx.PrepareContext(ctx, insertQuery)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, record := range records {
			_, err = stmt.ExecContext(ctx,
				ownerID,
				documentID,
				record.ChunkIndex,
				record.ChunkText,
				pgvector.NewVector(record.Embedding),
			)
			if err != nil {
				return err
			}
		}

		return nil
	})
}

// Search returns up to topK records nearest to queryVector, restricted to
// ownerID inside the query itself. Results come back in increasing L2
// distance; the id column breaks equal-distance ties in insertion order.
func (v *VectorIndex) Search(ctx context.Context, ownerID string, queryVector []float32, topK int) ([]domain.VectorMatch, error) {
	v.mu.Lock()
	ready := v.ready
	v.mu.Unlock()
	if !ready {
		return nil, domain.ErrIndexNotReady
	}

	if len(queryVector) != v.cfg.Dimension {
		return nil, fmt.Errorf("%w: query vector has %d dimensions, index expects %d",
			domain.ErrDimensionMismatch, len(queryVector), v.cfg.Dimension)
	}

	// ef_search bounds how many candidates the HNSW scan considers; below
	// topK the index could return fewer rows than asked for.
	efSearch := v.cfg.EfSearch
	if topK > efSearch {
		efSearch = topK
	}

	var matches []domain.VectorMatch
	err := v.db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL hnsw.ef_search = %d", efSearch)); err != nil {
			return err
		}

		query := `
			SELECT document_id, chunk_index, chunk_text, embedding <-> $2 AS distance
			FROM document_chunks
			WHERE owner_id = $1
			ORDER BY embedding <-> $2, id
			LIMIT $3
		`

		rows, err := tx.QueryContext(ctx, query, ownerID, pgvector.NewVector(queryVector), topK)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var match domain.VectorMatch
			if err := rows.Scan(&match.DocumentID, &match.ChunkIndex, &match.ChunkText, &match.Distance); err != nil {
				return err
			}
			matches = append(matches, match)
		}

		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return matches, nil
}

// DeleteDocument removes all records for (ownerID, documentID). Removing a
// document that has no records is not an error.
func (v *VectorIndex) DeleteDocument(ctx context.Context, ownerID, documentID string) error {
	query := `DELETE FROM document_chunks WHERE owner_id = $1 AND document_id = $2`
	_, err := v.db.ExecContext(ctx, query, ownerID, documentID)
	return err
}

// Dimension returns the fixed vector dimension the index enforces
func (v *VectorIndex) Dimension() int {
	return v.cfg.Dimension
}

// HealthCheck verifies the index is available
func (v *VectorIndex) HealthCheck(ctx context.Context) error {
	return v.db.PingContext(ctx)
}
