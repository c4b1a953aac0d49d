package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tessera-labs/tessera-core/internal/core/domain"
	"github.com/tessera-labs/tessera-core/internal/core/ports/driven"
	"github.com/tessera-labs/tessera-core/internal/core/ports/driving"
)

// Ensure PipelineOrchestrator implements the driving port
var _ driving.PipelineOrchestrator = (*PipelineOrchestrator)(nil)

// PipelineOrchestrator coordinates the document processing pipeline.
// One run drives a document through:
//  1. Mark processing
//  2. Extract chunks from the raw file
//  3. Persist the extracted artifact path (best-effort)
//  4. Embed the chunk texts
//  5. Replace the document's vector records
//  6. Derive entities from the chunks
//  7. Merge ownership and entity edges into the graph
//  8. Mark completed
//
// Stage failures become a terminal failed status with a stage-tagged
// detail; they are not returned as errors. A failure to record status in
// the metadata store is the one class that propagates to the caller, since
// the run has no way to record its own failure then. Later stages never
// roll back earlier ones: vector records committed in step 5 stay
// searchable even when step 6 or 7 fails.
type PipelineOrchestrator struct {
	metadata  driven.MetadataStore
	vectors   driven.VectorIndex
	graph     driven.GraphStore
	extractor driven.ExtractionClient
	embedder  driven.EmbeddingClient
	builder   driven.GraphBuilderClient
	logger    *slog.Logger

	maxAttempts  int
	retryBackoff time.Duration
}

// PipelineOrchestratorConfig holds dependencies for PipelineOrchestrator.
type PipelineOrchestratorConfig struct {
	MetadataStore driven.MetadataStore
	VectorIndex   driven.VectorIndex
	GraphStore    driven.GraphStore
	Extractor     driven.ExtractionClient
	Embedder      driven.EmbeddingClient
	GraphBuilder  driven.GraphBuilderClient
	Logger        *slog.Logger

	// MaxAttempts bounds how often a single stage's worker call is tried
	// when it fails transiently. Each stage gets its own budget.
	MaxAttempts int

	// RetryBackoff is the delay before the first retry; it doubles per
	// attempt.
	RetryBackoff time.Duration
}

// NewPipelineOrchestrator creates a new pipeline orchestrator.
func NewPipelineOrchestrator(cfg PipelineOrchestratorConfig) *PipelineOrchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	retryBackoff := cfg.RetryBackoff
	if retryBackoff <= 0 {
		retryBackoff = 2 * time.Second
	}

	return &PipelineOrchestrator{
		metadata:     cfg.MetadataStore,
		vectors:      cfg.VectorIndex,
		graph:        cfg.GraphStore,
		extractor:    cfg.Extractor,
		embedder:     cfg.Embedder,
		builder:      cfg.GraphBuilder,
		logger:       logger,
		maxAttempts:  maxAttempts,
		retryBackoff: retryBackoff,
	}
}

// Run processes a single document end to end.
func (o *PipelineOrchestrator) Run(ctx context.Context, documentID string) (*domain.PipelineResult, error) {
	startTime := time.Now()

	o.logger.Info("starting pipeline run", "document_id", documentID)

	doc, err := o.metadata.Get(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	if doc.Status == domain.StatusProcessing {
		// Duplicate trigger or abandoned run. Store idempotence keeps the
		// end state correct either way, so proceed.
		o.logger.Warn("document already processing, running anyway", "document_id", documentID)
	}

	// Step 1: mark processing, clearing any previous failure detail
	if err := o.metadata.SetStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return nil, fmt.Errorf("set status processing: %w", err)
	}

	// Step 2: extract
	var extracted *driven.ExtractResult
	err = o.callWorker(ctx, domain.StageExtract, documentID, func() error {
		var callErr error
		extracted, callErr = o.extractor.Extract(ctx, doc.RawPath)
		return callErr
	})
	if err != nil {
		return o.failRun(ctx, doc, startTime, domain.StageExtract, err)
	}
	if len(extracted.Chunks) == 0 {
		return o.failRun(ctx, doc, startTime, domain.StageExtract,
			fmt.Errorf("%w: extraction returned no chunks", domain.ErrWorkerProtocol))
	}

	// Step 3: record where the rendered artifact lives. Best-effort: the
	// run continues even if this write fails.
	if extracted.MarkdownPath != "" {
		if err := o.metadata.SetExtractedPath(ctx, documentID, extracted.MarkdownPath); err != nil {
			o.logger.Warn("failed to persist extracted path",
				"document_id", documentID, "path", extracted.MarkdownPath, "error", err)
		}
	}

	// Step 4: embed chunk texts in document order
	texts := domain.ChunkTexts(extracted.Chunks)
	var vectors [][]float32
	err = o.callWorker(ctx, domain.StageEmbed, documentID, func() error {
		var callErr error
		vectors, callErr = o.embedder.Embed(ctx, texts)
		return callErr
	})
	if err != nil {
		return o.failRun(ctx, doc, startTime, domain.StageEmbed, err)
	}
	if len(vectors) != len(extracted.Chunks) {
		return o.failRun(ctx, doc, startTime, domain.StageEmbed,
			fmt.Errorf("%w: got %d vectors for %d chunks", domain.ErrWorkerProtocol,
				len(vectors), len(extracted.Chunks)))
	}

	// Step 5: replace this document's vector records. Vectors align
	// positionally with the chunks that produced them.
	records := make([]domain.VectorRecord, len(extracted.Chunks))
	for i, chunk := range extracted.Chunks {
		records[i] = domain.VectorRecord{
			OwnerID:    doc.OwnerID,
			DocumentID: doc.ID,
			ChunkIndex: chunk.Index,
			ChunkText:  chunk.Text,
			Embedding:  vectors[i],
		}
	}
	if err := o.vectors.UpsertChunks(ctx, doc.OwnerID, doc.ID, records); err != nil {
		return o.failRun(ctx, doc, startTime, domain.StageIndex, err)
	}

	// Step 6: derive entities. From here on vector search already works
	// for this document, whatever happens to the graph.
	var entities []domain.Entity
	err = o.callWorker(ctx, domain.StageGraph, documentID, func() error {
		var callErr error
		entities, callErr = o.builder.BuildGraph(ctx, doc.ID, doc.OwnerID, extracted.Chunks)
		return callErr
	})
	if err != nil {
		return o.failRun(ctx, doc, startTime, domain.StageGraph, err)
	}

	// Step 7: merge ownership and containment edges
	entities = domain.DedupeEntities(entities)
	if err := o.graph.EnsureUser(ctx, doc.OwnerID); err != nil {
		return o.failRun(ctx, doc, startTime, domain.StageGraph, fmt.Errorf("ensure user node: %w", err))
	}
	if err := o.graph.LinkDocument(ctx, doc.OwnerID, doc.ID, doc.Filename); err != nil {
		return o.failRun(ctx, doc, startTime, domain.StageGraph, fmt.Errorf("link document node: %w", err))
	}
	if len(entities) > 0 {
		if err := o.graph.UpsertEntities(ctx, doc.ID, entities); err != nil {
			return o.failRun(ctx, doc, startTime, domain.StageGraph, fmt.Errorf("upsert entities: %w", err))
		}
	}

	// Step 8: done
	if err := o.metadata.SetStatus(ctx, documentID, domain.StatusCompleted, ""); err != nil {
		return nil, fmt.Errorf("set status completed: %w", err)
	}

	duration := time.Since(startTime).Seconds()

	o.logger.Info("pipeline run completed",
		"document_id", documentID,
		"owner_id", doc.OwnerID,
		"duration_seconds", duration,
		"chunks_extracted", len(extracted.Chunks),
		"vectors_indexed", len(records),
		"entities_linked", len(entities),
	)

	return &domain.PipelineResult{
		DocumentID:      doc.ID,
		OwnerID:         doc.OwnerID,
		Status:          domain.StatusCompleted,
		ChunksExtracted: len(extracted.Chunks),
		VectorsIndexed:  len(records),
		EntitiesLinked:  len(entities),
		Duration:        duration,
	}, nil
}

// callWorker invokes one worker call, retrying transient connectivity
// failures with doubling backoff. Rejections and protocol errors are never
// retried; neither is anything once the context is done. The attempt budget
// is per call, not shared across stages.
func (o *PipelineOrchestrator) callWorker(ctx context.Context, stage domain.Stage, documentID string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= o.maxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrWorkerUnreachable) {
			return err
		}
		if attempt == o.maxAttempts {
			break
		}

		backoff := o.retryBackoff << (attempt - 1)
		o.logger.Warn("worker unreachable, retrying",
			"stage", string(stage),
			"document_id", documentID,
			"attempt", attempt,
			"backoff", backoff.String(),
			"error", err,
		)
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %s", domain.ErrWorkerUnreachable, ctx.Err())
		case <-time.After(backoff):
		}
	}
	return err
}

// failRun records the failed status with a stage-tagged detail and returns
// the result. The stage error is folded into the result, not returned; the
// returned error is non-nil only when recording the failure itself failed.
func (o *PipelineOrchestrator) failRun(
	ctx context.Context,
	doc *domain.Document,
	startTime time.Time,
	stage domain.Stage,
	cause error,
) (*domain.PipelineResult, error) {
	duration := time.Since(startTime).Seconds()
	stageErr := domain.NewStageError(stage, cause)

	o.logger.Error("pipeline run failed",
		"document_id", doc.ID,
		"owner_id", doc.OwnerID,
		"stage", string(stage),
		"duration_seconds", duration,
		"error", cause,
	)

	if err := o.metadata.SetStatus(ctx, doc.ID, domain.StatusFailed, stageErr.Error()); err != nil {
		return nil, fmt.Errorf("set status failed: %w", err)
	}

	return &domain.PipelineResult{
		DocumentID:  doc.ID,
		OwnerID:     doc.OwnerID,
		Status:      domain.StatusFailed,
		FailedStage: stage,
		Error:       stageErr.Error(),
		Duration:    duration,
	}, nil
}
