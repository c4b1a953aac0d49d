package domain

import (
	"time"

	"github.com/google/uuid"
)

// DocumentStatus represents a document's position in the processing pipeline
type DocumentStatus string

const (
	// StatusQueued is the initial state set at registration time
	StatusQueued DocumentStatus = "queued"
	// StatusProcessing is set immediately before the first worker call
	StatusProcessing DocumentStatus = "processing"
	// StatusCompleted means every pipeline stage succeeded
	StatusCompleted DocumentStatus = "completed"
	// StatusFailed means a stage failed; ErrorDetail carries the stage and cause
	StatusFailed DocumentStatus = "failed"
)

// IsTerminal returns true if the status is an end state of a pipeline run
func (s DocumentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransitionTo reports whether the status may move to next.
// Queued documents start processing, processing runs end completed or
// failed, and terminal documents may re-enter processing on a re-run.
func (s DocumentStatus) CanTransitionTo(next DocumentStatus) bool {
	switch s {
	case StatusQueued:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusCompleted || next == StatusFailed
	case StatusCompleted, StatusFailed:
		return next == StatusProcessing
	}
	return false
}

// Document is the durable record of one ingested document. It is owned by
// the metadata store and referenced by id from vector records and graph nodes.
type Document struct {
	ID       string `json:"id"`
	OwnerID  string `json:"owner_id"`
	Filename string `json:"filename"`

	// RawPath is where the uploaded file lives on shared storage
	RawPath string `json:"raw_path"`

	// ExtractedPath is the rendered text artifact produced by extraction.
	// Persisted best-effort; empty until extraction has run.
	ExtractedPath string `json:"extracted_path,omitempty"`

	Status DocumentStatus `json:"status"`

	// ErrorDetail holds the stage-tagged cause of the last failure
	ErrorDetail string `json:"error_detail,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDocument creates a queued document record for an owner
func NewDocument(ownerID, filename, rawPath string) *Document {
	now := time.Now()
	return &Document{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Filename:  filename,
		RawPath:   rawPath,
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
