package domain

// Stage identifies one step of the document pipeline. Each stage is its own
// failure domain: a stored error detail always names the stage that failed.
type Stage string

const (
	StageExtract Stage = "extract"
	StageEmbed   Stage = "embed"
	StageIndex   Stage = "index"
	StageGraph   Stage = "graph"
)

// StageError tags a failure with the pipeline stage it occurred in. The
// wrapped cause stays reachable through errors.Is and errors.As.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return string(e.Stage) + " stage: " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError wraps err with the stage it belongs to
func NewStageError(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}

// PipelineResult represents the outcome of one pipeline run
type PipelineResult struct {
	DocumentID string         `json:"document_id"`
	OwnerID    string         `json:"owner_id"`
	Status     DocumentStatus `json:"status"`

	// FailedStage is set when Status is failed
	FailedStage Stage  `json:"failed_stage,omitempty"`
	Error       string `json:"error,omitempty"`

	ChunksExtracted int `json:"chunks_extracted"`
	VectorsIndexed  int `json:"vectors_indexed"`
	EntitiesLinked  int `json:"entities_linked"`

	Duration float64 `json:"duration_seconds"`
}
