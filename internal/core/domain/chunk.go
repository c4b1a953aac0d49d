package domain

import "encoding/json"

// Chunk is one extracted span of document text. Chunks are pipeline-internal:
// produced by the extraction worker, consumed by embedding and graph
// extraction, then folded into vector records. They are never stored on
// their own.
type Chunk struct {
	// Index is the chunk's ordinal within its document. Indices are stable
	// and unique per document, which is what makes re-indexing idempotent.
	Index int `json:"chunk_index"`

	Text string `json:"text"`

	// Metadata is whatever the extraction worker attached (layout
	// provenance, page numbers). Its shape is worker-defined, so it is
	// carried as raw JSON and never interpreted here.
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// ChunkTexts returns the texts of chunks in slice order
func ChunkTexts(chunks []Chunk) []string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return texts
}
