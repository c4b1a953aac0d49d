package domain

// DefaultVectorDimension matches the embedding model deployed with the
// reference workers. Deployments using a different model override it via
// configuration; the index enforces whichever dimension it was created with.
const DefaultVectorDimension = 768

// VectorRecord is one chunk embedding plus its tenant and document
// provenance, as stored in the vector index.
type VectorRecord struct {
	OwnerID    string    `json:"owner_id"`
	DocumentID string    `json:"document_id"`
	ChunkIndex int       `json:"chunk_index"`
	ChunkText  string    `json:"chunk_text"`
	Embedding  []float32 `json:"embedding"`
}

// VectorMatch is a search hit: the stored record fields a caller needs plus
// its distance from the query vector. Lower distance means more similar.
type VectorMatch struct {
	DocumentID string  `json:"document_id"`
	ChunkIndex int     `json:"chunk_index"`
	ChunkText  string  `json:"chunk_text"`
	Distance   float64 `json:"distance"`
}

// SearchResult represents the outcome of a tenant-scoped search
type SearchResult struct {
	Query   string        `json:"query"`
	Results []VectorMatch `json:"results"`
	Took    float64       `json:"took_seconds"`
}
