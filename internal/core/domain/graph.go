package domain

// Entity is a named concept extracted from document text. Entities are
// identified by (name, type): the same pair always refers to the same graph
// node, no matter how many chunks or re-runs produce it.
type Entity struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// DedupeEntities removes duplicate (name, type) pairs, preserving the order
// in which each pair first appeared. Extraction routinely re-derives the
// same entity across chunks, so graph writes dedupe before merging.
func DedupeEntities(entities []Entity) []Entity {
	if len(entities) < 2 {
		return entities
	}
	seen := make(map[Entity]struct{}, len(entities))
	out := make([]Entity, 0, len(entities))
	for _, e := range entities {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

// EntityDocument is one document reachable from an entity in the caller's
// own subgraph.
type EntityDocument struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
}
