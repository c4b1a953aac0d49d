package neo4j

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tessera-labs/tessera-core/internal/core/domain"
	"github.com/tessera-labs/tessera-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.GraphStore = (*GraphStore)(nil)

// GraphStore implements driven.GraphStore using Neo4j's HTTP transaction API.
// Every write is a Cypher MERGE, so re-running a batch leaves the graph
// unchanged.
type GraphStore struct {
	commitURL  string
	username   string
	password   string
	httpClient *http.Client
}

// Config holds Neo4j connection configuration
type Config struct {
	// BaseURL is the Neo4j HTTP endpoint (e.g., http://localhost:7474)
	BaseURL string

	// Database is the target database name
	Database string

	// Username and Password are sent as basic auth when Username is set
	Username string
	Password string

	// Timeout for HTTP requests
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:  baseURL,
		Database: "neo4j",
		Username: "neo4j",
		Timeout:  30 * time.Second,
	}
}

// NewGraphStore creates a new Neo4j-backed GraphStore
func NewGraphStore(cfg Config) *GraphStore {
	if cfg.Database == "" {
		cfg.Database = "neo4j"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &GraphStore{
		commitURL: fmt.Sprintf("%s/db/%s/tx/commit", strings.TrimSuffix(cfg.BaseURL, "/"), cfg.Database),
		username:  cfg.Username,
		password:  cfg.Password,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// cypherStatement is one statement in a transaction commit request
type cypherStatement struct {
	Statement  string                 `json:"statement"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

type txRequest struct {
	Statements []cypherStatement `json:"statements"`
}

// txResponse is Neo4j's transaction commit response format
type txResponse struct {
	Results []struct {
		Columns []string `json:"columns"`
		Data    []struct {
			Row []interface{} `json:"row"`
		} `json:"data"`
	} `json:"results"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// commit executes statements in a single auto-committed transaction.
func (g *GraphStore) commit(ctx context.Context, statements []cypherStatement) (*txResponse, error) {
	body, err := json.Marshal(txRequest{Statements: statements})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.commitURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if g.username != "" {
		req.SetBasicAuth(g.username, g.password)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("neo4j commit failed: %s - %s", resp.Status, string(respBody))
	}

	var txResp txResponse
	if err := json.NewDecoder(resp.Body).Decode(&txResp); err != nil {
		return nil, err
	}
	// Neo4j reports Cypher failures in the body of a 200 response
	if len(txResp.Errors) > 0 {
		return nil, fmt.Errorf("neo4j %s: %s", txResp.Errors[0].Code, txResp.Errors[0].Message)
	}
	return &txResp, nil
}

// EnsureUser merge-creates the User node for a tenant
func (g *GraphStore) EnsureUser(ctx context.Context, ownerID string) error {
	statement := `
		MERGE (u:User {id: $owner_id})
		ON CREATE SET u.created_at = timestamp()`

	_, err := g.commit(ctx, []cypherStatement{{
		Statement:  statement,
		Parameters: map[string]interface{}{"owner_id": ownerID},
	}})
	return err
}

// LinkDocument merge-creates the Document node and the OWNS edge from the
// owner's User node. The User node is merged too, so a link never silently
// no-ops when registration and graph writes race.
func (g *GraphStore) LinkDocument(ctx context.Context, ownerID, documentID, filename string) error {
	statement := `
		MERGE (u:User {id: $owner_id})
		MERGE (d:Document {id: $document_id})
		ON CREATE SET d.filename = $filename, d.created_at = timestamp()
		MERGE (u)-[:OWNS]->(d)`

	_, err := g.commit(ctx, []cypherStatement{{
		Statement: statement,
		Parameters: map[string]interface{}{
			"owner_id":    ownerID,
			"document_id": documentID,
			"filename":    filename,
		},
	}})
	return err
}

// UpsertEntities merge-creates Entity nodes and CONTAINS_ENTITY edges from
// the document, batched in one request. The batch is deduplicated by
// (name, type) first; merging the same pair twice in one UNWIND is wasted
// work the dedup avoids.
func (g *GraphStore) UpsertEntities(ctx context.Context, documentID string, entities []domain.Entity) error {
	deduped := domain.DedupeEntities(entities)

	batch := make([]map[string]string, 0, len(deduped))
	for _, e := range deduped {
		batch = append(batch, map[string]string{"name": e.Name, "type": e.Type})
	}

	countStatement := `
		MATCH (d:Document {id: $document_id})
		RETURN count(d)`

	mergeStatement := `
		MATCH (d:Document {id: $document_id})
		UNWIND $entities AS entity
		MERGE (e:Entity {name: entity.name, type: entity.type})
		MERGE (d)-[:CONTAINS_ENTITY]->(e)`

	// The document node is checked even for an empty batch; a document with
	// no entities still must have been linked first.
	statements := []cypherStatement{{
		Statement:  countStatement,
		Parameters: map[string]interface{}{"document_id": documentID},
	}}
	if len(batch) > 0 {
		statements = append(statements, cypherStatement{
			Statement: mergeStatement,
			Parameters: map[string]interface{}{
				"document_id": documentID,
				"entities":    batch,
			},
		})
	}

	resp, err := g.commit(ctx, statements)
	if err != nil {
		return err
	}

	// The merge statement MATCHes the document, so it writes nothing when
	// the node is absent; the count statement makes that case an error
	// instead of a silent no-op.
	if firstRowCount(resp) == 0 {
		return fmt.Errorf("document %s: %w", documentID, domain.ErrDocumentNodeMissing)
	}
	return nil
}

// EntitiesForDocument returns the entities contained in one of the owner's
// documents. The traversal starts at the owner's User node, so documents the
// owner does not OWN are unreachable.
func (g *GraphStore) EntitiesForDocument(ctx context.Context, ownerID, documentID string) ([]domain.Entity, error) {
	statement := `
		MATCH (u:User {id: $owner_id})-[:OWNS]->(d:Document {id: $document_id})-[:CONTAINS_ENTITY]->(e:Entity)
		RETURN e.name, e.type
		ORDER BY e.name, e.type`

	resp, err := g.commit(ctx, []cypherStatement{{
		Statement: statement,
		Parameters: map[string]interface{}{
			"owner_id":    ownerID,
			"document_id": documentID,
		},
	}})
	if err != nil {
		return nil, err
	}

	entities := make([]domain.Entity, 0)
	for _, datum := range firstResultData(resp) {
		if len(datum.Row) != 2 {
			continue
		}
		name, _ := datum.Row[0].(string)
		entityType, _ := datum.Row[1].(string)
		entities = append(entities, domain.Entity{Name: name, Type: entityType})
	}
	return entities, nil
}

// DocumentsForEntity returns the owner's documents that contain the given
// entity.
func (g *GraphStore) DocumentsForEntity(ctx context.Context, ownerID string, entity domain.Entity) ([]domain.EntityDocument, error) {
	statement := `
		MATCH (u:User {id: $owner_id})-[:OWNS]->(d:Document)-[:CONTAINS_ENTITY]->(e:Entity {name: $name, type: $type})
		RETURN d.id, d.filename
		ORDER BY d.id`

	resp, err := g.commit(ctx, []cypherStatement{{
		Statement: statement,
		Parameters: map[string]interface{}{
			"owner_id": ownerID,
			"name":     entity.Name,
			"type":     entity.Type,
		},
	}})
	if err != nil {
		return nil, err
	}

	documents := make([]domain.EntityDocument, 0)
	for _, datum := range firstResultData(resp) {
		if len(datum.Row) != 2 {
			continue
		}
		id, _ := datum.Row[0].(string)
		filename, _ := datum.Row[1].(string)
		documents = append(documents, domain.EntityDocument{DocumentID: id, Filename: filename})
	}
	return documents, nil
}

// HealthCheck verifies the graph store is available
func (g *GraphStore) HealthCheck(ctx context.Context) error {
	_, err := g.commit(ctx, []cypherStatement{{Statement: "RETURN 1"}})
	return err
}

func firstResultData(resp *txResponse) []struct {
	Row []interface{} `json:"row"`
} {
	if resp == nil || len(resp.Results) == 0 {
		return nil
	}
	return resp.Results[0].Data
}

// firstRowCount reads the single numeric cell of the first result row.
// JSON numbers decode as float64.
func firstRowCount(resp *txResponse) int {
	data := firstResultData(resp)
	if len(data) == 0 || len(data[0].Row) == 0 {
		return 0
	}
	count, _ := data[0].Row[0].(float64)
	return int(count)
}
