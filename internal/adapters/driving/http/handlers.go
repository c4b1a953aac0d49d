package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/tessera-labs/tessera-core/internal/core/domain"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// ComponentHealth reports the probe outcome for one backing dependency
// @Description Health of a single backing dependency
type ComponentHealth struct {
	Status string `json:"status" example:"healthy"`
	Error  string `json:"error,omitempty" example:"connection refused"`
}

// ReadyResponse aggregates the readiness probes of every dependency
// @Description Readiness fan-out across the backing stores and task queue
type ReadyResponse struct {
	Status     string                     `json:"status" example:"ready"`
	Components map[string]ComponentHealth `json:"components"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns liveness of the API process. Dependencies are not probed here; use /ready for that.
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Probes the metadata store, task queue, vector index, and graph store. Returns 503 with per-component detail when any probe fails.
// @Tags         Health
// @Produce      json
// @Success      200  {object}  ReadyResponse
// @Failure      503  {object}  ReadyResponse
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyProbeTimeout)
	defer cancel()

	components := make(map[string]ComponentHealth)
	probe := func(name string, check func(context.Context) error) {
		if err := check(ctx); err != nil {
			components[name] = ComponentHealth{Status: "unhealthy", Error: err.Error()}
			return
		}
		components[name] = ComponentHealth{Status: "healthy"}
	}

	if s.metadata != nil {
		probe("metadata", s.metadata.Ping)
	}
	if s.taskQueue != nil {
		probe("queue", s.taskQueue.Ping)
	}
	if s.vectors != nil {
		probe("vectors", s.vectors.HealthCheck)
	}
	if s.graph != nil {
		probe("graph", s.graph.HealthCheck)
	}

	status := "ready"
	code := http.StatusOK
	for _, c := range components {
		if c.Status != "healthy" {
			status = "degraded"
			code = http.StatusServiceUnavailable
			break
		}
	}

	writeJSON(w, code, ReadyResponse{Status: status, Components: components})
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Document endpoints

// registerDocumentRequest represents a document registration request
// @Description Document registration request. The file must already exist on shared storage.
type registerDocumentRequest struct {
	Filename string `json:"filename" example:"report.pdf"`
	RawPath  string `json:"raw_path" example:"/data/uploads/report.pdf"`
}

// handleRegisterDocument godoc
// @Summary      Register document
// @Description  Registers a file already on shared storage and queues its processing run. The document is returned immediately with status "queued"; poll GET /documents/{id} for progress.
// @Tags         Documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      registerDocumentRequest  true  "Document details"
// @Success      202      {object}  domain.Document
// @Failure      400      {object}  ErrorResponse  "Invalid request body or missing fields"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      500      {object}  ErrorResponse  "Registration failed"
// @Router       /documents [post]
func (s *Server) handleRegisterDocument(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req registerDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := s.docService.Register(r.Context(), claims.UserID, req.Filename, req.RawPath)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "filename and raw_path are required")
		case errors.Is(err, domain.ErrAlreadyExists):
			writeError(w, http.StatusConflict, "document already exists")
		default:
			writeError(w, http.StatusInternalServerError, "failed to register document")
		}
		return
	}

	writeJSON(w, http.StatusAccepted, doc)
}

// handleGetDocument godoc
// @Summary      Get document
// @Description  Get a document record including its pipeline status and any failure detail
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  domain.Document
// @Failure      400  {object}  ErrorResponse  "Missing document ID"
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      403  {object}  ErrorResponse  "Document owned by another user"
// @Failure      404  {object}  ErrorResponse  "Document not found"
// @Failure      500  {object}  ErrorResponse  "Internal server error"
// @Router       /documents/{id} [get]
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing document id")
		return
	}

	doc, err := s.docService.Get(r.Context(), claims.UserID, id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "document not found")
		case errors.Is(err, domain.ErrForbidden):
			writeError(w, http.StatusForbidden, "forbidden")
		default:
			writeError(w, http.StatusInternalServerError, "failed to get document")
		}
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// handleListDocuments godoc
// @Summary      List documents
// @Description  List the caller's documents, newest first
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query     int  false  "Maximum number of documents to return (default 50, max 1000)"
// @Param        offset  query     int  false  "Number of documents to skip"
// @Success      200     {array}   domain.Document
// @Failure      401     {object}  ErrorResponse  "Unauthorized"
// @Failure      500     {object}  ErrorResponse  "Internal server error"
// @Router       /documents [get]
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	docs, err := s.docService.List(r.Context(), claims.UserID, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}

	writeJSON(w, http.StatusOK, docs)
}

// ReprocessAcceptedResponse represents the response when a re-run is queued
// @Description Reprocess accepted response
type ReprocessAcceptedResponse struct {
	Status     string `json:"status" example:"accepted"`
	DocumentID string `json:"document_id" example:"9f1b2c3d-4a5e-4f60-8a71-0b2c3d4e5f60"`
}

// handleReprocessDocument godoc
// @Summary      Reprocess document
// @Description  Queues a fresh pipeline run for a document the caller owns. Allowed from any status, including a run already in progress.
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Document ID"
// @Success      202  {object}  ReprocessAcceptedResponse
// @Failure      400  {object}  ErrorResponse  "Missing document ID"
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      403  {object}  ErrorResponse  "Document owned by another user"
// @Failure      404  {object}  ErrorResponse  "Document not found"
// @Failure      500  {object}  ErrorResponse  "Internal server error"
// @Router       /documents/{id}/reprocess [post]
func (s *Server) handleReprocessDocument(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing document id")
		return
	}

	if err := s.docService.Reprocess(r.Context(), claims.UserID, id); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "document not found")
		case errors.Is(err, domain.ErrForbidden):
			writeError(w, http.StatusForbidden, "forbidden")
		default:
			writeError(w, http.StatusInternalServerError, "failed to queue reprocess")
		}
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":      "accepted",
		"document_id": id,
	})
}

// Search endpoints

// searchRequest represents a search query request
// @Description Search query request
type searchRequest struct {
	Query string `json:"query" example:"quarterly revenue forecast"`
	TopK  int    `json:"top_k,omitempty" example:"20"`
}

// handleSearch godoc
// @Summary      Search chunks
// @Description  Embeds the query and returns the caller's nearest chunks by vector distance. Results never include other tenants' documents.
// @Tags         Search
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      searchRequest  true  "Search query"
// @Success      200      {object}  domain.SearchResult
// @Failure      400      {object}  ErrorResponse  "Invalid request or missing query"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      502      {object}  ErrorResponse  "Embedding worker unavailable"
// @Failure      503      {object}  ErrorResponse  "Vector index not ready"
// @Router       /search [post]
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	result, err := s.searchService.Search(r.Context(), claims.UserID, req.Query, req.TopK)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "query is required")
		case errors.Is(err, domain.ErrWorkerUnreachable),
			errors.Is(err, domain.ErrWorkerRejected),
			errors.Is(err, domain.ErrWorkerProtocol):
			writeError(w, http.StatusBadGateway, "embedding worker unavailable")
		case errors.Is(err, domain.ErrIndexNotReady):
			writeError(w, http.StatusServiceUnavailable, "vector index not ready")
		default:
			writeError(w, http.StatusInternalServerError, "search failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Graph endpoints

// documentEntitiesResponse lists the entities extracted from one document
// @Description Entities extracted from a document
type documentEntitiesResponse struct {
	DocumentID string          `json:"document_id" example:"9f1b2c3d-4a5e-4f60-8a71-0b2c3d4e5f60"`
	Entities   []domain.Entity `json:"entities"`
}

// handleDocumentEntities godoc
// @Summary      List document entities
// @Description  Lists the entities extracted from a document the caller owns
// @Tags         Graph
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  documentEntitiesResponse
// @Failure      400  {object}  ErrorResponse  "Missing document ID"
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      403  {object}  ErrorResponse  "Document owned by another user"
// @Failure      404  {object}  ErrorResponse  "Document not found"
// @Failure      503  {object}  ErrorResponse  "Graph store unavailable"
// @Router       /documents/{id}/entities [get]
func (s *Server) handleDocumentEntities(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing document id")
		return
	}

	entities, err := s.graphService.EntitiesForDocument(r.Context(), claims.UserID, id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "document not found")
		case errors.Is(err, domain.ErrForbidden):
			writeError(w, http.StatusForbidden, "forbidden")
		case errors.Is(err, domain.ErrStoreUnavailable):
			writeError(w, http.StatusServiceUnavailable, "graph store unavailable")
		default:
			writeError(w, http.StatusInternalServerError, "failed to list entities")
		}
		return
	}

	writeJSON(w, http.StatusOK, documentEntitiesResponse{
		DocumentID: id,
		Entities:   entities,
	})
}

// entityDocumentsResponse lists the caller's documents containing an entity
// @Description Documents containing an entity
type entityDocumentsResponse struct {
	Entity    domain.Entity           `json:"entity"`
	Documents []domain.EntityDocument `json:"documents"`
}

// handleEntityDocuments godoc
// @Summary      List entity documents
// @Description  Lists the caller's documents that contain the given entity. Entities are identified by (name, type); both path segments are required.
// @Tags         Graph
// @Produce      json
// @Security     BearerAuth
// @Param        name  path      string  true  "Entity name"
// @Param        type  path      string  true  "Entity type"
// @Success      200   {object}  entityDocumentsResponse
// @Failure      400   {object}  ErrorResponse  "Missing entity name or type"
// @Failure      401   {object}  ErrorResponse  "Unauthorized"
// @Failure      503   {object}  ErrorResponse  "Graph store unavailable"
// @Router       /entities/{name}/{type}/documents [get]
func (s *Server) handleEntityDocuments(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	entity := domain.Entity{
		Name: r.PathValue("name"),
		Type: r.PathValue("type"),
	}
	if entity.Name == "" || entity.Type == "" {
		writeError(w, http.StatusBadRequest, "missing entity name or type")
		return
	}

	docs, err := s.graphService.DocumentsForEntity(r.Context(), claims.UserID, entity)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "missing entity name or type")
		case errors.Is(err, domain.ErrStoreUnavailable):
			writeError(w, http.StatusServiceUnavailable, "graph store unavailable")
		default:
			writeError(w, http.StatusInternalServerError, "failed to list documents")
		}
		return
	}

	writeJSON(w, http.StatusOK, entityDocumentsResponse{
		Entity:    entity,
		Documents: docs,
	})
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
