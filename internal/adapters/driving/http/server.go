package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tessera-labs/tessera-core/internal/core/ports/driven"
	"github.com/tessera-labs/tessera-core/internal/core/ports/driving"
)

// readyProbeTimeout bounds the whole readiness fan-out, not each probe
const readyProbeTimeout = 5 * time.Second

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	// Services
	docService    driving.DocumentService
	searchService driving.SearchService
	graphService  driving.GraphQueryService

	// Infrastructure
	verifier  driven.TokenVerifier
	taskQueue driven.TaskQueue
	metadata  driven.MetadataStore
	vectors   driven.VectorIndex
	graph     driven.GraphStore
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	Version        string
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	docService driving.DocumentService,
	searchService driving.SearchService,
	graphService driving.GraphQueryService,
	verifier driven.TokenVerifier,
	taskQueue driven.TaskQueue,
	metadata driven.MetadataStore,
	vectors driven.VectorIndex,
	graph driven.GraphStore,
) *Server {
	s := &Server{
		router:        http.NewServeMux(),
		version:       cfg.Version,
		docService:    docService,
		searchService: searchService,
		graphService:  graphService,
		verifier:      verifier,
		taskQueue:     taskQueue,
		metadata:      metadata,
		vectors:       vectors,
		graph:         graph,
	}

	s.setupRoutes()

	// Recovery outermost so a panicking handler still produces a logged
	// request line, then logging, then CORS when configured.
	var handler http.Handler = s.router
	if len(cfg.AllowedOrigins) > 0 {
		handler = NewCORSMiddleware(cfg.AllowedOrigins).Handler(handler)
	}
	handler = NewLoggingMiddleware().Handler(handler)
	handler = NewRecoveryMiddleware().Handler(handler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Create middleware
	authMiddleware := NewAuthMiddleware(s.verifier)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Document endpoints (authenticated)
	s.router.Handle("POST /api/documents",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleRegisterDocument)))
	s.router.Handle("GET /api/documents",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleListDocuments)))
	s.router.Handle("GET /api/documents/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetDocument)))
	s.router.Handle("POST /api/documents/{id}/reprocess",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleReprocessDocument)))

	// Search endpoint (authenticated)
	s.router.Handle("POST /api/search",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleSearch)))

	// Graph endpoints (authenticated)
	s.router.Handle("GET /api/documents/{id}/entities",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleDocumentEntities)))
	s.router.Handle("GET /api/entities/{name}/{type}/documents",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleEntityDocuments)))
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	// Channel to listen for OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-stop
	log.Println("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
