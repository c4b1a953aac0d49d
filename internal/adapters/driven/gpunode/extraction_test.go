package gpunode

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tessera-labs/tessera-core/internal/core/domain"
)

func TestNewExtractionClient_Defaults(t *testing.T) {
	client := NewExtractionClient(ExtractionConfig{BaseURL: "http://localhost:8001/"})

	if client.baseURL != "http://localhost:8001" {
		t.Errorf("expected trailing slash stripped, got %s", client.baseURL)
	}
	if client.httpClient.Timeout != DefaultExtractionTimeout {
		t.Errorf("expected default timeout %v, got %v", DefaultExtractionTimeout, client.httpClient.Timeout)
	}
	if client.httpClient.Transport == nil {
		t.Error("expected a transport carrying the connect timeout")
	}
}

func TestExtractionClient_ConnectTimeout(t *testing.T) {
	// 10.255.255.1 is a blackhole address; the dial must give up within the
	// connect timeout instead of holding the request open for the full
	// extraction budget.
	client := NewExtractionClient(ExtractionConfig{
		BaseURL:        "http://10.255.255.1:9999",
		ConnectTimeout: 100 * time.Millisecond,
	})

	start := time.Now()
	_, err := client.Extract(context.Background(), "/data/raw/doc.pdf")

	if !errors.Is(err, domain.ErrWorkerUnreachable) {
		t.Fatalf("expected ErrWorkerUnreachable, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("dial took %v, expected the connect timeout to bound it", elapsed)
	}
}

func TestExtractionClient_Extract_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/process" {
			t.Errorf("expected /process, got %s", r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Error("expected Content-Type application/json")
		}

		var req extractRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.InputFilePath != "/data/raw/report.pdf" {
			t.Errorf("unexpected input path: %s", req.InputFilePath)
		}
		if req.OutputDirectoryPath != "/data/extracted" {
			t.Errorf("unexpected output dir: %s", req.OutputDirectoryPath)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"extracted_markdown_path": "/data/extracted/report.md",
			"chunks": [
				{"chunk_index": 0, "text": "first", "metadata": {"page": 1}},
				{"chunk_index": 1, "text": "second"}
			]
		}`))
	}))
	defer server.Close()

	client := NewExtractionClient(ExtractionConfig{BaseURL: server.URL, OutputDir: "/data/extracted"})

	result, err := client.Extract(context.Background(), "/data/raw/report.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.MarkdownPath != "/data/extracted/report.md" {
		t.Errorf("unexpected markdown path: %s", result.MarkdownPath)
	}
	if len(result.Chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(result.Chunks))
	}
	if result.Chunks[0].Index != 0 || result.Chunks[0].Text != "first" {
		t.Errorf("unexpected first chunk: %+v", result.Chunks[0])
	}
	if string(result.Chunks[0].Metadata) != `{"page": 1}` {
		t.Errorf("expected metadata carried through, got %s", result.Chunks[0].Metadata)
	}
}

func TestExtractionClient_Extract_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail": "Unsupported file type: .xyz"}`))
	}))
	defer server.Close()

	client := NewExtractionClient(ExtractionConfig{BaseURL: server.URL})

	_, err := client.Extract(context.Background(), "/data/raw/file.xyz")
	if !errors.Is(err, domain.ErrWorkerRejected) {
		t.Fatalf("expected ErrWorkerRejected, got %v", err)
	}
	if !strings.Contains(err.Error(), "Unsupported file type: .xyz") {
		t.Errorf("expected the worker's detail in the error, got %v", err)
	}
}

func TestExtractionClient_Extract_RejectedWithoutDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("worker crashed"))
	}))
	defer server.Close()

	client := NewExtractionClient(ExtractionConfig{BaseURL: server.URL})

	_, err := client.Extract(context.Background(), "/data/raw/report.pdf")
	if !errors.Is(err, domain.ErrWorkerRejected) {
		t.Fatalf("expected ErrWorkerRejected, got %v", err)
	}
	if !strings.Contains(err.Error(), "worker crashed") {
		t.Errorf("expected the raw body in the error, got %v", err)
	}
}

func TestExtractionClient_Extract_Unreachable(t *testing.T) {
	// Use invalid URL to trigger network error
	client := NewExtractionClient(ExtractionConfig{BaseURL: "http://localhost:99999", Timeout: time.Second})

	_, err := client.Extract(context.Background(), "/data/raw/report.pdf")
	if !errors.Is(err, domain.ErrWorkerUnreachable) {
		t.Errorf("expected ErrWorkerUnreachable, got %v", err)
	}
}

func TestExtractionClient_Extract_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewExtractionClient(ExtractionConfig{BaseURL: server.URL})

	_, err := client.Extract(context.Background(), "/data/raw/report.pdf")
	if !errors.Is(err, domain.ErrWorkerProtocol) {
		t.Errorf("expected ErrWorkerProtocol, got %v", err)
	}
}

func TestExtractionClient_Extract_NoRetry(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail": "boom"}`))
	}))
	defer server.Close()

	client := NewExtractionClient(ExtractionConfig{BaseURL: server.URL})

	_, _ = client.Extract(context.Background(), "/data/raw/report.pdf")

	// Retry policy belongs to the coordinator; the client makes exactly one call
	if calls != 1 {
		t.Errorf("expected exactly 1 call, got %d", calls)
	}
}

func TestExtractionClient_HealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("expected /health, got %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewExtractionClient(ExtractionConfig{BaseURL: server.URL})

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("unexpected health check error: %v", err)
	}
}
