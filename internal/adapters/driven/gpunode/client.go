// Package gpunode implements HTTP clients for the GPU worker services that
// run the heavy pipeline stages: extraction, embedding, and graph building.
package gpunode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/tessera-labs/tessera-core/internal/core/domain"
)

// Default request timeouts. Extraction and graph building hold a document's
// worth of model work on a busy GPU, so their budgets are generous;
// embedding batches are comparatively fast. Connect timeouts are much
// shorter than the request budgets so a downed worker fails fast instead
// of burning the whole stage budget on a dial.
const (
	DefaultExtractionTimeout = 10 * time.Minute
	DefaultEmbeddingTimeout  = 90 * time.Second
	DefaultGraphTimeout      = 10 * time.Minute

	DefaultExtractionConnectTimeout = 60 * time.Second
	DefaultEmbeddingConnectTimeout  = 15 * time.Second
	DefaultGraphConnectTimeout      = 60 * time.Second
)

// client is the HTTP plumbing shared by the worker clients. All workers
// speak the same envelope: JSON in, JSON out, and a {"detail": "..."} body
// on rejection.
type client struct {
	baseURL    string
	httpClient *http.Client
}

func newClient(baseURL string, timeout, connectTimeout time.Duration) client {
	return client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
			},
		},
	}
}

// postJSON sends one request and decodes the response into out. Connection
// failures map to ErrWorkerUnreachable, non-2xx statuses to ErrWorkerRejected
// carrying the worker's detail message, and undecodable bodies to
// ErrWorkerProtocol. The client never retries; retry policy belongs to the
// coordinator, which keeps call counts observable.
func (c client) postJSON(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrWorkerUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s", domain.ErrWorkerRejected, rejectionDetail(resp))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrWorkerProtocol, err)
	}
	return nil
}

// rejectionDetail pulls the worker's own message out of an error response,
// falling back to the status line when the body carries no detail.
func rejectionDetail(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(body) == 0 {
		return resp.Status
	}
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	return resp.Status + " - " + strings.TrimSpace(string(body))
}

// healthCheck probes the worker's GET /health endpoint.
func (c client) healthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrWorkerUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health returned %s", domain.ErrWorkerRejected, resp.Status)
	}
	return nil
}
