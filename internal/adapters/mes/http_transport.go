package mes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/factoryplan/aps-go/internal/domain/workorder"
)

// HTTPTransport delivers work orders to the MES over HTTP as JSON documents.
// Packer orders go to <endpoint>/packing-orders, feeder orders to
// <endpoint>/feeding-orders.
type HTTPTransport struct {
	endpoint   string
	httpClient *http.Client
}

func NewHTTPTransport(endpoint string) *HTTPTransport {
	return &HTTPTransport{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (t *HTTPTransport) SendPackerOrder(ctx context.Context, order workorder.PackerOrder) error {
	return t.post(ctx, "/packing-orders", order)
}

func (t *HTTPTransport) SendFeederOrder(ctx context.Context, order workorder.FeederOrder) error {
	return t.post(ctx, "/feeding-orders", order)
}

func (t *HTTPTransport) post(ctx context.Context, path string, body interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("MES returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
