package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ltanh/qrflow/internal/model"
)

// HTTPBackend pushes records to the hosted backend over JSON.
type HTTPBackend struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewHTTPBackend creates a backend client for the given base URL.
func NewHTTPBackend(baseURL, token string) *HTTPBackend {
	return &HTTPBackend{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type pushRequest struct {
	Records []model.QRRecord `json:"records"`
}

// PushRecords uploads a batch of records; any non-2xx status is an error
// carrying the backend's response body.
func (b *HTTPBackend) PushRecords(ctx context.Context, records []model.QRRecord) error {
	body, err := json.Marshal(pushRequest{Records: records})
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, b.baseURL+"/api/v1/records", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to push records: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("backend rejected sync: %d - %s", resp.StatusCode, string(respBody))
	}

	return nil
}
