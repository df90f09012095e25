// Package auth talks to the hosted account backend for registration and
// password-reset flows.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/text/language"

	"github.com/ltanh/qrflow/internal/common"
	"github.com/ltanh/qrflow/internal/service"
)

// Client issues registration and password-reset requests. Backend
// failures with a mapped status code surface as localized user errors;
// anything else propagates unchanged.
type Client struct {
	httpClient   *http.Client
	connectivity service.Connectivity
	baseURL      string
	locale       language.Tag
}

// NewClient creates an auth client. The locale is a BCP 47 preference
// string ("vi", "en-US", ...) matched against the supported languages.
func NewClient(baseURL string, connectivity service.Connectivity, locale string) *Client {
	return &Client{
		baseURL:      baseURL,
		connectivity: connectivity,
		locale:       matchLocale(locale),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// RegisterRequest carries the registration form fields.
type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// Register creates an account. The offline precondition is checked before
// any network call.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	if req.Password != req.PasswordConfirm {
		return common.NewFieldError("passwordConfirm", "passwords do not match", nil)
	}

	if c.connectivity != nil && !c.connectivity.Online(ctx) {
		return common.NewUserError(localizeOffline(c.locale), common.ErrOffline)
	}

	return c.post(ctx, "/api/v1/register", req)
}

// RequestPasswordReset asks the backend to send a reset email.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	payload := struct {
		Email string `json:"email"`
	}{Email: email}

	return c.post(ctx, "/api/v1/password-reset", payload)
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}

	respBody, _ := io.ReadAll(resp.Body)
	original := fmt.Errorf("auth backend returned %d: %s", resp.StatusCode, string(respBody))

	if msg, ok := localizeStatus(c.locale, resp.StatusCode); ok {
		return common.NewUserError(msg, original)
	}

	// Unmapped status: rethrow the original error untouched.
	return original
}
