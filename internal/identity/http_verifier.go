package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"recordsapi/internal/config"
)

// HTTPVerifier validates bearer tokens against a GoTrue-style identity
// provider over HTTP (GET /auth/v1/user with the token attached).
type HTTPVerifier struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ Verifier = (*HTTPVerifier)(nil)

// NewHTTPVerifier constructs an HTTP identity-provider client. Requests are
// traced through the otelhttp transport.
func NewHTTPVerifier(cfg config.AuthConfig) (*HTTPVerifier, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("identity provider URL is required")
	}
	return &HTTPVerifier{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   time.Duration(cfg.TimeoutSec) * time.Second,
		},
	}, nil
}

// Verify asks the identity provider who the token belongs to.
func (v *HTTPVerifier) Verify(ctx context.Context, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if v.apiKey != "" {
		req.Header.Set("apikey", v.apiKey)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("identity provider request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", ErrUnauthenticated
	}

	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode identity provider response: %w", err)
	}
	if body.ID == "" {
		return "", ErrUnauthenticated
	}
	return body.ID, nil
}
