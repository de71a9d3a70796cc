package metaapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/socialsync/backend/internal/domain/platform"
	"github.com/socialsync/backend/internal/infrastructure/config"
)

// maxResponseSize limits the response body size to prevent memory exhaustion
const maxResponseSize = 10 * 1024 * 1024 // 10MB max response

// Client talks to the Meta Graph API. It implements platform.Client.
type Client struct {
	cfg        config.MetaConfig
	httpClient *http.Client
	logger     *zap.Logger
	pagination RetryPolicy
}

var _ platform.Client = (*Client)(nil)

// NewClient creates a new Graph API client
func NewClient(cfg config.MetaConfig, logger *zap.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:     logger.Named("metaapi"),
		pagination: PaginationRetryPolicy,
	}
}

// get performs a GET against an absolute or base-relative URL and decodes
// the Graph error envelope on failure. rawURL may already carry a query
// string (pagination cursors come back as full URLs).
func (c *Client) get(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	fullURL := rawURL
	if !strings.HasPrefix(rawURL, "http") {
		fullURL = c.cfg.GraphBaseURL + rawURL
	}
	if len(params) > 0 {
		sep := "?"
		if strings.Contains(fullURL, "?") {
			sep = "&"
		}
		fullURL = fullURL + sep + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("metaapi: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req)
}

// postForm performs a form POST against a base-relative path.
func (c *Client) postForm(ctx context.Context, path string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.GraphBaseURL+path, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("metaapi: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", platform.ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("metaapi: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, c.decodeError(resp.StatusCode, body)
	}

	return body, nil
}

// decodeError turns a failed response into a *GraphError when the body
// carries the platform envelope, otherwise into a generic request failure.
func (c *Client) decodeError(status int, body []byte) error {
	var envelope graphErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		envelope.Error.HTTPStatus = status
		c.logger.Debug("graph api error",
			zap.Int("http_status", status),
			zap.Int("code", envelope.Error.Code),
			zap.Int("subcode", envelope.Error.Subcode),
			zap.String("type", envelope.Error.Type),
		)
		return envelope.Error
	}
	return fmt.Errorf("%w: HTTP %d: %s", platform.ErrPlatformRequestFailed, status, truncate(string(body), 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
