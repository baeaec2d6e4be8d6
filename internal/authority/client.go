// Package authority asks the authority of record whether a session is still accepted.
package authority

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/dashboard-session/internal/domain"
)

// statusResponse is the authority's answer.
type statusResponse struct {
	Authenticated bool `json:"authenticated"`
}

// Client calls the authority's status endpoint. Its HTTP client is expected
// to carry the bearer transport so the selected credential is attached.
type Client struct {
	httpClient *http.Client
	statusURL  string
	logger     *zap.Logger
}

// Options configures a Client.
type Options struct {
	HTTPClient *http.Client
	StatusURL  string
	Timeout    time.Duration
	Logger     *zap.Logger
}

// NewClient builds an authority client.
func NewClient(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	if opts.Timeout > 0 && hc.Timeout == 0 {
		copied := *hc
		copied.Timeout = opts.Timeout
		hc = &copied
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{httpClient: hc, statusURL: opts.StatusURL, logger: logger}
}

// CheckSession reports whether the authority still accepts the session. A 401
// is a definite "no"; other failures are errors so the caller can fail closed.
func (c *Client) CheckSession(ctx context.Context, state domain.SessionState) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.statusURL, nil)
	if err != nil {
		return false, fmt.Errorf("build status request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if state.AccountID != "" {
		req.Header.Set("X-Account-ID", state.AccountID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("call authority: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.logger.Debug("authority rejected session", zap.String("account_id", state.AccountID))
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("authority status %d: %s", resp.StatusCode, string(snippet))
	}

	var body statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("decode authority response: %w", err)
	}
	return body.Authenticated, nil
}
