// Package sportdata provides the HTTP client for the SportDataAPI soccer
// endpoints.
//
// SportDataAPI uses header-based auth (apikey) and wraps every payload in a
// {"data": ...} envelope. Requests are rate limited with a token bucket.
package sportdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/albapepper/soccerscore/internal/metrics"
)

// UpstreamError reports a failed provider call: transport failure, non-200
// status, or a body that is not the expected JSON envelope.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("sportdata %s returned %d: %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("sportdata %s: %v", e.Endpoint, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Client is the HTTP client for all SportDataAPI endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a SportDataAPI client with rate limiting.
func NewClient(baseURL, apiKey string, timeout time.Duration, requestsPerMinute int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

// envelope is the common SportDataAPI response wrapper.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// get performs a rate-limited GET request and returns the raw data payload.
func (c *Client) get(ctx context.Context, path string, params url.Values) (payload json.RawMessage, err error) {
	start := time.Now()
	status := 0
	defer func() {
		label := "error"
		if err == nil {
			label = strconv.Itoa(status)
		}
		metrics.UpstreamCallsTotal.WithLabelValues(path, label).Inc()
		metrics.UpstreamCallDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &UpstreamError{Endpoint: path, Err: fmt.Errorf("rate limit wait: %w", err)}
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &UpstreamError{Endpoint: path, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("SportDataAPI request", "path", path, "params", params.Encode())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Endpoint: path, Err: err}
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Endpoint: path, StatusCode: status, Err: fmt.Errorf("read response body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Endpoint: path, StatusCode: status, Err: fmt.Errorf("%s", truncate(body, 200))}
	}

	var result envelope
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &UpstreamError{Endpoint: path, StatusCode: status, Err: fmt.Errorf("decode response: %w", err)}
	}

	return result.Data, nil
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
