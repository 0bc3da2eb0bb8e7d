package transport

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/wayopenfan/wayopenfan/internal/logging"
)

// DefaultTimeout bounds both connection establishment and the total
// request. OpenFan devices answer well inside this on a healthy network;
// anything slower is treated as unreachable.
const DefaultTimeout = 5 * time.Second

// Client performs single bounded HTTP GET requests against OpenFan
// devices and decodes their JSON envelopes.
//
// The client deliberately does not retry, back off, or pool beyond the
// stdlib defaults: its callers re-poll periodically and prefer a fast,
// clearly reported failure over hidden resilience.
type Client struct {
	httpClient *http.Client
}

// New creates a Client with the fixed 5-second dial and request timeouts.
func New() *Client {
	return NewWithTimeout(DefaultTimeout)
}

// NewWithTimeout creates a Client with a custom bound. Exposed for tests;
// production callers use New.
func NewWithTimeout(timeout time.Duration) *Client {
	dialer := &net.Dialer{Timeout: timeout}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: dialer.DialContext,
			},
		},
	}
}

// GetJSON performs one HTTP GET against url and decodes the 200 response
// body into v.
//
// Any failure - network error, timeout, non-200 status, or a body that
// does not decode - is returned as *InvalidResponseError. The request is
// additionally bounded by ctx, which may expire before the fixed timeout.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &InvalidResponseError{URL: url, Err: err}
	}

	logging.Debug("device request", zap.String("url", url))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.Debug("device request failed", zap.String("url", url), zap.Error(err))
		return &InvalidResponseError{URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		logging.Debug("device request rejected",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
		)
		return &InvalidResponseError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &InvalidResponseError{URL: url, StatusCode: resp.StatusCode, Err: err}
	}

	if err := json.Unmarshal(body, v); err != nil {
		return &InvalidResponseError{URL: url, StatusCode: resp.StatusCode, Err: err}
	}

	return nil
}
