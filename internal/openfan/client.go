package openfan

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wayopenfan/wayopenfan/internal/discovery"
	"github.com/wayopenfan/wayopenfan/internal/logging"
	"github.com/wayopenfan/wayopenfan/internal/transport"
)

const (
	statusPath   = "/api/v0/fan/status"
	setSpeedPath = "/api/v0/fan/0/set"
)

// Client issues control and status requests against OpenFan devices.
// A single Client serves any number of devices; the target's BaseURL is
// read per call, so a Device snapshot from any discovery update works.
//
// Operations return one of exactly two error kinds:
// *transport.InvalidResponseError when the device could not be reached
// or its response could not be parsed, and *APIError when the device
// itself reported a non-ok status.
type Client struct {
	transport *transport.Client
}

// NewClient creates a control client with the default bounded transport.
func NewClient() *Client {
	return &Client{transport: transport.New()}
}

// NewClientWithTransport creates a control client over a custom
// transport. Used by tests that need shorter timeouts.
func NewClientWithTransport(t *transport.Client) *Client {
	return &Client{transport: t}
}

// Status fetches the device's live status.
//
// A decoded envelope whose status field is not "ok" fails with an
// APIError carrying the reported state string.
func (c *Client) Status(ctx context.Context, device discovery.Device) (*Status, error) {
	var status Status
	if err := c.transport.GetJSON(ctx, device.BaseURL+statusPath, &status); err != nil {
		return nil, err
	}

	if status.State != StateOK {
		logging.Debug("device status not ok",
			zap.String("device", device.Name),
			zap.String("state", status.State),
		)
		return nil, &APIError{Message: status.State}
	}

	return &status, nil
}

// SetSpeed commands the device's duty-cycle target.
//
// percent is passed through unvalidated: the caller constrains it to
// [0,100] and the firmware is the final authority on acceptable values.
// On a non-ok envelope the returned APIError carries the device's
// message, or "Unknown error" when the device supplied none.
func (c *Client) SetSpeed(ctx context.Context, device discovery.Device, percent int) error {
	url := fmt.Sprintf("%s%s?value=%d", device.BaseURL, setSpeedPath, percent)

	var resp ControlResponse
	if err := c.transport.GetJSON(ctx, url, &resp); err != nil {
		return err
	}

	if resp.State != StateOK {
		message := resp.Message
		if message == "" {
			message = "Unknown error"
		}
		return &APIError{Message: message}
	}

	logging.Debug("speed set",
		zap.String("device", device.Name),
		zap.Int("percent", percent),
	)
	return nil
}
