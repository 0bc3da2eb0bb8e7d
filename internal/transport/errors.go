package transport

import (
	"errors"
	"fmt"
)

// InvalidResponseError reports a transport-level failure: the device could
// not be reached, did not answer within the timeout, answered with a
// non-200 status, or answered with a body that did not decode as the
// expected JSON shape.
//
// It is one of the two error kinds a control operation can produce; the
// other is openfan.APIError for device-reported failures. Callers polling
// periodically should treat an InvalidResponseError as a missed cycle and
// retry on their own schedule - the transport never retries internally.
type InvalidResponseError struct {
	// URL is the request URL that failed.
	URL string

	// StatusCode is the HTTP status received, or 0 if the request never
	// produced a response (network error, timeout).
	StatusCode int

	// Err is the underlying cause (network error, timeout, JSON decode
	// error), if any.
	Err error
}

// Error implements the error interface.
func (e *InvalidResponseError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("could not reach/parse device response from %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("could not reach/parse device response from %s: %v", e.URL, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("could not reach/parse device response from %s: unexpected status %d", e.URL, e.StatusCode)
	default:
		return fmt.Sprintf("could not reach/parse device response from %s", e.URL)
	}
}

// Unwrap returns the underlying error for error chain inspection.
func (e *InvalidResponseError) Unwrap() error {
	return e.Err
}

// IsInvalidResponse reports whether err is a transport-level failure.
func IsInvalidResponse(err error) bool {
	var ire *InvalidResponseError
	return errors.As(err, &ire)
}
