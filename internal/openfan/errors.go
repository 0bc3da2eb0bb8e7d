package openfan

import "errors"

// APIError is an application-level failure: the HTTP exchange with the
// device succeeded and decoded, but the device reported a non-ok status.
// Message carries the device's explanation when it provided one.
//
// Distinguish it from transport.InvalidResponseError to decide between
// retrying (transport trouble) and showing the user a message
// (application trouble).
type APIError struct {
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return "device reported an error: " + e.Message
}

// IsAPIError reports whether err is a device-reported failure.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
