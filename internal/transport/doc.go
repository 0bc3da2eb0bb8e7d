// Package transport implements the bounded HTTP layer used to talk to
// OpenFan devices.
//
// It exposes exactly one operation: a single GET with fixed 5-second
// connect and total timeouts whose 200 JSON response is decoded into a
// caller-supplied schema type. Every failure mode - unreachable device,
// timeout, non-200 status, undecodable body - surfaces as
// *InvalidResponseError so that callers can distinguish "could not
// reach/parse the device" from a device-reported error (see package
// openfan).
//
// There are no retries and no backoff. Callers are periodic pollers that
// tolerate a missed cycle and own their own retry policy.
package transport
