// Package openfan implements the control API for OpenFan fan-controller
// devices.
//
// Two operations exist against a device: fetching live status (RPM and
// duty-cycle percent) and setting a duty-cycle target. Both ride on the
// bounded transport from package transport and report failures through a
// two-kind taxonomy: *transport.InvalidResponseError for anything that
// kept a valid envelope from arriving, and *APIError when the device
// answered but reported a non-ok status of its own.
//
// Fan adds the stateful handle the tray application works with: cached
// readings, last-speed memory, and power toggling on top of the raw
// client.
package openfan
