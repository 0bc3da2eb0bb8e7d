package discovery

import (
	"fmt"
	"strings"
)

// ServicePrefix is the advertised instance-name prefix that identifies an
// OpenFan device. Instances whose name does not begin with this prefix
// are ignored during discovery.
const ServicePrefix = "uOpenFan"

// Device is one controllable fan unit, as published in a discovery
// snapshot. Devices are value types: each snapshot carries fresh copies
// and a Device held by a consumer is never mutated by later updates.
type Device struct {
	// Name is the display name, the advertised instance name with the
	// "uOpenFan-" token stripped once from the front.
	Name string

	// BaseURL is the reachable HTTP origin for the device.
	//
	// It is derived as "http://<instance>.local" using the advertised
	// mDNS instance name directly as the hostname label, not a resolved
	// address. OpenFan firmware registers its hostname to match its
	// instance name, so this works in practice; it will misbehave if the
	// instance name is not a valid DNS label.
	BaseURL string
}

// String returns a human-readable representation of the device.
func (d Device) String() string {
	return fmt.Sprintf("OpenFan %s (%s)", d.Name, d.BaseURL)
}

// deviceFromInstance builds a Device from an advertised instance name,
// filtered against prefix. Returns false for instances that are not
// OpenFan advertisements.
func deviceFromInstance(instance, prefix string) (Device, bool) {
	if instance == "" || !strings.HasPrefix(instance, prefix) {
		return Device{}, false
	}

	return Device{
		Name:    strings.TrimPrefix(instance, prefix+"-"),
		BaseURL: "http://" + instance + ".local",
	}, true
}
