package openfan

import (
	"context"
	"sync"

	"github.com/wayopenfan/wayopenfan/internal/discovery"
)

// DefaultPowerOnSpeed is the duty cycle used when a fan is powered on
// without a remembered previous speed.
const DefaultPowerOnSpeed = 50

// Fan pairs a discovered device with its last known readings. It
// remembers the last non-zero speed so power-on restores where the fan
// was before being switched off.
//
// A Fan is safe for concurrent use: the monitor may refresh it while a
// UI issues commands. Commands to the same fan are not serialized
// against each other; the firmware applies whichever arrives last.
type Fan struct {
	// Device is the discovery snapshot this fan was created from. It is
	// immutable; a later discovery update produces a new Fan.
	Device discovery.Device

	client *Client

	mu        sync.Mutex
	on        bool
	speed     int
	rpm       int
	lastSpeed int
}

// State is a consistent snapshot of a fan's cached readings.
type State struct {
	Name  string
	On    bool
	Speed int
	RPM   int
}

// NewFan creates a fan handle for device.
func NewFan(client *Client, device discovery.Device) *Fan {
	return NewFanWithPowerOnSpeed(client, device, DefaultPowerOnSpeed)
}

// NewFanWithPowerOnSpeed creates a fan handle whose initial power-on
// speed is percent instead of DefaultPowerOnSpeed. Non-positive values
// fall back to the default.
func NewFanWithPowerOnSpeed(client *Client, device discovery.Device, percent int) *Fan {
	if percent <= 0 {
		percent = DefaultPowerOnSpeed
	}
	return &Fan{
		Device:    device,
		client:    client,
		lastSpeed: percent,
	}
}

// State returns the fan's cached readings.
func (f *Fan) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return State{
		Name:  f.Device.Name,
		On:    f.on,
		Speed: f.speed,
		RPM:   f.rpm,
	}
}

// Refresh queries the device and updates the cached readings.
func (f *Fan) Refresh(ctx context.Context) error {
	status, err := f.client.Status(ctx, f.Device)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.rpm = status.RPM
	f.speed = status.PWMPercent
	f.on = status.PWMPercent > 0
	if f.on {
		f.lastSpeed = status.PWMPercent
	}
	return nil
}

// SetSpeed commands the duty cycle and updates the cache on success.
func (f *Fan) SetSpeed(ctx context.Context, percent int) error {
	if err := f.client.SetSpeed(ctx, f.Device, percent); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.speed = percent
	f.on = percent > 0
	if f.on {
		f.lastSpeed = percent
	}
	return nil
}

// SetPower switches the fan on or off. Powering on restores the last
// remembered non-zero speed, or DefaultPowerOnSpeed if there is none;
// powering off sets the duty cycle to zero.
func (f *Fan) SetPower(ctx context.Context, on bool) error {
	if !on {
		return f.SetSpeed(ctx, 0)
	}

	f.mu.Lock()
	speed := f.lastSpeed
	f.mu.Unlock()
	if speed <= 0 {
		speed = DefaultPowerOnSpeed
	}
	return f.SetSpeed(ctx, speed)
}

// Toggle flips the fan's power state.
func (f *Fan) Toggle(ctx context.Context) error {
	f.mu.Lock()
	on := f.on
	f.mu.Unlock()
	return f.SetPower(ctx, !on)
}
