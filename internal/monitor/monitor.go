package monitor

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wayopenfan/wayopenfan/internal/discovery"
	"github.com/wayopenfan/wayopenfan/internal/logging"
	"github.com/wayopenfan/wayopenfan/internal/openfan"
)

// DefaultPollInterval is how often every known fan is refreshed.
const DefaultPollInterval = 2 * time.Second

// updateBuffer bounds the update channel. Polling never blocks on a slow
// consumer; surplus updates are dropped and the next tick supersedes
// them anyway.
const updateBuffer = 16

// DeviceSource provides device-list snapshots. *discovery.Engine
// satisfies it.
type DeviceSource interface {
	Subscribe() (<-chan []discovery.Device, func())
}

// Update reports the outcome of one fan refresh.
type Update struct {
	// State is the fan's readings after the refresh. On failure it
	// carries the previous cached readings.
	State openfan.State

	// Err is non-nil when the refresh failed; the fan stays in the set
	// and is retried on the next tick.
	Err error
}

// Monitor keeps a set of fan handles in sync with discovery snapshots
// and refreshes each fan's status on a fixed interval, reporting every
// outcome on its update channel.
//
// The fan set is rebuilt on every discovery snapshot: fans for vanished
// devices are dropped, new devices get fresh handles, and handles whose
// device is unchanged are kept so their last-speed memory survives.
type Monitor struct {
	client   *openfan.Client
	source   DeviceSource
	interval time.Duration
	updates  chan Update

	mu           sync.Mutex
	running      bool
	cancel       context.CancelFunc
	done         chan struct{}
	fans         map[string]*openfan.Fan
	defaultSpeed int
}

// New creates a Monitor. source may be nil for one-shot use, in which
// case the fan set is managed solely through SetDevices. A non-positive
// interval selects DefaultPollInterval.
func New(client *openfan.Client, source DeviceSource, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Monitor{
		client:   client,
		source:   source,
		interval: interval,
		updates:  make(chan Update, updateBuffer),
		fans:     make(map[string]*openfan.Fan),
	}
}

// SetDefaultSpeed sets the power-on duty cycle given to fan handles
// created after this call. Zero keeps openfan.DefaultPowerOnSpeed.
func (m *Monitor) SetDefaultSpeed(percent int) {
	m.mu.Lock()
	m.defaultSpeed = percent
	m.mu.Unlock()
}

// Updates returns the channel carrying per-fan refresh outcomes.
func (m *Monitor) Updates() <-chan Update {
	return m.updates
}

// Start begins polling. A second Start while running is a no-op.
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	m.running = true

	go m.run(ctx, m.done)
	return nil
}

// Stop halts polling and waits for in-flight refreshes to finish.
// Idempotent; the monitor can be started again afterwards.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	done := m.done
	m.running = false
	m.mu.Unlock()

	cancel()
	<-done
}

// SetDevices rebuilds the fan set from a device snapshot. Handles for
// devices present in both the old and new set are retained.
func (m *Monitor) SetDevices(devices []discovery.Device) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := make(map[string]*openfan.Fan, len(devices))
	for _, device := range devices {
		if fan, ok := m.fans[device.Name]; ok && fan.Device == device {
			next[device.Name] = fan
			continue
		}
		next[device.Name] = openfan.NewFanWithPowerOnSpeed(m.client, device, m.defaultSpeed)
	}

	m.fans = next
	logging.Debug("fan set rebuilt", zap.Int("count", len(next)))
}

// Fans returns the current fan handles, sorted by name.
func (m *Monitor) Fans() []*openfan.Fan {
	m.mu.Lock()
	defer m.mu.Unlock()

	fans := make([]*openfan.Fan, 0, len(m.fans))
	for _, fan := range m.fans {
		fans = append(fans, fan)
	}
	sort.Slice(fans, func(i, j int) bool { return fans[i].Device.Name < fans[j].Device.Name })
	return fans
}

// Fan looks up a fan handle by device name.
func (m *Monitor) Fan(name string) (*openfan.Fan, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fan, ok := m.fans[name]
	return fan, ok
}

// SetAll commands every known fan to percent, concurrently. All fans are
// attempted even when some fail; the first error is returned.
func (m *Monitor) SetAll(ctx context.Context, percent int) error {
	fans := m.Fans()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, fan := range fans {
		wg.Add(1)
		go func(fan *openfan.Fan) {
			defer wg.Done()
			if err := fan.SetSpeed(ctx, percent); err != nil {
				logging.Warn("set-all failed for fan",
					zap.String("fan", fan.Device.Name),
					zap.Error(err),
				)
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(fan)
	}

	wg.Wait()
	return firstErr
}

func (m *Monitor) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	var snapshots <-chan []discovery.Device
	if m.source != nil {
		var cancelSub func()
		snapshots, cancelSub = m.source.Subscribe()
		defer cancelSub()
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case devices, ok := <-snapshots:
			if !ok {
				snapshots = nil
				continue
			}
			m.SetDevices(devices)
			m.pollAll(ctx)
		case <-ticker.C:
			m.pollAll(ctx)
		}
	}
}

// pollAll refreshes every fan concurrently and reports each outcome.
func (m *Monitor) pollAll(ctx context.Context) {
	fans := m.Fans()

	var wg sync.WaitGroup
	for _, fan := range fans {
		wg.Add(1)
		go func(fan *openfan.Fan) {
			defer wg.Done()
			err := fan.Refresh(ctx)
			if err != nil {
				logging.Debug("fan refresh failed",
					zap.String("fan", fan.Device.Name),
					zap.Error(err),
				)
			}
			m.emit(Update{State: fan.State(), Err: err})
		}(fan)
	}
	wg.Wait()
}

// emit delivers an update without ever blocking the poll loop.
func (m *Monitor) emit(update Update) {
	select {
	case m.updates <- update:
	default:
	}
}
