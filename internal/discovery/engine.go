package discovery

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/wayopenfan/wayopenfan/internal/logging"
)

const (
	// ServiceType is the mDNS service type OpenFan devices advertise.
	ServiceType = "_http._tcp"

	// ServiceDomain is the mDNS domain (no further domain filter is
	// applied).
	ServiceDomain = "local."

	// DefaultBrowseTimeout bounds one browse cycle.
	DefaultBrowseTimeout = 5 * time.Second

	// DefaultCycleInterval is the pause between browse cycles.
	DefaultCycleInterval = 5 * time.Second
)

// browseFunc starts an mDNS browse bounded by ctx, delivering results on
// entries. Implementations must arrange for entries to be closed once ctx
// is done (zeroconf does this itself); on a non-nil error the caller owns
// the channel. Injectable so engine tests can feed synthetic entries.
type browseFunc func(ctx context.Context, entries chan<- *zeroconf.ServiceEntry) error

// Options configures an Engine. Zero values select the defaults.
type Options struct {
	// Prefix overrides the advertised-name prefix (default ServicePrefix).
	Prefix string

	// BrowseTimeout bounds each browse cycle.
	BrowseTimeout time.Duration

	// CycleInterval is the pause between the end of one browse cycle and
	// the start of the next.
	CycleInterval time.Duration
}

// Engine maintains a live view of OpenFan devices on the local network.
//
// While started, it browses for ServiceType advertisements in repeated
// bounded cycles. Every cycle rebuilds the visible device set from
// scratch from that cycle's results - there is no incremental merge - so
// a device that stops advertising disappears on the next cycle. Whenever
// the rebuilt set differs from the previously published one, a fresh
// snapshot is delivered to every subscriber.
//
// Browse failures are logged and retained for inspection via Err but are
// never fatal; the next cycle retries. Start while running is a no-op,
// Stop is idempotent and waits for the in-flight browse to be cancelled
// before returning.
type Engine struct {
	prefix        string
	browseTimeout time.Duration
	cycleInterval time.Duration
	browse        browseFunc

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	current []Device
	lastErr error
	subs    map[int]chan []Device
	nextSub int
}

// New creates an Engine with the given options.
func New(opts Options) *Engine {
	if opts.Prefix == "" {
		opts.Prefix = ServicePrefix
	}
	if opts.BrowseTimeout <= 0 {
		opts.BrowseTimeout = DefaultBrowseTimeout
	}
	if opts.CycleInterval <= 0 {
		opts.CycleInterval = DefaultCycleInterval
	}

	return &Engine{
		prefix:        opts.Prefix,
		browseTimeout: opts.BrowseTimeout,
		cycleInterval: opts.CycleInterval,
		browse:        zeroconfBrowse,
		subs:          make(map[int]chan []Device),
	}
}

// zeroconfBrowse is the production browse step.
func zeroconfBrowse(ctx context.Context, entries chan<- *zeroconf.ServiceEntry) error {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	return nil
}

// Start begins browsing. Calling Start while the engine is already
// running is a no-op; existing subscriptions are never duplicated.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.done = make(chan struct{})
	e.running = true

	go e.run(ctx, e.done)

	logging.Info("discovery started",
		zap.String("service", ServiceType),
		zap.String("prefix", e.prefix),
	)
	return nil
}

// Stop cancels any in-flight browse and waits for the engine to wind
// down. Safe to call repeatedly and when the engine was never started;
// the engine can be started again afterwards.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	cancel := e.cancel
	done := e.done
	e.running = false
	e.mu.Unlock()

	cancel()
	<-done

	logging.Info("discovery stopped")
}

// Devices returns a copy of the most recently published device list.
func (e *Engine) Devices() []Device {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Device(nil), e.current...)
}

// Err returns the failure from the most recent browse cycle, or nil if
// it succeeded. Failures are non-fatal; this is an observability signal.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Subscribe registers for device-list snapshots. Each value received is a
// fresh, independent slice that replaces whatever was delivered before;
// subscribers must not mutate it. If a snapshot has already been
// published, it is delivered immediately. A slow subscriber only ever
// misses intermediate snapshots, never the latest one.
//
// The returned cancel function removes the subscription and closes the
// channel; it is safe to call more than once.
func (e *Engine) Subscribe() (<-chan []Device, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextSub
	e.nextSub++

	ch := make(chan []Device, 1)
	e.subs[id] = ch
	if e.current != nil {
		ch <- append([]Device(nil), e.current...)
	}

	cancel := func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if sub, ok := e.subs[id]; ok {
			delete(e.subs, id)
			close(sub)
		}
	}

	return ch, cancel
}

// run is the browse loop. It owns no state directly; all shared state is
// updated under e.mu.
func (e *Engine) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		devices, err := e.runCycle(ctx)
		if ctx.Err() != nil {
			return
		}

		if err != nil {
			logging.Warn("discovery browse failed", zap.Error(err))
			e.setErr(err)
		} else {
			e.setErr(nil)
			e.publish(devices)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(e.cycleInterval):
		}
	}
}

// runCycle performs one bounded browse and collects the full result set.
func (e *Engine) runCycle(ctx context.Context) ([]Device, error) {
	cycleCtx, cancel := context.WithTimeout(ctx, e.browseTimeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	collected := make(chan []Device, 1)

	go func() {
		collected <- e.collect(entries)
	}()

	if err := e.browse(cycleCtx, entries); err != nil {
		close(entries)
		<-collected
		return nil, err
	}

	// The browse owns the channel now and closes it when the cycle
	// context expires.
	<-cycleCtx.Done()
	return <-collected, nil
}

// collect drains one cycle's entries into a de-duplicated, name-sorted
// device list. First advertisement wins on duplicate names.
func (e *Engine) collect(entries <-chan *zeroconf.ServiceEntry) []Device {
	byName := make(map[string]Device)

	for entry := range entries {
		device, ok := deviceFromInstance(entry.Instance, e.prefix)
		if !ok {
			continue
		}
		if _, dup := byName[device.Name]; dup {
			continue
		}
		byName[device.Name] = device
		logging.Debug("discovered service",
			zap.String("instance", entry.Instance),
			zap.String("name", device.Name),
		)
	}

	devices := make([]Device, 0, len(byName))
	for _, d := range byName {
		devices = append(devices, d)
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].Name < devices[j].Name })
	return devices
}

func (e *Engine) setErr(err error) {
	e.mu.Lock()
	e.lastErr = err
	e.mu.Unlock()
}

// publish replaces the current list and notifies subscribers if the set
// actually changed.
func (e *Engine) publish(devices []Device) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if equalDevices(e.current, devices) {
		return
	}
	e.current = devices

	logging.Info("device list updated", zap.Int("count", len(devices)))

	for _, ch := range e.subs {
		snapshot := append([]Device(nil), devices...)
		select {
		case ch <- snapshot:
		default:
			// Replace the stale snapshot the subscriber never read.
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}

func equalDevices(a, b []Device) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
