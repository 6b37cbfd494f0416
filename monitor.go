package capture

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type EventOp int

const (
	DeviceAdded EventOp = iota
	DeviceRemoved
)

func (op EventOp) String() string {
	switch op {
	case DeviceAdded:
		return "added"
	case DeviceRemoved:
		return "removed"
	default:
		return ""
	}
}

// Event reports one device appearing on or disappearing from the machine.
type Event struct {
	Op     EventOp
	Device CaptureDevice
}

// MonitorOptions configures a Monitor.
type MonitorOptions struct {
	// Backends to poll. Nil means DefaultBackends().
	Backends []Backend
	// Interval between periodic rescans. Zero or negative means the 5s
	// default.
	Interval time.Duration
	// DevDir is watched for device nodes appearing or vanishing, which
	// triggers an immediate rescan between intervals. Defaults to /dev.
	// A directory that cannot be watched only disables the trigger.
	DevDir string
	// Logger for scan activity. Nil means no logging.
	Logger *zerolog.Logger
}

// Monitor polls the backends for capture devices and reports changes as
// events.
type Monitor struct {
	backends []Backend
	interval time.Duration
	devDir   string
	log      zerolog.Logger

	events   chan Event
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu      sync.Mutex
	known   map[string]CaptureDevice
	started bool
	stopped bool
}

// NewMonitor builds a Monitor. Call Start to begin scanning.
func NewMonitor(opts MonitorOptions) *Monitor {
	backends := opts.Backends
	if backends == nil {
		backends = DefaultBackends()
	}
	// time.NewTicker panics on non-positive intervals, so the default has
	// to absorb them before run starts
	interval := opts.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	devDir := opts.DevDir
	if devDir == "" {
		devDir = "/dev"
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	return &Monitor{
		backends: backends,
		interval: interval,
		devDir:   devDir,
		log:      log,
		events:   make(chan Event, 16),
		done:     make(chan struct{}),
		known:    make(map[string]CaptureDevice),
	}
}

// Events delivers added and removed devices. The initial scan reports every
// device present at start as added. The channel closes once the scan
// goroutine exits; after a Stop timeout that can be later than Stop
// returning.
func (m *Monitor) Events() <-chan Event {
	return m.events
}

// Start begins scanning in the background.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return errors.New("monitor stopped")
	}
	if m.started {
		m.mu.Unlock()
		return errors.New("monitor already started")
	}
	m.started = true
	m.mu.Unlock()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		// nothing started, so a later Stop closes the channel itself
		m.mu.Lock()
		m.started = false
		m.mu.Unlock()
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(m.devDir); err != nil {
		m.log.Warn().Err(err).Str("dir", m.devDir).Msg("device directory not watchable")
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer watcher.Close()
		// run is the only sender, so the channel closes on its way out
		// even when a Stop deadline expired earlier
		defer close(m.events)
		m.run(ctx, watcher)
	}()
	return nil
}

// Stop ends scanning, waiting for the scan goroutine until ctx expires. On
// ErrStopTimeout the goroutine keeps winding down in the background and the
// events channel closes when it finishes.
func (m *Monitor) Stop(ctx context.Context) error {
	var err error
	m.stopOnce.Do(func() {
		m.mu.Lock()
		m.stopped = true
		started := m.started
		m.mu.Unlock()
		close(m.done)

		if !started {
			close(m.events)
			return
		}

		waitChan := make(chan struct{})
		go func() {
			m.wg.Wait()
			close(waitChan)
		}()

		select {
		case <-waitChan:
		case <-ctx.Done():
			err = ErrStopTimeout
		}
	})
	return err
}

func (m *Monitor) run(ctx context.Context, watcher *fsnotify.Watcher) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.scan(ctx)
	for {
		select {
		case <-m.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.scan(ctx)
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if isDeviceNode(ev.Name) && ev.Op&(fsnotify.Create|fsnotify.Remove) != 0 {
				m.scan(ctx)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			m.log.Error().Err(err).Msg("watcher error")
		}
	}
}

// isDeviceNode matches the /dev entries whose lifecycle implies a capture
// device change: video4linux nodes and firewire character devices. Network
// cameras have no node and are caught by the periodic rescan.
func isDeviceNode(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, "video") || strings.HasPrefix(base, "fw")
}

// scan diffs the current device set against the last one and emits events.
// An incomplete scan is discarded rather than diffed, so a backend failing
// transiently does not report its devices as removed.
func (m *Monitor) scan(ctx context.Context) {
	scanID := uuid.New().String()
	start := time.Now()
	devices, err := Discover(ctx, m.backends...)
	if err != nil {
		m.log.Warn().Err(err).Str("scan_id", scanID).Msg("discovery incomplete, keeping previous state")
		return
	}
	m.log.Debug().
		Str("scan_id", scanID).
		Int("devices", len(devices)).
		Dur("took", time.Since(start)).
		Msg("scan complete")

	current := make(map[string]CaptureDevice, len(devices))
	for _, d := range devices {
		current[d.Identifier()] = d
	}

	m.mu.Lock()
	previous := m.known
	m.known = current
	m.mu.Unlock()

	for _, d := range devices {
		if _, ok := previous[d.Identifier()]; !ok {
			m.emit(Event{Op: DeviceAdded, Device: d})
		}
	}
	for id, d := range previous {
		if _, ok := current[id]; !ok {
			m.emit(Event{Op: DeviceRemoved, Device: d})
		}
	}
}

func (m *Monitor) emit(ev Event) {
	m.log.Info().
		Str("op", ev.Op.String()).
		Str("type", ev.Device.Type().String()).
		Str("identifier", ev.Device.Identifier()).
		Str("name", ev.Device.Name()).
		Msg("device " + ev.Op.String())
	select {
	case m.events <- ev:
	case <-m.done:
	}
}
