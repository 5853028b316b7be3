package core

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"SignalBridge/internal/device"
	"SignalBridge/internal/metrics"
	"SignalBridge/internal/model"
	"SignalBridge/internal/parser"
)

// Command sender failures, returned to the caller as values.
var (
	ErrEmptyCommand = errors.New("empty command")
	ErrNotConnected = errors.New("serial not connected")
)

// retryInterval is how long the reader loop waits while disconnected or
// after a read error before trying again.
const retryInterval = time.Second

// Bridge owns the serial link to the signal controller. A single background
// goroutine decodes status lines into the state cache and feeds the log
// ring; any number of foreground callers use the snapshot accessors and
// SendCommand concurrently.
type Bridge struct {
	dev         device.Device
	cache       *StateCache
	logbuf      *LogBuffer
	readTimeout time.Duration

	onLine func(string)
	stop   chan struct{}
	wg     sync.WaitGroup
}

// NewBridge constructs a Bridge over an already-opened device. The device
// is only ever opened once, at process startup; a nil device leaves the
// bridge permanently disconnected but fully responsive: snapshots serve
// the seeded zero states and commands fail with ErrNotConnected.
func NewBridge(dev device.Device, intersections []string, logLines int, readTimeout time.Duration) *Bridge {
	if readTimeout <= 0 {
		readTimeout = time.Second
	}
	return &Bridge{
		dev:         dev,
		cache:       NewStateCache(intersections),
		logbuf:      NewLogBuffer(logLines),
		readTimeout: readTimeout,
		stop:        make(chan struct{}),
	}
}

// OnLine registers a subscriber invoked with every raw line the reader loop
// accepts. Must be set before Start.
func (b *Bridge) OnLine(fn func(string)) { b.onLine = fn }

// Start launches the reader loop in a background goroutine.
func (b *Bridge) Start() {
	b.wg.Add(1)
	go b.loop()
}

// loop continuously reads lines from the device. Nothing that happens in
// here escapes: read errors are logged and retried after a backoff,
// malformed status groups are dropped by the parser, and updates for
// unknown intersections are discarded by the cache. The loop only exits
// when Stop is called.
func (b *Bridge) loop() {
	defer b.wg.Done()
	for {
		select {
		case <-b.stop:
			return
		default:
		}

		if b.dev == nil || !b.dev.IsOpen() {
			// One-shot connect policy: the port is never reopened, so all
			// there is to do while disconnected is wait for shutdown.
			b.wait(retryInterval)
			continue
		}

		line, err := b.dev.ReadLine(b.readTimeout)
		if errors.Is(err, device.ErrReadTimeout) {
			// no data this interval; re-check liveness
			continue
		}
		if err != nil {
			log.Printf("[bridge] serial read error: %v", err)
			metrics.ReadErrors.Inc()
			b.wait(retryInterval)
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		metrics.LinesRead.Inc()
		b.logbuf.Append(line)
		if b.onLine != nil {
			b.onLine(line)
		}

		updates := parser.ParseStateLine(line)
		if len(updates) == 0 {
			continue
		}
		applied := b.cache.Apply(updates)
		if dropped := len(updates) - applied; dropped > 0 {
			metrics.UnknownDrops.Add(float64(dropped))
		}
	}
}

// wait blocks for d or until Stop is called, whichever comes first.
func (b *Bridge) wait(d time.Duration) {
	select {
	case <-b.stop:
	case <-time.After(d):
	}
}

// SendCommand transmits one operator command line to the controller.
// Fire-and-forget: a nil return means the bytes were written, not that the
// controller honored them.
func (b *Bridge) SendCommand(raw string) error {
	cmd := strings.TrimSpace(raw)
	if cmd == "" {
		return ErrEmptyCommand
	}
	if b.dev == nil || !b.dev.IsOpen() {
		return ErrNotConnected
	}
	if err := b.dev.WriteLine(cmd); err != nil {
		return fmt.Errorf("write command: %w", err)
	}
	metrics.CommandsSent.Inc()
	return nil
}

// SnapshotState returns a copy of the current light state for every
// recognized intersection.
func (b *Bridge) SnapshotState() map[string]model.LightState {
	return b.cache.Snapshot()
}

// SnapshotLog returns up to limit of the most recent raw controller lines
// in arrival order.
func (b *Bridge) SnapshotLog(limit int) []string {
	return b.logbuf.Tail(limit)
}

// Status derives the connection status from the device handle.
func (b *Bridge) Status() model.ConnectionStatus {
	st := model.ConnectionStatus{}
	if b.dev != nil {
		st.Connected = b.dev.IsOpen()
		st.Port = b.dev.Port()
	}
	return st
}

// Stop terminates the reader loop and closes the device.
func (b *Bridge) Stop() {
	// close stop channel (idempotent)
	select {
	case <-b.stop:
		// already closed
	default:
		close(b.stop)
	}
	if b.dev != nil {
		_ = b.dev.Close()
	}
	b.wg.Wait()
}
