package core

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"SignalBridge/internal/device"
	"SignalBridge/internal/model"
)

type fakeRead struct {
	line string
	err  error
}

// fakeDevice scripts ReadLine results for the reader loop and records
// every write from the command path.
type fakeDevice struct {
	mu     sync.Mutex
	events chan fakeRead
	open   bool
	name   string
	writes []string

	writeErr error
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		events: make(chan fakeRead, 64),
		open:   true,
		name:   "/dev/ttyFAKE",
	}
}

func (d *fakeDevice) feed(line string) { d.events <- fakeRead{line: line} }
func (d *fakeDevice) fail(err error)   { d.events <- fakeRead{err: err} }

func (d *fakeDevice) ReadLine(timeout time.Duration) (string, error) {
	select {
	case ev := <-d.events:
		return ev.line, ev.err
	case <-time.After(timeout):
		return "", device.ErrReadTimeout
	}
}

func (d *fakeDevice) WriteLine(s string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.writeErr != nil {
		return d.writeErr
	}
	d.writes = append(d.writes, s)
	return nil
}

func (d *fakeDevice) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

func (d *fakeDevice) Port() string { return d.name }

func (d *fakeDevice) Close() error {
	d.mu.Lock()
	d.open = false
	d.mu.Unlock()
	return nil
}

func (d *fakeDevice) written() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.writes))
	copy(out, d.writes)
	return out
}

var testIntersections = []string{"NORTH", "SW", "SE", "NW", "NE"}

func newTestBridge(dev device.Device) *Bridge {
	return NewBridge(dev, testIntersections, DefaultLogLines, 10*time.Millisecond)
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

func TestBridgeAppliesStatusLine(t *testing.T) {
	dev := newFakeDevice()
	b := newTestBridge(dev)
	b.Start()
	defer b.Stop()

	dev.feed("STATE:NORTH,1,0,0,SW,0,1,0")

	waitFor(t, func() bool {
		return b.SnapshotState()["NORTH"].Red == "1"
	}, "NORTH update")

	snap := b.SnapshotState()
	if snap["SW"] != (model.LightState{Red: "0", Yellow: "1", Green: "0"}) {
		t.Errorf("SW = %v", snap["SW"])
	}
	if len(snap) != len(testIntersections) {
		t.Errorf("key set grew or shrank: %d keys", len(snap))
	}
}

func TestBridgeDiscardsUnknownIntersection(t *testing.T) {
	dev := newFakeDevice()
	b := newTestBridge(dev)
	b.Start()
	defer b.Stop()

	dev.feed("STATE:XYZ,1,0,0")
	dev.feed("marker")

	waitFor(t, func() bool {
		log := b.SnapshotLog(DefaultLogLines)
		return len(log) > 0 && log[len(log)-1] == "marker"
	}, "marker line")

	snap := b.SnapshotState()
	if _, ok := snap["XYZ"]; ok {
		t.Error("unknown intersection was inserted")
	}
	if snap["NORTH"].Red != "0" {
		t.Errorf("NORTH changed: %v", snap["NORTH"])
	}
}

func TestBridgeBuffersDiagnosticLines(t *testing.T) {
	dev := newFakeDevice()
	b := newTestBridge(dev)
	b.Start()
	defer b.Stop()

	dev.feed("Controller booted v1.2")
	dev.feed("STATE:NORTH,0,0,1")

	waitFor(t, func() bool {
		return b.SnapshotState()["NORTH"].Green == "1"
	}, "state update")

	log := b.SnapshotLog(DefaultLogLines)
	if len(log) != 2 {
		t.Fatalf("expected 2 logged lines, got %d: %v", len(log), log)
	}
	if log[0] != "Controller booted v1.2" {
		t.Errorf("log[0] = %q", log[0])
	}
	// status lines are logged too, raw
	if log[1] != "STATE:NORTH,0,0,1" {
		t.Errorf("log[1] = %q", log[1])
	}
}

func TestBridgeSurvivesReadError(t *testing.T) {
	dev := newFakeDevice()
	b := newTestBridge(dev)
	b.Start()
	defer b.Stop()

	dev.fail(errors.New("device hiccup"))
	dev.feed("STATE:SE,0,0,1")

	// the loop backs off for a second after the error, then recovers
	waitFor(t, func() bool {
		return b.SnapshotState()["SE"].Green == "1"
	}, "recovery after read error")
}

func TestBridgeNotifiesLineSubscriber(t *testing.T) {
	dev := newFakeDevice()
	b := newTestBridge(dev)

	var mu sync.Mutex
	var seen []string
	b.OnLine(func(line string) {
		mu.Lock()
		seen = append(seen, line)
		mu.Unlock()
	})
	b.Start()
	defer b.Stop()

	dev.feed("hello")
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1 && seen[0] == "hello"
	}, "subscriber notification")
}

func TestBridgeLogCapped(t *testing.T) {
	dev := newFakeDevice()
	b := NewBridge(dev, testIntersections, 50, 10*time.Millisecond)
	b.Start()
	defer b.Stop()

	for i := 0; i < 200; i++ {
		dev.feed(fmt.Sprintf("diag %d", i))
	}
	waitFor(t, func() bool {
		log := b.SnapshotLog(50)
		return len(log) == 50 && log[49] == "diag 199"
	}, "log to fill")

	log := b.SnapshotLog(50)
	for i, line := range log {
		want := fmt.Sprintf("diag %d", 150+i)
		if line != want {
			t.Errorf("log[%d] = %q, want %q", i, line, want)
		}
	}
}

func TestBridgeDisconnectedStaysResponsive(t *testing.T) {
	b := newTestBridge(nil)
	b.Start()

	snap := b.SnapshotState()
	if len(snap) != len(testIntersections) {
		t.Errorf("expected seeded snapshot, got %v", snap)
	}
	if st := b.Status(); st.Connected || st.Port != "" {
		t.Errorf("Status = %+v, want disconnected", st)
	}
	if err := b.SendCommand("!status"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("SendCommand: got %v, want ErrNotConnected", err)
	}

	// Stop must not hang on the disconnected backoff
	done := make(chan struct{})
	go func() { b.Stop(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop hung while disconnected")
	}
}

func TestSendCommand(t *testing.T) {
	t.Run("empty command never touches the device", func(t *testing.T) {
		dev := newFakeDevice()
		b := newTestBridge(dev)
		if err := b.SendCommand("   "); !errors.Is(err, ErrEmptyCommand) {
			t.Errorf("got %v, want ErrEmptyCommand", err)
		}
		if len(dev.written()) != 0 {
			t.Errorf("device was written to: %v", dev.written())
		}
	})

	t.Run("closed device", func(t *testing.T) {
		dev := newFakeDevice()
		dev.open = false
		b := newTestBridge(dev)
		if err := b.SendCommand("!pause"); !errors.Is(err, ErrNotConnected) {
			t.Errorf("got %v, want ErrNotConnected", err)
		}
		if len(dev.written()) != 0 {
			t.Errorf("device was written to: %v", dev.written())
		}
	})

	t.Run("trims and writes", func(t *testing.T) {
		dev := newFakeDevice()
		b := newTestBridge(dev)
		if err := b.SendCommand("  !pause \n"); err != nil {
			t.Fatalf("SendCommand: %v", err)
		}
		if got := dev.written(); len(got) != 1 || got[0] != "!pause" {
			t.Errorf("writes = %v, want [!pause]", got)
		}
	})

	t.Run("write failure surfaces as wrapped error", func(t *testing.T) {
		dev := newFakeDevice()
		dev.writeErr = errors.New("wire fell out")
		b := newTestBridge(dev)
		err := b.SendCommand("!resume")
		if err == nil {
			t.Fatal("expected an error")
		}
		if errors.Is(err, ErrEmptyCommand) || errors.Is(err, ErrNotConnected) {
			t.Errorf("wrong error class: %v", err)
		}
		if !errors.Is(err, dev.writeErr) {
			t.Errorf("cause not wrapped: %v", err)
		}
	})
}

func TestBridgeConcurrentSnapshots(t *testing.T) {
	dev := newFakeDevice()
	b := newTestBridge(dev)
	b.Start()
	defer b.Stop()

	stopFeeding := make(chan struct{})
	go func() {
		for i := 0; ; i++ {
			line := fmt.Sprintf("STATE:NORTH,%d,%d,%d,SW,%d,%d,%d", i, i, i, i, i, i)
			select {
			case dev.events <- fakeRead{line: line}:
			case <-stopFeeding:
				return
			}
		}
	}()
	defer close(stopFeeding)

	var wg sync.WaitGroup
	for r := 0; r < 8; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 300; i++ {
				snap := b.SnapshotState()
				if len(snap) != len(testIntersections) {
					t.Errorf("snapshot missing keys: %v", snap)
					return
				}
				// both halves of a multi-group line must land together
				if snap["NORTH"] != snap["SW"] {
					t.Errorf("torn update: NORTH=%v SW=%v", snap["NORTH"], snap["SW"])
					return
				}
			}
		}()
	}
	wg.Wait()
}
