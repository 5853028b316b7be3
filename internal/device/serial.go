// Package device implements the controller connection handle using
// go.bug.st/serial, which provides real serial communication support.
package device

import (
	"bufio"
	"errors"
	"fmt"
	"sync"
	"time"

	serial "go.bug.st/serial"
)

// ErrReadTimeout reports that a bounded ReadLine expired with no data.
// Callers treat it as "nothing arrived", not as a link failure.
var ErrReadTimeout = errors.New("read timeout")

// ErrClosed reports an operation on a closed or never-opened port.
var ErrClosed = errors.New("serial port not open")

type readResult struct {
	line string
	err  error
}

// SerialDevice implements Device over a physical serial port.
type SerialDevice struct {
	port serial.Port
	r    *bufio.Reader
	dev  string
	baud int

	// writes from the command path are serialized so they cannot
	// interleave on the wire
	writeMu sync.Mutex

	mu      sync.Mutex
	pending chan readResult
	closed  bool
}

// NewSerialDevice opens a serial device with the given path and baudrate.
func NewSerialDevice(dev string, baud int) (*SerialDevice, error) {
	p, err := serial.Open(dev, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial %s: %w", dev, err)
	}
	return &SerialDevice{port: p, r: bufio.NewReader(p), dev: dev, baud: baud}, nil
}

// ReadLine reads a single line from the serial port, returning after at most
// timeout when timeout > 0. A timed-out read leaves its goroutine parked on
// the port; the next call reuses that pending read instead of stacking a
// second reader on the same buffer.
func (s *SerialDevice) ReadLine(timeout time.Duration) (string, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", ErrClosed
	}
	ch := s.pending
	if ch == nil {
		ch = make(chan readResult, 1)
		s.pending = ch
		r := s.r
		go func() {
			line, err := r.ReadString('\n')
			ch <- readResult{line, err}
		}()
	}
	s.mu.Unlock()

	if timeout <= 0 {
		res := <-ch
		s.clearPending()
		return res.line, res.err
	}

	select {
	case res := <-ch:
		s.clearPending()
		return res.line, res.err
	case <-time.After(timeout):
		return "", ErrReadTimeout
	}
}

func (s *SerialDevice) clearPending() {
	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()
}

// WriteLine writes a single line followed by '\n' to the serial port.
func (s *SerialDevice) WriteLine(line string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if !s.IsOpen() {
		return ErrClosed
	}
	_, err := s.port.Write(append([]byte(line), '\n'))
	return err
}

// IsOpen reports whether the port is usable.
func (s *SerialDevice) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port != nil && !s.closed
}

// Port returns the device path the handle was opened on.
func (s *SerialDevice) Port() string { return s.dev }

// Close closes the underlying serial connection. Any read parked on the
// port unblocks with an error.
func (s *SerialDevice) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.port == nil {
		return nil
	}
	s.closed = true
	return s.port.Close()
}
