// Package device provides line-oriented access to the serial-attached
// traffic-signal controller. It abstracts reading and writing newline
// delimited text with bounded read timeouts.
package device

import "time"

// Device defines the contract for the controller connection handle.
// The reader loop is the only reader; command writes may happen
// concurrently and are serialized by the implementation.
type Device interface {
	// ReadLine reads a single line terminated by '\n'.
	// If timeout > 0 it returns after at most timeout even when no data
	// arrived; the expiry is reported as ErrReadTimeout and is a normal
	// "no data" result, not a failure.
	ReadLine(timeout time.Duration) (string, error)

	// WriteLine writes s followed by '\n' to the device.
	WriteLine(s string) error

	// IsOpen reports whether the underlying port is usable.
	IsOpen() bool

	// Port returns the device path the handle was opened on.
	Port() string

	// Close closes the device and releases underlying resources.
	Close() error
}
