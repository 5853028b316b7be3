package device

import serial "go.bug.st/serial"

// ListPorts returns the serial port names visible on this host. It is used
// only as a diagnostic hint when the configured port cannot be opened; the
// bridge never selects a port on its own.
func ListPorts() []string {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil
	}
	return ports
}
