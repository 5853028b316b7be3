// Package model defines shared message structures for SignalBridge.
package model

// LightState holds the current phase values for one intersection.
// Values are carried verbatim from the controller; this layer never
// interprets or validates them.
type LightState struct {
	Red    string `json:"red"`
	Yellow string `json:"yellow"`
	Green  string `json:"green"`
}

// ConnectionStatus reports the serial link state, derived live from the
// connection handle. It is never persisted.
type ConnectionStatus struct {
	Connected bool   `json:"connected"`
	Port      string `json:"port"`
}

// ControllerCommands lists the command vocabulary the controller firmware
// understands. It is shown on the dashboard as operator help; the bridge
// transmits whatever command text it is given without validating against
// this list.
var ControllerCommands = []string{
	"!order 0,1,2,3,4 - Set light sequence",
	"!delay 5000,2000,5000,... - Set all timings (15 values)",
	"!pause - Freeze current state",
	"!resume - Continue operation",
	"!status - Show current settings",
}
