// Package parser decodes the controller's line-oriented status protocol.
//
// Status wire format (controller -> bridge):
//
//	STATE:<NAME>,<red>,<yellow>,<green>[,<NAME>,<red>,<yellow>,<green>...]
//
// Any line without the STATE: prefix is opaque diagnostic text.
package parser

import (
	"strings"

	"SignalBridge/internal/model"
)

// StatePrefix marks a status line carrying intersection light updates.
const StatePrefix = "STATE:"

// Controller command verbs (bridge -> controller). The bridge transmits
// commands verbatim; validating arguments is the controller's job.
const (
	CmdOrder  = "!order"
	CmdDelay  = "!delay"
	CmdPause  = "!pause"
	CmdResume = "!resume"
	CmdStatus = "!status"
)

// ParseStateLine parses one status line into per-intersection light states.
// Tokens after the prefix are consumed left to right in groups of four
// (name, red, yellow, green); an incomplete trailing group is dropped
// without error. Names are trimmed and upper-cased, values trimmed but
// otherwise passed through verbatim. Non-status lines yield an empty map.
func ParseStateLine(line string) map[string]model.LightState {
	states := map[string]model.LightState{}
	if !strings.HasPrefix(line, StatePrefix) {
		return states
	}

	parts := strings.Split(line[len(StatePrefix):], ",")
	for i := 0; i+3 < len(parts); i += 4 {
		name := strings.ToUpper(strings.TrimSpace(parts[i]))
		states[name] = model.LightState{
			Red:    strings.TrimSpace(parts[i+1]),
			Yellow: strings.TrimSpace(parts[i+2]),
			Green:  strings.TrimSpace(parts[i+3]),
		}
	}
	return states
}
