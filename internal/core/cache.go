// Package core contains the runtime components of SignalBridge: the state
// cache, the serial log ring and the Bridge that owns the controller link.
package core

import (
	"strings"
	"sync"

	"SignalBridge/internal/model"
)

// StateCache holds the last known light state per intersection. It is
// seeded once with the recognized intersection names and the key set never
// grows afterwards: updates for unknown names are discarded, not inserted.
type StateCache struct {
	mu     sync.RWMutex
	states map[string]model.LightState
}

// NewStateCache seeds a cache with zeroed states for the given names.
// Names are upper-cased so they match parsed status lines.
func NewStateCache(names []string) *StateCache {
	states := make(map[string]model.LightState, len(names))
	for _, n := range names {
		key := strings.ToUpper(strings.TrimSpace(n))
		if key == "" {
			continue
		}
		states[key] = model.LightState{Red: "0", Yellow: "0", Green: "0"}
	}
	return &StateCache{states: states}
}

// Apply merges all updates from one status line under a single write lock,
// so a concurrent Snapshot observes either none or all of them. Unknown
// names are dropped. Returns the number of updates applied.
func (c *StateCache) Apply(updates map[string]model.LightState) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	applied := 0
	for name, st := range updates {
		if _, ok := c.states[name]; !ok {
			continue
		}
		c.states[name] = st
		applied++
	}
	return applied
}

// Snapshot returns a point-in-time copy of all intersection states.
func (c *StateCache) Snapshot() map[string]model.LightState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]model.LightState, len(c.states))
	for k, v := range c.states {
		out[k] = v
	}
	return out
}
