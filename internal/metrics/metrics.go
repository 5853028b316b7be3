// Package metrics exposes prometheus collectors for the serial bridge.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	// LinesRead counts raw lines received from the controller.
	LinesRead = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "signalbridge",
		Subsystem: "serial",
		Name:      "lines_total",
		Help:      "Raw lines received from the controller.",
	})
	// ReadErrors counts serial read failures absorbed by the reader loop.
	ReadErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "signalbridge",
		Subsystem: "serial",
		Name:      "read_errors_total",
		Help:      "Serial read errors absorbed by the reader loop.",
	})
	// UnknownDrops counts status updates discarded because the intersection
	// name is not in the configured set.
	UnknownDrops = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "signalbridge",
		Subsystem: "state",
		Name:      "unknown_intersections_total",
		Help:      "Status updates discarded for unrecognized intersection names.",
	})
	// CommandsSent counts operator commands written to the controller.
	CommandsSent = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "signalbridge",
		Subsystem: "commands",
		Name:      "sent_total",
		Help:      "Operator commands written to the controller.",
	})
)

// Register installs the bridge collectors on the default registry.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(LinesRead, ReadErrors, UnknownDrops, CommandsSent)
	})
}
