package app

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerRoutes sets up all HTTP handlers for the application.
func (a *App) registerRoutes() {
	// Static files (CSS, JS)
	fs := http.FileServer(http.Dir("web/static"))
	a.mux.Handle("/static/", http.StripPrefix("/static/", fs))

	// Dashboard
	a.mux.HandleFunc("/", a.handleDashboard)

	// Controller API
	a.mux.HandleFunc("/send_command", a.handleSendCommand)
	a.mux.HandleFunc("/get_serial_output", a.handleSerialOutput)
	a.mux.HandleFunc("/get_state", a.handleState)
	a.mux.HandleFunc("/get_status", a.handleStatus)

	// Live serial stream and metrics
	a.mux.HandleFunc("/ws", a.handleWS)
	a.mux.Handle("/metrics", promhttp.Handler())
}
