package app

import (
	"log"
	"net/http"
	"strings"

	"SignalBridge/internal/core"
	"SignalBridge/internal/model"
)

// handleDashboard renders the main control page.
func (a *App) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	log.Printf("[app] GET / (dashboard) from %s", r.RemoteAddr)

	status := a.bridge.Status()
	port := status.Port
	if port == "" {
		port = "Not connected"
	}

	data := map[string]any{
		"Title":        "Traffic Signal Bridge",
		"Connected":    status.Connected,
		"Port":         port,
		"Commands":     model.ControllerCommands,
		"States":       a.bridge.SnapshotState(),
		"SerialOutput": strings.Join(a.bridge.SnapshotLog(core.DefaultLogLines), "\n"),
		// pause state is not derived from controller messages yet
		"Paused": false,
	}
	if err := a.tmpl.ExecuteTemplate(w, "dashboard.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
