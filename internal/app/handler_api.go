package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"SignalBridge/internal/core"
)

// handleSendCommand forwards an operator command to the controller and
// reports the outcome as plain text, which is what the dashboard displays
// verbatim.
func (a *App) handleSendCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	command := r.FormValue("command")
	err := a.bridge.SendCommand(command)
	switch {
	case err == nil:
		log.Printf("[app] command sent: %s", strings.TrimSpace(command))
		fmt.Fprint(w, "Command sent")
	case errors.Is(err, core.ErrEmptyCommand), errors.Is(err, core.ErrNotConnected):
		fmt.Fprint(w, "No command or serial not connected")
	default:
		log.Printf("[app] command failed: %v", err)
		fmt.Fprintf(w, "Error sending command: %v", err)
	}
}

// handleSerialOutput returns the recent raw controller output,
// newline-joined in arrival order.
func (a *App) handleSerialOutput(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	lines := a.bridge.SnapshotLog(core.DefaultLogLines)
	if _, err := fmt.Fprint(w, strings.Join(lines, "\n")); err != nil {
		log.Printf("[app] warning: write serial output: %v", err)
	}
}

// handleState returns the latest light states as JSON, keyed by upper-cased
// intersection name.
func (a *App) handleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(a.bridge.SnapshotState()); err != nil {
		log.Printf("[app] warning: encode state: %v", err)
	}
}

// handleStatus reports the serial connection status as JSON.
func (a *App) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(a.bridge.Status()); err != nil {
		log.Printf("[app] warning: encode status: %v", err)
	}
}
