// Package app implements the web dashboard and API layer for SignalBridge.
// It reads bridge snapshots and forwards operator commands; it never talks
// to the serial device directly.
package app

import (
	"context"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"SignalBridge/internal/model"
)

// Bridge is the part of the core the web layer consumes.
type Bridge interface {
	SnapshotState() map[string]model.LightState
	SnapshotLog(limit int) []string
	Status() model.ConnectionStatus
	SendCommand(raw string) error
}

// App serves the dashboard and the controller API.
type App struct {
	bridge Bridge
	tmpl   *template.Template
	mux    *http.ServeMux
	server *http.Server
	hub    *wsHub
	addr   string
}

// New initializes the web app with templates and routes.
func New(addr string, bridge Bridge) (*App, error) {
	cwd, _ := os.Getwd()
	tmplPath := filepath.Join(cwd, "web", "templates", "*.html")

	tmpl, err := template.ParseGlob(tmplPath)
	if err != nil {
		return nil, fmt.Errorf("[app] failed to load templates: %w", err)
	}

	a := &App{
		bridge: bridge,
		tmpl:   tmpl,
		mux:    http.NewServeMux(),
		hub:    newWSHub(),
		addr:   addr,
	}
	a.registerRoutes()
	return a, nil
}

// BroadcastLine fans one raw serial line out to connected websocket
// clients. Wired as the bridge's line subscriber at startup.
func (a *App) BroadcastLine(line string) {
	a.hub.Broadcast(line)
}

// Start launches the web server and blocks until stopped.
func (a *App) Start() error {
	addr := strings.TrimPrefix(a.addr, "http://")
	addr = strings.TrimPrefix(addr, "https://")
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	a.server = &http.Server{
		Addr:    addr,
		Handler: a.mux,
	}

	log.Printf("[app] web server listening at http://%s", addr)

	// Run server until Stop() is called
	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("[app] HTTP server error: %w", err)
	}
	return nil
}

// Stop gracefully stops the web server.
func (a *App) Stop() {
	if a == nil || a.server == nil {
		return
	}
	log.Println("[app] shutting down web server...")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := a.server.Shutdown(ctx); err != nil {
		log.Printf("[app] HTTP server shutdown error: %v", err)
	} else {
		log.Println("[app] web server stopped cleanly")
	}
}
