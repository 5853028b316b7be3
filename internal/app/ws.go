package app

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

const (
	// per-client queue of pending serial lines; when a client falls this
	// far behind, further lines are dropped for it
	clientQueueSize = 32

	wsWriteTimeout = 5 * time.Second
)

// wsHub tracks connected dashboard clients and fans raw serial lines out to
// them. Each client gets a bounded queue drained by its own writer
// goroutine, so a stalled client never blocks the bridge reader loop that
// calls Broadcast.
type wsHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan string
}

func newWSHub() *wsHub {
	return &wsHub{clients: map[*websocket.Conn]chan string{}}
}

// Broadcast enqueues one line for every connected client. Never blocks:
// clients with a full queue miss the line.
func (h *wsHub) Broadcast(line string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.clients {
		select {
		case ch <- line:
		default:
			// client queue full, drop
		}
	}
}

// add registers a client and returns its line queue.
func (h *wsHub) add(conn *websocket.Conn) chan string {
	ch := make(chan string, clientQueueSize)
	h.mu.Lock()
	h.clients[conn] = ch
	h.mu.Unlock()
	return ch
}

// remove unregisters a client and closes its connection. Idempotent: only
// the first caller closes the queue.
func (h *wsHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	ch, ok := h.clients[conn]
	if ok {
		delete(h.clients, conn)
	}
	h.mu.Unlock()
	if !ok {
		return
	}
	close(ch)
	if err := conn.Close(); err != nil {
		log.Printf("[app] warning: failed to close websocket: %v", err)
	}
}

// handleWS upgrades HTTP to websocket and registers the client for serial
// line broadcasts.
func (a *App) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	ch := a.hub.add(conn)

	// writer: drains the client's queue; a failed or overdue write ends
	// the session
	go func() {
		for line := range ch {
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				break
			}
		}
		a.hub.remove(conn)
	}()

	// reader: clients never send anything useful; reading just detects close
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		a.hub.remove(conn)
	}()
}
