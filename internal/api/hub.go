package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"stockdashboard/internal/dashboard"
)

const (
	pingEvery    = 45 * time.Second
	readDeadline = 90 * time.Second
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin:       func(*http.Request) bool { return true },
	EnableCompression: true,
}

// viewMsg is pushed to every websocket client when the dashboard changes.
type viewMsg struct {
	Type string         `json:"type"`
	View dashboard.View `json:"view"`
}

// controlMsg is what a client may send: {"type":"control","action":"sort","value":"price"}.
type controlMsg struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Value  string `json:"value"`
}

type statusMsg struct {
	Type  string `json:"type"`
	Level string `json:"level"`
	Text  string `json:"text"`
}

type client struct {
	c    *websocket.Conn
	out  chan any
	done chan struct{}
}

// send queues v, replacing a pending message that has not been written yet.
func (cl *client) send(v any) {
	select {
	case cl.out <- v:
		return
	default:
	}
	select {
	case <-cl.out:
	default:
	}
	select {
	case cl.out <- v:
	default:
	}
}

// Hub fans dashboard views out to websocket clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// Broadcast pushes the view to every connected client. Slow clients only
// ever see the latest view.
func (h *Hub) Broadcast(v dashboard.View) {
	msg := viewMsg{Type: "view", View: v}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.send(msg)
	}
}

// Len reports the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// serveWS upgrades the connection, sends the current view and then relays
// control messages to onControl until the client goes away.
func (h *Hub) serveWS(current func() dashboard.View, onControl func(ctrl controlMsg) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := wsUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		cl := &client{c: conn, out: make(chan any, 4), done: make(chan struct{})}

		// writer
		go func() {
			ping := time.NewTicker(pingEvery)
			defer ping.Stop()
			for {
				select {
				case v := <-cl.out:
					_ = conn.WriteJSON(v)
				case <-ping.C:
					_ = conn.WriteMessage(websocket.PingMessage, nil)
				case <-cl.done:
					return
				}
			}
		}()

		h.mu.Lock()
		h.clients[cl] = struct{}{}
		h.mu.Unlock()
		cl.send(viewMsg{Type: "view", View: current()})

		// reader
		_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
		conn.SetPongHandler(func(string) error {
			_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
			return nil
		})
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				break
			}
			if mt != websocket.TextMessage {
				continue
			}
			var ctrl controlMsg
			if err := json.Unmarshal(data, &ctrl); err != nil || ctrl.Type != "control" {
				continue
			}
			ctrl.Action = strings.ToLower(strings.TrimSpace(ctrl.Action))
			if err := onControl(ctrl); err != nil {
				cl.send(statusMsg{Type: "status", Level: "error", Text: err.Error()})
			}
		}
		close(cl.done)
		h.mu.Lock()
		delete(h.clients, cl)
		h.mu.Unlock()
	}
}
