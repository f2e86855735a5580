// Package web serves the browser editor and streams viewer state over a
// websocket.
package web

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/umlgen/internal/logger"
	"github.com/ziadkadry99/umlgen/internal/viewer"
)

//go:embed index.html
var indexHTML []byte

const (
	writeWait = 10 * time.Second
	// sendBuffer is the number of states queued for a slow client before
	// older ones are dropped.
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// command is the incoming websocket message format.
type command struct {
	Type string  `json:"type"` // zoom_in, zoom_out, reset or pan
	DX   float64 `json:"dx,omitempty"`
	DY   float64 `json:"dy,omitempty"`
}

// message is the outgoing websocket message format.
type message struct {
	Type  string        `json:"type"` // "state" or "error"
	State *viewer.State `json:"state,omitempty"`
	Error string        `json:"error,omitempty"`
}

// Handler serves the editor page and the viewer websocket.
type Handler struct {
	viewer *viewer.Controller
	log    *logger.Logger
}

// New creates a Handler for v.
func New(v *viewer.Controller, log *logger.Logger) *Handler {
	return &Handler{viewer: v, log: log}
}

// RegisterRoutes mounts the editor page and the websocket.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", ServeIndex)
	r.Get("/api/viewer/ws", h.ServeWS)
}

// ServeIndex serves the embedded editor page.
func ServeIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// ServeWS pushes the viewer state on connect and after every change, and
// applies zoom and pan commands sent by the client.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error(err, "websocket upgrade")
		return
	}
	defer conn.Close()

	out := make(chan message, sendBuffer)
	done := make(chan struct{})
	defer close(done)

	push := func(m message) {
		select {
		case out <- m:
		case <-done:
		default:
			// Client is behind: drop the oldest queued message.
			select {
			case <-out:
			default:
			}
			select {
			case out <- m:
			default:
			}
		}
	}

	cancel := h.viewer.Subscribe(func(st viewer.State) {
		push(message{Type: "state", State: &st})
	})
	defer cancel()

	go h.writeLoop(conn, out, done)

	st := h.viewer.State()
	push(message{Type: "state", State: &st})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Error(err, "websocket read")
			}
			return
		}

		var cmd command
		if err := json.Unmarshal(raw, &cmd); err != nil {
			push(message{Type: "error", Error: "invalid message format"})
			continue
		}
		if err := h.apply(cmd); err != nil {
			push(message{Type: "error", Error: err.Error()})
		}
	}
}

func (h *Handler) writeLoop(conn *websocket.Conn, out <-chan message, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case m := <-out:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(m); err != nil {
				h.log.Error(err, "websocket write")
				return
			}
		}
	}
}

// apply runs cmd on the controller; subscribers see the resulting state.
func (h *Handler) apply(cmd command) error {
	switch cmd.Type {
	case "zoom_in":
		h.viewer.ZoomIn()
	case "zoom_out":
		h.viewer.ZoomOut()
	case "reset":
		h.viewer.Reset()
	case "pan":
		h.viewer.Pan(cmd.DX, cmd.DY)
	default:
		return fmt.Errorf("unknown command type: %q", cmd.Type)
	}
	return nil
}
