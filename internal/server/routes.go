package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/A-s-w-i-n/webRtc-videoCall/internal/relay"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  64 * 1024,
	WriteBufferSize: 64 * 1024,

	// Browser peers connect from arbitrary origins; room names are the
	// only admission control, so the origin check stays open.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeWs returns the handler that upgrades HTTP requests to websocket
// connections and hands them to the relay.
func ServeWs(rel *relay.Relay) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("upgrade failed", "error", err)
			return
		}

		conn := relay.NewConn(uuid.NewString(), ws, rel)
		conn.Start()
	}
}

// Health reports liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Signaling server is healthy."))
}

// Stats reports current room occupancy.
func Stats(rel *relay.Relay) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rooms, occupants := rel.Stats()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int{
			"rooms":     rooms,
			"occupants": occupants,
		})
	}
}
