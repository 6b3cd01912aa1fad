package relay

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/A-s-w-i-n/webRtc-videoCall/internal/protocol"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound frame size. SDP payloads stay well under this.
	maxMessageSize = 64 * 1024

	sendBuffer = 32
)

// Conn adapts one websocket connection to the relay's Peer interface.
// All reads happen on the readPump goroutine and all writes on the
// writePump goroutine, as gorilla/websocket requires.
type Conn struct {
	id    string
	relay *Relay
	ws    *websocket.Conn
	send  chan []byte
}

func NewConn(id string, ws *websocket.Conn, relay *Relay) *Conn {
	return &Conn{
		id:    id,
		relay: relay,
		ws:    ws,
		send:  make(chan []byte, sendBuffer),
	}
}

func (c *Conn) ID() string { return c.id }

// Send queues an envelope for delivery. It never blocks: when the buffer
// is full the frame is dropped and the error returned, which the relay
// treats as a no-op.
func (c *Conn) Send(msg *protocol.Message) error {
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	select {
	case c.send <- data:
		return nil
	default:
		return websocket.ErrCloseSent
	}
}

// Start registers the connection with the relay and launches its pumps.
func (c *Conn) Start() {
	c.relay.Register(c)
	go c.writePump()
	go c.readPump()
}

func (c *Conn) readPump() {
	defer func() {
		c.relay.HandleDisconnect(c)
		c.ws.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("read error", "clientId", c.id, "error", err)
			}
			return
		}
		c.relay.HandleMessage(c, data)
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case data := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
