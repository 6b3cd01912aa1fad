package signaling

import (
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/A-s-w-i-n/webRtc-videoCall/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024

	initialBackoff = 1 * time.Second
	maxBackoff     = 30 * time.Second
)

// Status describes the signaling channel's connection state as surfaced
// to the presentation layer.
type Status string

const (
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
	StatusError        Status = "error"
)

// Backoff returns the delay before reconnection attempt n (zero-based):
// doubling from initialBackoff, capped at maxBackoff so a persistently
// unreachable relay does not cause a reconnect storm.
func Backoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := initialBackoff
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}

// Client maintains the duplex websocket connection to the relay. After a
// drop it schedules exactly one reconnection attempt at a time, backing
// off between failures. It never replays room membership; callers
// re-issue create-room/join-room after reconnecting.
type Client struct {
	serverURL string
	onStatus  func(Status)

	mu      sync.Mutex
	conn    *websocket.Conn
	open    bool
	closed  bool
	attempt int

	incoming chan *protocol.Message
	outgoing chan *protocol.Message
	done     chan struct{}
}

// NewClient creates a client for the given websocket URL. onStatus may
// be nil when the caller does not care about connection status.
func NewClient(serverURL string, onStatus func(Status)) *Client {
	if onStatus == nil {
		onStatus = func(Status) {}
	}
	return &Client{
		serverURL: serverURL,
		onStatus:  onStatus,
		incoming:  make(chan *protocol.Message, 32),
		outgoing:  make(chan *protocol.Message, 32),
		done:      make(chan struct{}),
	}
}

// Connect establishes the initial connection. Later drops reconnect
// automatically; only the first dial reports its error synchronously.
func (c *Client) Connect() error {
	if _, err := url.Parse(c.serverURL); err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}
	return c.dial()
}

func (c *Client) dial() error {
	conn, _, err := websocket.DefaultDialer.Dial(c.serverURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	conn.SetReadLimit(maxMessageSize)
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	c.mu.Lock()
	c.conn = conn
	c.open = true
	c.attempt = 0
	c.mu.Unlock()

	c.onStatus(StatusConnected)

	connDone := make(chan struct{})
	go c.readPump(conn, connDone)
	go c.writePump(conn, connDone)
	return nil
}

func (c *Client) readPump(conn *websocket.Conn, connDone chan struct{}) {
	defer func() {
		close(connDone)
		conn.Close()

		c.mu.Lock()
		c.open = false
		closed := c.closed
		c.mu.Unlock()

		c.onStatus(StatusDisconnected)
		if !closed {
			c.scheduleReconnect()
		}
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		msg, err := protocol.Decode(data)
		if err != nil {
			slog.Debug("dropping undecodable frame", "error", err)
			continue
		}
		select {
		case c.incoming <- msg:
		case <-c.done:
			return
		}
	}
}

func (c *Client) writePump(conn *websocket.Conn, connDone chan struct{}) {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg := <-c.outgoing:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-connDone:
			return

		case <-c.done:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

func (c *Client) scheduleReconnect() {
	c.mu.Lock()
	attempt := c.attempt
	c.attempt++
	c.mu.Unlock()

	delay := Backoff(attempt)
	slog.Info("scheduling reconnect", "attempt", attempt+1, "delay", delay)

	time.AfterFunc(delay, func() {
		c.mu.Lock()
		closed := c.closed
		c.mu.Unlock()
		if closed {
			return
		}
		if err := c.dial(); err != nil {
			slog.Warn("reconnect failed", "error", err)
			c.onStatus(StatusError)
			c.scheduleReconnect()
		}
	})
}

// Send queues an envelope for delivery. Callers must not assume
// delivery: when the channel is not open the envelope is dropped with a
// log line, never an error.
func (c *Client) Send(msg *protocol.Message) {
	c.mu.Lock()
	open := c.open
	c.mu.Unlock()

	if !open {
		slog.Warn("signaling channel not open, dropping", "type", msg.Type)
		return
	}
	select {
	case c.outgoing <- msg:
	default:
		slog.Warn("outgoing buffer full, dropping", "type", msg.Type)
	}
}

// Incoming returns the stream of decoded envelopes.
func (c *Client) Incoming() <-chan *protocol.Message {
	return c.incoming
}

// Done is closed when the client is shut down for good.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close shuts the channel down permanently. Safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	conn := c.conn
	c.mu.Unlock()

	close(c.done)
	if conn != nil {
		conn.Close()
	}
}
