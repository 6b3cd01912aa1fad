package signaling

import (
	"encoding/json"
	"log/slog"

	"github.com/A-s-w-i-n/webRtc-videoCall/internal/protocol"
)

// RoomEvent carries a membership update: the room name (when the server
// included it) and the current occupant list.
type RoomEvent struct {
	RoomName string
	Users    []protocol.User
}

// ToggleEvent reports a peer enabling or disabling a media kind.
type ToggleEvent struct {
	UserID  string
	Enabled bool
}

// Handler routes incoming envelopes to typed channels, one per kind, so
// the call logic can consume them from a single select loop. Candidates
// share one FIFO channel, preserving their arrival order.
type Handler struct {
	client *Client

	RoomCreated chan string
	RoomJoined  chan *RoomEvent
	UserJoined  chan []protocol.User
	UserLeft    chan []protocol.User

	Offer     chan json.RawMessage
	Answer    chan json.RawMessage
	Candidate chan json.RawMessage

	VideoToggle chan *ToggleEvent
	AudioToggle chan *ToggleEvent
	RoomError   chan string
}

func NewHandler(client *Client) *Handler {
	return &Handler{
		client:      client,
		RoomCreated: make(chan string, 1),
		RoomJoined:  make(chan *RoomEvent, 1),
		UserJoined:  make(chan []protocol.User, 4),
		UserLeft:    make(chan []protocol.User, 4),
		Offer:       make(chan json.RawMessage, 1),
		Answer:      make(chan json.RawMessage, 1),
		Candidate:   make(chan json.RawMessage, 64),
		VideoToggle: make(chan *ToggleEvent, 4),
		AudioToggle: make(chan *ToggleEvent, 4),
		RoomError:   make(chan string, 1),
	}
}

// Start consumes incoming envelopes until the client shuts down.
func (h *Handler) Start() {
	for {
		select {
		case <-h.client.Done():
			return
		case msg := <-h.client.Incoming():
			h.dispatch(msg)
		}
	}
}

func (h *Handler) dispatch(msg *protocol.Message) {
	switch msg.Type {
	case protocol.TypeRoomCreated:
		h.RoomCreated <- msg.RoomName

	case protocol.TypeRoomJoined:
		h.RoomJoined <- &RoomEvent{RoomName: msg.RoomName, Users: msg.Users}

	case protocol.TypeUserJoined:
		h.UserJoined <- msg.Users

	case protocol.TypeUserLeft:
		h.UserLeft <- msg.Users

	case protocol.TypeOffer:
		h.Offer <- msg.Offer

	case protocol.TypeAnswer:
		h.Answer <- msg.Answer

	case protocol.TypeICECandidate:
		h.Candidate <- msg.Candidate

	case protocol.TypeUserVideoToggle:
		h.VideoToggle <- toggleEvent(msg)

	case protocol.TypeUserAudioToggle:
		h.AudioToggle <- toggleEvent(msg)

	case protocol.TypeRoomError:
		h.RoomError <- msg.Error

	case protocol.TypeCreateRoom, protocol.TypeJoinRoom,
		protocol.TypeToggleVideo, protocol.TypeToggleAudio:
		// Client-to-server kinds never arrive inbound.
		slog.Debug("dropping client-only envelope", "type", msg.Type)

	default:
		slog.Debug("dropping unknown envelope", "type", msg.Type)
	}
}

func toggleEvent(msg *protocol.Message) *ToggleEvent {
	ev := &ToggleEvent{UserID: msg.UserID}
	if msg.Enabled != nil {
		ev.Enabled = *msg.Enabled
	}
	return ev
}
