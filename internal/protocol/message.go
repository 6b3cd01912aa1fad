package protocol

import (
	"encoding/json"
	"errors"
)

// Message type constants for all envelopes exchanged between a peer and
// the relay. Client-to-server and server-to-client kinds share one
// namespace because offer/answer/ice-candidate flow in both directions.
const (
	TypeCreateRoom = "create-room"
	TypeJoinRoom   = "join-room"

	TypeRoomCreated = "room-created"
	TypeRoomJoined  = "room-joined"
	TypeUserJoined  = "user-joined"
	TypeUserLeft    = "user-left"
	TypeRoomError   = "room-error"

	TypeOffer        = "offer"
	TypeAnswer       = "answer"
	TypeICECandidate = "ice-candidate"

	TypeToggleVideo     = "toggle-video"
	TypeToggleAudio     = "toggle-audio"
	TypeUserVideoToggle = "user-video-toggle"
	TypeUserAudioToggle = "user-audio-toggle"
)

var ErrMalformed = errors.New("malformed envelope")

// User identifies one room occupant. Connection handles never appear on
// the wire, only the id and display name.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Message is the wire envelope. Type is always present; the remaining
// fields are kind-specific and omitted when empty. Session descriptions
// and ICE candidates are opaque payloads: the relay routes the raw bytes
// untouched and only the peers interpret them.
type Message struct {
	Type     string `json:"type"`
	RoomName string `json:"roomName,omitempty"`
	UserName string `json:"userName,omitempty"`
	Users    []User `json:"users,omitempty"`

	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`

	Enabled *bool  `json:"enabled,omitempty"`
	UserID  string `json:"userId,omitempty"`

	// Error holds the human-readable reason on room-error envelopes.
	Error string `json:"message,omitempty"`
}

// Decode parses raw bytes into an envelope. It fails on invalid JSON or
// a missing type tag; unknown types decode fine and are left to the
// receiver's type switch, so new kinds must be handled deliberately.
func Decode(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, ErrMalformed
	}
	if msg.Type == "" {
		return nil, ErrMalformed
	}
	return &msg, nil
}

// Encode serializes an envelope for the wire.
func Encode(msg *Message) ([]byte, error) {
	return json.Marshal(msg)
}
