package relay

import (
	"log/slog"
	"sync"

	"github.com/A-s-w-i-n/webRtc-videoCall/internal/protocol"
)

// Peer is one signaling connection as the relay sees it. Send must not
// block: a slow or dead recipient drops frames instead of stalling the
// sender's read loop or other rooms.
type Peer interface {
	ID() string
	Send(msg *protocol.Message) error
}

// Relay is the store-and-forward core of the signaling server. Each
// inbound frame is handled on its connection's read goroutine; the
// Registry serializes membership mutations, and the peers map has its
// own lock, so rooms never contend with each other.
type Relay struct {
	registry *Registry

	mu    sync.RWMutex
	peers map[string]Peer
}

func New(registry *Registry) *Relay {
	return &Relay{
		registry: registry,
		peers:    make(map[string]Peer),
	}
}

// Register makes a connected peer addressable for room fan-out. Peers
// register on transport accept, before they occupy any room.
func (r *Relay) Register(p Peer) {
	r.mu.Lock()
	r.peers[p.ID()] = p
	r.mu.Unlock()
	slog.Debug("peer registered", "clientId", p.ID())
}

// HandleMessage processes one raw inbound frame from a peer. Frames that
// do not decode as envelopes and envelopes of unrecognized kind are
// dropped silently per the protocol contract.
func (r *Relay) HandleMessage(p Peer, data []byte) {
	msg, err := protocol.Decode(data)
	if err != nil {
		slog.Debug("dropping undecodable frame", "clientId", p.ID(), "error", err)
		return
	}

	switch msg.Type {
	case protocol.TypeCreateRoom:
		r.handleJoin(p, msg, true)
	case protocol.TypeJoinRoom:
		r.handleJoin(p, msg, false)

	case protocol.TypeOffer, protocol.TypeAnswer, protocol.TypeICECandidate:
		r.handleSignal(p, msg)

	case protocol.TypeToggleVideo:
		r.handleToggle(p, msg, protocol.TypeUserVideoToggle)
	case protocol.TypeToggleAudio:
		r.handleToggle(p, msg, protocol.TypeUserAudioToggle)

	case protocol.TypeRoomCreated, protocol.TypeRoomJoined, protocol.TypeUserJoined,
		protocol.TypeUserLeft, protocol.TypeRoomError,
		protocol.TypeUserVideoToggle, protocol.TypeUserAudioToggle:
		// Server-to-client kinds are never valid inbound.
		slog.Debug("dropping inbound server-only envelope", "clientId", p.ID(), "type", msg.Type)

	default:
		slog.Debug("dropping unknown envelope", "clientId", p.ID(), "type", msg.Type)
	}
}

// HandleDisconnect cleans up after a peer's transport closed. The
// remaining occupant, if any, receives exactly one user-left carrying
// the post-removal occupant list. Safe to call for peers that never
// joined a room, and after a prior disconnect of the same peer.
func (r *Relay) HandleDisconnect(p Peer) {
	r.mu.Lock()
	delete(r.peers, p.ID())
	r.mu.Unlock()

	roomName, remaining, ok := r.registry.Remove(p.ID())
	if !ok {
		return
	}
	slog.Info("peer left room", "clientId", p.ID(), "room", roomName, "remaining", len(remaining))
	if len(remaining) > 0 {
		r.broadcast(roomName, p.ID(), &protocol.Message{
			Type:  protocol.TypeUserLeft,
			Users: remaining,
		})
	}
}

// Stats reports room and occupant counts for introspection endpoints.
func (r *Relay) Stats() (rooms, occupants int) {
	return r.registry.Stats()
}

func (r *Relay) handleJoin(p Peer, msg *protocol.Message, create bool) {
	if msg.RoomName == "" || msg.UserName == "" {
		r.reply(p, &protocol.Message{
			Type:  protocol.TypeRoomError,
			Error: "Missing roomName or userName",
		})
		return
	}

	users, err := r.registry.Admit(msg.RoomName, p.ID(), msg.UserName)
	if err != nil {
		slog.Info("room admission rejected", "clientId", p.ID(), "room", msg.RoomName, "error", err)
		r.reply(p, &protocol.Message{
			Type:  protocol.TypeRoomError,
			Error: "Room is full",
		})
		return
	}

	slog.Info("peer admitted", "clientId", p.ID(), "room", msg.RoomName, "occupants", len(users))

	if create {
		r.reply(p, &protocol.Message{
			Type:     protocol.TypeRoomCreated,
			RoomName: msg.RoomName,
		})
	} else {
		r.reply(p, &protocol.Message{
			Type:     protocol.TypeRoomJoined,
			RoomName: msg.RoomName,
			Users:    users,
		})
	}

	r.broadcast(msg.RoomName, p.ID(), &protocol.Message{
		Type:  protocol.TypeUserJoined,
		Users: users,
	})
}

// handleSignal forwards offer/answer/ice-candidate envelopes verbatim to
// the other occupant. The payload bytes are never inspected.
func (r *Relay) handleSignal(p Peer, msg *protocol.Message) {
	roomName, ok := r.registry.RoomOf(p.ID())
	if !ok {
		slog.Debug("dropping signal from peer outside any room", "clientId", p.ID(), "type", msg.Type)
		return
	}
	r.broadcast(roomName, p.ID(), &protocol.Message{
		Type:      msg.Type,
		Offer:     msg.Offer,
		Answer:    msg.Answer,
		Candidate: msg.Candidate,
	})
}

func (r *Relay) handleToggle(p Peer, msg *protocol.Message, outType string) {
	roomName, ok := r.registry.RoomOf(p.ID())
	if !ok {
		return
	}
	r.broadcast(roomName, p.ID(), &protocol.Message{
		Type:    outType,
		UserID:  p.ID(),
		Enabled: msg.Enabled,
	})
}

// reply sends to the originating peer only. Errors mean the peer's send
// buffer is gone or full; its read loop will notice the dead transport.
func (r *Relay) reply(p Peer, msg *protocol.Message) {
	if err := p.Send(msg); err != nil {
		slog.Warn("reply dropped", "clientId", p.ID(), "type", msg.Type, "error", err)
	}
}

// broadcast fans an envelope out to every other occupant of a room,
// fire-and-forget per recipient.
func (r *Relay) broadcast(roomName, exceptID string, msg *protocol.Message) {
	users := r.registry.Occupants(roomName)

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range users {
		if u.ID == exceptID {
			continue
		}
		p, ok := r.peers[u.ID]
		if !ok {
			continue
		}
		if err := p.Send(msg); err != nil {
			slog.Warn("broadcast dropped", "clientId", u.ID, "room", roomName, "type", msg.Type, "error", err)
		}
	}
}
