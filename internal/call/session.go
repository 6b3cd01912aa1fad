package call

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/A-s-w-i-n/webRtc-videoCall/internal/protocol"
)

// occupantsForCall is the occupancy at which the initiator sends the
// offer: exactly two, matching the room capacity.
const occupantsForCall = 2

// Role is fixed for the lifetime of a room: whoever created the room
// sends the offer, whoever joined answers. Only one side ever initiates,
// so simultaneous-offer glare cannot happen.
type Role int

const (
	RoleNone Role = iota
	RoleInitiator
	RoleResponder
)

func (r Role) String() string {
	switch r {
	case RoleInitiator:
		return "initiator"
	case RoleResponder:
		return "responder"
	default:
		return "none"
	}
}

// State of the negotiation session.
type State int

const (
	StateIdle State = iota
	StateAwaitingMedia
	StateNegotiating
	StateConnected
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateAwaitingMedia:
		return "awaiting-media"
	case StateNegotiating:
		return "negotiating"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	default:
		return "idle"
	}
}

// Presenter receives user-visible call notifications. All methods may be
// called from transport goroutines.
type Presenter interface {
	CallError(message string)
	ConnectionState(state string)
	RemoteTrack(kind string)
}

// NopPresenter discards all notifications.
type NopPresenter struct{}

func (NopPresenter) CallError(string)       {}
func (NopPresenter) ConnectionState(string) {}
func (NopPresenter) RemoteTrack(string)     {}

// Session is the per-call negotiation state machine. It owns the
// description exchange, the candidate buffer, and the initiator or
// responder role. Candidates that arrive before a remote description
// exists are buffered in order, applied exactly once after the
// description is set, and the buffer cleared; candidates arriving later
// apply immediately. Every failure leaves the session in a stable,
// retryable state; only Close (peer departure or local leave) is final.
type Session struct {
	mu    sync.Mutex
	state State
	role  Role

	newTransport TransportFactory
	acquire      AcquireFunc
	send         func(*protocol.Message)
	presenter    Presenter

	transport Transport
	media     MediaSource

	pending      []json.RawMessage
	remoteSet    bool
	pendingOffer bool
}

func NewSession(factory TransportFactory, acquire AcquireFunc, send func(*protocol.Message), presenter Presenter) *Session {
	if presenter == nil {
		presenter = NopPresenter{}
	}
	return &Session{
		newTransport: factory,
		acquire:      acquire,
		send:         send,
		presenter:    presenter,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Role() Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.role
}

// Begin starts a call in the given role by acquiring local media. On
// media failure the session returns to idle and the error is surfaced;
// a later Begin may succeed.
func (s *Session) Begin(role Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return NewError("begin call", ErrSessionClosed)
	}

	s.role = role
	s.state = StateAwaitingMedia

	media, err := s.acquire()
	if err != nil {
		s.state = StateIdle
		slog.Error("media acquisition failed", "error", err)
		s.presenter.CallError("Could not access camera/microphone")
		return WrapError("begin call", ErrMediaUnavailable, err.Error())
	}

	s.media = media
	s.state = StateNegotiating
	slog.Info("call started", "role", role.String())

	if s.pendingOffer {
		s.pendingOffer = false
		return s.sendOfferLocked()
	}
	return nil
}

// HandleUserJoined reacts to a membership update. The initiator sends
// the offer once the room holds exactly two occupants; when local media
// is not ready yet the offer is deferred until Begin completes.
func (s *Session) HandleUserJoined(users []protocol.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed || s.role != RoleInitiator {
		return nil
	}
	if len(users) != occupantsForCall {
		return nil
	}

	if s.media == nil {
		s.pendingOffer = true
		return nil
	}
	return s.sendOfferLocked()
}

// HandleOffer runs the responder path: apply the remote description,
// drain buffered candidates, attach local tracks, and send the answer.
func (s *Session) HandleOffer(desc json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return NewError("answer call", ErrSessionClosed)
	}
	if s.media == nil {
		slog.Warn("offer received before local media is ready")
		return s.failNegotiationLocked("answer call", ErrNegotiationFailed, "Failed to answer call")
	}

	s.closeTransportLocked()

	t, err := s.newTransport()
	if err != nil {
		return s.failNegotiationLocked("answer call", err, "Failed to answer call")
	}
	s.transport = t
	s.wireLocked(t)

	if err := t.SetRemoteDescription(desc); err != nil {
		return s.failNegotiationLocked("answer call", err, "Failed to answer call")
	}
	s.remoteSet = true
	s.flushPendingLocked()

	for _, track := range s.media.Tracks() {
		if err := t.AddLocalTrack(track); err != nil {
			return s.failNegotiationLocked("answer call", err, "Failed to answer call")
		}
	}

	answer, err := t.CreateAnswer()
	if err != nil {
		return s.failNegotiationLocked("answer call", err, "Failed to answer call")
	}

	s.send(&protocol.Message{Type: protocol.TypeAnswer, Answer: answer})
	return nil
}

// HandleAnswer completes the initiator path: apply the answer as the
// remote description and drain buffered candidates.
func (s *Session) HandleAnswer(desc json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.transport == nil {
		slog.Warn("answer received without an active negotiation")
		return nil
	}
	if err := s.transport.SetRemoteDescription(desc); err != nil {
		return s.failNegotiationLocked("apply answer", err, "Failed to complete the call")
	}
	s.remoteSet = true
	s.flushPendingLocked()
	return nil
}

// HandleCandidate applies a remote candidate, or buffers it while no
// remote description is set. Buffered candidates are never reordered.
func (s *Session) HandleCandidate(candidate json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return
	}
	if s.transport == nil || !s.remoteSet {
		s.pending = append(s.pending, candidate)
		return
	}
	if err := s.transport.AddCandidate(candidate); err != nil {
		slog.Warn("failed to add ICE candidate", "error", err)
	}
}

// SetAudioEnabled flips the local audio track and informs the room.
func (s *Session) SetAudioEnabled(enabled bool) {
	s.mu.Lock()
	if s.media != nil {
		s.media.SetAudioEnabled(enabled)
	}
	s.mu.Unlock()
	s.send(&protocol.Message{Type: protocol.TypeToggleAudio, Enabled: &enabled})
}

// SetVideoEnabled flips the local video track and informs the room.
func (s *Session) SetVideoEnabled(enabled bool) {
	s.mu.Lock()
	if s.media != nil {
		s.media.SetVideoEnabled(enabled)
	}
	s.mu.Unlock()
	s.send(&protocol.Message{Type: protocol.TypeToggleVideo, Enabled: &enabled})
}

// Close ends the session: the candidate buffer is discarded, the peer
// connection and local media released, and the role reset. Closing an
// already-closed session is a no-op. Sessions end on peer departure or
// local leave; a fresh Session serves any later call.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return
	}
	s.state = StateClosed
	s.role = RoleNone
	s.closeTransportLocked()
	if s.media != nil {
		s.media.Close()
		s.media = nil
	}
	s.pending = nil
	s.pendingOffer = false
	slog.Info("call session closed")
}

func (s *Session) sendOfferLocked() error {
	s.closeTransportLocked()

	t, err := s.newTransport()
	if err != nil {
		return s.failNegotiationLocked("create call offer", err, "Failed to create call offer")
	}
	s.transport = t
	s.wireLocked(t)

	for _, track := range s.media.Tracks() {
		if err := t.AddLocalTrack(track); err != nil {
			return s.failNegotiationLocked("create call offer", err, "Failed to create call offer")
		}
	}

	offer, err := t.CreateOffer()
	if err != nil {
		return s.failNegotiationLocked("create call offer", err, "Failed to create call offer")
	}

	s.send(&protocol.Message{Type: protocol.TypeOffer, Offer: offer})
	return nil
}

func (s *Session) wireLocked(t Transport) {
	t.OnLocalCandidate(func(candidate json.RawMessage) {
		s.send(&protocol.Message{Type: protocol.TypeICECandidate, Candidate: candidate})
	})
	t.OnRemoteTrack(s.presenter.RemoteTrack)
	t.OnStateChange(func(state string) {
		s.presenter.ConnectionState(state)
		if state == "connected" {
			s.markConnected()
		}
	})
}

// markConnected records the transport reporting an established
// connection. Purely observational; negotiation never blocks on it.
func (s *Session) markConnected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateNegotiating {
		s.state = StateConnected
	}
}

// flushPendingLocked applies buffered candidates in arrival order,
// exactly once. A candidate the transport rejects is logged and skipped,
// never aborting the drain.
func (s *Session) flushPendingLocked() {
	if len(s.pending) > 0 {
		slog.Debug("applying buffered candidates", "count", len(s.pending))
	}
	for _, candidate := range s.pending {
		if err := s.transport.AddCandidate(candidate); err != nil {
			slog.Warn("failed to add buffered candidate", "error", err)
		}
	}
	s.pending = nil
}

// failNegotiationLocked aborts the current attempt only: the transport
// is released and the session returns to a stable negotiating state so
// a later attempt (e.g. the peer rejoining) may succeed.
func (s *Session) failNegotiationLocked(op string, err error, message string) error {
	s.closeTransportLocked()
	if s.state != StateClosed {
		s.state = StateNegotiating
	}
	slog.Error("negotiation attempt failed", "op", op, "error", err)
	s.presenter.CallError(message)
	return NewError(op, err)
}

func (s *Session) closeTransportLocked() {
	if s.transport != nil {
		s.transport.Close()
		s.transport = nil
	}
	s.remoteSet = false
}
