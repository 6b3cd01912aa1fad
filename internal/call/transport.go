package call

import (
	"encoding/json"

	"github.com/pion/webrtc/v4"
)

// Transport is the point-to-point media connection collaborator. The
// session drives it with opaque JSON payloads taken straight off the
// signaling wire; only the implementation interprets them. Hooks fire on
// the transport's own goroutines and must be wired before negotiation
// starts.
type Transport interface {
	AddLocalTrack(track webrtc.TrackLocal) error
	CreateOffer() (json.RawMessage, error)
	CreateAnswer() (json.RawMessage, error)
	SetRemoteDescription(desc json.RawMessage) error
	AddCandidate(candidate json.RawMessage) error

	OnLocalCandidate(fn func(candidate json.RawMessage))
	OnRemoteTrack(fn func(kind string))
	OnStateChange(fn func(state string))

	Close() error
}

// TransportFactory produces a fresh Transport per negotiation attempt.
// A new attempt always closes the previous transport outright.
type TransportFactory func() (Transport, error)

// NewPionFactory returns a factory backed by pion/webrtc peer
// connections configured with the given STUN servers.
func NewPionFactory(stunServers []string) TransportFactory {
	return func() (Transport, error) {
		pc, err := webrtc.NewPeerConnection(webrtc.Configuration{
			ICEServers: []webrtc.ICEServer{{URLs: stunServers}},
		})
		if err != nil {
			return nil, NewError("create peer connection", err)
		}
		return &pionTransport{pc: pc}, nil
	}
}

type pionTransport struct {
	pc *webrtc.PeerConnection
}

func (t *pionTransport) AddLocalTrack(track webrtc.TrackLocal) error {
	if _, err := t.pc.AddTrack(track); err != nil {
		return NewError("add local track", err)
	}
	return nil
}

func (t *pionTransport) CreateOffer() (json.RawMessage, error) {
	offer, err := t.pc.CreateOffer(nil)
	if err != nil {
		return nil, NewError("create offer", err)
	}
	if err = t.pc.SetLocalDescription(offer); err != nil {
		return nil, NewError("set local description", err)
	}
	return json.Marshal(t.pc.LocalDescription())
}

func (t *pionTransport) CreateAnswer() (json.RawMessage, error) {
	answer, err := t.pc.CreateAnswer(nil)
	if err != nil {
		return nil, NewError("create answer", err)
	}
	if err = t.pc.SetLocalDescription(answer); err != nil {
		return nil, NewError("set local description", err)
	}
	return json.Marshal(t.pc.LocalDescription())
}

func (t *pionTransport) SetRemoteDescription(desc json.RawMessage) error {
	var sd webrtc.SessionDescription
	if err := json.Unmarshal(desc, &sd); err != nil {
		return NewError("parse remote description", err)
	}
	if err := t.pc.SetRemoteDescription(sd); err != nil {
		return NewError("set remote description", err)
	}
	return nil
}

func (t *pionTransport) AddCandidate(candidate json.RawMessage) error {
	var init webrtc.ICECandidateInit
	if err := json.Unmarshal(candidate, &init); err != nil {
		return NewError("parse ICE candidate", err)
	}
	if err := t.pc.AddICECandidate(init); err != nil {
		return NewError("add ICE candidate", err)
	}
	return nil
}

func (t *pionTransport) OnLocalCandidate(fn func(json.RawMessage)) {
	t.pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			return
		}
		data, err := json.Marshal(c.ToJSON())
		if err != nil {
			return
		}
		fn(data)
	})
}

func (t *pionTransport) OnRemoteTrack(fn func(kind string)) {
	t.pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		fn(track.Kind().String())
	})
}

func (t *pionTransport) OnStateChange(fn func(string)) {
	t.pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		fn(state.String())
	})
}

func (t *pionTransport) Close() error {
	return t.pc.Close()
}
