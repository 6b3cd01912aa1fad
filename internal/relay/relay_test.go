package relay

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/A-s-w-i-n/webRtc-videoCall/internal/protocol"
)

type mockPeer struct {
	id      string
	mu      sync.Mutex
	sent    []*protocol.Message
	sendErr error
}

func (m *mockPeer) ID() string { return m.id }

func (m *mockPeer) Send(msg *protocol.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *mockPeer) received() []*protocol.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent
}

func (m *mockPeer) last() *protocol.Message {
	msgs := m.received()
	if len(msgs) == 0 {
		return nil
	}
	return msgs[len(msgs)-1]
}

func encode(t *testing.T, msg *protocol.Message) []byte {
	t.Helper()
	data, err := protocol.Encode(msg)
	require.NoError(t, err)
	return data
}

func newTestRelay() *Relay {
	return New(NewRegistry())
}

func join(t *testing.T, r *Relay, p *mockPeer, msgType, room, name string) {
	t.Helper()
	r.Register(p)
	r.HandleMessage(p, encode(t, &protocol.Message{
		Type:     msgType,
		RoomName: room,
		UserName: name,
	}))
}

func TestRelay_HappyPath(t *testing.T) {
	r := newTestRelay()
	a := &mockPeer{id: "a"}
	b := &mockPeer{id: "b"}

	join(t, r, a, protocol.TypeCreateRoom, "x", "Alice")

	require.Len(t, a.received(), 1)
	assert.Equal(t, protocol.TypeRoomCreated, a.last().Type)
	assert.Equal(t, "x", a.last().RoomName)

	join(t, r, b, protocol.TypeJoinRoom, "x", "Bob")

	require.Len(t, b.received(), 1)
	joined := b.last()
	assert.Equal(t, protocol.TypeRoomJoined, joined.Type)
	assert.Equal(t, "x", joined.RoomName)
	assert.Equal(t, []protocol.User{{ID: "a", Name: "Alice"}, {ID: "b", Name: "Bob"}}, joined.Users)

	require.Len(t, a.received(), 2)
	userJoined := a.last()
	assert.Equal(t, protocol.TypeUserJoined, userJoined.Type)
	assert.Equal(t, []protocol.User{{ID: "a", Name: "Alice"}, {ID: "b", Name: "Bob"}}, userJoined.Users)
}

func TestRelay_RoomFull(t *testing.T) {
	r := newTestRelay()
	a := &mockPeer{id: "a"}
	b := &mockPeer{id: "b"}
	c := &mockPeer{id: "c"}

	join(t, r, a, protocol.TypeCreateRoom, "x", "Alice")
	join(t, r, b, protocol.TypeJoinRoom, "x", "Bob")
	aBefore, bBefore := len(a.received()), len(b.received())

	join(t, r, c, protocol.TypeJoinRoom, "x", "Carl")

	require.Len(t, c.received(), 1)
	assert.Equal(t, protocol.TypeRoomError, c.last().Type)
	assert.Equal(t, "Room is full", c.last().Error)

	// The existing occupants receive nothing.
	assert.Len(t, a.received(), aBefore)
	assert.Len(t, b.received(), bBefore)
}

func TestRelay_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		msg  *protocol.Message
	}{
		{"missing user name", &protocol.Message{Type: protocol.TypeCreateRoom, RoomName: "x"}},
		{"missing room name", &protocol.Message{Type: protocol.TypeJoinRoom, UserName: "Alice"}},
		{"missing both", &protocol.Message{Type: protocol.TypeCreateRoom}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRelay()
			p := &mockPeer{id: "a"}
			r.Register(p)

			r.HandleMessage(p, encode(t, tt.msg))

			require.Len(t, p.received(), 1)
			assert.Equal(t, protocol.TypeRoomError, p.last().Type)
			assert.Equal(t, "Missing roomName or userName", p.last().Error)

			rooms, _ := r.Stats()
			assert.Equal(t, 0, rooms)
		})
	}
}

func TestRelay_ForwardsSignalsVerbatim(t *testing.T) {
	r := newTestRelay()
	a := &mockPeer{id: "a"}
	b := &mockPeer{id: "b"}
	join(t, r, a, protocol.TypeCreateRoom, "x", "Alice")
	join(t, r, b, protocol.TypeJoinRoom, "x", "Bob")

	offer := []byte(`{"type":"offer","sdp":"v=0 fake"}`)
	r.HandleMessage(a, encode(t, &protocol.Message{Type: protocol.TypeOffer, Offer: offer}))

	got := b.last()
	require.Equal(t, protocol.TypeOffer, got.Type)
	assert.JSONEq(t, string(offer), string(got.Offer))

	answer := []byte(`{"type":"answer","sdp":"v=0 fake"}`)
	r.HandleMessage(b, encode(t, &protocol.Message{Type: protocol.TypeAnswer, Answer: answer}))

	got = a.last()
	require.Equal(t, protocol.TypeAnswer, got.Type)
	assert.JSONEq(t, string(answer), string(got.Answer))

	candidate := []byte(`{"candidate":"candidate:1 1 udp 2130706431 10.0.0.1 54321 typ host"}`)
	aBefore := len(a.received())
	r.HandleMessage(a, encode(t, &protocol.Message{Type: protocol.TypeICECandidate, Candidate: candidate}))

	got = b.last()
	require.Equal(t, protocol.TypeICECandidate, got.Type)
	assert.JSONEq(t, string(candidate), string(got.Candidate))
	// Never echoed back to the sender.
	assert.Len(t, a.received(), aBefore)
}

func TestRelay_SignalFromPeerOutsideRoomDropped(t *testing.T) {
	r := newTestRelay()
	a := &mockPeer{id: "a"}
	b := &mockPeer{id: "b"}
	join(t, r, a, protocol.TypeCreateRoom, "x", "Alice")
	r.Register(b)

	before := len(a.received())
	r.HandleMessage(b, encode(t, &protocol.Message{
		Type:  protocol.TypeOffer,
		Offer: []byte(`{"type":"offer","sdp":"x"}`),
	}))

	assert.Len(t, a.received(), before)
	assert.Empty(t, b.received())
}

func TestRelay_TogglesTaggedWithSender(t *testing.T) {
	r := newTestRelay()
	a := &mockPeer{id: "a"}
	b := &mockPeer{id: "b"}
	join(t, r, a, protocol.TypeCreateRoom, "x", "Alice")
	join(t, r, b, protocol.TypeJoinRoom, "x", "Bob")

	enabled := false
	r.HandleMessage(a, encode(t, &protocol.Message{Type: protocol.TypeToggleVideo, Enabled: &enabled}))

	got := b.last()
	require.Equal(t, protocol.TypeUserVideoToggle, got.Type)
	assert.Equal(t, "a", got.UserID)
	require.NotNil(t, got.Enabled)
	assert.False(t, *got.Enabled)

	enabled = true
	r.HandleMessage(b, encode(t, &protocol.Message{Type: protocol.TypeToggleAudio, Enabled: &enabled}))

	got = a.last()
	require.Equal(t, protocol.TypeUserAudioToggle, got.Type)
	assert.Equal(t, "b", got.UserID)
	require.NotNil(t, got.Enabled)
	assert.True(t, *got.Enabled)
}

func TestRelay_DropsMalformedAndUnknown(t *testing.T) {
	r := newTestRelay()
	a := &mockPeer{id: "a"}
	b := &mockPeer{id: "b"}
	join(t, r, a, protocol.TypeCreateRoom, "x", "Alice")
	join(t, r, b, protocol.TypeJoinRoom, "x", "Bob")
	aBefore, bBefore := len(a.received()), len(b.received())

	r.HandleMessage(a, []byte(`not json at all`))
	r.HandleMessage(a, []byte(`{"no":"type"}`))
	r.HandleMessage(a, encode(t, &protocol.Message{Type: "shutdown-everything"}))
	// Server-to-client kinds are not valid inbound either.
	r.HandleMessage(a, encode(t, &protocol.Message{Type: protocol.TypeUserLeft}))

	assert.Len(t, a.received(), aBefore)
	assert.Len(t, b.received(), bBefore)
}

func TestRelay_DisconnectCleanup(t *testing.T) {
	r := newTestRelay()
	a := &mockPeer{id: "a"}
	b := &mockPeer{id: "b"}
	join(t, r, a, protocol.TypeCreateRoom, "x", "Alice")
	join(t, r, b, protocol.TypeJoinRoom, "x", "Bob")

	r.HandleDisconnect(a)

	got := b.last()
	require.Equal(t, protocol.TypeUserLeft, got.Type)
	assert.Equal(t, []protocol.User{{ID: "b", Name: "Bob"}}, got.Users)

	// Leaving twice produces no additional broadcasts.
	bBefore := len(b.received())
	r.HandleDisconnect(a)
	assert.Len(t, b.received(), bBefore)

	// Last occupant out deletes the room; a new join gets a fresh one.
	r.HandleDisconnect(b)
	rooms, _ := r.Stats()
	assert.Equal(t, 0, rooms)

	c := &mockPeer{id: "c"}
	join(t, r, c, protocol.TypeJoinRoom, "x", "Carl")
	require.Equal(t, protocol.TypeRoomJoined, c.last().Type)
	assert.Equal(t, []protocol.User{{ID: "c", Name: "Carl"}}, c.last().Users)
}

func TestRelay_DeadRecipientDoesNotBlockSender(t *testing.T) {
	r := newTestRelay()
	a := &mockPeer{id: "a"}
	b := &mockPeer{id: "b", sendErr: errors.New("send buffer full")}
	join(t, r, a, protocol.TypeCreateRoom, "x", "Alice")
	join(t, r, b, protocol.TypeJoinRoom, "x", "Bob")

	// Fan-out to the dead peer is a no-op, not a failure.
	r.HandleMessage(a, encode(t, &protocol.Message{
		Type:  protocol.TypeOffer,
		Offer: []byte(`{"type":"offer","sdp":"x"}`),
	}))

	_, ok := r.registry.RoomOf("a")
	assert.True(t, ok, "sender membership unaffected")
}
