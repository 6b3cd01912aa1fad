package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
		check   func(*testing.T, *Message)
	}{
		{
			name:    "invalid json",
			data:    `{"type":`,
			wantErr: true,
		},
		{
			name:    "missing type",
			data:    `{"roomName":"x"}`,
			wantErr: true,
		},
		{
			name: "join room",
			data: `{"type":"join-room","roomName":"x","userName":"Bob"}`,
			check: func(t *testing.T, msg *Message) {
				assert.Equal(t, TypeJoinRoom, msg.Type)
				assert.Equal(t, "x", msg.RoomName)
				assert.Equal(t, "Bob", msg.UserName)
			},
		},
		{
			name: "unknown kind still decodes",
			data: `{"type":"hologram"}`,
			check: func(t *testing.T, msg *Message) {
				assert.Equal(t, "hologram", msg.Type)
			},
		},
		{
			name: "toggle keeps explicit false",
			data: `{"type":"toggle-video","enabled":false}`,
			check: func(t *testing.T, msg *Message) {
				require.NotNil(t, msg.Enabled)
				assert.False(t, *msg.Enabled)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Decode([]byte(tt.data))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformed)
				return
			}
			require.NoError(t, err)
			tt.check(t, msg)
		})
	}
}

func TestOpaquePayloadsSurviveRelaying(t *testing.T) {
	// The relay re-encodes envelopes; the SDP/candidate bytes inside
	// must come out exactly as they went in.
	in := `{"type":"ice-candidate","candidate":{"candidate":"candidate:1 1 udp 2130706431 10.0.0.1 54321 typ host","sdpMid":"0","sdpMLineIndex":0}}`

	msg, err := Decode([]byte(in))
	require.NoError(t, err)

	out, err := Encode(msg)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}
