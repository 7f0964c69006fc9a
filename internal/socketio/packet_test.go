package socketio

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodePacket(t *testing.T) {
	ack := 7
	tests := []struct {
		name   string
		packet Packet
		want   string
	}{
		{"connect default namespace", Packet{Type: packetConnect, Namespace: "/"}, "40"},
		{"connect with auth", Packet{Type: packetConnect, Namespace: "/tracking", Data: json.RawMessage(`{"token":"t"}`)}, `40/tracking,{"token":"t"}`},
		{"event", Packet{Type: packetEvent, Data: json.RawMessage(`["joinRestaurant","r1"]`)}, `42["joinRestaurant","r1"]`},
		{"event with ack", Packet{Type: packetEvent, AckID: &ack, Data: json.RawMessage(`["x"]`)}, `427["x"]`},
		{"disconnect namespace", Packet{Type: packetDisconnect, Namespace: "/tracking"}, "41/tracking,"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, encodePacket(tt.packet))
		})
	}
}

func TestDecodePacket(t *testing.T) {
	p, err := decodePacket(`42/tracking,["driverLocation",{"orderId":"o1"}]`)
	require.NoError(t, err)
	assert.Equal(t, byte(packetEvent), p.Type)
	assert.Equal(t, "/tracking", p.Namespace)
	assert.Nil(t, p.AckID)
	assert.JSONEq(t, `["driverLocation",{"orderId":"o1"}]`, string(p.Data))

	p, err = decodePacket(`40{"sid":"abc"}`)
	require.NoError(t, err)
	assert.Equal(t, byte(packetConnect), p.Type)
	assert.Equal(t, "/", p.Namespace)
	assert.JSONEq(t, `{"sid":"abc"}`, string(p.Data))

	p, err = decodePacket(`4312["ok"]`)
	require.NoError(t, err)
	require.NotNil(t, p.AckID)
	assert.Equal(t, 12, *p.AckID)

	p, err = decodePacket("41/tracking,")
	require.NoError(t, err)
	assert.Equal(t, byte(packetDisconnect), p.Type)
	assert.Equal(t, "/tracking", p.Namespace)
	assert.Empty(t, p.Data)
}

func TestDecodePacketMalformed(t *testing.T) {
	for _, msg := range []string{"", "4", "2", "49", `42["unterminated"`} {
		_, err := decodePacket(msg)
		assert.ErrorIs(t, err, errMalformedPacket, msg)
	}
}

func TestEventRoundTrip(t *testing.T) {
	p, err := eventPacket("/", "joinOrder", "o1")
	require.NoError(t, err)

	decoded, err := decodePacket(encodePacket(p))
	require.NoError(t, err)

	name, args, err := parseEvent(decoded.Data)
	require.NoError(t, err)
	assert.Equal(t, "joinOrder", name)
	require.Len(t, args, 1)
	assert.JSONEq(t, `"o1"`, string(args[0]))
}

func TestParseEventErrors(t *testing.T) {
	_, _, err := parseEvent(json.RawMessage(`[]`))
	assert.ErrorIs(t, err, errMalformedPacket)

	_, _, err = parseEvent(json.RawMessage(`[1,2]`))
	assert.ErrorIs(t, err, errMalformedPacket)

	_, _, err = parseEvent(json.RawMessage(`{}`))
	assert.ErrorIs(t, err, errMalformedPacket)
}

func TestConnectErrorMessage(t *testing.T) {
	assert.Equal(t, "Authentication error", connectErrorMessage(json.RawMessage(`{"message":"Authentication error"}`)))
	assert.Equal(t, "bad", connectErrorMessage(json.RawMessage(`"bad"`)))
	assert.Equal(t, "connect error", connectErrorMessage(nil))
}
