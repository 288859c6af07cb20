package wire_test

import (
	"encoding/binary"
	"testing"

	"github.com/shinydb/shinydb-go/internal/errors"
	"github.com/shinydb/shinydb-go/wire"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodePacket_Query(t *testing.T) {
	id := wire.NewDocID()
	p := &wire.Packet{
		PacketID:      1,
		SessionID:     42,
		CorrelationID: 7,
		TimestampMS:   1234567890,
		Op: wire.Operation{
			Kind:      wire.OpQuery,
			Namespace: "adventureworks.products",
			Payload:   []byte(`{"filter":{}}`),
		},
	}
	_ = id

	frame, err := wire.EncodePacket(p)
	require.NoError(t, err)

	frameLen := binary.LittleEndian.Uint32(frame[:4])
	require.EqualValues(t, len(frame)-4, frameLen)

	decoded, err := wire.DecodePacket(frame[4:])
	require.NoError(t, err)
	require.Equal(t, p.PacketID, decoded.PacketID)
	require.Equal(t, p.SessionID, decoded.SessionID)
	require.Equal(t, p.CorrelationID, decoded.CorrelationID)
	require.Equal(t, p.TimestampMS, decoded.TimestampMS)
	require.Equal(t, wire.OpQuery, decoded.Op.Kind)
	require.Equal(t, p.Op.Namespace, decoded.Op.Namespace)
	require.Equal(t, p.Op.Payload, decoded.Op.Payload)
}

func TestEncodeDecodePacket_Reply(t *testing.T) {
	p := &wire.Packet{
		PacketID:      2,
		SessionID:     1,
		CorrelationID: 3,
		TimestampMS:   42,
		Op: wire.Operation{
			Kind: wire.OpReply,
			Reply: wire.Reply{
				Status:  wire.StatusOK,
				Payload: []byte(`{"count":5}`),
			},
		},
	}

	frame, err := wire.EncodePacket(p)
	require.NoError(t, err)

	decoded, err := wire.DecodePacket(frame[4:])
	require.NoError(t, err)
	require.Equal(t, wire.OpReply, decoded.Op.Kind)
	require.True(t, decoded.Op.Reply.Status.OK())
	require.Equal(t, p.Op.Reply.Payload, decoded.Op.Reply.Payload)
}

func TestEncodeDecodePacket_ScanWithStartKey(t *testing.T) {
	start := wire.NewDocID()
	p := &wire.Packet{
		Op: wire.Operation{
			Kind:         wire.OpScan,
			Namespace:    "space.store",
			ScanCount:    100,
			ScanStartKey: &start,
		},
	}
	frame, err := wire.EncodePacket(p)
	require.NoError(t, err)
	decoded, err := wire.DecodePacket(frame[4:])
	require.NoError(t, err)
	require.Equal(t, uint32(100), decoded.Op.ScanCount)
	require.NotNil(t, decoded.Op.ScanStartKey)
	require.Equal(t, start, *decoded.Op.ScanStartKey)
}

func TestEncodeDecodePacket_ScanWithoutStartKey(t *testing.T) {
	p := &wire.Packet{
		Op: wire.Operation{Kind: wire.OpScan, Namespace: "space.store", ScanCount: 10},
	}
	frame, err := wire.EncodePacket(p)
	require.NoError(t, err)
	decoded, err := wire.DecodePacket(frame[4:])
	require.NoError(t, err)
	require.Nil(t, decoded.Op.ScanStartKey)
}

func TestDecodePacket_UnknownVariant(t *testing.T) {
	p := &wire.Packet{Op: wire.Operation{Kind: wire.OpFlush}}
	frame, err := wire.EncodePacket(p)
	require.NoError(t, err)

	body := frame[4:]
	// the operation tag byte immediately follows the 32-byte fixed
	// header (checksum, length, packet id, session id, correlation id,
	// timestamp = 4+4+4+4+8+8).
	tagOffset := 4 + 4 + 4 + 4 + 8 + 8
	body[tagOffset] = 0xFF

	_, err = wire.DecodePacket(body)
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrInvalidResponse))
}

func TestDecodePacket_Truncated(t *testing.T) {
	p := &wire.Packet{Op: wire.Operation{Kind: wire.OpQuery, Namespace: "x", Payload: []byte("y")}}
	frame, err := wire.EncodePacket(p)
	require.NoError(t, err)

	body := frame[4:]
	_, err = wire.DecodePacket(body[:len(body)-3])
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrInvalidResponse))
}

func TestDecodePacket_DeclaredLengthExceedsCap(t *testing.T) {
	p := &wire.Packet{Op: wire.Operation{Kind: wire.OpFlush}}
	frame, err := wire.EncodePacket(p)
	require.NoError(t, err)

	body := frame[4:]
	binary.LittleEndian.PutUint32(body[4:8], wire.MaxPayloadLength+1)

	_, err = wire.DecodePacket(body)
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrInvalidResponse))
}
