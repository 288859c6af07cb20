package transport_test

import (
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/shinydb/shinydb-go/internal/errors"
	"github.com/shinydb/shinydb-go/transport"
	"github.com/shinydb/shinydb-go/wire"
	"github.com/stretchr/testify/require"
)

// fakeServer accepts a single connection and hands it to handler, which
// scripts whatever replies the test needs, so transport logic can be
// exercised without a real ShinyDB server.
func fakeServer(t *testing.T, handler func(conn net.Conn)) (host string, port uint16, stop func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		handler(conn)
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return "127.0.0.1", uint16(addr.Port), func() { ln.Close() }
}

func readFrame(t *testing.T, conn net.Conn) []byte {
	t.Helper()
	var lenBuf [4]byte
	_, err := readFullT(conn, lenBuf[:])
	require.NoError(t, err)
	n := binary.LittleEndian.Uint32(lenBuf[:])
	body := make([]byte, n)
	_, err = readFullT(conn, body)
	require.NoError(t, err)
	return body
}

func readFullT(conn net.Conn, buf []byte) (int, error) {
	read := 0
	for read < len(buf) {
		n, err := conn.Read(buf[read:])
		read += n
		if err != nil {
			return read, err
		}
	}
	return read, nil
}

func TestTransport_ConnectSendReceive(t *testing.T) {
	host, port, stop := fakeServer(t, func(conn net.Conn) {
		body := readFrame(t, conn)
		req, err := wire.DecodePacket(body)
		require.NoError(t, err)
		require.Equal(t, wire.OpQuery, req.Op.Kind)

		reply := &wire.Packet{
			PacketID:      req.PacketID,
			SessionID:     req.SessionID,
			CorrelationID: req.CorrelationID,
			Op: wire.Operation{
				Kind:  wire.OpReply,
				Reply: wire.Reply{Status: wire.StatusOK, Payload: []byte(`[]`)},
			},
		}
		frame, err := wire.EncodePacket(reply)
		require.NoError(t, err)
		_, err = conn.Write(frame)
		require.NoError(t, err)
	})
	defer stop()

	tr := transport.New()
	require.NoError(t, tr.Connect(host, port))
	defer tr.Disconnect()

	corrID, err := tr.SendAsync(wire.Operation{Kind: wire.OpQuery, Namespace: "a.b", Payload: []byte(`{}`)})
	require.NoError(t, err)
	require.Equal(t, uint64(1), corrID)
	require.Equal(t, 1, tr.PendingLen())

	packet, err := tr.ReceiveAsync()
	require.NoError(t, err)
	require.Equal(t, wire.OpReply, packet.Op.Kind)
	require.True(t, packet.Op.Reply.Status.OK())
	require.Equal(t, 0, tr.PendingLen())
}

func TestTransport_DoOperation(t *testing.T) {
	host, port, stop := fakeServer(t, func(conn net.Conn) {
		body := readFrame(t, conn)
		req, err := wire.DecodePacket(body)
		require.NoError(t, err)

		reply := &wire.Packet{
			CorrelationID: req.CorrelationID,
			Op: wire.Operation{
				Kind:  wire.OpReply,
				Reply: wire.Reply{Status: wire.StatusOK, Payload: []byte(`{"ok":true}`)},
			},
		}
		frame, err := wire.EncodePacket(reply)
		require.NoError(t, err)
		_, err = conn.Write(frame)
		require.NoError(t, err)
	})
	defer stop()

	tr := transport.New(transport.WithTimeouts(transport.FastTimeoutConfig()))
	require.NoError(t, tr.Connect(host, port))
	defer tr.Disconnect()

	packet, err := tr.DoOperation(wire.Operation{Kind: wire.OpRead, Namespace: "a.b", ID: wire.NewDocID()})
	require.NoError(t, err)
	require.True(t, packet.Op.Reply.Status.OK())
}

func TestTransport_SendAsyncWithoutConnect(t *testing.T) {
	tr := transport.New()
	_, err := tr.SendAsync(wire.Operation{Kind: wire.OpFlush})
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrConnectionFailed))
}

func TestTransport_ReceiveAsyncWithoutPending(t *testing.T) {
	host, port, stop := fakeServer(t, func(conn net.Conn) {
		time.Sleep(50 * time.Millisecond)
	})
	defer stop()

	tr := transport.New()
	require.NoError(t, tr.Connect(host, port))
	defer tr.Disconnect()

	_, err := tr.ReceiveAsync()
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrInvalidResponse))
}

func TestTransport_ConnectRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().(*net.TCPAddr)
	ln.Close()

	tr := transport.New()
	err = tr.Connect("127.0.0.1", uint16(addr.Port))
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrConnectionFailed))
}
