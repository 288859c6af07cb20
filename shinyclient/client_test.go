package shinyclient_test

import (
	"encoding/binary"
	"net"
	"path/filepath"
	"testing"

	"github.com/shinydb/shinydb-go/shinyclient"
	"github.com/shinydb/shinydb-go/wire"
	"github.com/stretchr/testify/require"
)

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

func replyOK(t *testing.T, conn net.Conn, req *wire.Packet, payload []byte) {
	t.Helper()
	reply := &wire.Packet{
		CorrelationID: req.CorrelationID,
		Op:            wire.Operation{Kind: wire.OpReply, Reply: wire.Reply{Status: wire.StatusOK, Payload: payload}},
	}
	frame, err := wire.EncodePacket(reply)
	require.NoError(t, err)
	_, err = conn.Write(frame)
	require.NoError(t, err)
}

func TestClient_ConnectFlushDisconnect(t *testing.T) {
	host, port, stop := fakeServer(t, func(conn net.Conn) {
		body := readFrame(t, conn)
		req, err := wire.DecodePacket(body)
		require.NoError(t, err)
		require.Equal(t, wire.OpFlush, req.Op.Kind)
		replyOK(t, conn, req, nil)
	})
	defer stop()

	c := shinyclient.New()
	require.NoError(t, c.Connect(host, port))
	defer c.Disconnect()
	require.True(t, c.IsConnected())

	require.NoError(t, c.Flush())
}

func TestClient_Ping(t *testing.T) {
	host, port, stop := fakeServer(t, func(conn net.Conn) {
		body := readFrame(t, conn)
		req, err := wire.DecodePacket(body)
		require.NoError(t, err)
		require.Equal(t, wire.OpFlush, req.Op.Kind)
		replyOK(t, conn, req, nil)
	})
	defer stop()

	c := shinyclient.New()
	require.NoError(t, c.Connect(host, port))
	defer c.Disconnect()
	require.NoError(t, c.Ping())
}

func TestClient_Authenticate(t *testing.T) {
	host, port, stop := fakeServer(t, func(conn net.Conn) {
		body := readFrame(t, conn)
		req, err := wire.DecodePacket(body)
		require.NoError(t, err)
		require.Equal(t, wire.OpAuthenticate, req.Op.Kind)
		require.Equal(t, "alice", req.Op.Username)
		replyOK(t, conn, req, []byte(`{"session_id":"s1","username":"alice","role":"admin"}`))
	})
	defer stop()

	c := shinyclient.New()
	require.NoError(t, c.Connect(host, port))
	defer c.Disconnect()

	result, err := c.Authenticate("alice", "hunter2")
	require.NoError(t, err)
	require.Equal(t, "s1", result.SessionID)
	require.Equal(t, "admin", result.Role)
}

func TestClient_CreateDropList(t *testing.T) {
	host, port, stop := fakeServer(t, func(conn net.Conn) {
		// create
		body := readFrame(t, conn)
		req, err := wire.DecodePacket(body)
		require.NoError(t, err)
		require.Equal(t, wire.OpCreate, req.Op.Kind)
		require.Equal(t, "index", req.Op.EntityKind)
		require.Equal(t, "products", req.Op.EntityName)
		replyOK(t, conn, req, nil)

		// drop
		body = readFrame(t, conn)
		req, err = wire.DecodePacket(body)
		require.NoError(t, err)
		require.Equal(t, wire.OpDrop, req.Op.Kind)
		replyOK(t, conn, req, nil)

		// list
		body = readFrame(t, conn)
		req, err = wire.DecodePacket(body)
		require.NoError(t, err)
		require.Equal(t, wire.OpList, req.Op.Kind)
		replyOK(t, conn, req, []byte(`[{"kind":"index","name":"products","namespace":"adventureworks"}]`))
	})
	defer stop()

	c := shinyclient.New()
	require.NoError(t, c.Connect(host, port))
	defer c.Disconnect()

	require.NoError(t, c.Create(shinyclient.Entity{Kind: "index", Name: "products"}))
	require.NoError(t, c.Drop("index", "products"))

	items, err := c.List("index", "adventureworks")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "products", items[0].Name)
}

func TestClient_RunQuery(t *testing.T) {
	host, port, stop := fakeServer(t, func(conn net.Conn) {
		body := readFrame(t, conn)
		req, err := wire.DecodePacket(body)
		require.NoError(t, err)
		require.Equal(t, wire.OpQuery, req.Op.Kind)
		require.Equal(t, "sales.orders", req.Op.Namespace)
		require.Contains(t, string(req.Op.Payload), `"status":{"$eq":"active"}`)
		replyOK(t, conn, req, []byte(`[]`))
	})
	defer stop()

	c := shinyclient.New()
	require.NoError(t, c.Connect(host, port))
	defer c.Disconnect()

	resp, err := c.RunQuery(`sales.orders.filter(status = "active").limit(10)`)
	require.NoError(t, err)
	require.True(t, resp.Success)
}

func TestClient_NewWithLogFile(t *testing.T) {
	host, port, stop := fakeServer(t, func(conn net.Conn) {
		body := readFrame(t, conn)
		req, err := wire.DecodePacket(body)
		require.NoError(t, err)
		require.Equal(t, wire.OpFlush, req.Op.Kind)
		replyOK(t, conn, req, nil)
	})
	defer stop()

	logPath := filepath.Join(t.TempDir(), "shinyclient.log")
	c, err := shinyclient.NewWithLogFile(logPath)
	require.NoError(t, err)

	require.NoError(t, c.Connect(host, port))
	defer c.Disconnect()
	require.NoError(t, c.Flush())
}

func TestClient_QueryBuilder(t *testing.T) {
	host, port, stop := fakeServer(t, func(conn net.Conn) {
		body := readFrame(t, conn)
		req, err := wire.DecodePacket(body)
		require.NoError(t, err)
		require.Equal(t, wire.OpInsert, req.Op.Kind)
		replyOK(t, conn, req, nil)
	})
	defer stop()

	c := shinyclient.New()
	require.NoError(t, c.Connect(host, port))
	defer c.Disconnect()

	resp, err := c.Query().Space("orders").Create([]byte(`{"id":1}`)).Run()
	require.NoError(t, err)
	require.True(t, resp.Success)
}
