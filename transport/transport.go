// Package transport implements the pipelined request/response client
// over TCP described in spec §4.2: length-prefixed framing, a FIFO
// pending-request queue matched positionally (not by correlation id),
// and deadline-driven connect/read/write/operation timeouts.
//
// A Transport is not safe for concurrent use. Per spec §5 it is owned
// by a single thread/goroutine at a time; callers serialize their own
// access to SendAsync/ReceiveAsync/DoOperation on a given connection.
package transport

import (
	"math/rand"
	"net"
	"time"

	shinyerrors "github.com/shinydb/shinydb-go/internal/errors"
	"github.com/shinydb/shinydb-go/logger"
	shinynet "github.com/shinydb/shinydb-go/net"
	"github.com/shinydb/shinydb-go/wire"
	opentracing "github.com/opentracing/opentracing-go"
)

// pendingEntry records one outstanding send awaiting its reply. The
// correlation id is carried for diagnostics only; matching is
// positional, per spec §4.2's ordering guarantee.
type pendingEntry struct {
	CorrelationID uint64
	PacketID      uint32
	Timestamp     time.Time
}

// Transport owns one TCP connection to a ShinyDB server.
type Transport struct {
	conn     net.Conn
	endpoint *shinynet.Endpoint

	packetID           uint32
	sessionID          uint32
	correlationCounter uint64
	pending            []pendingEntry

	timeouts TimeoutConfig
	logger   logger.Logger
	tracer   opentracing.Tracer

	// sendBuf and recvBuf are reused across operations per spec §9's
	// "allocate once, reuse" discipline; they may grow but are never
	// shrunk back down between calls.
	sendBuf []byte
	recvBuf []byte
}

// Option configures a Transport at construction time, in the
// functional-options style the teacher uses for client.Client
// (client/client.go's ClientOption).
type Option func(*Transport)

// WithTimeouts overrides the default TimeoutConfig.
func WithTimeouts(tc TimeoutConfig) Option {
	return func(t *Transport) { t.timeouts = tc }
}

// WithLogger overrides the default no-op logger.
func WithLogger(l logger.Logger) Option {
	return func(t *Transport) { t.logger = l }
}

// WithTracer overrides the default no-op opentracing.Tracer. Tracing
// and metrics are out of scope for this spec beyond their hook points
// (spec §1); this is that hook point for the transport layer.
func WithTracer(tr opentracing.Tracer) Option {
	return func(t *Transport) { t.tracer = tr }
}

// New constructs a disconnected Transport.
func New(opts ...Option) *Transport {
	t := &Transport{
		timeouts: DefaultTimeoutConfig(),
		logger:   logger.NopLogger,
		tracer:   opentracing.NoopTracer{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Endpoint returns the last host/port this transport connected (or
// attempted to connect) to, or nil if Connect has never been called.
func (t *Transport) Endpoint() *shinynet.Endpoint {
	return t.endpoint
}

// IsConnected reports whether the transport currently owns a live
// socket.
func (t *Transport) IsConnected() bool {
	return t.conn != nil
}

// Timeouts returns the transport's current timeout configuration.
func (t *Transport) Timeouts() TimeoutConfig {
	return t.timeouts
}

// SetTimeouts replaces the transport's timeout configuration. It takes
// effect on the next Connect/SendAsync/ReceiveAsync/DoOperation call.
func (t *Transport) SetTimeouts(tc TimeoutConfig) {
	t.timeouts = tc
}

// SetLogger replaces the transport's logger.
func (t *Transport) SetLogger(l logger.Logger) {
	t.logger = l
}

// Connect opens a TCP connection to host:port, honoring the connect
// deadline budget, and assigns a fresh random session id.
func (t *Transport) Connect(host string, port uint16) error {
	endpoint, err := shinynet.NewEndpoint(host, port)
	if err != nil {
		return shinyerrors.Wrap(shinyerrors.New(shinyerrors.ErrInvalidRequest, err.Error()), "parsing connect target")
	}
	t.endpoint = endpoint

	dialer := net.Dialer{}
	if t.timeouts.Connect != nil {
		dialer.Timeout = *t.timeouts.Connect
	}

	conn, err := dialer.Dial("tcp", endpoint.HostPort())
	if err != nil {
		return shinyerrors.Wrap(shinyerrors.New(shinyerrors.ErrConnectionFailed, err.Error()), "dialing "+endpoint.HostPort())
	}

	t.conn = conn
	t.sessionID = rand.Uint32()
	t.packetID = 0
	t.correlationCounter = 1
	t.pending = t.pending[:0]
	t.logger.Infof("shinydb: connected to %s (session %d)", endpoint.HostPort(), t.sessionID)
	return nil
}

// Disconnect closes the socket, if any, and clears connection-scoped
// state. It does not clear the reusable send/receive buffers.
func (t *Transport) Disconnect() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	t.pending = t.pending[:0]
	if err != nil {
		return shinyerrors.Wrap(shinyerrors.New(shinyerrors.ErrConnectionReset, err.Error()), "closing connection")
	}
	return nil
}

// Reconnect tears down any existing socket and dials the last known
// endpoint again, per spec §4.6's reconnect contract. It fails
// ConnectionFailed if Connect has never been called.
func (t *Transport) Reconnect() error {
	if t.endpoint == nil {
		return shinyerrors.New(shinyerrors.ErrConnectionFailed, "no prior endpoint to reconnect to")
	}
	if t.conn != nil {
		t.conn.Close()
		t.conn = nil
	}
	t.pending = t.pending[:0]
	return t.Connect(t.endpoint.Host, t.endpoint.Port)
}

// PendingLen reports the number of outstanding sends awaiting a
// reply — spec §8 invariant 9 (sends since connect minus receives
// minus clears).
func (t *Transport) PendingLen() int {
	return len(t.pending)
}

// nowMS returns milliseconds since the Unix epoch, the timestamp unit
// spec §4.1 specifies for the packet header.
func nowMS() uint64 {
	return uint64(time.Now().UnixMilli())
}

// SendAsync serializes op into a framed packet and writes it to the
// socket, returning the correlation id assigned to the send (spec
// §4.2). It does not wait for a reply.
func (t *Transport) SendAsync(op wire.Operation) (uint64, error) {
	if t.conn == nil {
		return 0, shinyerrors.New(shinyerrors.ErrConnectionFailed, "transport has no live socket")
	}

	correlationID := t.correlationCounter
	t.correlationCounter++
	// Pre-incremented: the first packet sent after Connect carries
	// PacketID 1, not 0. Spec.md only says the counter "increments
	// after each send"; this reading reserves 0 as "no packet sent yet".
	t.packetID++

	packet := &wire.Packet{
		PacketID:      t.packetID,
		SessionID:     t.sessionID,
		CorrelationID: correlationID,
		TimestampMS:   nowMS(),
		Op:            op,
	}

	t.sendBuf = t.sendBuf[:0]
	frame, err := wire.EncodePacketInto(t.sendBuf, packet)
	if err != nil {
		return 0, shinyerrors.Wrap(shinyerrors.New(shinyerrors.ErrInvalidRequest, err.Error()), "encoding packet")
	}
	t.sendBuf = frame

	if t.timeouts.Write != nil {
		deadline := time.Now().Add(*t.timeouts.Write)
		if err := t.conn.SetWriteDeadline(deadline); err != nil {
			return 0, shinyerrors.Wrap(shinyerrors.New(shinyerrors.ErrConnectionReset, err.Error()), "setting write deadline")
		}
	}

	if _, err := t.conn.Write(frame); err != nil {
		if isTimeoutErr(err) {
			return 0, shinyerrors.New(shinyerrors.ErrWriteTimeout, "write deadline exceeded")
		}
		return 0, shinyerrors.Wrap(shinyerrors.New(shinyerrors.ErrConnectionReset, err.Error()), "writing frame")
	}

	t.pending = append(t.pending, pendingEntry{
		CorrelationID: correlationID,
		PacketID:      t.packetID,
		Timestamp:     time.Now(),
	})

	return correlationID, nil
}

// ReceiveAsync reads the next framed packet off the socket and matches
// it positionally against the head of pending (spec §4.2). The
// matched pending entry is discarded regardless of what correlation
// id the reply actually carries — matching is by send order, not id.
func (t *Transport) ReceiveAsync() (*wire.Packet, error) {
	if t.conn == nil {
		return nil, shinyerrors.New(shinyerrors.ErrConnectionFailed, "transport has no live socket")
	}
	if len(t.pending) == 0 {
		return nil, shinyerrors.New(shinyerrors.ErrInvalidResponse, "no outstanding request to match a reply against")
	}

	if t.timeouts.Read != nil {
		deadline := time.Now().Add(*t.timeouts.Read)
		if err := t.conn.SetReadDeadline(deadline); err != nil {
			return nil, shinyerrors.Wrap(shinyerrors.New(shinyerrors.ErrConnectionReset, err.Error()), "setting read deadline")
		}
	}

	var lenBuf [4]byte
	if err := readFull(t.conn, lenBuf[:]); err != nil {
		return nil, translateReadErr(err)
	}
	frameLen := leUint32(lenBuf[:])
	if frameLen > wire.MaxPayloadLength {
		return nil, shinyerrors.New(shinyerrors.ErrInvalidResponse, "declared frame length exceeds maximum")
	}

	if cap(t.recvBuf) < int(frameLen) {
		t.recvBuf = make([]byte, frameLen)
	}
	t.recvBuf = t.recvBuf[:frameLen]

	if t.timeouts.Read != nil {
		deadline := time.Now().Add(*t.timeouts.Read)
		if err := t.conn.SetReadDeadline(deadline); err != nil {
			return nil, shinyerrors.Wrap(shinyerrors.New(shinyerrors.ErrConnectionReset, err.Error()), "setting read deadline")
		}
	}
	if err := readFull(t.conn, t.recvBuf); err != nil {
		return nil, translateReadErr(err)
	}

	packet, err := wire.DecodePacket(t.recvBuf)
	if err != nil {
		return nil, err
	}

	// Discard the head of pending: ordering contract, not id lookup.
	t.pending = t.pending[1:]

	return packet, nil
}

// DoOperation sends op and waits for its reply (spec §4.2). When an
// operation timeout is set, it fails with Timeout if the operation
// deadline has passed before the send or between the send and the
// receive. The send and the receive themselves are bounded only by the
// write and read timeouts, not by the time left before the operation
// deadline.
func (t *Transport) DoOperation(op wire.Operation) (*wire.Packet, error) {
	start := time.Now()
	var deadline time.Time
	hasDeadline := t.timeouts.Operation != nil
	if hasDeadline {
		deadline = start.Add(*t.timeouts.Operation)
	}

	if hasDeadline && time.Now().After(deadline) {
		return nil, shinyerrors.New(shinyerrors.ErrTimeout, "operation deadline already exceeded")
	}

	span := t.tracer.StartSpan("Transport.DoOperation")
	defer span.Finish()

	if _, err := t.SendAsync(op); err != nil {
		return nil, err
	}

	if hasDeadline && time.Now().After(deadline) {
		return nil, shinyerrors.New(shinyerrors.ErrTimeout, "operation deadline exceeded after send")
	}

	return t.ReceiveAsync()
}

func readFull(conn net.Conn, buf []byte) error {
	read := 0
	for read < len(buf) {
		n, err := conn.Read(buf[read:])
		read += n
		if err != nil {
			return err
		}
	}
	return nil
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func isTimeoutErr(err error) bool {
	type timeouter interface{ Timeout() bool }
	te, ok := err.(timeouter)
	return ok && te.Timeout()
}

func translateReadErr(err error) error {
	if isTimeoutErr(err) {
		return shinyerrors.New(shinyerrors.ErrReadTimeout, "read deadline exceeded")
	}
	return shinyerrors.Wrap(shinyerrors.New(shinyerrors.ErrConnectionReset, err.Error()), "reading frame")
}
