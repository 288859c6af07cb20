// Package shinyclient is the public ShinyDB client: it binds a
// transport.Transport to a resilience.Client and exposes the full
// operation surface from spec §6 — connection management, config
// setters/getters, the raw send/receive/do-operation primitives,
// session/auth operations, admin operations, and the query entry
// points (the fluent queryir.Builder and the queryparser text
// surface). Grounded on client.Client's functional-options
// construction and thin method-per-operation shape (client/client.go).
package shinyclient

import (
	"strings"
	"sync"
	"time"

	"github.com/shinydb/shinydb-go/internal/errors"
	"github.com/shinydb/shinydb-go/logger"
	"github.com/shinydb/shinydb-go/queryir"
	"github.com/shinydb/shinydb-go/queryparser"
	"github.com/shinydb/shinydb-go/resilience"
	"github.com/shinydb/shinydb-go/transport"
	"github.com/shinydb/shinydb-go/wire"
)

// Entity names the doc_type/name pair create/drop/list operate on
// (spec §6's create(entity)/drop(doc_type, name)/list(doc_type,
// namespace?)). Kind is one of "space", "store", "index", "user".
type Entity struct {
	Kind string
	Name string
}

// Client is a ShinyDB connection: one Transport, wrapped in the
// resilient retry/circuit-breaker layer, plus the client-level
// operations that aren't part of the query path itself.
type Client struct {
	mu sync.RWMutex

	transport *transport.Transport
	resilient *resilience.Client
	breaker   *resilience.CircuitBreaker
	logger    logger.Logger
}

// Option configures a Client at construction time.
type Option func(*Client)

func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		c.logger = l
		c.transport.SetLogger(l)
		c.resilient.Logger = l
	}
}

func WithTimeouts(tc transport.TimeoutConfig) Option {
	return func(c *Client) { c.transport.SetTimeouts(tc) }
}

func WithRetryPolicy(p resilience.RetryPolicy) Option {
	return func(c *Client) { c.resilient.Retry = p }
}

func WithCircuitBreaker(failureThreshold, successThreshold int, timeoutMS int) Option {
	return func(c *Client) {
		c.breaker = resilience.NewCircuitBreaker(failureThreshold, successThreshold, time.Duration(timeoutMS)*time.Millisecond)
		c.resilient.Breaker = c.breaker
	}
}

// NewWithLogFile is New, but routes the client's diagnostics to path
// via logger.NewFileLogger instead of the caller supplying a Logger
// directly — a file can't be opened inside a functional Option (New
// returns no error to report a failed open against), so this is a
// separate, fallible constructor.
func NewWithLogFile(path string, opts ...Option) (*Client, error) {
	fileLogger, err := logger.NewFileLogger(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening log file "+path)
	}
	return New(append([]Option{WithLogger(fileLogger)}, opts...)...), nil
}

// New constructs a disconnected Client with default timeouts, retry
// policy, and a default circuit breaker (5 failures to trip, 2
// successes to recover, 30s open-state timeout).
func New(opts ...Option) *Client {
	log := logger.NopLogger
	t := transport.New(transport.WithLogger(log))
	breaker := resilience.NewCircuitBreaker(5, 2, 30*time.Second)
	c := &Client{
		transport: t,
		resilient: resilience.NewClient(t, breaker, resilience.WithLogger(log)),
		breaker:   breaker,
		logger:    log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect opens the TCP connection to host:port.
func (c *Client) Connect(host string, port uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transport.Connect(host, port)
}

// Disconnect tears down the connection.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transport.Disconnect()
}

// IsConnected reports whether the underlying socket is live.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.transport.IsConnected()
}

// Reconnect tears down and re-establishes the connection to the last
// endpoint Connect used.
func (c *Client) Reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transport.Reconnect()
}

// RetryPolicy returns the current retry policy.
func (c *Client) RetryPolicy() resilience.RetryPolicy {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resilient.Retry
}

// SetRetryPolicy replaces the retry policy.
func (c *Client) SetRetryPolicy(p resilience.RetryPolicy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resilient.Retry = p
}

// TimeoutConfig returns the transport's current timeout configuration.
func (c *Client) TimeoutConfig() transport.TimeoutConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.transport.Timeouts()
}

// SetTimeoutConfig replaces the transport's timeout configuration.
func (c *Client) SetTimeoutConfig(tc transport.TimeoutConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transport.SetTimeouts(tc)
}

// CircuitBreaker returns the breaker guarding DoOperation.
func (c *Client) CircuitBreaker() *resilience.CircuitBreaker {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.breaker
}

// SetCircuitBreaker swaps in a different breaker.
func (c *Client) SetCircuitBreaker(b *resilience.CircuitBreaker) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.breaker = b
	c.resilient.Breaker = b
}

// SendAsync queues op and returns its correlation id without waiting
// for a reply, bypassing the retry/breaker wrapper (spec §6's raw
// send_async primitive).
func (c *Client) SendAsync(op wire.Operation) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transport.SendAsync(op)
}

// ReceiveAsync reads the next pending reply, bypassing the retry/
// breaker wrapper (spec §6's raw receive_async primitive).
func (c *Client) ReceiveAsync() (*wire.Packet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transport.ReceiveAsync()
}

// DoOperation runs op through the resilient retry/breaker/reconnect
// wrapper. Every query/mutation path below goes through this.
func (c *Client) DoOperation(op wire.Operation) (*wire.Packet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resilient.DoOperation(op)
}

// Query starts a fluent queryir.Builder bound to this Client.
func (c *Client) Query() *queryir.Builder {
	return queryir.New(c)
}

// RunQuery parses a textual query (spec §4.9-4.10) and executes it.
func (c *Client) RunQuery(src string) (*queryir.QueryResponse, error) {
	ir, err := queryparser.NewParser(strings.NewReader(src)).Parse()
	if err != nil {
		return nil, err
	}
	return queryir.RunIR(c, ir)
}

// Flush sends a durability barrier operation and waits for its reply.
func (c *Client) Flush() error {
	packet, err := c.DoOperation(wire.Operation{Kind: wire.OpFlush})
	if err != nil {
		return err
	}
	if !packet.Op.Reply.Status.OK() {
		return errors.New(errors.ErrOperationFailed, "flush failed with status "+packet.Op.Reply.Status.String())
	}
	return nil
}

// Ping uses Flush as a connectivity/health probe.
func (c *Client) Ping() error {
	return c.Flush()
}

// Authenticate exchanges a username/password for a session.
func (c *Client) Authenticate(username, password string) (*AuthResult, error) {
	packet, err := c.DoOperation(wire.Operation{Kind: wire.OpAuthenticate, Username: username, Password: password})
	if err != nil {
		return nil, err
	}
	if !packet.Op.Reply.Status.OK() {
		return nil, errors.New(errors.ErrPermissionDenied, "authentication failed with status "+packet.Op.Reply.Status.String())
	}
	return ParseAuthResult(packet.Op.Reply.Payload)
}

// AuthenticateAPIKey exchanges an API key for a session.
func (c *Client) AuthenticateAPIKey(apiKey string) (*AuthResult, error) {
	packet, err := c.DoOperation(wire.Operation{Kind: wire.OpAuthenticateAPIKey, APIKey: apiKey})
	if err != nil {
		return nil, err
	}
	if !packet.Op.Reply.Status.OK() {
		return nil, errors.New(errors.ErrPermissionDenied, "authentication failed with status "+packet.Op.Reply.Status.String())
	}
	return ParseAuthResult(packet.Op.Reply.Payload)
}

// Logout ends the current session.
func (c *Client) Logout() error {
	packet, err := c.DoOperation(wire.Operation{Kind: wire.OpLogout})
	if err != nil {
		return err
	}
	if !packet.Op.Reply.Status.OK() {
		return errors.New(errors.ErrOperationFailed, "logout failed with status "+packet.Op.Reply.Status.String())
	}
	return nil
}

// Create asks the server to create entity (a space, store, index, or
// user, per entity.Kind).
func (c *Client) Create(entity Entity) error {
	if err := validateEntityName(entity.Name); err != nil {
		return err
	}
	packet, err := c.DoOperation(wire.Operation{Kind: wire.OpCreate, EntityKind: entity.Kind, EntityName: entity.Name})
	if err != nil {
		return err
	}
	if !packet.Op.Reply.Status.OK() {
		return errors.New(errors.ErrOperationFailed, "create failed with status "+packet.Op.Reply.Status.String())
	}
	return nil
}

// Drop asks the server to drop the named entity of kind docType.
func (c *Client) Drop(docType, name string) error {
	if err := validateEntityName(name); err != nil {
		return err
	}
	packet, err := c.DoOperation(wire.Operation{Kind: wire.OpDrop, EntityKind: docType, EntityName: name})
	if err != nil {
		return err
	}
	if !packet.Op.Reply.Status.OK() {
		return errors.New(errors.ErrOperationFailed, "drop failed with status "+packet.Op.Reply.Status.String())
	}
	return nil
}

// List asks the server for every entity of kind docType, optionally
// scoped to namespace (e.g. listing stores within one space).
func (c *Client) List(docType, namespace string) ([]IndexInfo, error) {
	packet, err := c.DoOperation(wire.Operation{Kind: wire.OpList, EntityKind: docType, Namespace: namespace})
	if err != nil {
		return nil, err
	}
	if !packet.Op.Reply.Status.OK() {
		return nil, errors.New(errors.ErrOperationFailed, "list failed with status "+packet.Op.Reply.Status.String())
	}
	return ParseIndexInfoList(packet.Op.Reply.Payload)
}
