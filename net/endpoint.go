// Package net holds the TCP addressing type used by the transport
// package. It is adapted from the teacher's pnet.URI, which
// addressed HTTP hosts; a ShinyDB connection has no scheme or path, just
// a host and a port, so the scheme handling is dropped.
package net

import (
	"encoding/json"
	"fmt"
	"net"
	"regexp"
	"strconv"

	"github.com/pkg/errors"
)

var (
	hostRegexp    = regexp.MustCompile(`^[0-9a-zA-Z.-]+$|^\[[:0-9a-fA-F]+\]$`)
	addressRegexp = regexp.MustCompile(`^([0-9a-zA-Z.-]+|\[[:0-9a-fA-F]+\])?(:([0-9]+))?$`)

	ErrInvalidAddress = errors.New("invalid address")
)

// DefaultPort is the ShinyDB server's conventional TCP port.
const DefaultPort = 9101

// Endpoint identifies a TCP host and port pair for a ShinyDB connection.
type Endpoint struct {
	Host string `json:"host"`
	Port uint16 `json:"port"`
}

// DefaultEndpoint returns localhost on the conventional port.
func DefaultEndpoint() *Endpoint {
	return &Endpoint{Host: "localhost", Port: DefaultPort}
}

// NewEndpoint returns an Endpoint with the specified host and port.
func NewEndpoint(host string, port uint16) (*Endpoint, error) {
	e := DefaultEndpoint()
	if err := e.SetHost(host); err != nil {
		return nil, errors.Wrap(err, "setting endpoint host")
	}
	e.SetPort(port)
	return e, nil
}

// ParseEndpoint parses a "host:port" address into an Endpoint. Either
// part may be omitted: "host", ":port", and "" are all accepted and
// fall back to the default.
func ParseEndpoint(address string) (*Endpoint, error) {
	m := addressRegexp.FindStringSubmatch(address)
	if m == nil {
		return nil, ErrInvalidAddress
	}
	e := DefaultEndpoint()
	if m[1] != "" {
		e.Host = m[1]
	}
	if m[3] != "" {
		port, err := strconv.Atoi(m[3])
		if err != nil {
			return nil, errors.New("converting port string to int")
		}
		if port > 65535 {
			return nil, errors.New("port must be in range 0 - 65535")
		}
		e.Port = uint16(port)
	}
	return e, nil
}

// SetHost sets the host of this endpoint.
func (e *Endpoint) SetHost(host string) error {
	if hostRegexp.FindStringSubmatch(host) == nil {
		return errors.New("invalid host")
	}
	e.Host = host
	return nil
}

// SetPort sets the port of this endpoint.
func (e *Endpoint) SetPort(port uint16) {
	e.Port = port
}

// HostPort returns "Host:Port", the form net.Dial expects.
func (e *Endpoint) HostPort() string {
	if e == nil {
		return ""
	}
	return net.JoinHostPort(e.Host, strconv.Itoa(int(e.Port)))
}

// Equals returns true if other addresses the same host and port.
func (e Endpoint) Equals(other *Endpoint) bool {
	if other == nil {
		return false
	}
	return e.Host == other.Host && e.Port == other.Port
}

// String returns the endpoint as a "host:port" string.
func (e Endpoint) String() string {
	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}

// MarshalJSON marshals the endpoint into a JSON-encoded byte slice.
func (e *Endpoint) MarshalJSON() ([]byte, error) {
	var output struct {
		Host string `json:"host,omitempty"`
		Port uint16 `json:"port,omitempty"`
	}
	output.Host = e.Host
	output.Port = e.Port
	return json.Marshal(output)
}

// UnmarshalJSON unmarshals a byte slice into the endpoint.
func (e *Endpoint) UnmarshalJSON(b []byte) error {
	var input struct {
		Host string `json:"host,omitempty"`
		Port uint16 `json:"port,omitempty"`
	}
	if err := json.Unmarshal(b, &input); err != nil {
		return err
	}
	e.Host = input.Host
	e.Port = input.Port
	return nil
}
