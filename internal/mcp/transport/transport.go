// Package transport provides the subprocess stdio transport used to talk to
// MCP tool servers.
package transport

import (
	"context"
	"errors"
)

var (
	// ErrClosed is returned when attempting to use a closed transport.
	ErrClosed = errors.New("transport closed")
	// ErrNotStarted is returned when attempting to use a transport before Start.
	ErrNotStarted = errors.New("transport not started")
)

// Transport defines the interface for exchanging MCP messages.
type Transport interface {
	// Send sends a complete JSON-RPC message through the transport.
	Send(ctx context.Context, data []byte) error

	// Receive blocks until a complete JSON-RPC message arrives.
	Receive(ctx context.Context) ([]byte, error)

	// Close closes the transport and releases resources.
	Close() error
}

// ClientTransport is a transport with subprocess-style lifecycle management.
type ClientTransport interface {
	Transport

	// Start launches the underlying process or connection.
	Start() error
}
