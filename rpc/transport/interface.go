package transport

import (
	"context"
	"github.com/ValentinKolb/dLVB/rpc/common"
)

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// ServerHandleFunc is a function type that handles incoming requests
// This function is called by a server transport layer when a request is received
// It takes the namespace the request addresses and the request and returns a response
type ServerHandleFunc func(namespace string, req []byte) (resp []byte)

// IRPCServerTransport is the interface for the RPC transport layer
type IRPCServerTransport interface {
	// RegisterHandler registers a handler for the transport layer
	// This handler should be called when a request is received
	// The transport layer is responsible for extracting the namespace from the request
	RegisterHandler(handler ServerHandleFunc)
	// Listen binds the configured endpoint and serves requests in the background.
	// It returns once the endpoint is bound or binding failed.
	Listen(config common.ServerConfig) error
	// Done is closed when the transport stopped serving, Err then reports why
	Done() <-chan struct{}
	// Err returns the error that stopped the transport, nil after Shutdown
	Err() error
	// Shutdown stops accepting requests and waits for in-flight requests
	Shutdown(ctx context.Context) error
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IRPCClientTransport is the interface for the RPC client transport
type IRPCClientTransport interface {
	// Connect initializes the transport with the given configuration
	Connect(config common.ClientConfig) error
	// Send sends a request for namespace to the server and returns the response
	Send(namespace string, req []byte) (resp []byte, err error)
	// Close closes the transport connection
	Close() error
}
