// Package transport defines the client and server transport contracts of the RPC layer.
// A transport moves opaque request and response bytes and routes every request by the
// name of the namespace it addresses. The http subpackage is the only implementation.
package transport
