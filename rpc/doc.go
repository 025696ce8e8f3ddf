// Package rpc is the communication layer of dLVB. It carries lock value block and object
// attribute requests from clients to the server that owns the namespaces.
//
// The package is organized into several subpackages:
//
//   - common: the Message protocol, server and client configuration and logger setup.
//
//   - transport: network abstraction with an HTTP implementation. The namespace a
//     request addresses is part of the request path.
//
//   - serializer: Message encoding, either a compact binary format or JSON.
//
//   - client: typed clients for the lock and object operations of one namespace.
//
//   - server: the server that owns the namespaces and dispatches requests to them.
package rpc
