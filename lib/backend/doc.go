// Package backend defines the contract between the lock value block cache and the
// authoritative object storage it is populated from.
//
// The lock manager never reads object storage directly. When a lock resource needs its
// value block populated or refreshed, the bound ldlm.LVBOps call LookupAttributes on the
// Accessor held by the namespace. Everything behind that call (storage format, I/O path,
// replication, timeouts) belongs to the implementation.
//
// Key Components:
//
//   - Accessor: the narrow read contract, LookupAttributes(objectID). Returns ErrNotFound
//     when the object does not exist and any other error when the attributes could not be
//     retrieved.
//
//   - IObjectStore: Accessor plus the write side (PutAttributes, DeleteObject). Used by
//     tests, the RPC object adapter and the CLI to create and remove objects.
//
//   - Attributes: the full attribute record reported by a backend. Value block ops copy
//     only the fields they cache and discard the rest.
//
// Implementations:
//
//   - Local (lbackend): an in-memory object table for single-node use and tests.
//     Available in "github.com/ValentinKolb/dLVB/lib/backend/lbackend".
//
//   - Distributed (dbackend): an object table replicated with the Dragonboat RAFT library.
//     Available in "github.com/ValentinKolb/dLVB/lib/backend/dbackend".
package backend
