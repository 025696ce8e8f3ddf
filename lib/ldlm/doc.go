// Package ldlm implements the lock value block (LVB) cache of the distributed lock manager.
//
// A lock value block is a small blob of object metadata (for storage objects: size and
// modification time) attached to a lock resource. A node that acquires or glimpses a lock
// receives the value block with the grant and learns the object's state without a separate
// round trip to the authoritative backend.
//
// Core Concepts:
//
//   - Resource: a lockable unit named by ResName{ObjectID, Class}. Only ClassObject
//     resources refer to storage objects; every other class is an internal or control lock
//     and never carries a value block. Each resource owns one value block slot and one
//     mutex guarding it.
//
//   - LVBOps: the value block registry bound to a namespace. Size and Init are required,
//     LVBUpdater and LVBFreer are optional capabilities. A namespace without ops treats all
//     of its resources like internal locks.
//
//   - Namespace: the resource table plus the ops and the backend.Accessor value blocks are
//     read from. It turns lock manager events into value block operations:
//     Enqueue (first acquisition → EnsureLVB), Glimpse (→ UpdateLVB or the cached block)
//     and Release of the last reference (→ FreeLVB, resource destroyed).
//
// Initialization Protocol:
//
//	EnsureLVB checks eligibility first (a field comparison, no side effects), then an atomic
//	"present" flag. Only if the value block is absent is the resource mutex taken. Under
//	the mutex the slot is checked again, so of any number of concurrent first callers
//	exactly one allocates the block and calls Init, and all others find it populated.
//	The mutex is held across the (possibly blocking) backend lookup. This serializes first
//	touches of one resource, while other resources proceed independently since each has
//	its own mutex.
//
//	If Init fails, the block is detached and the slot stays absent. The next caller tries
//	again; failures are never cached.
//
// Updates:
//
//	UpdateLVB hands the ops a private copy of the block and publishes it only on success,
//	so no reader can see a half written block. What happens to the previous block when an
//	update fails is decided by Config.UpdateFailurePolicy: UpdateFailureRetain (default)
//	keeps it, UpdateFailureDiscard drops it.
//
// Errors:
//
//	All failures are *Error values carrying a RetCode: RetCOutOfMemory,
//	RetCObjectNotFound, RetCBackendError or RetCInvalidRequest. None are fatal and none are
//	retried inside this package; retry policy belongs to the caller.
//
// Usage Example:
//
//	objects := lbackend.NewLocalStore()
//	ns := ldlm.NewNamespace("filter-0", objlvb.NewOps(), objects, nil)
//
//	res, err := ns.Enqueue(ldlm.ResName{ObjectID: "obj-42"})
//	if err != nil {
//	    // lock operation fails, the requesting node gets the error
//	}
//	attrs, _ := objlvb.Decode(res.LVB())
//	...
//	ns.Release(res)
package ldlm
