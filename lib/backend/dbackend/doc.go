// Package dbackend implements a distributed object table built on the Dragonboat RAFT
// consensus library. It satisfies backend.IObjectStore, so a namespace on any node of the
// cluster can populate lock value blocks from the same authoritative attributes.
//
// Architecture:
//
//   - ObjectStateMachine: an IConcurrentStateMachine holding the object table in an xsync
//     map. Put and Delete commands are applied from the raft log, lookups are served
//     concurrently through Lookup. Snapshots write every object in a simple binary format.
//
//   - Store (client side): serializes commands and proposes them with SyncPropose, reads
//     with SyncRead. Both are bounded by the configured timeout and retried when the node
//     host reports ErrSystemBusy.
//
// Usage Example:
//
//	nh, _ := dragonboat.NewNodeHost(config.ToNodeHostConfig())
//	_ = nh.StartConcurrentReplica(members, false, dbackend.CreateStateMachineFactory(), config.ToDragonboatConfig(shardID))
//	objects := dbackend.NewDistributedStore(nh, shardID, 5*time.Second)
//
// Lookups are linearizable. A lookup that times out surfaces as a *backend.Error and is
// reported by the value block ops as a backend error, never as a missing object.
package dbackend
