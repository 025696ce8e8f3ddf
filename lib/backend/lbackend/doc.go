// Package lbackend implements a local, in-memory, single-node object table based on the
// backend.IObjectStore interface. Data is not persisted between process restarts.
//
// The table is a concurrent xsync map keyed by object id. Every lookup is counted, and a
// lookup hook can be installed to add latency or inject failures. Both exist so callers
// (and tests) can observe exactly how often the lock value block cache goes to the backend.
//
// Usage Example:
//
//	objects := lbackend.NewLocalStore()
//	_ = objects.PutAttributes("obj-42", backend.Attributes{Size: 4096, Mtime: 1000})
//
//	ns := ldlm.NewNamespace("filter-0", objlvb.NewOps(), objects, nil)
package lbackend
