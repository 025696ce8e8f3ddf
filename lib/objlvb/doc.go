// Package objlvb provides the value block ops for storage object resources: the block
// caches an object's size and modification time, read from a backend.Accessor.
//
// Layout (16 bytes, little endian):
//
//	offset 0: size  uint64
//	offset 8: mtime int64 (seconds)
//
// Only these two attributes are cached, everything else the backend reports is dropped.
//
// Update semantics:
//
//   - Update with nil attributes re-reads the object and overwrites both fields.
//   - Update with attributes supplied by a lock holder (e.g. after a write) merges them:
//     the size only grows and the mtime only moves forward, so a late report from one
//     client cannot shrink what another already published.
package objlvb
