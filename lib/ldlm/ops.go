package ldlm

import "github.com/ValentinKolb/dLVB/lib/backend"

// LVBOps is the value block registry a namespace is bound to. It decides how large the
// value block of a resource is and how it is populated from the backend.
//
// The optional capabilities LVBUpdater and LVBFreer are detected once, when the namespace
// is created. A namespace created without ops never caches value blocks.
type LVBOps interface {
	// Size returns the fixed length of the value block of res.
	Size(res *Resource) int
	// Init fills blob (of length Size(res)) with the attributes of res's object, read
	// through dev. blob is not visible to anyone else until Init returns nil.
	Init(res *Resource, dev backend.Accessor, blob []byte) error
}

// LVBUpdater is implemented by ops that can refresh a present value block.
type LVBUpdater interface {
	// Update rewrites blob, a private copy of the current value block. A nil attrs means
	// re-read the object through dev; otherwise attrs are merged into blob.
	// blob replaces the cached value block only if Update returns nil.
	Update(res *Resource, dev backend.Accessor, blob []byte, attrs *backend.Attributes) error
}

// LVBFreer is implemented by ops that need to release state when a value block is dropped.
type LVBFreer interface {
	Free(res *Resource, blob []byte)
}
