package ldlm

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// ResClass is the discriminant of a resource name. Only ClassObject resources are backed
// by a storage object; every other class is an internal or control lock.
type ResClass uint64

const (
	ClassObject ResClass = 0
)

// ResName identifies a lock resource within a namespace.
type ResName struct {
	ObjectID string
	Class    ResClass
}

// IsObject reports whether the name refers to a storage object.
func (n ResName) IsObject() bool {
	return n.Class == ClassObject
}

func (n ResName) String() string {
	return fmt.Sprintf("%s:%d", n.ObjectID, uint64(n.Class))
}

// Resource is a lockable unit of a namespace together with its lock value block slot.
//
// The slot (lvb, lvbLen) is only changed while lvbMu is held. lvbPresent mirrors
// lvb != nil and is stored last on publish, so a caller that sees it set also sees a
// fully populated blob.
type Resource struct {
	Name ResName
	ns   *Namespace

	lvbMu      sync.Mutex
	lvb        []byte
	lvbLen     int
	lvbPresent atomic.Bool

	refs atomic.Int64
}

func newResource(ns *Namespace, name ResName) *Resource {
	return &Resource{
		Name: name,
		ns:   ns,
	}
}

// Namespace returns the namespace the resource belongs to.
func (r *Resource) Namespace() *Namespace {
	return r.ns
}

// LVB returns a copy of the cached value block, or nil if there is none.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (r *Resource) LVB() []byte {
	r.lvbMu.Lock()
	defer r.lvbMu.Unlock()
	if r.lvb == nil {
		return nil
	}
	out := make([]byte, r.lvbLen)
	copy(out, r.lvb)
	return out
}

// LVBLen returns the length of the cached value block (0 if absent).
func (r *Resource) LVBLen() int {
	r.lvbMu.Lock()
	defer r.lvbMu.Unlock()
	return r.lvbLen
}

// HasLVB reports whether the value block is present.
func (r *Resource) HasLVB() bool {
	return r.lvbPresent.Load()
}

// Refs returns the number of references held on the resource.
func (r *Resource) Refs() int64 {
	return r.refs.Load()
}

// attachLocked publishes blob as the resource's value block. Caller holds lvbMu.
func (r *Resource) attachLocked(blob []byte) {
	r.lvb = blob
	r.lvbLen = len(blob)
	r.lvbPresent.Store(true)
}

// detachLocked clears the slot and returns the previous blob. Caller holds lvbMu.
func (r *Resource) detachLocked() []byte {
	blob := r.lvb
	r.lvbPresent.Store(false)
	r.lvb = nil
	r.lvbLen = 0
	return blob
}
