package ldlm

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/dLVB/lib/backend"
	"time"
)

// --------------------------------------------------------------------------
// Value block slot operations
// --------------------------------------------------------------------------

// eligible reports whether res can carry a value block at all. Internal and control
// resources never do, and neither does any resource of a namespace without ops.
func (ns *Namespace) eligible(res *Resource) bool {
	return ns.ops != nil && res.Name.IsObject()
}

// EnsureLVB makes sure res has a populated value block. The first caller allocates it and
// fills it through the namespace ops; concurrent first callers wait on the resource guard
// and find it populated. Ineligible resources return nil without touching the slot.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (ns *Namespace) EnsureLVB(res *Resource) error {
	_, err := ns.ensureLVB(res)
	return err
}

// ensureLVB is EnsureLVB that also reports whether this call populated the value block.
func (ns *Namespace) ensureLVB(res *Resource) (bool, error) {
	if !ns.eligible(res) {
		return false, nil
	}
	if res.lvbPresent.Load() {
		return false, nil
	}

	res.lvbMu.Lock()
	defer res.lvbMu.Unlock()
	return ns.initLocked(res)
}

// initLocked populates the value block if it is absent. Caller holds res.lvbMu.
// On failure the slot is left absent.
func (ns *Namespace) initLocked(res *Resource) (bool, error) {
	if res.lvb != nil {
		return false, nil
	}

	size := ns.ops.Size(res)
	if size <= 0 || size > ns.config.MaxLVBSize {
		ns.stats.initFailed.Inc(1)
		return false, NewError(RetCOutOfMemory,
			fmt.Sprintf("cannot allocate value block of %d bytes for %s (max %d)", size, res.Name, ns.config.MaxLVBSize))
	}

	// attach without publishing; nobody can read the slot while we hold the guard
	blob := make([]byte, size)
	res.lvb = blob
	res.lvbLen = size

	start := time.Now()
	err := ns.ops.Init(res, ns.dev, blob)
	ns.stats.lookups.UpdateSince(start)

	if err != nil {
		res.detachLocked()
		ns.stats.initFailed.Inc(1)
		log.Debugf("%s: init of %s failed: %v", ns.name, res.Name, err)
		return false, asError(err, res)
	}

	res.attachLocked(blob)
	ns.stats.initOK.Inc(1)
	return true, nil
}

// UpdateLVB refreshes the value block of res. A nil attrs re-reads the object from the
// backend, otherwise attrs are merged by the ops. If the ops cannot update, the cached
// value block is left as it is. An absent value block is initialized instead.
//
// A failed update follows the namespace's UpdateFailurePolicy: the previous value block is
// either kept intact or dropped.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (ns *Namespace) UpdateLVB(res *Resource, attrs *backend.Attributes) error {
	if !ns.eligible(res) || ns.updater == nil {
		return nil
	}

	res.lvbMu.Lock()
	defer res.lvbMu.Unlock()

	if res.lvb == nil {
		_, err := ns.initLocked(res)
		if err != nil || attrs == nil {
			return err
		}
	}

	next := make([]byte, res.lvbLen)
	copy(next, res.lvb)

	start := time.Now()
	err := ns.updater.Update(res, ns.dev, next, attrs)
	if attrs == nil {
		ns.stats.lookups.UpdateSince(start)
	}

	if err != nil {
		ns.stats.updateFailed.Inc(1)
		if ns.config.UpdateFailurePolicy == UpdateFailureDiscard {
			log.Warningf("%s: update of %s failed, dropping value block: %v", ns.name, res.Name, err)
			ns.freeLocked(res)
		}
		return asError(err, res)
	}

	res.lvb = next
	ns.stats.updates.Inc(1)
	return nil
}

// FreeLVB drops the value block of res. The next EnsureLVB reads the backend again.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (ns *Namespace) FreeLVB(res *Resource) {
	res.lvbMu.Lock()
	defer res.lvbMu.Unlock()
	ns.freeLocked(res)
}

// freeLocked detaches the value block and hands it to the ops. Caller holds res.lvbMu.
func (ns *Namespace) freeLocked(res *Resource) {
	if res.lvb == nil {
		return
	}
	blob := res.detachLocked()
	if ns.freer != nil {
		ns.freer.Free(res, blob)
	}
	ns.stats.frees.Inc(1)
}

// asError converts an ops error into an *Error.
func asError(err error, res *Resource) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, backend.ErrNotFound) {
		return WrapError(RetCObjectNotFound, fmt.Sprintf("lookup of %s", res.Name), err)
	}
	return WrapError(RetCBackendError, fmt.Sprintf("lookup of %s", res.Name), err)
}
