package ldlm

import (
	"fmt"
	"github.com/ValentinKolb/dLVB/lib/backend"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"strings"
	"sync/atomic"
)

var log = logger.GetLogger("ldlm")

// DefaultMaxLVBSize is the largest value block a namespace allocates by default.
const DefaultMaxLVBSize = 512

// --------------------------------------------------------------------------
// Configuration
// --------------------------------------------------------------------------

// UpdateFailurePolicy decides what happens to a present value block when an update fails.
type UpdateFailurePolicy uint8

const (
	UpdateFailureRetain  UpdateFailurePolicy = iota // keep the previous value block
	UpdateFailureDiscard                            // drop it, the next access re-initializes
)

func (p UpdateFailurePolicy) String() string {
	switch p {
	case UpdateFailureRetain:
		return "retain"
	case UpdateFailureDiscard:
		return "discard"
	default:
		return "unknown"
	}
}

// ParseUpdateFailurePolicy parses "retain" or "discard".
func ParseUpdateFailurePolicy(s string) (UpdateFailurePolicy, error) {
	switch strings.ToLower(s) {
	case "retain":
		return UpdateFailureRetain, nil
	case "discard":
		return UpdateFailureDiscard, nil
	default:
		return 0, fmt.Errorf("invalid update failure policy: %s (expected retain or discard)", s)
	}
}

// Config configures a namespace.
type Config struct {
	MaxLVBSize          int                 // Largest value block that is allocated (0 = DefaultMaxLVBSize)
	UpdateFailurePolicy UpdateFailurePolicy // What a failed update does to the cached value block
}

// DefaultConfig returns the default namespace configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxLVBSize:          DefaultMaxLVBSize,
		UpdateFailurePolicy: UpdateFailureRetain,
	}
}

// --------------------------------------------------------------------------
// Namespace
// --------------------------------------------------------------------------

// Namespace groups resources that share value block ops and a backend device.
// The ops are bound at creation and never change.
type Namespace struct {
	name    string
	ops     LVBOps
	updater LVBUpdater
	freer   LVBFreer
	dev     backend.Accessor
	config  Config

	resources *xsync.MapOf[ResName, *Resource]
	stats     *nsStats
	closed    atomic.Bool
}

// NewNamespace creates a namespace. ops may be nil, in which case no resource of the
// namespace ever gets a value block. cfg may be nil to use DefaultConfig.
//
// Thread-safety: This function is not thread-safe and should only be called once per
// namespace during startup.
func NewNamespace(name string, ops LVBOps, dev backend.Accessor, cfg *Config) *Namespace {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	config := *cfg
	if config.MaxLVBSize <= 0 {
		config.MaxLVBSize = DefaultMaxLVBSize
	}

	ns := &Namespace{
		name:      name,
		ops:       ops,
		dev:       dev,
		config:    config,
		resources: xsync.NewMapOf[ResName, *Resource](),
		stats:     newNSStats(),
	}

	// capabilities are resolved once
	if ops != nil {
		ns.updater, _ = ops.(LVBUpdater)
		ns.freer, _ = ops.(LVBFreer)
	}

	if ops == nil {
		log.Infof("created namespace %s without value block ops", name)
	} else {
		log.Infof("created namespace %s (update=%t, free=%t, max lvb=%d, update failure=%s)",
			name, ns.updater != nil, ns.freer != nil, config.MaxLVBSize, config.UpdateFailurePolicy)
	}
	return ns
}

// Name returns the namespace name.
func (ns *Namespace) Name() string {
	return ns.name
}

// Backend returns the backend device value blocks are populated from.
func (ns *Namespace) Backend() backend.Accessor {
	return ns.dev
}

// HasOps reports whether the namespace caches value blocks.
func (ns *Namespace) HasOps() bool {
	return ns.ops != nil
}

// --------------------------------------------------------------------------
// Lock manager events
// --------------------------------------------------------------------------

// Enqueue is called when a lock on name is granted. It returns the resource with a
// reference taken and its value block populated. On failure no reference is held.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (ns *Namespace) Enqueue(name ResName) (*Resource, error) {
	if ns.closed.Load() {
		return nil, NewError(RetCInvalidRequest, fmt.Sprintf("namespace %s is closed", ns.name))
	}
	if name.ObjectID == "" {
		return nil, NewError(RetCInvalidRequest, "empty resource name")
	}

	res := ns.getRef(name)
	if err := ns.EnsureLVB(res); err != nil {
		ns.Release(res)
		return nil, err
	}
	return res, nil
}

// Glimpse returns the current value block of name before a conflicting lock is granted.
// If the ops can update, the value block is refreshed from the backend first, otherwise
// the cached one is returned as is. Ineligible resources return nil.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (ns *Namespace) Glimpse(name ResName) ([]byte, error) {
	if ns.closed.Load() {
		return nil, NewError(RetCInvalidRequest, fmt.Sprintf("namespace %s is closed", ns.name))
	}
	if name.ObjectID == "" {
		return nil, NewError(RetCInvalidRequest, "empty resource name")
	}

	res := ns.getRef(name)
	defer ns.Release(res)

	fresh, err := ns.ensureLVB(res)
	if err != nil {
		return nil, err
	}
	if !fresh {
		if err := ns.UpdateLVB(res, nil); err != nil {
			return nil, err
		}
	}
	return res.LVB(), nil
}

// Release drops a reference taken by Enqueue. Dropping the last reference destroys the
// resource and its value block.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (ns *Namespace) Release(res *Resource) {
	var last bool
	ns.resources.Compute(res.Name, func(cur *Resource, loaded bool) (*Resource, bool) {
		if !loaded {
			return cur, true // nothing to delete, don't create
		}
		if cur != res {
			return cur, false
		}
		if res.refs.Add(-1) > 0 {
			return cur, false
		}
		last = true
		return cur, true
	})

	if last {
		ns.destroy(res)
	}
}

// Lookup returns the resource for name if it exists, without taking a reference.
func (ns *Namespace) Lookup(name ResName) (*Resource, bool) {
	return ns.resources.Load(name)
}

// Len returns the number of live resources.
func (ns *Namespace) Len() int {
	return ns.resources.Size()
}

// Close destroys all resources. Further Enqueue and Glimpse calls fail.
func (ns *Namespace) Close() {
	if !ns.closed.CompareAndSwap(false, true) {
		return
	}
	ns.resources.Range(func(name ResName, res *Resource) bool {
		ns.resources.Delete(name)
		ns.destroy(res)
		return true
	})
	log.Infof("closed namespace %s", ns.name)
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// getRef finds or creates the resource for name and takes a reference on it.
func (ns *Namespace) getRef(name ResName) *Resource {
	res, _ := ns.resources.Compute(name, func(cur *Resource, loaded bool) (*Resource, bool) {
		if !loaded {
			cur = newResource(ns, name)
			ns.stats.resources.Inc(1)
		}
		cur.refs.Add(1)
		return cur, false
	})
	return res
}

// destroy frees the value block of a resource that left the resource table.
func (ns *Namespace) destroy(res *Resource) {
	ns.FreeLVB(res)
	log.Debugf("%s: destroyed resource %s", ns.name, res.Name)
}
