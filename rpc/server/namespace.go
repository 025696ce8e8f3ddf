package server

import (
	"fmt"
	"github.com/ValentinKolb/dLVB/lib/backend"
	"github.com/ValentinKolb/dLVB/lib/ldlm"
	"github.com/ValentinKolb/dLVB/lib/util"
	"github.com/ValentinKolb/dLVB/rpc/common"
	"github.com/puzpuzpuz/xsync/v3"
)

// serverNamespace is a namespace served by the RPC server: the value block cache, the
// object store it reads from (nil for lock-only namespaces) and the references clients
// hold, addressed by handle.
type serverNamespace struct {
	ns      *ldlm.Namespace
	objects backend.IObjectStore
	handles *xsync.MapOf[string, *ldlm.Resource]
}

func newServerNamespace(ns *ldlm.Namespace, objects backend.IObjectStore) *serverNamespace {
	return &serverNamespace{
		ns:      ns,
		objects: objects,
		handles: xsync.NewMapOf[string, *ldlm.Resource](),
	}
}

// grant enqueues name and registers the reference under a new handle.
func (n *serverNamespace) grant(name ldlm.ResName) (string, *ldlm.Resource, error) {
	res, err := n.ns.Enqueue(name)
	if err != nil {
		return "", nil, err
	}

	handle, err := util.NewHandle()
	if err != nil {
		n.ns.Release(res)
		return "", nil, fmt.Errorf("failed to create handle: %w", err)
	}
	n.handles.Store(handle, res)
	return handle, res, nil
}

// resource returns the resource a handle refers to.
func (n *serverNamespace) resource(handle string) (*ldlm.Resource, error) {
	res, ok := n.handles.Load(handle)
	if !ok {
		return nil, ldlm.NewError(ldlm.RetCInvalidRequest, fmt.Sprintf("unknown handle %q", handle))
	}
	return res, nil
}

// release drops the reference registered under handle.
func (n *serverNamespace) release(handle string) error {
	res, ok := n.handles.LoadAndDelete(handle)
	if !ok {
		return ldlm.NewError(ldlm.RetCInvalidRequest, fmt.Sprintf("unknown handle %q", handle))
	}
	n.ns.Release(res)
	return nil
}

// partitionKey returns the key a request is serialized on: the object id it addresses,
// or "" for requests that run on the serial queue.
func (n *serverNamespace) partitionKey(req *common.Message) string {
	if req.Key != "" {
		return req.Key
	}
	if req.Handle != "" {
		if res, ok := n.handles.Load(req.Handle); ok {
			return res.Name.ObjectID
		}
	}
	return ""
}

// close releases all outstanding references and destroys the namespace.
func (n *serverNamespace) close() {
	n.handles.Range(func(handle string, res *ldlm.Resource) bool {
		n.handles.Delete(handle)
		n.ns.Release(res)
		return true
	})
	n.ns.Close()
}
