package objlvb

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/dLVB/lib/backend"
	"github.com/ValentinKolb/dLVB/lib/ldlm"
)

// Ops implements ldlm.LVBOps, ldlm.LVBUpdater and ldlm.LVBFreer for object resources.
type Ops struct{}

// NewOps returns the object value block ops.
func NewOps() *Ops {
	return &Ops{}
}

func (o *Ops) Size(_ *ldlm.Resource) int {
	return Size
}

func (o *Ops) Init(res *ldlm.Resource, dev backend.Accessor, blob []byte) error {
	attrs, err := lookup(res, dev)
	if err != nil {
		return err
	}
	return Encode(blob, LVB{Size: attrs.Size, Mtime: attrs.Mtime})
}

func (o *Ops) Update(res *ldlm.Resource, dev backend.Accessor, blob []byte, attrs *backend.Attributes) error {
	// refresh from the backend
	if attrs == nil {
		fresh, err := lookup(res, dev)
		if err != nil {
			return err
		}
		return Encode(blob, LVB{Size: fresh.Size, Mtime: fresh.Mtime})
	}

	// merge what the lock holder reported
	cur, err := Decode(blob)
	if err != nil {
		return ldlm.WrapError(ldlm.RetCBackendError, "corrupt value block", err)
	}
	if attrs.Size > cur.Size {
		cur.Size = attrs.Size
	}
	if attrs.Mtime > cur.Mtime {
		cur.Mtime = attrs.Mtime
	}
	return Encode(blob, cur)
}

func (o *Ops) Free(_ *ldlm.Resource, blob []byte) {
	clear(blob)
}

// lookup reads the attributes of res's object and maps backend errors to ldlm codes.
func lookup(res *ldlm.Resource, dev backend.Accessor) (backend.Attributes, error) {
	if dev == nil {
		return backend.Attributes{}, ldlm.NewError(ldlm.RetCBackendError, "namespace has no backend device")
	}

	attrs, err := dev.LookupAttributes(res.Name.ObjectID)
	switch {
	case err == nil:
		return attrs, nil
	case errors.Is(err, backend.ErrNotFound):
		return backend.Attributes{}, ldlm.WrapError(ldlm.RetCObjectNotFound,
			fmt.Sprintf("object %s", res.Name.ObjectID), err)
	default:
		return backend.Attributes{}, ldlm.WrapError(ldlm.RetCBackendError,
			fmt.Sprintf("attributes of object %s", res.Name.ObjectID), err)
	}
}
