package client

import (
	"github.com/ValentinKolb/dLVB/lib/backend"
	"github.com/ValentinKolb/dLVB/rpc/common"
	"github.com/ValentinKolb/dLVB/rpc/serializer"
	"github.com/ValentinKolb/dLVB/rpc/transport"
)

// IObjectClient is a backend.IObjectStore served by a remote namespace.
type IObjectClient interface {
	backend.IObjectStore
	// Close closes the connection.
	Close() error
}

// NewRPCObjectClient creates a client for the object backend of namespace
// The function takes a namespace, a config, a transport and a serializer as parameters
func NewRPCObjectClient(
	namespace string,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (IObjectClient, error) {
	adapter, err := newRPCClientAdapter(namespace, config, transport, serializer)
	if err != nil {
		return nil, err
	}
	return &rpcObjectClient{adapter}, nil
}

type rpcObjectClient struct {
	rpcClientAdapter
}

// --------------------------------------------------------------------------
// Interface Methods (docu see backend/interface.go)
// --------------------------------------------------------------------------

func (c *rpcObjectClient) LookupAttributes(objectID string) (backend.Attributes, error) {
	resp, err := c.invoke(common.NewObjStatRequest(objectID))
	if err != nil {
		return backend.Attributes{}, &backend.Error{Op: "lookup", ObjectID: objectID, Err: err}
	}
	if !resp.Ok {
		return backend.Attributes{}, &backend.Error{Op: "lookup", ObjectID: objectID, Err: backend.ErrNotFound}
	}
	return backend.DecodeAttributes(resp.Value)
}

func (c *rpcObjectClient) PutAttributes(objectID string, attrs backend.Attributes) error {
	if _, err := c.invoke(common.NewObjPutRequest(objectID, attrs)); err != nil {
		return &backend.Error{Op: "put", ObjectID: objectID, Err: err}
	}
	return nil
}

func (c *rpcObjectClient) DeleteObject(objectID string) error {
	if _, err := c.invoke(common.NewObjDeleteRequest(objectID)); err != nil {
		return &backend.Error{Op: "delete", ObjectID: objectID, Err: err}
	}
	return nil
}
