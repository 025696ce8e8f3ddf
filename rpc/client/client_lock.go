package client

import (
	"encoding/json"
	"github.com/ValentinKolb/dLVB/lib/ldlm"
	"github.com/ValentinKolb/dLVB/rpc/common"
	"github.com/ValentinKolb/dLVB/rpc/serializer"
	"github.com/ValentinKolb/dLVB/rpc/transport"
)

// ILockClient is the client side of a namespace's value block cache.
// All errors returned by a server are *ldlm.Error values, use ldlm.IsCode to inspect them.
type ILockClient interface {
	// Enqueue takes a reference on the resource (objectID, class) and returns its handle
	// and value block. The value block is nil for resources that carry none.
	Enqueue(objectID string, class uint64) (handle string, lvb []byte, err error)
	// Glimpse returns the current value block of a resource without keeping a reference.
	Glimpse(objectID string, class uint64) ([]byte, error)
	// Release drops the reference of handle.
	Release(handle string) error
	// Free drops the cached value block of the resource of handle.
	Free(handle string) error
	// Update re-reads the value block of handle's resource from the backend.
	Update(handle string) ([]byte, error)
	// Merge merges attributes written by the lock holder into the value block.
	Merge(handle string, size uint64, mtime int64) ([]byte, error)
	// Stats returns the namespace statistics.
	Stats() (ldlm.Stats, error)
	// Close closes the connection.
	Close() error
}

// NewRPCLockClient creates a new lock client for namespace
// The function takes a namespace, a config, a transport and a serializer as parameters
func NewRPCLockClient(
	namespace string,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (ILockClient, error) {
	adapter, err := newRPCClientAdapter(namespace, config, transport, serializer)
	if err != nil {
		return nil, err
	}
	return &rpcLockClient{adapter}, nil
}

type rpcLockClient struct {
	rpcClientAdapter
}

// --------------------------------------------------------------------------
// Interface Methods (docu see ILockClient)
// --------------------------------------------------------------------------

func (c *rpcLockClient) Enqueue(objectID string, class uint64) (string, []byte, error) {
	resp, err := c.invoke(common.NewEnqueueRequest(objectID, class))
	if err != nil {
		return "", nil, err
	}
	return resp.Handle, lvbOf(resp), nil
}

func (c *rpcLockClient) Glimpse(objectID string, class uint64) ([]byte, error) {
	resp, err := c.invoke(common.NewGlimpseRequest(objectID, class))
	if err != nil {
		return nil, err
	}
	return lvbOf(resp), nil
}

func (c *rpcLockClient) Release(handle string) error {
	_, err := c.invoke(common.NewReleaseRequest(handle))
	return err
}

func (c *rpcLockClient) Free(handle string) error {
	_, err := c.invoke(common.NewFreeRequest(handle))
	return err
}

func (c *rpcLockClient) Update(handle string) ([]byte, error) {
	resp, err := c.invoke(common.NewUpdateRequest(handle))
	if resp == nil {
		return nil, err
	}
	return lvbOf(resp), err
}

func (c *rpcLockClient) Merge(handle string, size uint64, mtime int64) ([]byte, error) {
	resp, err := c.invoke(common.NewMergeRequest(handle, size, mtime))
	if resp == nil {
		return nil, err
	}
	return lvbOf(resp), err
}

func (c *rpcLockClient) Stats() (ldlm.Stats, error) {
	var stats ldlm.Stats
	resp, err := c.invoke(common.NewStatsRequest())
	if err != nil {
		return stats, err
	}
	err = json.Unmarshal(resp.Value, &stats)
	return stats, err
}

// lvbOf returns the value block of a response, nil if the resource carries none.
func lvbOf(resp *common.Message) []byte {
	if !resp.Ok {
		return nil
	}
	if resp.Value == nil {
		return []byte{}
	}
	return resp.Value
}
