package client

import (
	"fmt"
	"github.com/ValentinKolb/dLVB/rpc/common"
	"github.com/ValentinKolb/dLVB/rpc/serializer"
	"github.com/ValentinKolb/dLVB/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("rpc")
)

// rpcClientAdapter is a struct that stores all data needed for an implementation of an RPC client
// Used by the lock and object clients with composition pattern
type rpcClientAdapter struct {
	namespace  string
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

func newRPCClientAdapter(
	namespace string,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (rpcClientAdapter, error) {
	if namespace == "" {
		return rpcClientAdapter{}, fmt.Errorf("namespace is required")
	}
	if err := transport.Connect(config); err != nil {
		return rpcClientAdapter{}, err
	}
	Logger.Debugf("client for namespace %s (serializer %s)%s", namespace, serializer.Name(), config.String())
	return rpcClientAdapter{
		namespace:  namespace,
		config:     config,
		transport:  transport,
		serializer: serializer,
	}, nil
}

// Close closes the underlying transport
func (a *rpcClientAdapter) Close() error {
	return a.transport.Close()
}

// invoke sends req to the namespace of the client and returns the response.
// An error carried by the response is returned as a typed *ldlm.Error.
func (a *rpcClientAdapter) invoke(req *common.Message) (*common.Message, error) {
	reqBytes, err := a.serializer.Serialize(*req)
	if err != nil {
		return nil, err
	}

	respBytes, err := a.transport.Send(a.namespace, reqBytes)
	if err != nil {
		return nil, err
	}

	resp := &common.Message{}
	if err := a.serializer.Deserialize(respBytes, resp); err != nil {
		return nil, fmt.Errorf("RPC client - invalid response: %w", err)
	}

	if err := resp.Error(); err != nil {
		return resp, err
	}

	// Check if the type of the response is the expected type
	if resp.MsgType != req.MsgType {
		return nil, fmt.Errorf("RPC client - Unexpected message type: %s, expected %s", resp.MsgType, req.MsgType)
	}
	return resp, nil
}
