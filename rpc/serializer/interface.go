package serializer

import "github.com/ValentinKolb/dLVB/rpc/common"

// IRPCSerializer converts Messages to and from their wire form. Client and server must
// use the same implementation.
type IRPCSerializer interface {
	// Name returns the name the serializer is selected by (json, binary)
	Name() string
	// Serialize encodes msg
	Serialize(msg common.Message) ([]byte, error)
	// Deserialize decodes b into msg. Input that is empty or was cut short is an error.
	Deserialize(b []byte, msg *common.Message) error
}
