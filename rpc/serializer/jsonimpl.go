package serializer

import (
	"encoding/json"
	"fmt"
	"github.com/ValentinKolb/dLVB/rpc/common"
)

// NewJSONSerializer creates a serializer that encodes messages as json objects.
// It is larger and slower than the binary format but readable with curl.
func NewJSONSerializer() IRPCSerializer {
	return jsonSerializerImpl{}
}

type jsonSerializerImpl struct{}

func (jsonSerializerImpl) Name() string {
	return "json"
}

func (jsonSerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonSerializerImpl) Deserialize(b []byte, msg *common.Message) error {
	if len(b) == 0 {
		return fmt.Errorf("empty message")
	}
	if err := json.Unmarshal(b, msg); err != nil {
		return fmt.Errorf("invalid json message: %w", err)
	}
	return nil
}
