package serializer

import (
	"encoding/binary"
	"fmt"
	"github.com/ValentinKolb/dLVB/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format:
//
//	[type:1][flags:2][fields present in flags, in flag order]
//
// Strings and byte slices are written as a 4 byte length followed by the data, integers
// as 8 bytes, Ok as one byte. All integers are big endian.
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasKey    uint16 = 1 << 0
	hasClass  uint16 = 1 << 1
	hasHandle uint16 = 1 << 2
	hasSize   uint16 = 1 << 3
	hasMtime  uint16 = 1 << 4
	hasValue  uint16 = 1 << 5
	hasOk     uint16 = 1 << 6
	hasErr    uint16 = 1 << 7
	hasCode   uint16 = 1 << 8
)

const headerSize = 3

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Name() string {
	return "binary"
}

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	result := make([]byte, headerSize, b.sizeBytes(msg))
	result[0] = byte(msg.MsgType)

	var flags uint16

	if msg.Key != "" {
		flags |= hasKey
		result = appendString(result, msg.Key)
	}
	if msg.Class != 0 {
		flags |= hasClass
		result = binary.BigEndian.AppendUint64(result, msg.Class)
	}
	if msg.Handle != "" {
		flags |= hasHandle
		result = appendString(result, msg.Handle)
	}
	if msg.Size != 0 {
		flags |= hasSize
		result = binary.BigEndian.AppendUint64(result, msg.Size)
	}
	if msg.Mtime != 0 {
		flags |= hasMtime
		result = binary.BigEndian.AppendUint64(result, uint64(msg.Mtime))
	}
	// a non-nil empty value is kept distinct from nil
	if msg.Value != nil {
		flags |= hasValue
		result = binary.BigEndian.AppendUint32(result, uint32(len(msg.Value)))
		result = append(result, msg.Value...)
	}
	if msg.Ok {
		flags |= hasOk
		result = append(result, 1)
	}
	if msg.Err != "" {
		flags |= hasErr
		result = appendString(result, msg.Err)
	}
	if msg.Code != 0 {
		flags |= hasCode
		result = binary.BigEndian.AppendUint64(result, msg.Code)
	}

	// Set flags after knowing which fields are present
	binary.BigEndian.PutUint16(result[1:3], flags)
	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	if len(data) < headerSize {
		return fmt.Errorf("data too short for message header")
	}

	*msg = common.Message{MsgType: common.MessageType(data[0])}
	flags := binary.BigEndian.Uint16(data[1:3])
	r := reader{data: data, pos: headerSize}

	if flags&hasKey != 0 {
		msg.Key = r.readString("key")
	}
	if flags&hasClass != 0 {
		msg.Class = r.readUint64("class")
	}
	if flags&hasHandle != 0 {
		msg.Handle = r.readString("handle")
	}
	if flags&hasSize != 0 {
		msg.Size = r.readUint64("size")
	}
	if flags&hasMtime != 0 {
		msg.Mtime = int64(r.readUint64("mtime"))
	}
	if flags&hasValue != 0 {
		msg.Value = r.readBytes("value")
	}
	if flags&hasOk != 0 {
		msg.Ok = r.readByte("ok") != 0
	}
	if flags&hasErr != 0 {
		msg.Err = r.readString("error")
	}
	if flags&hasCode != 0 {
		msg.Code = r.readUint64("code")
	}

	return r.err
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// sizeBytes calculates the total size needed for serialization
func (b binarySerializerImpl) sizeBytes(msg common.Message) int {
	size := headerSize

	if msg.Key != "" {
		size += 4 + len(msg.Key)
	}
	if msg.Class != 0 {
		size += 8
	}
	if msg.Handle != "" {
		size += 4 + len(msg.Handle)
	}
	if msg.Size != 0 {
		size += 8
	}
	if msg.Mtime != 0 {
		size += 8
	}
	if msg.Value != nil {
		size += 4 + len(msg.Value)
	}
	if msg.Ok {
		size += 1
	}
	if msg.Err != "" {
		size += 4 + len(msg.Err)
	}
	if msg.Code != 0 {
		size += 8
	}
	return size
}

func appendString(b []byte, s string) []byte {
	b = binary.BigEndian.AppendUint32(b, uint32(len(s)))
	return append(b, s...)
}

// reader reads fields in order and remembers the first error.
// Once an error occurred all further reads return zero values.
type reader struct {
	data []byte
	pos  int
	err  error
}

func (r *reader) need(n int, field string) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || r.pos+n > len(r.data) {
		r.err = fmt.Errorf("data too short for %s", field)
		return false
	}
	return true
}

func (r *reader) readByte(field string) byte {
	if !r.need(1, field) {
		return 0
	}
	v := r.data[r.pos]
	r.pos++
	return v
}

func (r *reader) readUint64(field string) uint64 {
	if !r.need(8, field) {
		return 0
	}
	v := binary.BigEndian.Uint64(r.data[r.pos : r.pos+8])
	r.pos += 8
	return v
}

func (r *reader) readBytes(field string) []byte {
	if !r.need(4, field+" length") {
		return nil
	}
	n := int(binary.BigEndian.Uint32(r.data[r.pos : r.pos+4]))
	r.pos += 4
	if !r.need(n, field+" data") {
		return nil
	}
	v := make([]byte, n)
	copy(v, r.data[r.pos:r.pos+n])
	r.pos += n
	return v
}

func (r *reader) readString(field string) string {
	return string(r.readBytes(field))
}
