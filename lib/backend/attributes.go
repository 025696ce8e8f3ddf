package backend

import (
	"encoding/binary"
	"fmt"
)

// AttributesSize is the number of bytes of an encoded Attributes record.
const AttributesSize = 8 + 8 + 8 + 8 + 8 + 4

// Attributes is the attribute record a backend reports for an object.
// Times are in seconds since the epoch.
type Attributes struct {
	Size   uint64 `json:"size"`
	Mtime  int64  `json:"mtime"`
	Atime  int64  `json:"atime"`
	Ctime  int64  `json:"ctime"`
	Blocks uint64 `json:"blocks"`
	Mode   uint32 `json:"mode"`
}

// String returns a short representation used in logs and the CLI.
func (a Attributes) String() string {
	return fmt.Sprintf("size=%d mtime=%d atime=%d ctime=%d blocks=%d mode=%o",
		a.Size, a.Mtime, a.Atime, a.Ctime, a.Blocks, a.Mode)
}

// AppendBinary appends the fixed-size big endian encoding of a to b.
func (a Attributes) AppendBinary(b []byte) []byte {
	b = binary.BigEndian.AppendUint64(b, a.Size)
	b = binary.BigEndian.AppendUint64(b, uint64(a.Mtime))
	b = binary.BigEndian.AppendUint64(b, uint64(a.Atime))
	b = binary.BigEndian.AppendUint64(b, uint64(a.Ctime))
	b = binary.BigEndian.AppendUint64(b, a.Blocks)
	b = binary.BigEndian.AppendUint32(b, a.Mode)
	return b
}

// DecodeAttributes decodes a record written by AppendBinary.
func DecodeAttributes(b []byte) (Attributes, error) {
	if len(b) < AttributesSize {
		return Attributes{}, fmt.Errorf("attributes: need %d bytes, got %d", AttributesSize, len(b))
	}
	return Attributes{
		Size:   binary.BigEndian.Uint64(b[0:8]),
		Mtime:  int64(binary.BigEndian.Uint64(b[8:16])),
		Atime:  int64(binary.BigEndian.Uint64(b[16:24])),
		Ctime:  int64(binary.BigEndian.Uint64(b[24:32])),
		Blocks: binary.BigEndian.Uint64(b[32:40]),
		Mode:   binary.BigEndian.Uint32(b[40:44]),
	}, nil
}
