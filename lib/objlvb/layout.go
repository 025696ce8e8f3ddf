package objlvb

import (
	"encoding/binary"
	"fmt"
)

// Size is the length of an object value block.
const Size = 16

// LVB is the decoded object value block.
type LVB struct {
	Size  uint64 `json:"size"`
	Mtime int64  `json:"mtime"`
}

func (l LVB) String() string {
	return fmt.Sprintf("size=%d mtime=%d", l.Size, l.Mtime)
}

// Encode writes v into dst, which must be exactly Size bytes long.
func Encode(dst []byte, v LVB) error {
	if len(dst) != Size {
		return fmt.Errorf("objlvb: value block must be %d bytes, got %d", Size, len(dst))
	}
	binary.LittleEndian.PutUint64(dst[0:8], v.Size)
	binary.LittleEndian.PutUint64(dst[8:16], uint64(v.Mtime))
	return nil
}

// Decode reads a value block written by Encode.
func Decode(b []byte) (LVB, error) {
	if len(b) != Size {
		return LVB{}, fmt.Errorf("objlvb: value block must be %d bytes, got %d", Size, len(b))
	}
	return LVB{
		Size:  binary.LittleEndian.Uint64(b[0:8]),
		Mtime: int64(binary.LittleEndian.Uint64(b[8:16])),
	}, nil
}
