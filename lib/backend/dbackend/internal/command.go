package internal

import (
	"encoding/binary"
	"fmt"
	"github.com/ValentinKolb/dLVB/lib/backend"
)

// CommandType defines the possible operations for the state machine.
type CommandType uint8

const (
	CommandTPut    CommandType = iota + 1 // Create an object or replace its attributes.
	CommandTDelete                        // Remove an object.
)

func (ct CommandType) String() string {
	switch ct {
	case CommandTPut:
		return "Put"
	case CommandTDelete:
		return "Delete"
	default:
		return fmt.Sprintf("Unknown(%d)", ct)
	}
}

// ResultCode is stored in sm.Result.Value for every applied entry.
type ResultCode uint64

const (
	ResultCSuccess        ResultCode = iota // Command applied.
	ResultCInternalError                    // Command could not be decoded.
	ResultCInvalidCommand                   // Unknown or malformed command.
)

// Command represents a command to be executed by the state machine (a single entry in the raft log)
type Command struct {
	Type     CommandType
	ObjectID string
	Attrs    backend.Attributes
}

// SizeBytes returns the exact number of bytes needed to serialize this command
func (c *Command) SizeBytes() int {
	size := 1 + 4 + len(c.ObjectID) // Type + IDLen + ID
	if c.Type == CommandTPut {
		size += backend.AttributesSize
	}
	return size
}

// Serialize serializes a command into a byte array with the format:
// 1 byte for operation type,
// 4 bytes for object id length (big endian),
// N bytes for object id,
// backend.AttributesSize bytes of attributes (put only)
func (c *Command) Serialize() []byte {
	b := make([]byte, 0, c.SizeBytes())
	b = append(b, byte(c.Type))
	b = binary.BigEndian.AppendUint32(b, uint32(len(c.ObjectID)))
	b = append(b, c.ObjectID...)
	if c.Type == CommandTPut {
		b = c.Attrs.AppendBinary(b)
	}
	return b
}

// Deserialize decodes a command written by Serialize.
func (c *Command) Deserialize(b []byte) error {
	if len(b) < 5 {
		return fmt.Errorf("command too short: %d bytes", len(b))
	}
	c.Type = CommandType(b[0])

	idLen := int(binary.BigEndian.Uint32(b[1:5]))
	if 5+idLen > len(b) {
		return fmt.Errorf("command too short for object id of %d bytes", idLen)
	}
	c.ObjectID = string(b[5 : 5+idLen])

	c.Attrs = backend.Attributes{}
	if c.Type == CommandTPut {
		attrs, err := backend.DecodeAttributes(b[5+idLen:])
		if err != nil {
			return err
		}
		c.Attrs = attrs
	}
	return nil
}
