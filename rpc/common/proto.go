package common

import (
	"encoding/json"
	"fmt"
	"github.com/ValentinKolb/dLVB/lib/backend"
	"github.com/ValentinKolb/dLVB/lib/ldlm"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message. The namespace a message is meant
// for is carried by the transport, not by the message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// Resource fields
	Key    string `json:"key,omitempty"`    // Object id. Used for: Enqueue, Glimpse, ObjPut, ObjDelete, ObjStat
	Class  uint64 `json:"class,omitempty"`  // Resource class. Used for: Enqueue, Glimpse
	Handle string `json:"handle,omitempty"` // Reference handle. Used for: Enqueue (response), Release, Free, Update, Merge

	// Attribute fields
	Size  uint64 `json:"size,omitempty"`  // Used for: Merge
	Mtime int64  `json:"mtime,omitempty"` // Used for: Merge

	// Payload
	Value []byte `json:"value,omitempty"` // Value block (Enqueue, Glimpse, Update, Merge responses), encoded attributes (ObjPut, ObjStat) or json stats

	// Response only fields
	Ok   bool   `json:"ok,omitempty"`   // Used for: ObjStat, Enqueue, Glimpse responses
	Err  string `json:"err,omitempty"`  // Empty if no error, otherwise contains the error message
	Code uint64 `json:"code,omitempty"` // ldlm.RetCode of Err
}

// SetErr stores err and its return code in the message.
func (m *Message) SetErr(err error) {
	if err == nil {
		return
	}
	m.Err = err.Error()
	m.Code = uint64(ldlm.CodeOf(err))
}

// Error rebuilds the error carried by a response, or nil.
func (m *Message) Error() error {
	if m.Err == "" {
		return nil
	}
	code := ldlm.RetCode(m.Code)
	if code == ldlm.RetCSuccess {
		code = ldlm.RetCBackendError
	}
	if code == ldlm.RetCObjectNotFound {
		return ldlm.WrapError(code, m.Err, backend.ErrNotFound)
	}
	return ldlm.NewError(code, m.Err)
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewEnqueueRequest creates a new Enqueue request
func NewEnqueueRequest(key string, class uint64) *Message {
	return &Message{
		MsgType: MsgTLVBEnqueue,
		Key:     key,
		Class:   class,
	}
}

// NewEnqueueResponse creates a new Enqueue response
func NewEnqueueResponse(handle string, lvb []byte, err error) *Message {
	msg := &Message{
		MsgType: MsgTLVBEnqueue,
		Handle:  handle,
		Value:   lvb,
		Ok:      lvb != nil,
	}
	msg.SetErr(err)
	return msg
}

// NewGlimpseRequest creates a new Glimpse request
func NewGlimpseRequest(key string, class uint64) *Message {
	return &Message{
		MsgType: MsgTLVBGlimpse,
		Key:     key,
		Class:   class,
	}
}

// NewGlimpseResponse creates a new Glimpse response
func NewGlimpseResponse(lvb []byte, err error) *Message {
	msg := &Message{
		MsgType: MsgTLVBGlimpse,
		Value:   lvb,
		Ok:      lvb != nil,
	}
	msg.SetErr(err)
	return msg
}

// NewReleaseRequest creates a new Release request
func NewReleaseRequest(handle string) *Message {
	return &Message{
		MsgType: MsgTLVBRelease,
		Handle:  handle,
	}
}

// NewFreeRequest creates a new Free request
func NewFreeRequest(handle string) *Message {
	return &Message{
		MsgType: MsgTLVBFree,
		Handle:  handle,
	}
}

// NewUpdateRequest creates a new Update request that re-reads the object from the backend
func NewUpdateRequest(handle string) *Message {
	return &Message{
		MsgType: MsgTLVBUpdate,
		Handle:  handle,
	}
}

// NewMergeRequest creates a new Merge request carrying attributes reported by the lock holder
func NewMergeRequest(handle string, size uint64, mtime int64) *Message {
	return &Message{
		MsgType: MsgTLVBMerge,
		Handle:  handle,
		Size:    size,
		Mtime:   mtime,
	}
}

// NewLVBResponse creates a response for Update and Merge, carrying the resulting value block
func NewLVBResponse(msgType MessageType, lvb []byte, err error) *Message {
	msg := &Message{
		MsgType: msgType,
		Value:   lvb,
		Ok:      lvb != nil,
	}
	msg.SetErr(err)
	return msg
}

// NewStatsRequest creates a new Stats request
func NewStatsRequest() *Message {
	return &Message{
		MsgType: MsgTLVBStats,
	}
}

// NewStatsResponse creates a new Stats response
func NewStatsResponse(stats ldlm.Stats) *Message {
	msg := &Message{
		MsgType: MsgTLVBStats,
	}
	b, err := json.Marshal(stats)
	if err != nil {
		msg.SetErr(err)
		return msg
	}
	msg.Value = b
	return msg
}

// NewObjPutRequest creates a new object Put request
func NewObjPutRequest(key string, attrs backend.Attributes) *Message {
	return &Message{
		MsgType: MsgTObjPut,
		Key:     key,
		Value:   attrs.AppendBinary(nil),
	}
}

// NewObjDeleteRequest creates a new object Delete request
func NewObjDeleteRequest(key string) *Message {
	return &Message{
		MsgType: MsgTObjDelete,
		Key:     key,
	}
}

// NewObjStatRequest creates a new object Stat request
func NewObjStatRequest(key string) *Message {
	return &Message{
		MsgType: MsgTObjStat,
		Key:     key,
	}
}

// NewObjStatResponse creates a new object Stat response
func NewObjStatResponse(attrs backend.Attributes, ok bool, err error) *Message {
	msg := &Message{
		MsgType: MsgTObjStat,
		Ok:      ok,
	}
	if ok {
		msg.Value = attrs.AppendBinary(nil)
	}
	msg.SetErr(err)
	return msg
}

// NewSuccessResponse creates a response for operations that only report errors
// (Release, Free, ObjPut, ObjDelete)
func NewSuccessResponse(msgType MessageType, err error) *Message {
	msg := &Message{
		MsgType: msgType,
	}
	msg.SetErr(err)
	return msg
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Err:     err,
		Code:    uint64(ldlm.RetCInvalidRequest),
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

var messageTypeNames = map[MessageType]string{
	MsgTSuccess:    "success",
	MsgTError:      "error",
	MsgTLVBEnqueue: "enqueue",
	MsgTLVBGlimpse: "glimpse",
	MsgTLVBRelease: "release",
	MsgTLVBFree:    "free",
	MsgTLVBUpdate:  "update",
	MsgTLVBMerge:   "merge",
	MsgTLVBStats:   "stats",
	MsgTObjPut:     "objPut",
	MsgTObjDelete:  "objDelete",
	MsgTObjStat:    "objStat",
}

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	if name, ok := messageTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for mt, name := range messageTypeNames {
		if name == s {
			*t = mt
			return nil
		}
	}
	return fmt.Errorf("unknown message type: %s", s)
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred

	// Lock value block operations

	MsgTLVBEnqueue // Grant a reference on a resource and populate its value block
	MsgTLVBGlimpse // Read the current value block without keeping a reference
	MsgTLVBRelease // Drop a reference
	MsgTLVBFree    // Drop the cached value block of a referenced resource
	MsgTLVBUpdate  // Re-read the value block from the backend
	MsgTLVBMerge   // Merge attributes reported by the lock holder
	MsgTLVBStats   // Namespace statistics

	// Object backend operations

	MsgTObjPut    // Create or replace an object's attributes
	MsgTObjDelete // Delete an object
	MsgTObjStat   // Read an object's attributes
)
