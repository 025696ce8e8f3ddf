// Package serializer converts RPC messages to bytes and back.
//
// Key Components:
//
//   - IRPCSerializer: Core interface that all serializer implementations must satisfy.
//
//   - binarySerializerImpl: Custom binary format. A header with the message type and a
//     16 bit flag field is followed by only the fields that are set, so a typical enqueue
//     request is a dozen bytes. Recommended for production use.
//
//   - jsonSerializerImpl: JSON encoding, useful for debugging with curl or for clients in
//     other languages. Message types are encoded as their names.
//
// Thread Safety:
//
//	All serializer implementations are stateless and safe for concurrent use
//	across multiple goroutines without additional synchronization.
//
// Usage:
//
//	  serializer := serializer.NewBinarySerializer()
//	  data, err := serializer.Serialize(message)
//	  // ... send data ...
//	  var receivedMsg common.Message
//	  err = serializer.Deserialize(receivedData, &receivedMsg)
package serializer
