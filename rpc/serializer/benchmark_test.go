package serializer

import (
	"github.com/ValentinKolb/dLVB/rpc/common"
	"testing"
)

// benchmarkMessages covers the messages a server sees most, request and response
var benchmarkMessages = map[string]common.Message{
	"Success": {MsgType: common.MsgTSuccess},
	"Enqueue": {MsgType: common.MsgTLVBEnqueue, Key: "obj-42"},
	"EnqueueResponse": {
		MsgType: common.MsgTLVBEnqueue,
		Handle:  "4c6f72656d20697073756d20646f6c6f",
		Value:   make([]byte, 16),
		Ok:      true,
	},
	"Merge": {
		MsgType: common.MsgTLVBMerge,
		Handle:  "4c6f72656d20697073756d20646f6c6f",
		Size:    1 << 30,
		Mtime:   1700000000,
	},
	"ObjPut": {
		MsgType: common.MsgTObjPut,
		Key:     "volumes/7/objects/0000000000000000000000000000000000000000/data",
		Value:   make([]byte, 44),
	},
	"Error": {
		MsgType: common.MsgTLVBGlimpse,
		Err:     "ldlm (code ObjectNotFound): object obj-42: backend: object not found",
		Code:    2,
	},
}

// BenchmarkRoundTrip encodes and decodes every message and reports its encoded size
func BenchmarkRoundTrip(b *testing.B) {
	for name, factory := range testSerializers {
		s := factory()
		for msgName, msg := range benchmarkMessages {
			b.Run(name+"/"+msgName, func(b *testing.B) {
				data, err := s.Serialize(msg)
				if err != nil {
					b.Fatalf("Failed to serialize: %v", err)
				}
				b.ReportMetric(float64(len(data)), "bytes/msg")
				b.ReportAllocs()
				b.ResetTimer()

				for i := 0; i < b.N; i++ {
					data, _ = s.Serialize(msg)
					var out common.Message
					if err := s.Deserialize(data, &out); err != nil {
						b.Fatalf("Failed to deserialize: %v", err)
					}
				}
			})
		}
	}
}
