package internal

import (
	"github.com/ValentinKolb/dLVB/lib/backend"
	"testing"
)

func TestSizeBytes(t *testing.T) {
	tests := []struct {
		name     string
		command  Command
		expected int
	}{
		{
			name:     "Put",
			command:  Command{Type: CommandTPut, ObjectID: "obj-42"},
			expected: 1 + 4 + 6 + backend.AttributesSize,
		},
		{
			name:     "Delete",
			command:  Command{Type: CommandTDelete, ObjectID: "obj-42"},
			expected: 1 + 4 + 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if size := tt.command.SizeBytes(); size != tt.expected {
				t.Errorf("SizeBytes() = %v, want %v", size, tt.expected)
			}
			if n := len(tt.command.Serialize()); n != tt.expected {
				t.Errorf("len(Serialize()) = %v, want %v", n, tt.expected)
			}
		})
	}
}

func TestSerializeDeserialize(t *testing.T) {
	original := Command{
		Type:     CommandTPut,
		ObjectID: "obj-42",
		Attrs:    backend.Attributes{Size: 4096, Mtime: 1000, Mode: 0644},
	}

	var decoded Command
	if err := decoded.Deserialize(original.Serialize()); err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	if decoded != original {
		t.Errorf("Expected %+v, got %+v", original, decoded)
	}
}

func TestDeserializeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"Empty", nil},
		{"Header only", []byte{byte(CommandTDelete), 0, 0}},
		{"Truncated id", []byte{byte(CommandTDelete), 0, 0, 0, 9, 'a'}},
		{"Truncated attributes", []byte{byte(CommandTPut), 0, 0, 0, 1, 'a', 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Command
			if err := c.Deserialize(tt.data); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}
