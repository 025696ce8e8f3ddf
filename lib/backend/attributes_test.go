package backend

import (
	"errors"
	"testing"
)

func TestAttributesEncoding(t *testing.T) {
	attrs := Attributes{
		Size:   1 << 40,
		Mtime:  -5,
		Atime:  1700000000,
		Ctime:  1700000001,
		Blocks: 8,
		Mode:   0100644,
	}

	b := attrs.AppendBinary(nil)
	if len(b) != AttributesSize {
		t.Fatalf("Expected %d bytes, got %d", AttributesSize, len(b))
	}

	got, err := DecodeAttributes(b)
	if err != nil {
		t.Fatalf("DecodeAttributes failed: %v", err)
	}
	if got != attrs {
		t.Errorf("Expected %v, got %v", attrs, got)
	}

	if _, err := DecodeAttributes(b[:AttributesSize-1]); err == nil {
		t.Error("Expected error for short buffer")
	}
}

func TestErrorUnwrap(t *testing.T) {
	err := &Error{Op: "lookup", ObjectID: "obj-1", Err: ErrNotFound}
	if !errors.Is(err, ErrNotFound) {
		t.Error("Expected backend.Error to unwrap to ErrNotFound")
	}
	if err.Error() == "" {
		t.Error("Expected non-empty error message")
	}
}
