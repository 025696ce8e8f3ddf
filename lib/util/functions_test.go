package util

import "testing"

func TestHashString(t *testing.T) {
	// FNV-1a reference values
	if got := HashString("", 0); got != 14695981039346656037 {
		t.Errorf("Unexpected hash of empty string: %d", got)
	}
	if got := HashString("a", 0); got != 0xaf63dc4c8601ec8c {
		t.Errorf("Unexpected hash of 'a': %x", got)
	}
	if HashString("obj-1", 0) == HashString("obj-1", 1) {
		t.Error("Expected seed to change the hash")
	}
}

func TestNewHandle(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		h, err := NewHandle()
		if err != nil {
			t.Fatalf("NewHandle failed: %v", err)
		}
		if len(h) != 2*handleBytes {
			t.Fatalf("Expected handle of %d chars, got %q", 2*handleBytes, h)
		}
		if seen[h] {
			t.Fatalf("Duplicate handle %s", h)
		}
		seen[h] = true
	}
}
