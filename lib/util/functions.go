package util

import (
	"crypto/rand"
	"encoding/hex"
)

// --------------------------------------------------------------------------
// Hash Functions
// --------------------------------------------------------------------------

// HashString returns the FNV-1a hash of s, mixed with seed.
// It is used to pick worker partitions and to derive raft replica and shard ids from names,
// so the result must stay stable across releases.
func HashString(s string, seed uint64) uint64 {
	const (
		offset64 = 14695981039346656037
		prime64  = 1099511628211
	)

	hash := uint64(offset64) ^ seed
	for i := 0; i < len(s); i++ {
		hash ^= uint64(s[i])
		hash *= prime64
	}
	return hash
}

// --------------------------------------------------------------------------
// Handles
// --------------------------------------------------------------------------

const handleBytes = 16

// NewHandle returns a random hex handle that names a granted resource reference.
func NewHandle() (string, error) {
	b := make([]byte, handleBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
