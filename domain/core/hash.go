package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Fingerprint identifies a dataset shape for memoization. Two datasets with
// the same fingerprint are treated as the same dataset by analysis caches;
// the cache must be invalidated manually when a new dataset is loaded.
type Fingerprint Hash

// NewFingerprint derives a fingerprint from row count and column names.
func NewFingerprint(rows int, columns []string) Fingerprint {
	payload := fmt.Sprintf("%d|%d|%s", rows, len(columns), strings.Join(columns, ","))
	return Fingerprint(NewHash([]byte(payload)))
}

func (f Fingerprint) String() string { return Hash(f).String() }

// Equals checks if two fingerprints are equal
func (f Fingerprint) Equals(other Fingerprint) bool {
	return f == other
}
