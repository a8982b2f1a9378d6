// Package hashx computes the hex-encoded SHA-256 digests used for content
// and attachment integrity checks. The digests detect out-of-band tampering
// after the fact; they do not prevent it.
package hashx

import (
	"crypto/sha256"
	"encoding/hex"
)

// SumHex returns the hex-encoded SHA-256 digest of data.
func SumHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// SumHexString returns the hex-encoded SHA-256 digest of s.
func SumHexString(s string) string {
	return SumHex([]byte(s))
}

// Matches reports whether data hashes to the stored hex digest.
func Matches(storedHex string, data []byte) bool {
	return SumHex(data) == storedHex
}
