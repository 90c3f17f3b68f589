// Package checksum computes the content digests used for ETags and index
// change detection.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// String is Sum for note content held as a string.
func String(content string) string {
	return Sum([]byte(content))
}

// Match reports whether content hashes to want. An empty want always matches.
func Match(content, want string) bool {
	return want == "" || String(content) == want
}
