// Package hash provides content fingerprints for generated artifacts.
package hash

import (
	"encoding/hex"

	"github.com/zeebo/xxh3"
)

// Fingerprint returns the xxh3 128-bit hash of data as 32 hex characters.
func Fingerprint(data []byte) string {
	sum := xxh3.Hash128(data).Bytes()
	return hex.EncodeToString(sum[:])
}

// Combine folds named fingerprints, in order, into one fingerprint.
//
// Each pair is framed as name NUL fingerprint LF so that moving bytes between
// a name and its fingerprint changes the result.
func Combine(pairs ...[2]string) string {
	h := xxh3.New()
	for _, p := range pairs {
		_, _ = h.WriteString(p[0])
		_, _ = h.Write([]byte{0})
		_, _ = h.WriteString(p[1])
		_, _ = h.Write([]byte{'\n'})
	}
	sum := h.Sum128().Bytes()

	return hex.EncodeToString(sum[:])
}
