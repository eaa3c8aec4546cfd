// Package fingerprint computes the content digests that deduplicate paste submissions.
package fingerprint

import (
	"crypto/sha1" //nolint:gosec // legacy fingerprints, not a security boundary
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
)

// Supported digest names.
const (
	BLAKE3  = "blake3"
	BLAKE2b = "blake2b"
	SHA1    = "sha1"
)

// Func returns the lowercase hex digest of data.
type Func func(data []byte) string

// New returns the digest function registered under name.
func New(name string) (Func, error) {
	switch name {
	case BLAKE3, "":
		return func(data []byte) string {
			sum := blake3.Sum256(data)
			return hex.EncodeToString(sum[:])
		}, nil
	case BLAKE2b:
		return func(data []byte) string {
			sum := blake2b.Sum256(data)
			return hex.EncodeToString(sum[:])
		}, nil
	case SHA1:
		return func(data []byte) string {
			sum := sha1.Sum(data) //nolint:gosec
			return hex.EncodeToString(sum[:])
		}, nil
	}
	return nil, fmt.Errorf("unknown digest %q", name)
}
