// Package hmacsha2 implements the HMAC construction (RFC 2104) over the
// SHA-2 family for the HSxxx signature algorithms and for the MAC half of
// the AxxxCBC-HSyyy composite encryption algorithms.
package hmacsha2

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"github.com/kataras/jose/internal/sha2"
)

// Compute writes HMAC(key, data) using the given SHA-2 variant into dest
// and returns the number of bytes written. Keys longer than the variant's
// block size are pre-hashed by crypto/hmac internally; shorter keys are
// zero-padded; the inner/outer pads are the standard 0x36/0x5C.
func Compute(v sha2.Variant, key, data, dest []byte) (int, error) {
	if len(dest) < v.Size() {
		return 0, sha2.ErrDestinationTooSmall
	}
	mac := newMAC(v, key)
	mac.Write(data)
	sum := mac.Sum(dest[:0])
	return len(sum), nil
}

// Sum is the allocating convenience form of Compute.
func Sum(v sha2.Variant, key, data []byte) []byte {
	dest := make([]byte, v.Size())
	_, _ = Compute(v, key, data, dest)
	return dest
}

// Verify reports whether tag is the correct HMAC(key, data) under the
// given variant, in constant time with respect to the comparison.
func Verify(v sha2.Variant, key, data, tag []byte) bool {
	expected := Sum(v, key, data)
	return hmac.Equal(expected, tag)
}

func newMAC(v sha2.Variant, key []byte) hash.Hash {
	switch v {
	case sha2.SHA256:
		return hmac.New(sha256.New, key)
	case sha2.SHA384:
		return hmac.New(sha512.New384, key)
	default:
		return hmac.New(sha512.New, key)
	}
}
