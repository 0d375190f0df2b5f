// Package base64url implements the unpadded, URL-safe Base64 alphabet
// (RFC 4648 §5) used throughout JOSE compact serialization, with an
// in-place decode contract so the reader never allocates a second buffer
// for header/payload/signature segments.
package base64url

import (
	"encoding/base64"
	"errors"
)

// ErrDestinationTooSmall is returned by Encode/Decode when the caller's
// destination buffer cannot hold the result; callers must size their
// buffer using EncodedLen/DecodedLen first.
var ErrDestinationTooSmall = errors.New("base64url: destination too small")

// ErrInvalidCharacter is returned for any byte outside the base64url
// alphabet (or, for Decode, outside the alphabet plus '=').
var ErrInvalidCharacter = errors.New("base64url: invalid character")

var enc = base64.RawURLEncoding

// EncodedLen returns ((n + 2) / 3) * 4, the destination size Encode
// requires for an n-byte input. It is an upper bound: Encode itself
// writes exactly ⌈4n/3⌉ characters (no padding) and returns that count.
func EncodedLen(n int) int {
	return ((n + 2) / 3) * 4
}

// DecodedLen returns an upper bound on the number of bytes Decode writes
// for an encoded input of length n (n may include padding).
func DecodedLen(n int) int {
	return enc.DecodedLen(n)
}

// Encode writes the base64url encoding of src into dst and returns the
// number of bytes written. dst must be at least EncodedLen(len(src))
// bytes; otherwise ErrDestinationTooSmall is returned and dst is
// untouched.
func Encode(dst, src []byte) (int, error) {
	if len(dst) < EncodedLen(len(src)) {
		return 0, ErrDestinationTooSmall
	}
	n := enc.EncodedLen(len(src))
	enc.Encode(dst[:n], src)
	return n, nil
}

// AppendEncode is the allocating convenience form of Encode, used by
// call sites that do not already own a sized destination (e.g. building
// a JSON Web Key field).
func AppendEncode(src []byte) []byte {
	dst := make([]byte, enc.EncodedLen(len(src)))
	enc.Encode(dst, src)
	return dst
}

// Decode decodes src (accepting both padded and unpadded input) into dst
// in place: dst and src may overlap exactly at offset 0, and the decoded
// bytes never exceed len(src) in count, so decoding into the same backing
// array as src is always safe. It returns the number of bytes written.
//
// Any byte outside the base64url alphabet (and, for padded input, outside
// a single trailing run of '=') fails with ErrInvalidCharacter.
func Decode(dst, src []byte) (int, error) {
	trimmed := stripPadding(src)
	n := enc.DecodedLen(len(trimmed))
	if len(dst) < n {
		return 0, ErrDestinationTooSmall
	}
	written, err := enc.Decode(dst[:n], trimmed)
	if err != nil {
		return 0, ErrInvalidCharacter
	}
	return written, nil
}

// AppendDecode is the allocating convenience form of Decode.
func AppendDecode(src []byte) ([]byte, error) {
	trimmed := stripPadding(src)
	dst := make([]byte, enc.DecodedLen(len(trimmed)))
	n, err := enc.Decode(dst, trimmed)
	if err != nil {
		return nil, ErrInvalidCharacter
	}
	return dst[:n], nil
}

// stripPadding trims a trailing run of '=' so both padded and unpadded
// callers can share the RawURLEncoding codec.
func stripPadding(src []byte) []byte {
	end := len(src)
	for end > 0 && src[end-1] == '=' {
		end--
	}
	return src[:end]
}
