package aesprim

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
)

const (
	// GCMNonceSize is the 96-bit IV length the JWE AxxxGCM algorithms
	// require.
	GCMNonceSize = 12
	// GCMTagSize is the 128-bit authentication tag length.
	GCMTagSize = 16
)

// ErrInvalidTag is returned by DecryptGCM when authentication fails.
var ErrInvalidTag = errors.New("aesprim: invalid authentication tag")

// EncryptGCM encrypts plaintext under AES-GCM with key, a 12-byte nonce,
// and aad (the raw ASCII of the encoded JWE header), writing
// len(plaintext)+GCMTagSize bytes (ciphertext followed by tag) into dest.
func EncryptGCM(key, nonce, aad, plaintext, dest []byte) (int, error) {
	if len(nonce) != GCMNonceSize {
		return 0, errors.New("aesprim: gcm nonce must be 12 bytes")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return 0, err
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, GCMNonceSize)
	if err != nil {
		return 0, err
	}
	n := len(plaintext) + gcm.Overhead()
	if len(dest) < n {
		return 0, ErrDestinationTooSmall
	}
	out := gcm.Seal(dest[:0], nonce, plaintext, aad)
	return len(out), nil
}

// DecryptGCM verifies tag and decrypts ct under AES-GCM with key, nonce,
// and aad, writing the plaintext into dest. ct must not include the tag;
// pass it separately. On authentication failure it returns ErrInvalidTag
// and writes nothing meaningful to dest.
func DecryptGCM(key, nonce, aad, ct, tag, dest []byte) (int, error) {
	if len(nonce) != GCMNonceSize {
		return 0, errors.New("aesprim: gcm nonce must be 12 bytes")
	}
	if len(tag) != GCMTagSize {
		return 0, ErrInvalidTag
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return 0, err
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, GCMNonceSize)
	if err != nil {
		return 0, err
	}
	if len(dest) < len(ct) {
		return 0, ErrDestinationTooSmall
	}

	sealed := make([]byte, 0, len(ct)+len(tag))
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)

	out, err := gcm.Open(dest[:0], nonce, sealed, aad)
	if err != nil {
		return 0, ErrInvalidTag
	}
	return len(out), nil
}
