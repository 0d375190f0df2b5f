// Package aesprim implements the symmetric primitives the rest of the
// library builds on: AES-CBC with PKCS#7 padding, AES-GCM, AES key wrap
// (RFC 3394), and the AxxxCBC-HSyyy composite authenticated encryption
// construction.
package aesprim

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"errors"
)

const blockSize = 16

var (
	// ErrEmptyPlaintext is returned by EncryptCBC for zero-length input.
	ErrEmptyPlaintext = errors.New("aesprim: plaintext must be non-empty")
	// ErrInvalidIVLength is returned when iv is not exactly one block.
	ErrInvalidIVLength = errors.New("aesprim: iv must be 16 bytes")
	// ErrDestinationTooSmall is returned when a caller-supplied output
	// buffer cannot hold the result.
	ErrDestinationTooSmall = errors.New("aesprim: destination too small")
	// errBadPadding is the internal signal for TryDecryptCBC's "false"
	// outcome; it never escapes this package as a distinguishable error.
	errBadPadding = errors.New("aesprim: bad padding")
)

// CBCCiphertextLen returns ((plaintextLen + 16) & ^15), the exact output
// length EncryptCBC produces after PKCS#7 padding.
func CBCCiphertextLen(plaintextLen int) int {
	return (plaintextLen + blockSize) &^ (blockSize - 1)
}

// EncryptCBC pads plaintext with PKCS#7 and encrypts it under AES-CBC
// with the given key and 16-byte iv, writing CBCCiphertextLen(len(plaintext))
// bytes into dest.
func EncryptCBC(key, iv, plaintext, dest []byte) (int, error) {
	if len(plaintext) == 0 {
		return 0, ErrEmptyPlaintext
	}
	if len(iv) != blockSize {
		return 0, ErrInvalidIVLength
	}
	n := CBCCiphertextLen(len(plaintext))
	if len(dest) < n {
		return 0, ErrDestinationTooSmall
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return 0, err
	}

	padded := dest[:n]
	copy(padded, plaintext)
	pad := byte(n - len(plaintext))
	for i := len(plaintext); i < n; i++ {
		padded[i] = pad
	}

	cipher.NewCBCEncrypter(block, iv).CryptBlocks(padded, padded)
	return n, nil
}

// TryDecryptCBC decrypts ct (a non-empty multiple of the block size)
// under AES-CBC with key and iv, writing the unpadded plaintext into
// ptBuf. It returns (false, 0) on any bad-padding condition rather than
// an error: padding failures must never panic and must be
// indistinguishable in timing from a well-formed but meaningless pad
// byte, so callers can't use error timing as a padding oracle.
func TryDecryptCBC(key, iv, ct, ptBuf []byte) (ok bool, n int) {
	if len(iv) != blockSize || len(ct) == 0 || len(ct)%blockSize != 0 {
		return false, 0
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return false, 0
	}
	if len(ptBuf) < len(ct) {
		return false, 0
	}

	out := ptBuf[:len(ct)]
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ct)

	unpadded, err := unpadPKCS7(out)
	if err != nil {
		return false, 0
	}
	return true, len(unpadded)
}

func unpadPKCS7(data []byte) ([]byte, error) {
	n := len(data)
	if n == 0 {
		return nil, errBadPadding
	}
	pad := int(data[n-1])
	bad := subtle.ConstantTimeEq(int32(pad), 0) |
		subtle.ConstantTimeLessOrEq(blockSize+1, pad) |
		subtle.ConstantTimeLessOrEq(n+1, pad)
	// Every byte of the last block is compared whatever pad says, so the
	// work done does not depend on where the padding goes wrong.
	for i := 1; i <= blockSize && i <= n; i++ {
		bad |= subtle.ConstantTimeLessOrEq(i, pad) &^ subtle.ConstantTimeByteEq(data[n-i], byte(pad))
	}
	if bad != 0 {
		return nil, errBadPadding
	}
	return data[:n-pad], nil
}
