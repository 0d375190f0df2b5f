package aesprim

import (
	"crypto/aes"
	"encoding/binary"
	"errors"
)

// defaultIV is the fixed RFC 3394 §2.2.3.1 initial value.
var defaultIV = [8]byte{0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6}

// ErrInvalidKeyWrap is returned by Unwrap when the recovered integrity
// check value does not match defaultIV, per RFC 3394 §2.2.3.2.
var ErrInvalidKeyWrap = errors.New("aesprim: key unwrap integrity check failed")

// ErrKeyDataNotBlockAligned is returned when the content-encryption key
// given to Wrap (or recovered by Unwrap) is not an n*8-byte multiple,
// n >= 1 — RFC 3394 operates over 64-bit blocks.
var ErrKeyDataNotBlockAligned = errors.New("aesprim: key data must be a non-zero multiple of 8 bytes")

// Wrap implements RFC 3394 key wrap: kek wraps cek (n 64-bit blocks,
// n >= 1) into (n+1)*8 bytes written to dest.
func Wrap(kek, cek, dest []byte) (int, error) {
	n := len(cek) / 8
	if n == 0 || len(cek)%8 != 0 {
		return 0, ErrKeyDataNotBlockAligned
	}
	if len(dest) < (n+1)*8 {
		return 0, ErrDestinationTooSmall
	}

	block, err := aes.NewCipher(kek)
	if err != nil {
		return 0, err
	}

	r := make([][8]byte, n)
	for i := 0; i < n; i++ {
		copy(r[i][:], cek[i*8:(i+1)*8])
	}

	var a [8]byte
	copy(a[:], defaultIV[:])

	var buf [16]byte
	for j := 0; j <= 5; j++ {
		for i := 1; i <= n; i++ {
			copy(buf[:8], a[:])
			copy(buf[8:], r[i-1][:])
			block.Encrypt(buf[:], buf[:])

			t := uint64(n*j + i)
			var tb [8]byte
			binary.BigEndian.PutUint64(tb[:], t)
			for k := range a {
				a[k] = buf[k] ^ tb[k]
			}
			copy(r[i-1][:], buf[8:])
		}
	}

	copy(dest[:8], a[:])
	for i := 0; i < n; i++ {
		copy(dest[8+i*8:16+i*8], r[i][:])
	}
	return (n + 1) * 8, nil
}

// Unwrap implements the inverse of Wrap, returning ErrInvalidKeyWrap if
// the recovered integrity check value does not match the fixed IV.
func Unwrap(kek, wrapped, dest []byte) (int, error) {
	total := len(wrapped) / 8
	if total < 2 || len(wrapped)%8 != 0 {
		return 0, ErrKeyDataNotBlockAligned
	}
	n := total - 1
	if len(dest) < n*8 {
		return 0, ErrDestinationTooSmall
	}

	block, err := aes.NewCipher(kek)
	if err != nil {
		return 0, err
	}

	var a [8]byte
	copy(a[:], wrapped[:8])

	r := make([][8]byte, n)
	for i := 0; i < n; i++ {
		copy(r[i][:], wrapped[8+i*8:16+i*8])
	}

	var buf [16]byte
	for j := 5; j >= 0; j-- {
		for i := n; i >= 1; i-- {
			t := uint64(n*j + i)
			var tb [8]byte
			binary.BigEndian.PutUint64(tb[:], t)

			var aXorT [8]byte
			for k := range a {
				aXorT[k] = a[k] ^ tb[k]
			}

			copy(buf[:8], aXorT[:])
			copy(buf[8:], r[i-1][:])
			block.Decrypt(buf[:], buf[:])

			copy(a[:], buf[:8])
			copy(r[i-1][:], buf[8:])
		}
	}

	if a != defaultIV {
		return 0, ErrInvalidKeyWrap
	}

	for i := 0; i < n; i++ {
		copy(dest[i*8:(i+1)*8], r[i][:])
	}
	return n * 8, nil
}
