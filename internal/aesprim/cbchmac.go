package aesprim

import (
	"encoding/binary"
	"errors"

	"github.com/kataras/jose/internal/hmacsha2"
	"github.com/kataras/jose/internal/sha2"
)

// ErrCompositeKeySize is returned when a composite AxxxCBC-HSyyy key is
// not exactly twice the CBC key size (the MAC half and the ENC half are
// equal length by construction).
var ErrCompositeKeySize = errors.New("aesprim: composite key must be two equal halves")

// CompositeParams names one AxxxCBC-HSyyy instance: macKeyLen/encKeyLen
// are each half the composite key; macVariant is the SHA-2 variant HMAC
// runs under; tagLen is the truncated output length (half the MAC size).
type CompositeParams struct {
	MACKeyLen  int
	EncKeyLen  int
	MACVariant sha2.Variant
	TagLen     int
}

// A128CBC_HS256, A192CBC_HS384, A256CBC_HS512 are the three composite
// AES-CBC-with-HMAC parameter sets RFC 7518 §5.2 defines.
var (
	A128CBC_HS256 = CompositeParams{MACKeyLen: 16, EncKeyLen: 16, MACVariant: sha2.SHA256, TagLen: 16}
	A192CBC_HS384 = CompositeParams{MACKeyLen: 24, EncKeyLen: 24, MACVariant: sha2.SHA384, TagLen: 24}
	A256CBC_HS512 = CompositeParams{MACKeyLen: 32, EncKeyLen: 32, MACVariant: sha2.SHA512, TagLen: 32}
)

// split divides a composite key into its leading MAC key and trailing
// ENC key halves, per RFC 7518 §5.2.2.1.
func (p CompositeParams) split(key []byte) (macKey, encKey []byte, err error) {
	if len(key) != p.MACKeyLen+p.EncKeyLen {
		return nil, nil, ErrCompositeKeySize
	}
	return key[:p.MACKeyLen], key[p.MACKeyLen:], nil
}

// macInput builds AAD || IV || CT || AL, where AL is the 64-bit
// big-endian bit length of AAD.
func macInput(aad, iv, ct []byte) []byte {
	buf := make([]byte, 0, len(aad)+len(iv)+len(ct)+8)
	buf = append(buf, aad...)
	buf = append(buf, iv...)
	buf = append(buf, ct...)
	var al [8]byte
	binary.BigEndian.PutUint64(al[:], uint64(len(aad))*8)
	buf = append(buf, al[:]...)
	return buf
}

// EncryptCompositeCBCHMAC implements AxxxCBC-HSyyy: CBC-encrypt
// plaintext under the ENC half of key, then HMAC AAD||IV||CT||AL under
// the MAC half, truncating the tag to p.TagLen. It writes ciphertext
// followed by the truncated tag into dest.
func EncryptCompositeCBCHMAC(p CompositeParams, key, iv, aad, plaintext, dest []byte) (int, error) {
	macKey, encKey, err := p.split(key)
	if err != nil {
		return 0, err
	}

	ctLen := CBCCiphertextLen(len(plaintext))
	if len(dest) < ctLen+p.TagLen {
		return 0, ErrDestinationTooSmall
	}

	if _, err := EncryptCBC(encKey, iv, plaintext, dest[:ctLen]); err != nil {
		return 0, err
	}
	ct := dest[:ctLen]

	tag := hmacsha2.Sum(p.MACVariant, macKey, macInput(aad, iv, ct))
	copy(dest[ctLen:ctLen+p.TagLen], tag[:p.TagLen])

	return ctLen + p.TagLen, nil
}

// DecryptCompositeCBCHMAC verifies the tag (constant-time) and then
// CBC-decrypts ct under the ENC half of key, writing the unpadded
// plaintext into dest. Any mismatch — tag, IV, or AAD — fails with
// ErrInvalidTag, never with a padding-specific error.
func DecryptCompositeCBCHMAC(p CompositeParams, key, iv, aad, ct, tag, dest []byte) (int, error) {
	macKey, encKey, err := p.split(key)
	if err != nil {
		return 0, err
	}
	if len(tag) != p.TagLen {
		return 0, ErrInvalidTag
	}

	expected := hmacsha2.Sum(p.MACVariant, macKey, macInput(aad, iv, ct))
	if !constantTimeEqual(expected[:p.TagLen], tag) {
		return 0, ErrInvalidTag
	}

	ok, n := TryDecryptCBC(encKey, iv, ct, dest)
	if !ok {
		return 0, ErrInvalidTag
	}
	return n, nil
}

func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var v byte
	for i := range a {
		v |= a[i] ^ b[i]
	}
	return v == 0
}
