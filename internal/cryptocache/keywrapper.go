package cryptocache

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"hash"
	"math/big"

	"github.com/kataras/jose/internal/aesprim"
	"github.com/kataras/jose/jwa"
	"github.com/kataras/jose/jwk"
)

var (
	ErrUnsupportedKeyManagementAlgorithm = errors.New("cryptocache: unsupported key management algorithm")
	ErrInvalidKeyWrap                    = aesprim.ErrInvalidKeyWrap
)

// ECDHParams carries the header fields an ECDH-ES (or ECDH-ES+AxxxKW)
// wrap produces and an unwrap consumes: the ephemeral public key, and
// the optional Agreement PartyUInfo/PartyVInfo.
type ECDHParams struct {
	EphemeralPublic *jwk.Key
	Apu, Apv        []byte
}

// KeyWrapper is the key-management operation object: one per
// (Jwk, KeyManagementAlgorithm [, EncryptionAlgorithm]) triple — the
// encryption algorithm only matters for direct ECDH-ES, whose Concat-KDF
// output length and otherInfo come from it; ECDH-ES+AxxxKW derives its
// key-encryption key from the wrap algorithm's name instead.
type KeyWrapper struct {
	key *jwk.Key
	kw  jwa.KeyManagementAlgorithm
	enc jwa.EncryptionAlgorithm
}

// Wrap produces the wrapped (or, for dir, empty) encrypted key segment
// for cek, plus any ECDH-ES ephemeral-key header parameters and, for
// AxxxGCMKW, the generated IV and authentication tag.
func (w *KeyWrapper) Wrap(cek []byte) (wrapped []byte, ecdhParams *ECDHParams, gcmIV, gcmTag []byte, err error) {
	switch w.kw {
	case jwa.Dir:
		return nil, nil, nil, nil, nil
	case jwa.A128KW, jwa.A192KW, jwa.A256KW:
		kek := w.key.Symmetric()
		dst := make([]byte, (len(cek)/8+1)*8)
		n, err := aesprim.Wrap(kek, cek, dst)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		return dst[:n], nil, nil, nil, nil
	case jwa.A128GCMKW, jwa.A192GCMKW, jwa.A256GCMKW:
		kek := w.key.Symmetric()
		iv := make([]byte, aesprim.GCMNonceSize)
		if _, err := rand.Read(iv); err != nil {
			return nil, nil, nil, nil, err
		}
		dst := make([]byte, len(cek)+aesprim.GCMTagSize)
		n, err := aesprim.EncryptGCM(kek, iv, nil, cek, dst)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		return dst[:n-aesprim.GCMTagSize], nil, iv, dst[n-aesprim.GCMTagSize : n], nil
	case jwa.RSA1_5, jwa.RSAOAEP, jwa.RSAOAEP256, jwa.RSAOAEP384, jwa.RSAOAEP512:
		pub, err := w.key.RSAPublicKey()
		if err != nil {
			return nil, nil, nil, nil, err
		}
		ct, err := rsaEncrypt(w.kw, pub, cek)
		return ct, nil, nil, nil, err
	case jwa.ECDHES, jwa.ECDHESA128KW, jwa.ECDHESA192KW, jwa.ECDHESA256KW:
		return w.wrapECDH(cek)
	default:
		return nil, nil, nil, nil, ErrUnsupportedKeyManagementAlgorithm
	}
}

// Unwrap recovers the CEK from the wrapped key segment (and, for GCMKW,
// its iv/tag; for ECDH-ES, the sender's ephemeral public key and
// apu/apv).
func (w *KeyWrapper) Unwrap(wrapped []byte, cekLen int, ecdhParams *ECDHParams, gcmIV, gcmTag []byte) ([]byte, error) {
	switch w.kw {
	case jwa.Dir:
		return w.key.Symmetric(), nil
	case jwa.A128KW, jwa.A192KW, jwa.A256KW:
		kek := w.key.Symmetric()
		dst := make([]byte, cekLen)
		n, err := aesprim.Unwrap(kek, wrapped, dst)
		if err != nil {
			return nil, err
		}
		return dst[:n], nil
	case jwa.A128GCMKW, jwa.A192GCMKW, jwa.A256GCMKW:
		kek := w.key.Symmetric()
		dst := make([]byte, cekLen)
		n, err := aesprim.DecryptGCM(kek, gcmIV, nil, wrapped, gcmTag, dst)
		if err != nil {
			return nil, err
		}
		return dst[:n], nil
	case jwa.RSA1_5, jwa.RSAOAEP, jwa.RSAOAEP256, jwa.RSAOAEP384, jwa.RSAOAEP512:
		priv, err := w.key.RSAPrivateKey()
		if err != nil {
			return nil, err
		}
		return rsaDecrypt(w.kw, priv, wrapped)
	case jwa.ECDHES, jwa.ECDHESA128KW, jwa.ECDHESA192KW, jwa.ECDHESA256KW:
		return w.unwrapECDH(wrapped, cekLen, ecdhParams)
	default:
		return nil, ErrUnsupportedKeyManagementAlgorithm
	}
}

func rsaEncrypt(alg jwa.KeyManagementAlgorithm, pub *rsa.PublicKey, cek []byte) ([]byte, error) {
	if alg == jwa.RSA1_5 {
		return rsa.EncryptPKCS1v15(rand.Reader, pub, cek)
	}
	return rsa.EncryptOAEP(oaepHashFor(alg)(), rand.Reader, pub, cek, nil)
}

func rsaDecrypt(alg jwa.KeyManagementAlgorithm, priv *rsa.PrivateKey, ct []byte) ([]byte, error) {
	if alg == jwa.RSA1_5 {
		return rsa.DecryptPKCS1v15(rand.Reader, priv, ct)
	}
	return rsa.DecryptOAEP(oaepHashFor(alg)(), rand.Reader, priv, ct, nil)
}

// oaepHashFor picks the OAEP digest RFC 7518 §4.3 mandates per algorithm:
// plain RSA-OAEP uses SHA-1 (RFC 3447 §A.2.1's default, the digest every
// RFC-7518-compliant peer expects for this exact name), while the
// RSA-OAEP-256/384/512 variants name their digest explicitly.
func oaepHashFor(alg jwa.KeyManagementAlgorithm) func() hash.Hash {
	switch alg {
	case jwa.RSAOAEP256:
		return sha256.New
	case jwa.RSAOAEP384:
		return sha512.New384
	case jwa.RSAOAEP512:
		return sha512.New
	default: // jwa.RSAOAEP
		return sha1.New
	}
}

// ---- ECDH-ES (RFC 7518 §4.6, RFC 8037 for the curve catalogue) --------

func (w *KeyWrapper) wrapECDH(cek []byte) ([]byte, *ECDHParams, []byte, []byte, error) {
	recipientPub, err := w.key.ECPublicKey()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	curve, byteLen, err := ecdhCurveFor(recipientPub.Curve)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	ephPriv, err := curve.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	recipientECDH, err := curve.NewPublicKey(uncompressedPoint(recipientPub, byteLen))
	if err != nil {
		return nil, nil, nil, nil, err
	}
	shared, err := ephPriv.ECDH(recipientECDH)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	ephPubECDSA, err := pointFromUncompressed(recipientPub.Curve, ephPriv.PublicKey().Bytes())
	if err != nil {
		return nil, nil, nil, nil, err
	}
	ephPubJWK, err := jwk.NewECPublic(ephPubECDSA)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	params := &ECDHParams{EphemeralPublic: ephPubJWK}

	if w.kw == jwa.ECDHES {
		derived := ConcatKDF(shared, w.enc.CEKSize(), algID(w.enc.Name()), params.Apu, params.Apv)
		if len(derived) != len(cek) {
			return nil, nil, nil, nil, errors.New("cryptocache: derived key length mismatch")
		}
		copy(cek, derived)
		return nil, params, nil, nil, nil
	}

	kwName, kekBits := ecdhKWSubAlgorithm(w.kw)
	derived := ConcatKDF(shared, kekBits/8, algID(kwName), params.Apu, params.Apv)
	dst := make([]byte, (len(cek)/8+1)*8)
	n, err := aesprim.Wrap(derived, cek, dst)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return dst[:n], params, nil, nil, nil
}

func (w *KeyWrapper) unwrapECDH(wrapped []byte, cekLen int, params *ECDHParams) ([]byte, error) {
	if params == nil || params.EphemeralPublic == nil {
		return nil, errors.New("cryptocache: ECDH-ES unwrap requires the sender's ephemeral public key")
	}
	priv, err := w.key.ECPrivateKey()
	if err != nil {
		return nil, err
	}
	curve, byteLen, err := ecdhCurveFor(priv.Curve)
	if err != nil {
		return nil, err
	}
	ephPub, err := params.EphemeralPublic.ECPublicKey()
	if err != nil {
		return nil, err
	}

	recipientECDH, err := curve.NewPrivateKey(priv.D.FillBytes(make([]byte, byteLen)))
	if err != nil {
		return nil, err
	}
	senderECDH, err := curve.NewPublicKey(uncompressedPoint(ephPub, byteLen))
	if err != nil {
		return nil, err
	}
	shared, err := recipientECDH.ECDH(senderECDH)
	if err != nil {
		return nil, err
	}

	if w.kw == jwa.ECDHES {
		return ConcatKDF(shared, w.enc.CEKSize(), algID(w.enc.Name()), params.Apu, params.Apv), nil
	}

	kwName, kekBits := ecdhKWSubAlgorithm(w.kw)
	derived := ConcatKDF(shared, kekBits/8, algID(kwName), params.Apu, params.Apv)
	dst := make([]byte, cekLen)
	n, err := aesprim.Unwrap(derived, wrapped, dst)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

func ecdhKWSubAlgorithm(kw jwa.KeyManagementAlgorithm) (name string, bits int) {
	switch kw {
	case jwa.ECDHESA128KW:
		return "A128KW", 128
	case jwa.ECDHESA192KW:
		return "A192KW", 192
	default:
		return "A256KW", 256
	}
}

func ecdhCurveFor(c elliptic.Curve) (ecdh.Curve, int, error) {
	switch c {
	case elliptic.P256():
		return ecdh.P256(), 32, nil
	case elliptic.P384():
		return ecdh.P384(), 48, nil
	case elliptic.P521():
		return ecdh.P521(), 66, nil
	default:
		return nil, 0, jwk.ErrUnsupportedCurve
	}
}

// uncompressedPoint renders pub as 0x04 || X || Y, each coordinate
// zero-padded to byteLen — the SEC1 uncompressed form crypto/ecdh wants.
func uncompressedPoint(pub *ecdsa.PublicKey, byteLen int) []byte {
	out := make([]byte, 1+2*byteLen)
	out[0] = 0x04
	pub.X.FillBytes(out[1 : 1+byteLen])
	pub.Y.FillBytes(out[1+byteLen:])
	return out
}

// pointFromUncompressed parses a 0x04||X||Y point back into an
// *ecdsa.PublicKey on curve.
func pointFromUncompressed(curve elliptic.Curve, b []byte) (*ecdsa.PublicKey, error) {
	if len(b) < 1 || b[0] != 0x04 {
		return nil, errors.New("cryptocache: expected an uncompressed EC point")
	}
	coord := (len(b) - 1) / 2
	x := new(big.Int).SetBytes(b[1 : 1+coord])
	y := new(big.Int).SetBytes(b[1+coord:])
	return &ecdsa.PublicKey{Curve: curve, X: x, Y: y}, nil
}

// algID length-prefixes s as Concat-KDF's otherInfo expects: a 4-byte
// big-endian length followed by the UTF-8 bytes.
func algID(s string) []byte {
	buf := make([]byte, 4+len(s))
	binary.BigEndian.PutUint32(buf, uint32(len(s)))
	copy(buf[4:], s)
	return buf
}
