package cryptocache

import (
	"crypto/rand"
	"errors"

	"github.com/kataras/jose/internal/aesprim"
	"github.com/kataras/jose/jwa"
	"github.com/kataras/jose/jwk"
)

// ErrUnsupportedEncryptionAlgorithm is returned for an EncryptionAlgorithm
// this package's Encryptor does not recognize.
var ErrUnsupportedEncryptionAlgorithm = errors.New("cryptocache: unsupported content encryption algorithm")

// Encryptor is the content-encryption operation object: one per
// EncryptionAlgorithm, stateless beyond that choice, producing and
// consuming the ciphertext/tag pair the JWE compact serialization needs.
// Unlike SignVerifier it does not need a pooled hash.Hash — the
// composite AxxxCBC-HSyyy case delegates to internal/aesprim, which does
// its own (unpooled) hashing per call; GCM has no hashing at all.
type Encryptor struct {
	alg jwa.EncryptionAlgorithm
}

// NewIV returns a fresh random IV of the size this algorithm requires.
func (e *Encryptor) NewIV() ([]byte, error) {
	iv := make([]byte, e.alg.IVSize())
	if _, err := rand.Read(iv); err != nil {
		return nil, err
	}
	return iv, nil
}

// Seal encrypts plaintext under cek with iv and aad (jwe passes the ASCII
// base64url-encoded protected header), returning ciphertext and tag
// separately as the compact serialization's fourth and fifth segments
// expect.
func (e *Encryptor) Seal(cek, iv, aad, plaintext []byte) (ciphertext, tag []byte, err error) {
	switch e.alg {
	case jwa.A128GCM, jwa.A192GCM, jwa.A256GCM:
		dst := make([]byte, len(plaintext)+aesprim.GCMTagSize)
		n, err := aesprim.EncryptGCM(cek, iv, aad, plaintext, dst)
		if err != nil {
			return nil, nil, err
		}
		return dst[:n-aesprim.GCMTagSize], dst[n-aesprim.GCMTagSize : n], nil
	case jwa.A128CBC_HS256, jwa.A192CBC_HS384, jwa.A256CBC_HS512:
		p := compositeParamsFor(e.alg)
		dst := make([]byte, aesprim.CBCCiphertextLen(len(plaintext))+p.TagLen)
		n, err := aesprim.EncryptCompositeCBCHMAC(p, cek, iv, aad, plaintext, dst)
		if err != nil {
			return nil, nil, err
		}
		return dst[:n-p.TagLen], dst[n-p.TagLen : n], nil
	default:
		return nil, nil, ErrUnsupportedEncryptionAlgorithm
	}
}

// Open authenticates and decrypts ciphertext under cek, iv, aad, and tag.
func (e *Encryptor) Open(cek, iv, aad, ciphertext, tag []byte) ([]byte, error) {
	switch e.alg {
	case jwa.A128GCM, jwa.A192GCM, jwa.A256GCM:
		dst := make([]byte, len(ciphertext))
		n, err := aesprim.DecryptGCM(cek, iv, aad, ciphertext, tag, dst)
		if err != nil {
			return nil, err
		}
		return dst[:n], nil
	case jwa.A128CBC_HS256, jwa.A192CBC_HS384, jwa.A256CBC_HS512:
		p := compositeParamsFor(e.alg)
		dst := make([]byte, len(ciphertext))
		n, err := aesprim.DecryptCompositeCBCHMAC(p, cek, iv, aad, ciphertext, tag, dst)
		if err != nil {
			return nil, err
		}
		return dst[:n], nil
	default:
		return nil, ErrUnsupportedEncryptionAlgorithm
	}
}

func compositeParamsFor(alg jwa.EncryptionAlgorithm) aesprim.CompositeParams {
	switch alg {
	case jwa.A192CBC_HS384:
		return aesprim.A192CBC_HS384
	case jwa.A256CBC_HS512:
		return aesprim.A256CBC_HS512
	default:
		return aesprim.A128CBC_HS256
	}
}

// EncryptorFactory is a concurrent factory over EncryptionAlgorithm
// alone — content encryptors carry no Jwk, since the CEK is managed
// per-message, not cached by key identity.
type EncryptorFactory struct {
	factoryBase
}

// NewEncryptorFactory returns a ready-to-use factory.
func NewEncryptorFactory() *EncryptorFactory { return &EncryptorFactory{} }

// GetOrCreate resolves alg to its long-lived Encryptor.
func (f *EncryptorFactory) GetOrCreate(alg jwa.EncryptionAlgorithm) (*Encryptor, error) {
	if err := f.checkDisposed(); err != nil {
		return nil, err
	}
	ck := CacheKey{key: nil, packed: PackKeyManagement(uint8(alg), 0)}
	return loadOrStore(&f.factoryBase, ck, func() *Encryptor {
		return &Encryptor{alg: alg}
	}), nil
}

// KeyWrapperFactory is a concurrent factory over (Jwk, key-management
// algorithm, content-encryption algorithm).
type KeyWrapperFactory struct {
	factoryBase
}

// NewKeyWrapperFactory returns a ready-to-use factory.
func NewKeyWrapperFactory() *KeyWrapperFactory { return &KeyWrapperFactory{} }

// GetOrCreate resolves the (key, kw, enc) triple to its long-lived
// KeyWrapper. enc only matters for direct ECDH-ES, whose Concat-KDF
// output length and otherInfo come from it (ECDH-ES+AxxxKW uses the
// wrap algorithm's name instead); it is still part of the cache key for
// every algorithm so a
// key used under two different "enc" values never aliases wrappers.
func (f *KeyWrapperFactory) GetOrCreate(key *jwk.Key, kw jwa.KeyManagementAlgorithm, enc jwa.EncryptionAlgorithm) (*KeyWrapper, error) {
	if err := f.checkDisposed(); err != nil {
		return nil, err
	}
	ck := CacheKey{key: key, packed: PackKeyManagement(uint8(enc), uint8(kw))}
	return loadOrStore(&f.factoryBase, ck, func() *KeyWrapper {
		return &KeyWrapper{key: key, kw: kw, enc: enc}
	}), nil
}
