package cryptocache

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"math/big"

	"github.com/kataras/jose/internal/hmacsha2"
	"github.com/kataras/jose/internal/sha2"
	"github.com/kataras/jose/jwa"
	"github.com/kataras/jose/jwk"
)

var (
	ErrUnsupportedSignatureAlgorithm = errors.New("cryptocache: unsupported signature algorithm")
	ErrNoPrivateKey                  = errors.New("cryptocache: key has no private component")
	ErrInvalidSignature              = errors.New("cryptocache: signature verification failed")
	// ErrHalfSignatureVerificationUnsupported is returned by VerifyHalf for
	// every algorithm: RFC 7518 defines no truncated-signature form for
	// RSA or ECDSA, so there is no well-defined half-length comparison to
	// perform, and silently truncating sig before calling Verify would
	// accept forgeries that share only a signature's low-order bytes with
	// a genuine one.
	ErrHalfSignatureVerificationUnsupported = errors.New("cryptocache: half-size signature verification is not supported")
)

// SignVerifier is the signer/verifier operation object: one per
// (Jwk, SignatureAlgorithm), reentrant, pooling the hash.Hash its RSA/EC
// digest step uses.
type SignVerifier struct {
	key    *jwk.Key
	alg    jwa.SignatureAlgorithm
	hashes *hashPool
	owner  *SignVerifierFactory
}

// TrySign computes the signature over data and writes it into dest,
// returning the number of bytes written. Every exit path — including
// error returns — has already released any pooled engine back to the
// factory before returning.
func (s *SignVerifier) TrySign(data, dest []byte) (int, error) {
	if err := s.owner.checkDisposed(); err != nil {
		return 0, err
	}
	sig, err := s.sign(data)
	if err != nil {
		return 0, err
	}
	if len(dest) < len(sig) {
		return 0, errDestinationTooSmall
	}
	copy(dest, sig)
	return len(sig), nil
}

// Sign is the allocating convenience form of TrySign.
func (s *SignVerifier) Sign(data []byte) ([]byte, error) {
	if err := s.owner.checkDisposed(); err != nil {
		return nil, err
	}
	return s.sign(data)
}

// Verify reports whether sig is a valid signature over data for this
// (key, algorithm) pair.
func (s *SignVerifier) Verify(data, sig []byte) bool {
	if s.owner.checkDisposed() != nil {
		return false
	}
	return s.verify(data, sig)
}

// VerifyHalf always fails with ErrHalfSignatureVerificationUnsupported. It
// exists as an explicit rejection rather than an absent method so that a
// caller porting signature-truncation logic from another JOSE library gets
// a clear error at the call site instead of a missing-symbol compile error
// with no explanation.
func (s *SignVerifier) VerifyHalf(data, sig []byte) (bool, error) {
	return false, ErrHalfSignatureVerificationUnsupported
}

var errDestinationTooSmall = errors.New("cryptocache: destination too small")

func (s *SignVerifier) sign(data []byte) ([]byte, error) {
	switch s.alg.Category() {
	case jwa.CategoryNone:
		return nil, nil
	case jwa.CategorySymmetric:
		return hmacsha2.Sum(hmacVariant(s.alg), s.key.Symmetric(), data), nil
	}

	digest, hashFunc, err := s.digest(data)
	if err != nil {
		return nil, err
	}

	switch {
	case s.alg == jwa.EdDSA:
		priv, err := s.key.Ed25519PrivateKey()
		if err != nil {
			return nil, err
		}
		return ed25519.Sign(priv, data), nil // EdDSA signs the message directly, never a digest.
	case isRSAPSS(s.alg):
		priv, err := s.key.RSAPrivateKey()
		if err != nil {
			return nil, err
		}
		h := s.acquireHash()
		defer s.releaseHash(h)
		return rsa.SignPSS(rand.Reader, priv, hashFunc, digest, &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash, Hash: hashFunc})
	case isRSAPKCS1(s.alg):
		priv, err := s.key.RSAPrivateKey()
		if err != nil {
			return nil, err
		}
		return rsa.SignPKCS1v15(rand.Reader, priv, hashFunc, digest)
	case isECDSA(s.alg):
		priv, err := s.key.ECPrivateKey()
		if err != nil {
			return nil, err
		}
		return signECDSAFixedWidth(priv, digest)
	default:
		return nil, ErrUnsupportedSignatureAlgorithm
	}
}

func (s *SignVerifier) verify(data, sig []byte) bool {
	switch s.alg.Category() {
	case jwa.CategoryNone:
		return len(sig) == 0
	case jwa.CategorySymmetric:
		return hmacsha2.Verify(hmacVariant(s.alg), s.key.Symmetric(), data, sig)
	}

	if s.alg == jwa.EdDSA {
		pub, err := s.key.Ed25519PublicKey()
		if err != nil {
			return false
		}
		return ed25519.Verify(pub, data, sig)
	}

	digest, hashFunc, err := s.digest(data)
	if err != nil {
		return false
	}

	switch {
	case isRSAPSS(s.alg):
		pub, err := s.key.RSAPublicKey()
		if err != nil {
			return false
		}
		opts := &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash, Hash: hashFunc}
		return rsa.VerifyPSS(pub, hashFunc, digest, sig, opts) == nil
	case isRSAPKCS1(s.alg):
		pub, err := s.key.RSAPublicKey()
		if err != nil {
			return false
		}
		return rsa.VerifyPKCS1v15(pub, hashFunc, digest, sig) == nil
	case isECDSA(s.alg):
		pub, err := s.key.ECPublicKey()
		if err != nil {
			return false
		}
		return verifyECDSAFixedWidth(pub, digest, sig)
	default:
		return false
	}
}

// digest hashes data through the pooled hash.Hash for this algorithm's
// SHA-2 variant and returns both the digest and the crypto.Hash value
// rsa.Sign*/VerifyPKCS1v15 want.
func (s *SignVerifier) digest(data []byte) ([]byte, crypto.Hash, error) {
	_, hashFunc := shaFor(s.alg)
	h := s.acquireHash()
	defer s.releaseHash(h)
	h.Write(data)
	return h.Sum(nil), hashFunc, nil
}

func (s *SignVerifier) acquireHash() hasher { return s.hashes.acquire() }
func (s *SignVerifier) releaseHash(h hasher) { s.hashes.release(h) }

func hmacVariant(a jwa.SignatureAlgorithm) sha2.Variant {
	switch a {
	case jwa.HS384:
		return sha2.SHA384
	case jwa.HS512:
		return sha2.SHA512
	default:
		return sha2.SHA256
	}
}

func shaFor(a jwa.SignatureAlgorithm) (sha2.Variant, crypto.Hash) {
	switch a {
	case jwa.RS384, jwa.PS384, jwa.ES384:
		return sha2.SHA384, crypto.SHA384
	case jwa.RS512, jwa.PS512, jwa.ES512:
		return sha2.SHA512, crypto.SHA512
	default:
		return sha2.SHA256, crypto.SHA256
	}
}

func isRSAPSS(a jwa.SignatureAlgorithm) bool {
	return a == jwa.PS256 || a == jwa.PS384 || a == jwa.PS512
}
func isRSAPKCS1(a jwa.SignatureAlgorithm) bool {
	return a == jwa.RS256 || a == jwa.RS384 || a == jwa.RS512
}
func isECDSA(a jwa.SignatureAlgorithm) bool {
	return a == jwa.ES256 || a == jwa.ES384 || a == jwa.ES512
}

// signECDSAFixedWidth produces the IEEE P1363 r||s encoding RFC 7518
// §3.4 requires for ES256/ES384/ES512 (NOT the ASN.1 DER
// crypto/ecdsa.SignASN1 returns), zero-padding each of r and s to the
// curve's coordinate byte width.
func signECDSAFixedWidth(priv *ecdsa.PrivateKey, digest []byte) ([]byte, error) {
	r, s, err := ecdsa.Sign(rand.Reader, priv, digest) //nolint:staticcheck // P1363 needs r,s directly.
	if err != nil {
		return nil, err
	}
	n := (priv.Curve.Params().BitSize + 7) / 8
	out := make([]byte, 2*n)
	r.FillBytes(out[:n])
	s.FillBytes(out[n:])
	return out, nil
}

func verifyECDSAFixedWidth(pub *ecdsa.PublicKey, digest, sig []byte) bool {
	n := (pub.Curve.Params().BitSize + 7) / 8
	if len(sig) != 2*n {
		return false
	}
	r := new(big.Int).SetBytes(sig[:n])
	s := new(big.Int).SetBytes(sig[n:])
	return ecdsa.Verify(pub, digest, r, s)
}

// SignVerifierFactory is a concurrent factory: CacheKey ->
// *SignVerifier.
type SignVerifierFactory struct {
	factoryBase
}

// NewSignVerifierFactory returns a ready-to-use factory.
func NewSignVerifierFactory() *SignVerifierFactory { return &SignVerifierFactory{} }

// GetOrCreate resolves the (key, alg) pair to its long-lived SignVerifier,
// constructing one on first use. Concurrent first-use races are resolved
// last-writer-loses via sync.Map.LoadOrStore.
func (f *SignVerifierFactory) GetOrCreate(key *jwk.Key, alg jwa.SignatureAlgorithm) (*SignVerifier, error) {
	if err := f.checkDisposed(); err != nil {
		return nil, err
	}
	ck := CacheKey{key: key, packed: PackSignatureAlg(uint8(alg))}
	return loadOrStore(&f.factoryBase, ck, func() *SignVerifier {
		v, _ := shaFor(alg)
		return &SignVerifier{
			key:    key,
			alg:    alg,
			hashes: newHashPool(func() hasher { return newHashForVariant(v) }),
			owner:  f,
		}
	}), nil
}

// newHashForVariant constructs the stdlib hash.Hash backing one SHA-2
// variant, exposed through the narrower hasher interface this package
// pools against.
func newHashForVariant(v sha2.Variant) hasher {
	switch v {
	case sha2.SHA384:
		return sha512.New384()
	case sha2.SHA512:
		return sha512.New()
	default:
		return sha256.New()
	}
}
