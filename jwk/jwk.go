// Package jwk implements the Jwk key model: a closed sum type over
// symmetric, RSA, and EC key material (plus the OKP/Ed25519 variant the
// EdDSA signature algorithm requires — see SPEC_FULL.md's C5 note for why the sum
// type is extended beyond the three named in the data model), RFC 7517
// JSON (de)serialization, and RFC 7638 thumbprints.
package jwk

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
)

// Kty is the JWK "kty" discriminant.
type Kty string

const (
	KtyOct Kty = "oct"
	KtyRSA Kty = "RSA"
	KtyEC  Kty = "EC"
	KtyOKP Kty = "OKP"
)

// Use is the JWK "use" hint.
type Use string

const (
	UseSig Use = "sig"
	UseEnc Use = "enc"
)

// Curve names the EC/OKP curve.
type Curve string

const (
	P256    Curve = "P-256"
	P384    Curve = "P-384"
	P521    Curve = "P-521"
	Ed25519 Curve = "Ed25519"
)

var (
	ErrUnsupportedKty        = errors.New("jwk: unsupported key type")
	ErrUnsupportedCurve      = errors.New("jwk: unsupported curve")
	ErrMissingKeyMaterial    = errors.New("jwk: missing required key material")
	ErrRSAModulusTooSmall    = errors.New("jwk: RSA modulus must be at least 2048 bits")
	ErrCoordinateSizeMismatch = errors.New("jwk: EC coordinate size does not match curve")
)

// Key is the Jwk sum type. Exactly one variant's required fields are
// populated, selected by Kty. Keys are immutable after New*; every field
// below is unexported to enforce that outside this package.
type Key struct {
	kty    Kty
	kid    string
	use    Use
	alg    string
	keyOps []string

	// oct
	k []byte

	// RSA
	n, e           *big.Int
	d, p, q, dp, dq, qi *big.Int

	// EC / OKP
	crv  Curve
	x, y *big.Int  // EC affine coordinates
	okp  []byte    // OKP raw public bytes (Ed25519)
	okpD []byte    // OKP raw private seed
	ecD  *big.Int  // EC private scalar
}

// Kid returns the key identifier set at construction via WithKid, or ""
// if none was set. A Key is shared read-only across goroutines once
// constructed, so Kid never mutates it. Use Thumbprint for the RFC 7638
// alternative when a caller needs a deterministic "kid" derived from the
// key material itself rather than one it supplies explicitly.
func (k *Key) Kid() string {
	return k.kid
}

func (k *Key) Kty() Kty          { return k.kty }
func (k *Key) Use() Use          { return k.use }
func (k *Key) Alg() string       { return k.alg }
func (k *Key) KeyOps() []string  { return k.keyOps }
func (k *Key) Curve() Curve      { return k.crv }

// IsPrivate reports whether this Key carries private material and can
// therefore sign, decrypt, or unwrap.
func (k *Key) IsPrivate() bool {
	switch k.kty {
	case KtyOct:
		return len(k.k) > 0
	case KtyRSA:
		return k.d != nil
	case KtyEC:
		return k.ecD != nil
	case KtyOKP:
		return len(k.okpD) > 0
	}
	return false
}

// Symmetric returns the raw octet key for a KtyOct key.
func (k *Key) Symmetric() []byte { return k.k }

// RSAPublicKey materializes a *rsa.PublicKey from a KtyRSA key.
func (k *Key) RSAPublicKey() (*rsa.PublicKey, error) {
	if k.kty != KtyRSA || k.n == nil || k.e == nil {
		return nil, ErrMissingKeyMaterial
	}
	return &rsa.PublicKey{N: k.n, E: int(k.e.Int64())}, nil
}

// RSAPrivateKey materializes a *rsa.PrivateKey from a KtyRSA key that
// carries private components.
func (k *Key) RSAPrivateKey() (*rsa.PrivateKey, error) {
	pub, err := k.RSAPublicKey()
	if err != nil {
		return nil, err
	}
	if k.d == nil {
		return nil, ErrMissingKeyMaterial
	}
	priv := &rsa.PrivateKey{PublicKey: *pub, D: k.d}
	if k.p != nil && k.q != nil {
		priv.Primes = []*big.Int{k.p, k.q}
	}
	priv.Precompute()
	return priv, nil
}

// ECPublicKey materializes a *ecdsa.PublicKey from a KtyEC key.
func (k *Key) ECPublicKey() (*ecdsa.PublicKey, error) {
	if k.kty != KtyEC || k.x == nil || k.y == nil {
		return nil, ErrMissingKeyMaterial
	}
	curve, err := ellipticCurve(k.crv)
	if err != nil {
		return nil, err
	}
	return &ecdsa.PublicKey{Curve: curve, X: k.x, Y: k.y}, nil
}

// ECPrivateKey materializes a *ecdsa.PrivateKey from a KtyEC key that
// carries a private scalar.
func (k *Key) ECPrivateKey() (*ecdsa.PrivateKey, error) {
	pub, err := k.ECPublicKey()
	if err != nil {
		return nil, err
	}
	if k.ecD == nil {
		return nil, ErrMissingKeyMaterial
	}
	return &ecdsa.PrivateKey{PublicKey: *pub, D: k.ecD}, nil
}

// Ed25519PublicKey materializes an ed25519.PublicKey from a KtyOKP key.
func (k *Key) Ed25519PublicKey() (ed25519.PublicKey, error) {
	if k.kty != KtyOKP || len(k.okp) != ed25519.PublicKeySize {
		return nil, ErrMissingKeyMaterial
	}
	return ed25519.PublicKey(k.okp), nil
}

// Ed25519PrivateKey materializes an ed25519.PrivateKey (seed||public)
// from a KtyOKP key that carries a private seed.
func (k *Key) Ed25519PrivateKey() (ed25519.PrivateKey, error) {
	if k.kty != KtyOKP || len(k.okpD) != ed25519.SeedSize || len(k.okp) != ed25519.PublicKeySize {
		return nil, ErrMissingKeyMaterial
	}
	return ed25519.NewKeyFromSeed(k.okpD), nil
}

func ellipticCurve(c Curve) (elliptic.Curve, error) {
	switch c {
	case P256:
		return elliptic.P256(), nil
	case P384:
		return elliptic.P384(), nil
	case P521:
		return elliptic.P521(), nil
	default:
		return nil, ErrUnsupportedCurve
	}
}

// NewSymmetric builds a KtyOct key, for HS256/384/512 and the direct
// (dir) and AxxxKW/AxxxGCMKW JWE key-management families.
func NewSymmetric(raw []byte, opts ...Option) *Key {
	k := &Key{kty: KtyOct, k: raw}
	applyOptions(k, opts)
	return k
}

// NewRSAPublic builds a KtyRSA key carrying only public material.
func NewRSAPublic(pub *rsa.PublicKey, opts ...Option) *Key {
	k := &Key{kty: KtyRSA, n: pub.N, e: big.NewInt(int64(pub.E))}
	applyOptions(k, opts)
	return k
}

// NewRSAPrivate builds a KtyRSA key carrying private material. Signing
// with it requires a modulus of at least 2048 bits; smaller moduli are
// rejected outright rather than producing a signature weak enough to be
// forged.
func NewRSAPrivate(priv *rsa.PrivateKey, opts ...Option) (*Key, error) {
	if priv.N.BitLen() < 2048 {
		return nil, ErrRSAModulusTooSmall
	}
	k := &Key{
		kty: KtyRSA,
		n:   priv.N,
		e:   big.NewInt(int64(priv.E)),
		d:   priv.D,
	}
	if len(priv.Primes) >= 2 {
		k.p, k.q = priv.Primes[0], priv.Primes[1]
	}
	if priv.Precomputed.Dp != nil {
		k.dp, k.dq, k.qi = priv.Precomputed.Dp, priv.Precomputed.Dq, priv.Precomputed.Qinv
	}
	applyOptions(k, opts)
	return k, nil
}

// NewECPublic builds a KtyEC key carrying only public material.
func NewECPublic(pub *ecdsa.PublicKey, opts ...Option) (*Key, error) {
	crv, err := curveName(pub.Curve)
	if err != nil {
		return nil, err
	}
	k := &Key{kty: KtyEC, crv: crv, x: pub.X, y: pub.Y}
	applyOptions(k, opts)
	return k, nil
}

// NewECPrivate builds a KtyEC key carrying a private scalar.
func NewECPrivate(priv *ecdsa.PrivateKey, opts ...Option) (*Key, error) {
	crv, err := curveName(priv.Curve)
	if err != nil {
		return nil, err
	}
	k := &Key{kty: KtyEC, crv: crv, x: priv.X, y: priv.Y, ecD: priv.D}
	applyOptions(k, opts)
	return k, nil
}

// NewEd25519Public builds a KtyOKP key carrying only public material.
func NewEd25519Public(pub ed25519.PublicKey, opts ...Option) *Key {
	k := &Key{kty: KtyOKP, crv: Ed25519, okp: append([]byte{}, pub...)}
	applyOptions(k, opts)
	return k
}

// NewEd25519Private builds a KtyOKP key carrying a private seed.
func NewEd25519Private(priv ed25519.PrivateKey, opts ...Option) *Key {
	pub := priv.Public().(ed25519.PublicKey)
	k := &Key{
		kty:  KtyOKP,
		crv:  Ed25519,
		okp:  append([]byte{}, pub...),
		okpD: append([]byte{}, priv.Seed()...),
	}
	applyOptions(k, opts)
	return k
}

func curveName(c elliptic.Curve) (Curve, error) {
	switch c {
	case elliptic.P256():
		return P256, nil
	case elliptic.P384():
		return P384, nil
	case elliptic.P521():
		return P521, nil
	default:
		return "", ErrUnsupportedCurve
	}
}

// Option configures optional Key attributes at construction time.
type Option func(*Key)

func WithKid(kid string) Option      { return func(k *Key) { k.kid = kid } }
func WithUse(use Use) Option         { return func(k *Key) { k.use = use } }
func WithAlg(alg string) Option      { return func(k *Key) { k.alg = alg } }
func WithKeyOps(ops []string) Option { return func(k *Key) { k.keyOps = ops } }

func applyOptions(k *Key, opts []Option) {
	for _, opt := range opts {
		opt(k)
	}
}

// ---- RFC 7517 JSON -------------------------------------------------------

// jsonKey mirrors the RFC 7517 §4 wire shape; fields are all strings
// because every numeric value in a JWK is itself base64url-encoded.
type jsonKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid,omitempty"`
	Use string `json:"use,omitempty"`
	Alg string `json:"alg,omitempty"`

	K string `json:"k,omitempty"` // oct

	N  string `json:"n,omitempty"` // RSA
	E  string `json:"e,omitempty"`
	D  string `json:"d,omitempty"`
	P  string `json:"p,omitempty"`
	Q  string `json:"q,omitempty"`
	DP string `json:"dp,omitempty"`
	DQ string `json:"dq,omitempty"`
	QI string `json:"qi,omitempty"`

	Crv string `json:"crv,omitempty"` // EC / OKP
	X   string `json:"x,omitempty"`
	Y   string `json:"y,omitempty"`
}

// MarshalJSON emits the RFC 7517 §4 shape for whichever variant k is.
func (k *Key) MarshalJSON() ([]byte, error) {
	j := jsonKey{Kty: string(k.kty), Kid: k.kid, Use: string(k.use), Alg: k.alg}
	switch k.kty {
	case KtyOct:
		j.K = b64(k.k)
	case KtyRSA:
		j.N, j.E = b64Big(k.n), b64Big(k.e)
		if k.d != nil {
			j.D = b64Big(k.d)
			j.P, j.Q = b64Big(k.p), b64Big(k.q)
			j.DP, j.DQ, j.QI = b64Big(k.dp), b64Big(k.dq), b64Big(k.qi)
		}
	case KtyEC:
		j.Crv, j.X, j.Y = string(k.crv), b64Big(k.x), b64Big(k.y)
		if k.ecD != nil {
			j.D = b64Big(k.ecD)
		}
	case KtyOKP:
		j.Crv, j.X = string(k.crv), b64(k.okp)
		if len(k.okpD) > 0 {
			j.D = b64(k.okpD)
		}
	default:
		return nil, ErrUnsupportedKty
	}
	return json.Marshal(j)
}

// UnmarshalJSON parses the RFC 7517 §4 shape into whichever variant
// "kty" names.
func (k *Key) UnmarshalJSON(data []byte) error {
	var j jsonKey
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}

	k.kid, k.use, k.alg = j.Kid, Use(j.Use), j.Alg

	switch Kty(j.Kty) {
	case KtyOct:
		raw, err := unb64(j.K)
		if err != nil {
			return err
		}
		k.kty, k.k = KtyOct, raw
	case KtyRSA:
		n, err := unb64Big(j.N)
		if err != nil {
			return err
		}
		e, err := unb64Big(j.E)
		if err != nil {
			return err
		}
		k.kty, k.n, k.e = KtyRSA, n, e
		if j.D != "" {
			if k.d, err = unb64Big(j.D); err != nil {
				return err
			}
			k.p, _ = unb64Big(j.P)
			k.q, _ = unb64Big(j.Q)
			k.dp, _ = unb64Big(j.DP)
			k.dq, _ = unb64Big(j.DQ)
			k.qi, _ = unb64Big(j.QI)
		}
	case KtyEC:
		x, err := unb64Big(j.X)
		if err != nil {
			return err
		}
		y, err := unb64Big(j.Y)
		if err != nil {
			return err
		}
		k.kty, k.crv, k.x, k.y = KtyEC, Curve(j.Crv), x, y
		if err := k.checkECCoordinateSize(); err != nil {
			return err
		}
		if j.D != "" {
			if k.ecD, err = unb64Big(j.D); err != nil {
				return err
			}
		}
	case KtyOKP:
		x, err := unb64(j.X)
		if err != nil {
			return err
		}
		k.kty, k.crv, k.okp = KtyOKP, Curve(j.Crv), x
		if j.D != "" {
			if k.okpD, err = unb64(j.D); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedKty, j.Kty)
	}
	return nil
}

func (k *Key) checkECCoordinateSize() error {
	curve, err := ellipticCurve(k.crv)
	if err != nil {
		return err
	}
	size := (curve.Params().BitSize + 7) / 8
	if (k.x.BitLen()+7)/8 > size || (k.y.BitLen()+7)/8 > size {
		return ErrCoordinateSizeMismatch
	}
	return nil
}

// Set is a JSON Web Key Set (RFC 7517 §5).
type Set struct {
	Keys []*Key `json:"keys"`
}

// ByKid finds a key by "kid"; ok is false if none matches.
func (s *Set) ByKid(kid string) (*Key, bool) {
	for _, k := range s.Keys {
		if k.kid == kid {
			return k, true
		}
	}
	return nil, false
}

// ---- RFC 7638 thumbprint --------------------------------------------------

// Thumbprint computes the RFC 7638 JWK thumbprint: SHA-256 over the
// canonical JSON object containing only the kty-determined required
// members, lexicographically sorted by member name, with no insignificant
// whitespace.
func (k *Key) Thumbprint() ([]byte, error) {
	var canonical map[string]string
	switch k.kty {
	case KtyOct:
		canonical = map[string]string{"kty": string(k.kty), "k": b64(k.k)}
	case KtyRSA:
		canonical = map[string]string{"kty": string(k.kty), "n": b64Big(k.n), "e": b64Big(k.e)}
	case KtyEC:
		canonical = map[string]string{"kty": string(k.kty), "crv": string(k.crv), "x": b64Big(k.x), "y": b64Big(k.y)}
	case KtyOKP:
		canonical = map[string]string{"kty": string(k.kty), "crv": string(k.crv), "x": b64(k.okp)}
	default:
		return nil, ErrUnsupportedKty
	}

	buf := canonicalJSON(canonical)
	sum := sha256.Sum256(buf)
	return sum[:], nil
}

// canonicalJSON renders m with lexicographically sorted keys and no
// insignificant whitespace, matching RFC 7638 §3.2's requirement exactly
// (encoding/json's map marshaling already sorts string keys).
func canonicalJSON(m map[string]string) []byte {
	buf, _ := json.Marshal(m)
	return buf
}

func b64(b []byte) string     { return base64.RawURLEncoding.EncodeToString(b) }
func b64Big(n *big.Int) string {
	if n == nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(n.Bytes())
}
func unb64(s string) ([]byte, error) { return base64.RawURLEncoding.DecodeString(s) }
func unb64Big(s string) (*big.Int, error) {
	b, err := unb64(s)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(b), nil
}
