package jose

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/kataras/jose/internal/joseheader"
	"github.com/kataras/jose/jwa"
	"github.com/kataras/jose/jwe"
	"github.com/kataras/jose/jwk"
	"github.com/kataras/jose/jws"
)

// SignOption mutates the standard claims merged into a token's payload
// before it is signed.
type SignOption func(*Claims)

// MaxAge sets "iat" to now and "exp" to now+d.
func MaxAge(d time.Duration) SignOption {
	return func(c *Claims) { c.MaxAge = d }
}

// WithJTI assigns a random RFC 4122 "jti" via google/uuid, unless the
// claims payload already sets one.
func WithJTI() SignOption {
	return func(c *Claims) {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
	}
}

// Header mutates the JOSE header Sign/Encrypt produce, e.g. to set "kid"
// or a custom "typ".
type Header func(*joseheader.Header)

// WithKid sets the header's "kid".
func WithKid(kid string) Header {
	return func(h *joseheader.Header) { h.Kid = kid }
}

// WithTyp sets the header's "typ", e.g. "JWT".
func WithTyp(typ string) Header {
	return func(h *joseheader.Header) { h.Typ = typ }
}

// Sign marshals claims to JSON, merges in any standard-claim SignOptions,
// and signs the result as a compact JWS under key with alg.
//
// claims may be a struct, a map, or a Claims value; it is marshaled with
// encoding/json and then had the package-level standard-claims fields
// (nbf/iat/exp/jti/iss/sub/aud) from any matching SignOption layered on
// top, a two-step "marshal then overlay" so a caller's own claims fields
// are never clobbered except by a SignOption that explicitly targets them.
func Sign(key *jwk.Key, alg jwa.SignatureAlgorithm, claims any, opts ...SignOption) ([]byte, error) {
	payload, err := mergeClaims(claims, opts)
	if err != nil {
		return nil, err
	}

	return jws.Write(jws.WriteDescriptor{
		Key:     key,
		Alg:     alg,
		Payload: payload,
	}, signVerifiers)
}

// SignWithHeader is Sign plus header customization (kid, typ, ...).
func SignWithHeader(key *jwk.Key, alg jwa.SignatureAlgorithm, claims any, header []Header, opts ...SignOption) ([]byte, error) {
	payload, err := mergeClaims(claims, opts)
	if err != nil {
		return nil, err
	}

	var h joseheader.Header
	for _, mutate := range header {
		mutate(&h)
	}

	return jws.Write(jws.WriteDescriptor{
		Header:  h,
		Key:     key,
		Alg:     alg,
		Payload: payload,
	}, signVerifiers)
}

// Encrypt marshals claims to JSON and encrypts the result as a compact
// JWE under key with the given key-management and content-encryption
// algorithms. compress sets zip=DEF before sealing.
func Encrypt(key *jwk.Key, kw jwa.KeyManagementAlgorithm, enc jwa.EncryptionAlgorithm, claims any, compress bool, opts ...SignOption) ([]byte, error) {
	payload, err := mergeClaims(claims, opts)
	if err != nil {
		return nil, err
	}

	return jwe.Write(jwe.WriteDescriptor{
		Key:       key,
		KW:        kw,
		Enc:       enc,
		Plaintext: payload,
		Compress:  compress,
	}, keyWrappers, encryptors)
}

// SignThenEncrypt produces a nested token (RFC 7516 §2's "Nested JWT"):
// claims are signed into an inner JWS, which is then itself encrypted as
// a JWE with "cty":"JWT" so Read knows to unwrap it one level.
func SignThenEncrypt(signKey *jwk.Key, alg jwa.SignatureAlgorithm, encKey *jwk.Key, kw jwa.KeyManagementAlgorithm, enc jwa.EncryptionAlgorithm, claims any, opts ...SignOption) ([]byte, error) {
	inner, err := Sign(signKey, alg, claims, opts...)
	if err != nil {
		return nil, err
	}

	return jwe.Write(jwe.WriteDescriptor{
		Header:    joseheader.Header{Cty: "JWT"},
		Key:       encKey,
		KW:        kw,
		Enc:       enc,
		Plaintext: inner,
	}, keyWrappers, encryptors)
}

// mergeClaims marshals claims to a JSON object and overlays the standard
// claims fields any SignOption sets, without disturbing fields claims
// already populated unless the option explicitly targets them.
func mergeClaims(claims any, opts []SignOption) ([]byte, error) {
	base, err := json.Marshal(claims)
	if err != nil {
		return nil, err
	}

	if len(opts) == 0 {
		return base, nil
	}

	var overlay Claims
	for _, opt := range opts {
		opt(&overlay)
	}
	if overlay.MaxAge > 0 {
		now := time.Now()
		overlay.IssuedAt = now.Unix()
		overlay.Expiry = now.Add(overlay.MaxAge).Unix()
	}

	overlayJSON, err := json.Marshal(overlay)
	if err != nil {
		return nil, err
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		// claims wasn't a JSON object (e.g. a bare slice); nothing to merge.
		return base, nil
	}
	var overlayMap map[string]json.RawMessage
	if err := json.Unmarshal(overlayJSON, &overlayMap); err != nil {
		return nil, err
	}
	for k, v := range overlayMap {
		// WithJTI leaves a "jti" the claims payload already carries.
		if _, exists := merged[k]; exists && k == "jti" {
			continue
		}
		merged[k] = v
	}

	return json.Marshal(merged)
}
