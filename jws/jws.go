// Package jws implements the JWS half (RFC 7515): the compact
// serialization's three-segment Read and Write, signing over the raw
// (still base64url-encoded) header and payload segments rather than
// their decoded form, per RFC 7515 §5.1 step 8 / §5.2 step 8.
package jws

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/kataras/jose/internal/base64url"
	"github.com/kataras/jose/internal/cryptocache"
	"github.com/kataras/jose/internal/joseheader"
	"github.com/kataras/jose/jwa"
	"github.com/kataras/jose/jwk"
)

var (
	ErrMalformedToken     = errors.New("jws: malformed token")
	ErrTokenTooLarge      = errors.New("jws: token exceeds the configured size limit")
	ErrBase64Invalid      = errors.New("jws: invalid base64url segment")
	ErrHeaderInvalid      = errors.New("jws: invalid header")
	ErrUnknownAlgorithm   = errors.New("jws: unknown signature algorithm")
	ErrAlgorithmNotAllowed = errors.New("jws: signature algorithm not allowed by policy")
	ErrKeyNotFound        = errors.New("jws: no key resolved for this header")
	ErrInvalidSignature   = errors.New("jws: signature verification failed")
)

// KeyResolver looks up the key a JWS header names, given the parsed
// algorithm and the header's "kid" (empty if absent). The root package
// supplies this so jws never needs to know about key stores or policy.
type KeyResolver func(alg jwa.SignatureAlgorithm, kid string) (*jwk.Key, error)

// AlgorithmAllowed reports whether alg may be used to verify an incoming
// token, letting the caller enforce an allow-list (see the root package's
// AllowSignatureAlgorithms) without jws importing the policy type.
type AlgorithmAllowed func(alg jwa.SignatureAlgorithm) bool

// Message is a successfully verified JWS: the parsed header and the
// decoded (not yet claims-validated) payload.
type Message struct {
	Header  joseheader.Header
	Payload []byte
}

// Read verifies and decodes a compact-serialized JWS. A raw longer than
// maxBytes fails with ErrTokenTooLarge (0 means no limit). The root
// package's Read only counts segments before dispatching here, so this
// is where the size ceiling is enforced.
func Read(raw []byte, maxBytes int, resolveKey KeyResolver, allowed AlgorithmAllowed, signers *cryptocache.SignVerifierFactory) (*Message, error) {
	if maxBytes > 0 && len(raw) > maxBytes {
		return nil, ErrTokenTooLarge
	}

	parts := bytes.SplitN(raw, []byte{'.'}, 4)
	if len(parts) != 3 {
		return nil, ErrMalformedToken
	}
	hRaw, pRaw, sRaw := parts[0], parts[1], parts[2]

	headerJSON, err := base64url.AppendDecode(hRaw)
	if err != nil {
		return nil, ErrBase64Invalid
	}
	header, err := joseheader.Parse(headerJSON)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHeaderInvalid, err)
	}

	alg, ok := jwa.ParseSignatureAlgorithm(header.Alg)
	if !ok {
		return nil, ErrUnknownAlgorithm
	}
	if allowed != nil && !allowed(alg) {
		return nil, ErrAlgorithmNotAllowed
	}

	key, err := resolveKey(alg, header.Kid)
	if err != nil {
		return nil, err
	}
	if key == nil && alg != jwa.None {
		return nil, ErrKeyNotFound
	}

	sig, err := base64url.AppendDecode(sRaw)
	if err != nil {
		return nil, ErrBase64Invalid
	}

	signingInput := make([]byte, 0, len(hRaw)+1+len(pRaw))
	signingInput = append(signingInput, hRaw...)
	signingInput = append(signingInput, '.')
	signingInput = append(signingInput, pRaw...)

	sv, err := signers.GetOrCreate(key, alg)
	if err != nil {
		return nil, err
	}
	if !sv.Verify(signingInput, sig) {
		return nil, ErrInvalidSignature
	}

	payload, err := base64url.AppendDecode(pRaw)
	if err != nil {
		return nil, ErrBase64Invalid
	}

	return &Message{Header: header, Payload: payload}, nil
}

// Decode splits and base64url-decodes a compact JWS without checking its
// signature. It exists for call sites that have already verified a token
// and now need to inspect or rebuild it (e.g. the root package's Enrich),
// never as a substitute for Read on untrusted input.
func Decode(raw []byte, maxBytes int) (*Message, error) {
	if maxBytes > 0 && len(raw) > maxBytes {
		return nil, ErrTokenTooLarge
	}

	parts := bytes.SplitN(raw, []byte{'.'}, 4)
	if len(parts) != 3 {
		return nil, ErrMalformedToken
	}
	hRaw, pRaw := parts[0], parts[1]

	headerJSON, err := base64url.AppendDecode(hRaw)
	if err != nil {
		return nil, ErrBase64Invalid
	}
	header, err := joseheader.Parse(headerJSON)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHeaderInvalid, err)
	}

	payload, err := base64url.AppendDecode(pRaw)
	if err != nil {
		return nil, ErrBase64Invalid
	}

	return &Message{Header: header, Payload: payload}, nil
}

// WriteDescriptor is everything Write needs to produce a compact JWS.
type WriteDescriptor struct {
	Header  joseheader.Header // Alg is overwritten from Key/Alg below
	Key     *jwk.Key
	Alg     jwa.SignatureAlgorithm
	Payload []byte
}

// Write signs Payload under Key with Alg and renders the compact
// serialization.
func Write(d WriteDescriptor, signers *cryptocache.SignVerifierFactory) ([]byte, error) {
	d.Header.Alg = d.Alg.Name()
	headerJSON, err := d.Header.Encode()
	if err != nil {
		return nil, err
	}

	hRaw := base64url.AppendEncode(headerJSON)
	pRaw := base64url.AppendEncode(d.Payload)

	signingInput := make([]byte, 0, len(hRaw)+1+len(pRaw))
	signingInput = append(signingInput, hRaw...)
	signingInput = append(signingInput, '.')
	signingInput = append(signingInput, pRaw...)

	sv, err := signers.GetOrCreate(d.Key, d.Alg)
	if err != nil {
		return nil, err
	}
	sig, err := sv.Sign(signingInput)
	if err != nil {
		return nil, err
	}
	sRaw := base64url.AppendEncode(sig)

	out := make([]byte, 0, len(signingInput)+1+len(sRaw))
	out = append(out, signingInput...)
	out = append(out, '.')
	out = append(out, sRaw...)
	return out, nil
}
