// Package jwe implements the JWE half (RFC 7516): the compact
// serialization's five-segment Read and Write, orchestrating CEK
// wrap/unwrap through internal/cryptocache's KeyWrapper and content
// sealing/opening through its Encryptor.
package jwe

import (
	"bytes"
	"compress/flate"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/kataras/jose/internal/base64url"
	"github.com/kataras/jose/internal/cryptocache"
	"github.com/kataras/jose/internal/joseheader"
	"github.com/kataras/jose/jwa"
	"github.com/kataras/jose/jwk"
)

var (
	ErrMalformedToken    = errors.New("jwe: malformed token")
	ErrTokenTooLarge     = errors.New("jwe: token exceeds the configured size limit")
	ErrBase64Invalid     = errors.New("jwe: invalid base64url segment")
	ErrHeaderInvalid     = errors.New("jwe: invalid header")
	ErrUnknownAlgorithm  = errors.New("jwe: unknown key management or encryption algorithm")
	ErrAlgorithmNotAllowed = errors.New("jwe: key management algorithm not allowed by policy")
	ErrKeyNotFound       = errors.New("jwe: no key resolved for this header")
	ErrInvalidTag        = errors.New("jwe: authentication tag verification failed")
	ErrInvalidKeyWrap     = cryptocache.ErrInvalidKeyWrap
	ErrDecompressionBomb = errors.New("jwe: decompressed plaintext exceeds the configured size limit")
)

// KeyResolver looks up the key-management key a JWE header names.
type KeyResolver func(kw jwa.KeyManagementAlgorithm, kid string) (*jwk.Key, error)

// AlgorithmAllowed reports whether a key-management algorithm may be used
// to decrypt an incoming token.
type AlgorithmAllowed func(kw jwa.KeyManagementAlgorithm) bool

// Message is a successfully decrypted JWE: the parsed header and the
// decrypted (not yet claims-validated, and not yet unwrapped if nested)
// plaintext.
type Message struct {
	Header    joseheader.Header
	Plaintext []byte
}

// Read decrypts a compact-serialized JWE. maxBytes bounds both the raw
// token size and the inflated plaintext size when zip=DEF, guarding
// against decompression bombs.
func Read(raw []byte, maxBytes int, resolveKey KeyResolver, allowed AlgorithmAllowed, wrappers *cryptocache.KeyWrapperFactory, encryptors *cryptocache.EncryptorFactory) (*Message, error) {
	if maxBytes > 0 && len(raw) > maxBytes {
		return nil, ErrTokenTooLarge
	}

	parts := bytes.SplitN(raw, []byte{'.'}, 6)
	if len(parts) != 5 {
		return nil, ErrMalformedToken
	}
	hRaw, ekRaw, ivRaw, ctRaw, tagRaw := parts[0], parts[1], parts[2], parts[3], parts[4]

	headerJSON, err := base64url.AppendDecode(hRaw)
	if err != nil {
		return nil, ErrBase64Invalid
	}
	header, err := joseheader.Parse(headerJSON)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHeaderInvalid, err)
	}

	kw, ok := jwa.ParseKeyManagementAlgorithm(header.Alg)
	if !ok {
		return nil, ErrUnknownAlgorithm
	}
	enc, ok := jwa.ParseEncryptionAlgorithm(header.Enc)
	if !ok {
		return nil, ErrUnknownAlgorithm
	}
	if allowed != nil && !allowed(kw) {
		return nil, ErrAlgorithmNotAllowed
	}

	key, err := resolveKey(kw, header.Kid)
	if err != nil {
		return nil, err
	}
	if key == nil {
		return nil, ErrKeyNotFound
	}

	ek, err := base64url.AppendDecode(ekRaw)
	if err != nil {
		return nil, ErrBase64Invalid
	}
	iv, err := base64url.AppendDecode(ivRaw)
	if err != nil {
		return nil, ErrBase64Invalid
	}
	ciphertext, err := base64url.AppendDecode(ctRaw)
	if err != nil {
		return nil, ErrBase64Invalid
	}
	tag, err := base64url.AppendDecode(tagRaw)
	if err != nil {
		return nil, ErrBase64Invalid
	}

	var ecdhParams *cryptocache.ECDHParams
	if kw.UsesECDH() {
		ecdhParams, err = ecdhParamsFromHeader(header)
		if err != nil {
			return nil, err
		}
	}

	var gcmIV, gcmTag []byte
	if kw.UsesGCMIVAndTag() {
		gcmIV, err = base64url.AppendDecode([]byte(header.IV))
		if err != nil {
			return nil, ErrBase64Invalid
		}
		gcmTag, err = base64url.AppendDecode([]byte(header.Tag))
		if err != nil {
			return nil, ErrBase64Invalid
		}
	}

	wrapper, err := wrappers.GetOrCreate(key, kw, enc)
	if err != nil {
		return nil, err
	}
	cek, err := wrapper.Unwrap(ek, enc.CEKSize(), ecdhParams, gcmIV, gcmTag)
	if err != nil {
		return nil, err
	}

	encryptor, err := encryptors.GetOrCreate(enc)
	if err != nil {
		return nil, err
	}
	plaintext, err := encryptor.Open(cek, iv, hRaw, ciphertext, tag)
	if err != nil {
		return nil, ErrInvalidTag
	}

	if header.Zip == "DEF" {
		plaintext, err = inflate(plaintext, maxBytes)
		if err != nil {
			return nil, err
		}
	}

	return &Message{Header: header, Plaintext: plaintext}, nil
}

// ecdhParamsFromHeader decodes the "epk" (and, if present, "apu"/"apv")
// header fields back into the recipient-side cryptocache.ECDHParams
// Unwrap needs. It re-marshals "epk" through *jwk.Key's own JSON
// UnmarshalJSON rather than building an EC key by hand, so jwk's
// coordinate-size validation (and any future Kty it learns) runs here too.
func ecdhParamsFromHeader(h joseheader.Header) (*cryptocache.ECDHParams, error) {
	if len(h.Epk) == 0 {
		return nil, ErrHeaderInvalid
	}
	key := &jwk.Key{}
	if err := key.UnmarshalJSON(h.Epk); err != nil {
		return nil, ErrHeaderInvalid
	}

	var apu, apv []byte
	var err error
	if h.Apu != "" {
		if apu, err = base64url.AppendDecode([]byte(h.Apu)); err != nil {
			return nil, ErrBase64Invalid
		}
	}
	if h.Apv != "" {
		if apv, err = base64url.AppendDecode([]byte(h.Apv)); err != nil {
			return nil, ErrBase64Invalid
		}
	}

	return &cryptocache.ECDHParams{EphemeralPublic: key, Apu: apu, Apv: apv}, nil
}

// WriteDescriptor is everything Write needs to produce a compact JWE.
type WriteDescriptor struct {
	Header    joseheader.Header
	Key       *jwk.Key
	KW        jwa.KeyManagementAlgorithm
	Enc       jwa.EncryptionAlgorithm
	Plaintext []byte
	Compress  bool // sets zip=DEF and deflates Plaintext before sealing
}

// Write wraps a fresh CEK under Key with KW, seals Plaintext under Enc,
// and renders the compact serialization.
func Write(d WriteDescriptor, wrappers *cryptocache.KeyWrapperFactory, encryptors *cryptocache.EncryptorFactory) ([]byte, error) {
	d.Header.Alg = d.KW.Name()
	d.Header.Enc = d.Enc.Name()

	plaintext := d.Plaintext
	if d.Compress {
		d.Header.Zip = "DEF"
		deflated, err := deflate(plaintext)
		if err != nil {
			return nil, err
		}
		plaintext = deflated
	}

	var cek []byte
	switch d.KW {
	case jwa.Dir:
		// The recipient key IS the CEK; nothing is generated or wrapped.
		cek = append([]byte{}, d.Key.Symmetric()...)
	case jwa.ECDHES:
		// wrapper.Wrap overwrites cek in place with the Concat-KDF output.
		cek = make([]byte, d.Enc.CEKSize())
	default:
		cek = make([]byte, d.Enc.CEKSize())
		if _, err := rand.Read(cek); err != nil {
			return nil, err
		}
	}

	wrapper, err := wrappers.GetOrCreate(d.Key, d.KW, d.Enc)
	if err != nil {
		return nil, err
	}
	wrapped, ecdhParams, gcmIV, gcmTag, err := wrapper.Wrap(cek)
	if err != nil {
		return nil, err
	}

	if ecdhParams != nil && ecdhParams.EphemeralPublic != nil {
		epkRaw, err := ecdhParams.EphemeralPublic.MarshalJSON()
		if err != nil {
			return nil, err
		}
		d.Header.Epk = epkRaw
		if len(ecdhParams.Apu) > 0 {
			d.Header.Apu = string(base64url.AppendEncode(ecdhParams.Apu))
		}
		if len(ecdhParams.Apv) > 0 {
			d.Header.Apv = string(base64url.AppendEncode(ecdhParams.Apv))
		}
	}
	if gcmIV != nil {
		d.Header.IV = string(base64url.AppendEncode(gcmIV))
		d.Header.Tag = string(base64url.AppendEncode(gcmTag))
	}

	headerJSON, err := d.Header.Encode()
	if err != nil {
		return nil, err
	}
	hRaw := base64url.AppendEncode(headerJSON)

	encryptor, err := encryptors.GetOrCreate(d.Enc)
	if err != nil {
		return nil, err
	}
	iv, err := encryptor.NewIV()
	if err != nil {
		return nil, err
	}
	ciphertext, tag, err := encryptor.Seal(cek, iv, hRaw, plaintext)
	if err != nil {
		return nil, err
	}

	ekRaw := base64url.AppendEncode(wrapped)
	ivRaw := base64url.AppendEncode(iv)
	ctRaw := base64url.AppendEncode(ciphertext)
	tagRaw := base64url.AppendEncode(tag)

	out := make([]byte, 0, len(hRaw)+len(ekRaw)+len(ivRaw)+len(ctRaw)+len(tagRaw)+4)
	out = append(out, hRaw...)
	out = append(out, '.')
	out = append(out, ekRaw...)
	out = append(out, '.')
	out = append(out, ivRaw...)
	out = append(out, '.')
	out = append(out, ctRaw...)
	out = append(out, '.')
	out = append(out, tagRaw...)
	return out, nil
}

// deflate compresses src with RFC 1951 DEFLATE (zip=DEF, RFC 7516 §4.1.3).
func deflate(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// inflate decompresses src, refusing to produce more than maxBytes of
// plaintext so a malicious small ciphertext cannot expand unboundedly
// (maxBytes<=0 disables the bound).
func inflate(src []byte, maxBytes int) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(src))
	defer r.Close()

	if maxBytes <= 0 {
		return io.ReadAll(r)
	}
	limited := io.LimitReader(r, int64(maxBytes)+1)
	out, err := io.ReadAll(limited)
	if err != nil {
		return nil, err
	}
	if len(out) > maxBytes {
		return nil, ErrDecompressionBomb
	}
	return out, nil
}
