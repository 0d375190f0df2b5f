/*
Package jose implements JSON Web Tokens, Signatures, Encryption, and Keys as
defined in RFC 7519, RFC 7515, RFC 7516, RFC 7517, and RFC 7518, with EdDSA
support from RFC 8037.

# Overview

The package exposes a single facade over three lower-level packages:

  - jws: compact JSON Web Signature read/write (HS*, RS*, PS*, ES*, EdDSA, none)
  - jwe: compact JSON Web Encryption read/write (key wrap, ECDH-ES, AES-GCM/CBC-HMAC content encryption)
  - jwk: key representation, construction, and RFC 7638 thumbprints

Signing and verification go through Sign/Encrypt/SignThenEncrypt and Read;
policy governs which algorithms, keys, and standard claims a Read call will
accept.

# Basic Usage

	key := jwk.NewSymmetric([]byte("your-256-bit-secret-key-here"))

	token, err := jose.Sign(key, jwa.HS256, map[string]any{
	    "user_id": 12345,
	    "role":    "admin",
	}, jose.MaxAge(15*time.Minute))
	if err != nil {
	    panic(err)
	}

	policy := jose.NewPolicy(jose.WithKeys(&jwk.Set{Keys: []*jwk.Key{key}}))
	jwt, err := jose.Read(token, policy)
	if err != nil {
	    panic(err)
	}

	var claims map[string]any
	if err := jwt.Claims(&claims); err != nil {
	    panic(err)
	}

# Multi-Key Verification by "kid"

Keys wraps a kid-indexed key store so a service holding several active keys
(rotation, multi-tenant signing) can resolve the right one per token without
building a ValidationPolicy by hand:

	keys := jose.NewKeys()
	keys.Register("2024-01", signingKey)

	token, err := keys.SignToken("2024-01", jwa.HS256, claims)
	...
	var out map[string]any
	err = keys.VerifyToken(token, &out)

# Encryption

Encrypt produces a compact JWE. Dir and the AES/ECDH key-wrap algorithms
share the same Claims/SignOption machinery Sign uses:

	token, err := jose.Encrypt(cek, jwa.Dir, jwa.A128GCM, claims, false)
	...
	jwt, err := jose.Read(token, jose.NewPolicy(jose.WithKeys(keySet)))

SignThenEncrypt nests a signed token inside a JWE (cty: "JWT"); Read unwraps
it automatically up to the policy's WithMaxNestedDepth, and the inner JWS's
claims govern validation — the outer JWE header is available on Jwt.Outer
purely as transport metadata, never merged into the claims themselves.

# Validation Policy

ValidationPolicy controls algorithm allow-lists, key resolution, clock skew,
and issuer/audience checks:

	policy := jose.NewPolicy(
	    jose.WithKeys(keySet),
	    jose.AllowSignatureAlgorithms(jwa.RS256, jwa.ES256),
	    jose.WithIssuers("my-auth-service"),
	    jose.WithAudiences("api.myapp.com"),
	    jose.WithClockSkew(30*time.Second),
	)

	jwt, err := jose.Read(token, policy)

Read also accepts TokenValidators, run in order after the built-in checks:

	jwt, err := jose.Read(token, policy,
	    jose.Expected{Subject: "user123"},
	    jose.Leeway(10*time.Second),
	)

# Standard Claims

Claims carries the RFC 7519 registered claims (nbf, iat, exp, jti, iss, sub,
aud) plus MaxAge, a helper field consumed by the MaxAge SignOption to derive
iat/exp from the current time rather than requiring the caller to compute
them. Audience accepts either RFC 7519 "aud" form (a single string or an
array of strings) when decoding, and always encodes back as an array.

# Errors

Read reports failures as a *TokenError carrying one of a fixed set of Kind
values (KindExpired, KindInvalidSignature, KindKeyNotFound, and so on).
Kind is intended for metrics and logging; use errors.Is against the
package's Err* sentinels, or errors.As against *TokenError, to branch on a
specific failure:

	jwt, err := jose.Read(token, policy)
	if err != nil {
	    var tokErr *jose.TokenError
	    if errors.As(err, &tokErr) {
	        log.Printf("token rejected: %s", tokErr.Kind)
	    }
	}

# Standards Compliance

  - RFC 7519 — JSON Web Token (JWT)
  - RFC 7515 — JSON Web Signature (JWS)
  - RFC 7516 — JSON Web Encryption (JWE)
  - RFC 7517 — JSON Web Key (JWK)
  - RFC 7518 — JSON Web Algorithms (JWA)
  - RFC 8037 — EdDSA and ECDH over Ed25519/X25519 for JOSE
  - RFC 3394 — AES Key Wrap
  - RFC 7638 — JWK Thumbprint
*/
package jose
