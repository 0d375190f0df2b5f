package jose

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"github.com/kataras/jose/jwa"
	"github.com/kataras/jose/jwk"
)

func TestHMACRoundTripAndTamperDetection(t *testing.T) {
	key := jwk.NewSymmetric([]byte("GdaXeVyiJwKmz5LFhcbcng"))
	policy := NewPolicy(WithKeys(&jwk.Set{Keys: []*jwk.Key{key}}))

	token, err := Sign(key, jwa.HS256, Claims{Subject: "1"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	jwt, err := Read(token, policy)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	var claims Claims
	if err := jwt.Claims(&claims); err != nil {
		t.Fatalf("Claims: %v", err)
	}
	if claims.Subject != "1" {
		t.Fatalf("got subject %q", claims.Subject)
	}

	tampered := append([]byte{}, token...)
	// Swap the signature segment's first character for another base64url
	// character, so the segment still decodes, but to different bytes.
	i := len(tampered) - 1
	for tampered[i-1] != '.' {
		i--
	}
	if tampered[i] == 'A' {
		tampered[i] = 'B'
	} else {
		tampered[i] = 'A'
	}
	_, err = Read(tampered, policy)
	var tokErr *TokenError
	if !errors.As(err, &tokErr) || tokErr.Kind != KindInvalidSignature {
		t.Fatalf("expected KindInvalidSignature, got %v", err)
	}
}

func TestRS256SignThenTamperRejected(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	signKey, err := jwk.NewRSAPrivate(priv)
	if err != nil {
		t.Fatalf("NewRSAPrivate: %v", err)
	}
	verifyKey := jwk.NewRSAPublic(&priv.PublicKey)
	policy := NewPolicy(WithKeys(&jwk.Set{Keys: []*jwk.Key{verifyKey}}))

	token, err := Sign(signKey, jwa.RS256, map[string]any{"sub": "rsa-user"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := Read(token, policy); err != nil {
		t.Fatalf("Read: %v", err)
	}

	tampered := append([]byte{}, token...)
	// Swap the signature segment's first character for another base64url
	// character, so the segment still decodes, but to different bytes.
	i := len(tampered) - 1
	for tampered[i-1] != '.' {
		i--
	}
	if tampered[i] == 'A' {
		tampered[i] = 'B'
	} else {
		tampered[i] = 'A'
	}
	_, err = Read(tampered, policy)
	var tokErr *TokenError
	if !errors.As(err, &tokErr) || tokErr.Kind != KindInvalidSignature {
		t.Fatalf("expected KindInvalidSignature, got %v", err)
	}
}

func TestDisallowedAlgorithmRejected(t *testing.T) {
	key := jwk.NewSymmetric([]byte("disallowed-algorithm-secret-123"))
	token, err := Sign(key, jwa.HS256, map[string]any{"sub": "x"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	policy := NewPolicy(
		WithKeys(&jwk.Set{Keys: []*jwk.Key{key}}),
		AllowSignatureAlgorithms(jwa.RS256),
	)

	_, err = Read(token, policy)
	var tokErr *TokenError
	if !errors.As(err, &tokErr) || tokErr.Kind != KindAlgorithmNotAllowed {
		t.Fatalf("expected KindAlgorithmNotAllowed, got %v", err)
	}
}

func TestJWEDirA128CBCHS256RoundTripAndTagTamper(t *testing.T) {
	cek := jwk.NewSymmetric(make([]byte, 32))
	policy := NewPolicy(WithKeys(&jwk.Set{Keys: []*jwk.Key{cek}}))

	plaintext := "Live long and prosper."
	token, err := Encrypt(cek, jwa.Dir, jwa.A128CBC_HS256, plaintext, false)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	jwt, err := Read(token, policy)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	var got string
	if err := jwt.Claims(&got); err != nil {
		t.Fatalf("Claims: %v", err)
	}
	if got != plaintext {
		t.Fatalf("got %q, want %q", got, plaintext)
	}

	tampered := append([]byte{}, token...)
	// Swap the tag segment's first character for another base64url
	// character, so the segment still decodes, but to different bytes.
	i := len(tampered) - 1
	for tampered[i-1] != '.' {
		i--
	}
	if tampered[i] == 'A' {
		tampered[i] = 'B'
	} else {
		tampered[i] = 'A'
	}
	_, err = Read(tampered, policy)
	var tokErr *TokenError
	if !errors.As(err, &tokErr) || tokErr.Kind != KindInvalidTag {
		t.Fatalf("expected KindInvalidTag, got %v", err)
	}
}

func TestJWEECDHESA128KWBetweenTwoParties(t *testing.T) {
	receiverPriv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	receiverPrivateKey, err := jwk.NewECPrivate(receiverPriv)
	if err != nil {
		t.Fatalf("NewECPrivate: %v", err)
	}
	receiverPublicKey, err := jwk.NewECPublic(&receiverPriv.PublicKey)
	if err != nil {
		t.Fatalf("NewECPublic: %v", err)
	}

	token, err := Encrypt(receiverPublicKey, jwa.ECDHESA128KW, jwa.A128CBC_HS256, map[string]any{"sub": "ecdh-user"}, false)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	policy := NewPolicy(WithKeys(&jwk.Set{Keys: []*jwk.Key{receiverPrivateKey}}))
	jwt, err := Read(token, policy)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	var claims map[string]any
	if err := jwt.Claims(&claims); err != nil {
		t.Fatalf("Claims: %v", err)
	}
	if claims["sub"] != "ecdh-user" {
		t.Fatalf("got %v", claims)
	}
}

func TestSignThenEncryptNestedRoundTrip(t *testing.T) {
	// The same 32-byte key material doubles as the HMAC signing key for the
	// inner JWS and the direct content-encryption key for the outer JWE, so
	// a single registered key resolves both layers (neither sets a "kid").
	key := jwk.NewSymmetric(make([]byte, 32))

	token, err := SignThenEncrypt(key, jwa.HS256, key, jwa.Dir, jwa.A128CBC_HS256, map[string]any{"sub": "nested-user"})
	if err != nil {
		t.Fatalf("SignThenEncrypt: %v", err)
	}

	policy := NewPolicy(WithKeys(&jwk.Set{Keys: []*jwk.Key{key}}))
	jwt, err := Read(token, policy)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if jwt.Outer == nil || jwt.Outer.Cty != "JWT" {
		t.Fatalf("expected Outer header with cty=JWT, got %#v", jwt.Outer)
	}

	var claims map[string]any
	if err := jwt.Claims(&claims); err != nil {
		t.Fatalf("Claims: %v", err)
	}
	if claims["sub"] != "nested-user" {
		t.Fatalf("got %v", claims)
	}
}

func TestPolicyClockSkewRejectsThenAccepts(t *testing.T) {
	key := jwk.NewSymmetric([]byte("clock-skew-test-secret-key-1234"))

	fixedNow := time.Unix(1_700_000_000, 0)
	expiredAt := fixedNow.Add(-10 * time.Second).Unix()

	token, err := Sign(key, jwa.HS256, Claims{Expiry: expiredAt})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	strict := NewPolicy(
		WithKeys(&jwk.Set{Keys: []*jwk.Key{key}}),
		WithClock(func() time.Time { return fixedNow }),
		WithClockSkew(5*time.Second),
	)
	_, err = Read(token, strict)
	var tokErr *TokenError
	if !errors.As(err, &tokErr) || tokErr.Kind != KindExpired {
		t.Fatalf("expected KindExpired, got %v", err)
	}

	tolerant := NewPolicy(
		WithKeys(&jwk.Set{Keys: []*jwk.Key{key}}),
		WithClock(func() time.Time { return fixedNow }),
		WithClockSkew(15*time.Second),
	)
	if _, err := Read(token, tolerant); err != nil {
		t.Fatalf("expected the 15s skew policy to accept the token, got %v", err)
	}
}
