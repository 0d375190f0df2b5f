package cryptocache

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/kataras/jose/jwa"
	"github.com/kataras/jose/jwk"
)

func TestHS256RoundTrip(t *testing.T) {
	key := jwk.NewSymmetric([]byte("super-secret-hmac-key-material!"))
	f := NewSignVerifierFactory()
	sv, err := f.GetOrCreate(key, jwa.HS256)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	msg := []byte("the quick brown fox")
	sig, err := sv.Sign(msg)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if !sv.Verify(msg, sig) {
		t.Fatal("expected signature to verify")
	}
	if sv.Verify([]byte("tampered"), sig) {
		t.Fatal("tampered message must not verify")
	}
}

// TestRS256TamperRejected implements the RS256 tamper scenario: a
// signature produced for one payload must not verify against another.
func TestRS256TamperRejected(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	key, err := jwk.NewRSAPrivate(priv)
	if err != nil {
		t.Fatalf("NewRSAPrivate: %v", err)
	}

	f := NewSignVerifierFactory()
	sv, err := f.GetOrCreate(key, jwa.RS256)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	original := []byte(`{"sub":"1234567890","name":"John Doe"}`)
	sig, err := sv.Sign(original)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if !sv.Verify(original, sig) {
		t.Fatal("expected the untampered payload to verify")
	}

	tampered := []byte(`{"sub":"1234567890","name":"Jane Doe"}`)
	if sv.Verify(tampered, sig) {
		t.Fatal("a signature over the original payload must not verify a tampered one")
	}
}

func TestDisposedFactoryRejectsFurtherUse(t *testing.T) {
	key := jwk.NewSymmetric([]byte("k"))
	f := NewSignVerifierFactory()
	sv, err := f.GetOrCreate(key, jwa.HS256)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	f.Dispose()

	if _, err := sv.Sign([]byte("x")); err != ErrDisposed {
		t.Fatalf("want ErrDisposed, got %v", err)
	}
	if _, err := f.GetOrCreate(key, jwa.HS256); err != ErrDisposed {
		t.Fatalf("want ErrDisposed, got %v", err)
	}
}

func TestSameCacheKeyReturnsSameSignVerifier(t *testing.T) {
	key := jwk.NewSymmetric([]byte("k"))
	f := NewSignVerifierFactory()
	a, _ := f.GetOrCreate(key, jwa.HS256)
	b, _ := f.GetOrCreate(key, jwa.HS256)
	if a != b {
		t.Fatal("expected the same SignVerifier instance for an identical CacheKey")
	}
}

func TestVerifyHalfAlwaysRejected(t *testing.T) {
	key := jwk.NewSymmetric([]byte("super-secret-hmac-key-material!"))
	f := NewSignVerifierFactory()
	sv, err := f.GetOrCreate(key, jwa.HS256)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	sig, err := sv.Sign([]byte("payload"))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	ok, err := sv.VerifyHalf([]byte("payload"), sig[:len(sig)/2])
	if ok || err != ErrHalfSignatureVerificationUnsupported {
		t.Fatalf("got (%v, %v), want (false, ErrHalfSignatureVerificationUnsupported)", ok, err)
	}
}
