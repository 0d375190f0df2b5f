package jwk

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"testing"
)

func TestSymmetricJSONRoundTrip(t *testing.T) {
	k := NewSymmetric([]byte("sercrethatmaycontainch@r$"), WithKid("k1"), WithUse(UseSig))

	data, err := json.Marshal(k)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out Key
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(out.Symmetric()) != "sercrethatmaycontainch@r$" {
		t.Fatalf("got %q", out.Symmetric())
	}
}

func TestRSAJSONRoundTripAndModulusFloor(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	k, err := NewRSAPrivate(priv)
	if err != nil {
		t.Fatalf("NewRSAPrivate: %v", err)
	}

	data, err := json.Marshal(k)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Key
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	gotPriv, err := out.RSAPrivateKey()
	if err != nil {
		t.Fatalf("RSAPrivateKey: %v", err)
	}
	if gotPriv.N.Cmp(priv.N) != 0 {
		t.Fatal("modulus mismatch after round trip")
	}

	small, _ := rsa.GenerateKey(rand.Reader, 1024)
	if _, err := NewRSAPrivate(small); err != ErrRSAModulusTooSmall {
		t.Fatalf("want ErrRSAModulusTooSmall, got %v", err)
	}
}

func TestECJSONRoundTrip(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	k, err := NewECPrivate(priv)
	if err != nil {
		t.Fatalf("NewECPrivate: %v", err)
	}

	data, err := json.Marshal(k)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Key
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	gotPub, err := out.ECPublicKey()
	if err != nil {
		t.Fatalf("ECPublicKey: %v", err)
	}
	if gotPub.X.Cmp(priv.X) != 0 || gotPub.Y.Cmp(priv.Y) != 0 {
		t.Fatal("coordinate mismatch after round trip")
	}
}

func TestThumbprintIsDeterministic(t *testing.T) {
	k1 := NewSymmetric([]byte("same-key-material"))
	k2 := NewSymmetric([]byte("same-key-material"))

	t1, err := k1.Thumbprint()
	if err != nil {
		t.Fatalf("thumbprint: %v", err)
	}
	t2, err := k2.Thumbprint()
	if err != nil {
		t.Fatalf("thumbprint: %v", err)
	}
	if string(t1) != string(t2) {
		t.Fatal("thumbprints of identical key material must match, despite distinct Key instances")
	}
}

func TestKidEmptyUntilSetExplicitly(t *testing.T) {
	k := NewSymmetric([]byte("x"))
	if k.Kid() != "" {
		t.Fatalf("want empty kid with no WithKid, got %q", k.Kid())
	}

	k2 := NewSymmetric([]byte("x"), WithKid("k1"))
	if got := k2.Kid(); got != "k1" {
		t.Fatalf("want %q, got %q", "k1", got)
	}
}
