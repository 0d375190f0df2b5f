package jsonscan

import (
	"reflect"
	"testing"
)

func TestPeekExtractsKnownFields(t *testing.T) {
	raw := []byte(`{"typ":"JWT","alg":"HS256","enc":"A128GCM","crit":["b64"],"extra":{"nested":true}}`)
	p, err := Peek(raw)
	if err != nil {
		t.Fatal(err)
	}
	if p.Alg != "HS256" || p.Enc != "A128GCM" {
		t.Fatalf("got %+v", p)
	}
	if !reflect.DeepEqual(p.Crit, []string{"b64"}) {
		t.Fatalf("got crit %+v", p.Crit)
	}
}

func TestPeekSkipsNestedValuesUnread(t *testing.T) {
	raw := []byte(`{"jwk":{"kty":"EC","x":"abc","y":"def","crv":"P-256"},"alg":"ES256"}`)
	p, err := Peek(raw)
	if err != nil {
		t.Fatal(err)
	}
	if p.Alg != "ES256" {
		t.Fatalf("got %+v", p)
	}
}

func TestPeekMissingFieldsAreZero(t *testing.T) {
	p, err := Peek([]byte(`{"kid":"key-1"}`))
	if err != nil {
		t.Fatal(err)
	}
	if p.Alg != "" || p.Enc != "" || p.Crit != nil {
		t.Fatalf("expected zero Peeked, got %+v", p)
	}
}

func TestPeekRejectsNonObject(t *testing.T) {
	if _, err := Peek([]byte(`[1,2,3]`)); err == nil {
		t.Fatal("expected an error for a non-object top level")
	}
}

func TestPeekArrayValuedCrit(t *testing.T) {
	p, err := Peek([]byte(`{"crit":["exp","b64"],"alg":"RS256"}`))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(p.Crit, []string{"exp", "b64"}) {
		t.Fatalf("got %+v", p.Crit)
	}
}
