package jose

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestAudienceUnmarshalSingle(t *testing.T) {
	var a Audience
	if err := json.Unmarshal([]byte(`"aud1"`), &a); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, Audience{"aud1"}) {
		t.Fatalf("got %#v", a)
	}
}

func TestAudienceUnmarshalArray(t *testing.T) {
	var a Audience
	if err := json.Unmarshal([]byte(`["aud1","aud2"]`), &a); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, Audience{"aud1", "aud2"}) {
		t.Fatalf("got %#v", a)
	}
}

func TestAudienceUnmarshalNull(t *testing.T) {
	a := Audience{"leftover"}
	if err := json.Unmarshal([]byte(`null`), &a); err != nil {
		t.Fatal(err)
	}
	if a != nil {
		t.Fatalf("expected nil, got %#v", a)
	}
}

func TestClaimsRoundtrip(t *testing.T) {
	c := Claims{
		Issuer:   "my-iss",
		Subject:  "1194",
		Audience: Audience{"aud1", "aud2"},
		ID:       "my-jti",
	}

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}

	var got Claims
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(c, got) {
		t.Fatalf("roundtrip mismatch: %#v != %#v", c, got)
	}
}

func TestClaimsMaxAgeNotSerialized(t *testing.T) {
	c := Claims{MaxAge: 0}
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{}` {
		t.Fatalf("expected MaxAge to be excluded from JSON, got %s", data)
	}
}
