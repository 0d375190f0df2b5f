package jose

import (
	"errors"
	"strings"
	"testing"

	"github.com/kataras/jose/jwa"
	"github.com/kataras/jose/jwk"
)

func TestUnmarshalWithRequired(t *testing.T) {
	type Nested struct {
		Name string `json:"name,required"`
	}

	key := jwk.NewSymmetric([]byte("required-test-secret-key-123456"))
	token, err := Sign(key, jwa.HS256, map[string]any{"username": "kataras", "age": 27, "nested": map[string]any{"name": ""}})
	if err != nil {
		t.Fatal(err)
	}

	jwt, err := Read(token, NewPolicy(WithKeys(&jwk.Set{Keys: []*jwk.Key{key}})))
	if err != nil {
		t.Fatal(err)
	}

	var claims = struct {
		Username string `json:"username,required"`
		Nested   Nested `json:"nested"`
	}{}
	err = jwt.Claims(&claims)
	if err != nil {
		t.Fatal(err)
	}

	if expected, got := "kataras", claims.Username; expected != got {
		t.Fatalf("expected claims{username} to be: %s but got: %s", expected, got)
	}

	var claimsShouldFail = struct {
		Username string  `json:"username,required"`
		Age      int     `json:"age,required"`
		Nested   *Nested /* test indirect too */ `json:"nested"`
	}{}
	err = jwt.Claims(&claimsShouldFail)
	// this should pass as we don't set the Unmarshal func yet.
	if err != nil {
		t.Fatal(err)
	}

	previous := Unmarshal
	Unmarshal = UnmarshalWithRequired
	defer func() { Unmarshal = previous }()

	// this should fail now because nested.name is missing.
	err = jwt.Claims(&claimsShouldFail)
	if !errors.Is(err, ErrMissingKey) {
		t.Fatalf("expected error: ErrMissingKey but got: %v", err)
	}

	var tokErr *TokenError
	if !errors.As(err, &tokErr) || tokErr.Kind != KindRequiredFieldMissing {
		t.Fatalf("expected KindRequiredFieldMissing but got: %v", err)
	}
	if !strings.Contains(tokErr.Error(), `"name"`) {
		t.Fatalf("expected the error to name the missing field by its JSON name, got: %v", tokErr)
	}
}
