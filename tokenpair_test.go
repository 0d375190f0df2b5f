package jose

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/kataras/jose/jwa"
	"github.com/kataras/jose/jwk"
)

func TestBytesQuote(t *testing.T) {
	b := []byte("eyJhbGciOiJSUzI1NiIsInR5cCI6IkpXVCJ9.eyJ1c2VyX2lkIjoiNTNhZmNmMDUtMzhhMy00M2Mz")
	bQuoted := BytesQuote(b)

	if expected, got := strconv.Quote(string(b)), string(bQuoted); expected != got {
		t.Fatalf("expected %s but got %s", expected, got)
	}
}

func TestBytesQuoteEmptyIsNil(t *testing.T) {
	if got := BytesQuote(nil); got != nil {
		t.Fatalf("expected BytesQuote(nil) to be nil, got %q", got)
	}
	if got := BytesQuote([]byte{}); got != nil {
		t.Fatalf("expected BytesQuote([]byte{}) to be nil, got %q", got)
	}
}

func TestTokenPair(t *testing.T) {
	key := jwk.NewSymmetric([]byte("tokenpair-test-secret-key-12345"))

	accessToken, err := Sign(key, jwa.HS256, map[string]any{"foo": "bar"}, MaxAge(10*time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	refreshToken, err := Sign(key, jwa.HS256, Claims{Subject: "foobar"}, MaxAge(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	tokenPair := NewTokenPair(accessToken, refreshToken, 10*time.Minute)

	if tokenPair.TokenType != "Bearer" {
		t.Fatalf("expected token_type Bearer, got: %q", tokenPair.TokenType)
	}
	if tokenPair.ExpiresIn != 600 {
		t.Fatalf("expected expires_in 600, got: %d", tokenPair.ExpiresIn)
	}

	b, err := json.Marshal(tokenPair)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var tokPair TokenPair
	if err = json.Unmarshal(b, &tokPair); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !reflect.DeepEqual(tokenPair, tokPair) {
		t.Fatalf("expected token pairs to be matched, expected:\n%#+v\n\nbut got:\n%#+v", tokenPair, tokPair)
	}
}

func TestTokenPairOmitsEmptyRefreshToken(t *testing.T) {
	key := jwk.NewSymmetric([]byte("tokenpair-test-secret-key-12345"))
	accessToken, err := Sign(key, jwa.HS256, map[string]any{"foo": "bar"}, MaxAge(10*time.Minute))
	if err != nil {
		t.Fatal(err)
	}

	tokenPair := NewTokenPair(accessToken, nil, 10*time.Minute)

	b, err := json.Marshal(tokenPair)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), `"refresh_token"`) {
		t.Fatalf("expected refresh_token to be omitted, got: %s", b)
	}
}
