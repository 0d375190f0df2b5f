package jose

import (
	"errors"
	"fmt"
	"testing"
)

func TestExpected(t *testing.T) {
	expected := Expected{
		NotBefore: 2019,
		IssuedAt:  1193,
		Expiry:    2020,
		ID:        "my-jti",
		Issuer:    "my-iss",
		Subject:   "1194",
		Audience:  []string{"aud1", "aud2"},
	}

	previous := fmt.Errorf("test err")
	if got := expected.ValidateToken(nil, Claims{}, previous); got != previous {
		t.Fatalf("expected to return the previous error unchanged but got: %v", got)
	}

	match := Claims{
		NotBefore: 2019,
		IssuedAt:  1193,
		Expiry:    2020,
		ID:        "my-jti",
		Issuer:    "my-iss",
		Subject:   "1194",
		Audience:  []string{"aud1", "aud2"},
	}
	if err := expected.ValidateToken(nil, match, nil); err != nil {
		t.Fatalf("expected nil error but got: %v", err)
	}

	assertMismatch := func(t *testing.T, claims Claims, wantField string) {
		t.Helper()
		err := expected.ValidateToken(nil, claims, nil)
		var tokErr *TokenError
		if !errors.As(err, &tokErr) || tokErr.Kind != KindClaimMismatch {
			t.Fatalf("expected KindClaimMismatch, got: %#+v", err)
		}
		if !errors.Is(err, ErrExpected) {
			t.Fatalf("expected errors.Is(err, ErrExpected), got: %v", err)
		}
		want := fmt.Sprintf("%s: %s", ErrExpected.Error(), wantField)
		if got := tokErr.Err.Error(); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}

	t.Run("nbf", func(t *testing.T) {
		assertMismatch(t, Claims{NotBefore: 1}, "nbf")
	})
	t.Run("iat", func(t *testing.T) {
		assertMismatch(t, Claims{NotBefore: expected.NotBefore, IssuedAt: 1}, "iat")
	})
	t.Run("exp", func(t *testing.T) {
		c := match
		c.Expiry = 1
		assertMismatch(t, c, "exp")
	})
	t.Run("jti", func(t *testing.T) {
		c := match
		c.ID = "unmatched"
		assertMismatch(t, c, "jti")
	})
	t.Run("iss", func(t *testing.T) {
		c := match
		c.Issuer = "unmatched"
		assertMismatch(t, c, "iss")
	})
	t.Run("sub", func(t *testing.T) {
		c := match
		c.Subject = "unmatched"
		assertMismatch(t, c, "sub")
	})
	t.Run("aud missing member", func(t *testing.T) {
		c := match
		c.Audience = []string{"aud1", "aud3"}
		assertMismatch(t, c, `aud ("aud2")`)
	})

	t.Run("aud superset still matches", func(t *testing.T) {
		// Audience is checked as a set: the token may carry additional
		// audiences beyond what's Expected.
		c := match
		c.Audience = []string{"aud2", "aud1", "aud3"}
		if err := expected.ValidateToken(nil, c, nil); err != nil {
			t.Fatalf("expected a superset audience to match, got: %v", err)
		}
	})

	t.Run("aud order-independent", func(t *testing.T) {
		c := match
		c.Audience = []string{"aud2", "aud1"}
		if err := expected.ValidateToken(nil, c, nil); err != nil {
			t.Fatalf("expected audience order to be irrelevant, got: %v", err)
		}
	})
}
