package jose

import (
	"errors"
	"testing"
	"time"
)

func TestCheckClaims(t *testing.T) {
	now := Clock()
	p := NewPolicy(WithClock(func() time.Time { return now }))

	claims := Claims{
		Expiry:    now.Add(time.Minute).Unix(),
		NotBefore: now.Unix(),
		IssuedAt:  now.Unix(),
	}
	if err := p.checkClaims(claims); err != nil {
		t.Fatal(err)
	}
}

func TestCheckClaimsNotBefore(t *testing.T) {
	now := Clock()
	p := NewPolicy(WithClock(func() time.Time { return now }))

	claims := Claims{NotBefore: now.Add(2 * time.Minute).Unix()}
	err := p.checkClaims(claims)
	var tokErr *TokenError
	if !errors.As(err, &tokErr) || tokErr.Kind != KindNotYetValid || !errors.Is(err, ErrNotValidYet) {
		t.Fatalf("expected KindNotYetValid/ErrNotValidYet but got: %v", err)
	}
}

func TestCheckClaimsIssuedInTheFuture(t *testing.T) {
	now := Clock()
	p := NewPolicy(WithClock(func() time.Time { return now.Truncate(2 * time.Minute) }))

	claims := Claims{IssuedAt: now.Unix()}
	err := p.checkClaims(claims)
	var tokErr *TokenError
	if !errors.As(err, &tokErr) || tokErr.Kind != KindNotYetValid || !errors.Is(err, ErrIssuedInTheFuture) {
		t.Fatalf("expected KindNotYetValid/ErrIssuedInTheFuture but got: %v", err)
	}
}

func TestCheckClaimsExpiry(t *testing.T) {
	now := Clock()
	p := NewPolicy(WithClock(func() time.Time { return now.Add(21 * time.Second) }))

	claims := Claims{Expiry: now.Add(20 * time.Second).Unix()}
	err := p.checkClaims(claims)
	var tokErr *TokenError
	if !errors.As(err, &tokErr) || tokErr.Kind != KindExpired || !errors.Is(err, ErrExpired) {
		t.Fatalf("expected KindExpired/ErrExpired but got: %v", err)
	}
}

func TestCheckClaimsClockSkewToleratesExpiry(t *testing.T) {
	now := Clock()
	p := NewPolicy(
		WithClock(func() time.Time { return now.Add(21 * time.Second) }),
		WithClockSkew(30*time.Second),
	)

	claims := Claims{Expiry: now.Add(20 * time.Second).Unix()}
	if err := p.checkClaims(claims); err != nil {
		t.Fatalf("expected clock skew to tolerate the slightly-expired token, got: %v", err)
	}
}

func TestCheckClaimsIssuerAllowList(t *testing.T) {
	p := NewPolicy(WithIssuers("trusted-issuer"))

	if err := p.checkClaims(Claims{Issuer: "trusted-issuer"}); err != nil {
		t.Fatalf("expected allowed issuer to pass, got: %v", err)
	}

	err := p.checkClaims(Claims{Issuer: "other"})
	var tokErr *TokenError
	if !errors.As(err, &tokErr) || tokErr.Kind != KindIssuerNotAllowed {
		t.Fatalf("expected KindIssuerNotAllowed but got: %v", err)
	}
}

func TestCheckClaimsAudienceAllowList(t *testing.T) {
	p := NewPolicy(WithAudiences("service-a", "service-b"))

	if err := p.checkClaims(Claims{Audience: Audience{"service-b", "service-c"}}); err != nil {
		t.Fatalf("expected an intersecting audience to pass, got: %v", err)
	}

	err := p.checkClaims(Claims{Audience: Audience{"service-c"}})
	var tokErr *TokenError
	if !errors.As(err, &tokErr) || tokErr.Kind != KindAudienceNotAllowed {
		t.Fatalf("expected KindAudienceNotAllowed but got: %v", err)
	}
}
