package jose

import (
	"errors"
	"testing"
	"time"
)

func TestLeeway(t *testing.T) {
	l := Leeway(10 * time.Second)
	err := l.ValidateToken(nil, Claims{
		Expiry: Clock().Add(8 * time.Second).Unix(),
	}, nil)
	var tokErr *TokenError
	if !errors.As(err, &tokErr) || tokErr.Kind != KindExpired {
		t.Fatalf("expected KindExpired but got: %v", err)
	}

	// Respects a prior error untouched.
	errPrevious := errors.New("previous error")
	err = l.ValidateToken(nil, Claims{}, errPrevious)
	if err != errPrevious {
		t.Fatalf("expected to respect previous error but got: %v", err)
	}

	// A token with plenty of time left is unaffected.
	err = l.ValidateToken(nil, Claims{
		Expiry: Clock().Add(time.Hour).Unix(),
	}, nil)
	if err != nil {
		t.Fatalf("expected no error for a token far from expiry, got: %v", err)
	}
}

func TestFuture(t *testing.T) {
	f := Future(60 * time.Second)

	iat := Clock().Add(30 * time.Second).Unix()
	err := f.ValidateToken(nil, Claims{IssuedAt: iat}, newTokenError(KindNotYetValid, ErrIssuedInTheFuture))
	if err != nil {
		t.Fatalf("expected tolerance to accept a 30s-future iat, got: %v", err)
	}

	iat = Clock().Add(5 * time.Minute).Unix()
	err = f.ValidateToken(nil, Claims{IssuedAt: iat}, newTokenError(KindNotYetValid, ErrIssuedInTheFuture))
	var tokErr *TokenError
	if !errors.As(err, &tokErr) || tokErr.Kind != KindNotYetValid {
		t.Fatalf("expected KindNotYetValid beyond the tolerance, got: %v", err)
	}

	// An unrelated error passes through untouched.
	other := errors.New("other failure")
	if err := f.ValidateToken(nil, Claims{}, other); err != other {
		t.Fatalf("expected unrelated error to pass through, got: %v", err)
	}
}
