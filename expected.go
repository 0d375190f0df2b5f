package jose

import (
	"errors"
	"fmt"
)

// Expected is a TokenValidator that checks a verified token's standard
// claims against known values. Only the fields set to a non-zero value
// are checked, so a caller can assert just the claims it cares about
// (e.g. only Subject) while leaving the rest unconstrained.
//
//	expected := jose.Expected{Issuer: "my-auth-service", Subject: "user123"}
//	jwt, err := jose.Read(token, policy, expected)
//	if errors.Is(err, jose.ErrExpected) {
//	    log.Printf("claim mismatch: %v", err)
//	}
type Expected Claims

var _ TokenValidator = Expected{}

// ErrExpected indicates that a claim did not match an Expected value.
// Check with errors.Is; errors.As against *TokenError exposes which claim
// via the wrapped error's text.
var ErrExpected = errors.New("jose: field not match")

// ValidateToken implements TokenValidator. A prior error is returned
// unchanged — Expected never overrides a cryptographic or timing
// failure, only adds checks beyond them. Audience is checked as a set
// (every name in e.Audience must be present in c.Audience, in any order)
// rather than an ordered, equal-length comparison: RFC 7519 §4.1.3 treats
// "aud" as the set of intended recipients, and two encoders are free to
// serialize that set in different orders.
func (e Expected) ValidateToken(_ []byte, c Claims, err error) error {
	if err != nil {
		return err
	}

	switch {
	case e.NotBefore > 0 && e.NotBefore != c.NotBefore:
		return mismatch("nbf")
	case e.IssuedAt > 0 && e.IssuedAt != c.IssuedAt:
		return mismatch("iat")
	case e.Expiry > 0 && e.Expiry != c.Expiry:
		return mismatch("exp")
	case e.ID != "" && e.ID != c.ID:
		return mismatch("jti")
	case e.Issuer != "" && e.Issuer != c.Issuer:
		return mismatch("iss")
	case e.Subject != "" && e.Subject != c.Subject:
		return mismatch("sub")
	}

	if len(e.Audience) > 0 {
		have := make(map[string]bool, len(c.Audience))
		for _, a := range c.Audience {
			have[a] = true
		}
		for _, want := range e.Audience {
			if !have[want] {
				return mismatch(fmt.Sprintf("aud (%q)", want))
			}
		}
	}

	return nil
}

func mismatch(field string) error {
	return newTokenError(KindClaimMismatch, fmt.Errorf("%w: %s", ErrExpected, field))
}
