package jose

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	// ErrExpired indicates that token is used after expiry time indicated in "exp" claim.
	ErrExpired = errors.New("token expired")
	// ErrNotValidYet indicates that token is used before time indicated in "nbf" claim.
	ErrNotValidYet = errors.New("token not valid yet")
	// ErrIssuedInTheFuture indicates that the "iat" claim is in the future.
	ErrIssuedInTheFuture = errors.New("token issued in the future")
)

// Claims holds the standard JWT claims (payload fields), the ones Read
// checks against a ValidationPolicy before handing control to any
// TokenValidator.
type Claims struct {
	// NotBefore ("nbf") is the time, in seconds since the Unix epoch,
	// before which the token must be rejected. ValidationPolicy.checkClaims
	// compares it against the policy's clock, widened by WithClockSkew.
	NotBefore int64 `json:"nbf,omitempty"`
	// IssuedAt ("iat") is the time, in seconds since the Unix epoch, at
	// which the token was issued. A value in the future (beyond any
	// WithClockSkew tolerance) fails with ErrIssuedInTheFuture.
	IssuedAt int64 `json:"iat,omitempty"`
	// Expiry ("exp") is the time, in seconds since the Unix epoch, after
	// which the token must be rejected. See WithClockSkew to tolerate
	// issuer/verifier clock drift, and Leeway to instead reject a token
	// that will expire soon even though it hasn't yet.
	Expiry int64 `json:"exp,omitempty"`
	// ID ("jti") is a unique identifier for this token. Blocklist can
	// revoke a token by this value alone, without the raw token bytes.
	ID string `json:"jti,omitempty"`
	// Issuer ("iss") identifies the party that issued the token.
	// WithIssuers restricts Read to an allow-list of these.
	Issuer string `json:"iss,omitempty"`
	// Subject ("sub") identifies the principal the token's claims are
	// about.
	Subject string `json:"sub,omitempty"`
	// Audience ("aud") identifies the intended recipients of the token.
	// WithAudiences restricts Read to tokens whose Audience intersects an
	// allow-list.
	Audience Audience `json:"aud,omitempty"`

	// MaxAge is not part of any JSON result. The MaxAge SignOption sets
	// it on the claims Sign overlays onto the payload, where it derives
	// IssuedAt and Expiry from time.Now at signing time. A MaxAge set on
	// a Claims value passed to Sign as the payload has no effect.
	MaxAge time.Duration `json:"-"`
}

// Audience is the "aud" claim (RFC 7519 §4.1.3). The JWT spec allows it
// to be serialized either as a single JSON string or as an array of
// strings; Audience always unmarshals either form into a slice and
// always marshals back as an array.
type Audience []string

// UnmarshalJSON accepts both `"aud"` forms RFC 7519 permits.
func (a *Audience) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*a = nil
		return nil
	}
	if data[0] == '[' {
		var multi []string
		if err := json.Unmarshal(data, &multi); err != nil {
			return err
		}
		*a = multi
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*a = Audience{single}
	return nil
}
