package jose

import (
	"errors"
	"time"
)

// Leeway returns a TokenValidator that rejects a token if it will expire
// within leeway of now, even though the policy's own exp check (tighter,
// skew-free) already passed it. This is distinct from
// ValidationPolicy.WithClockSkew, which widens the valid window
// symmetrically to tolerate clock drift between issuer and verifier;
// Leeway instead narrows it on the expiring edge only, so a caller that
// is about to start a multi-second operation (a database write, a chain
// of downstream API calls) can refuse to proceed with a token that would
// expire mid-operation.
func Leeway(leeway time.Duration) TokenValidatorFunc {
	return func(_ []byte, standardClaims Claims, err error) error {
		if err != nil {
			return err
		}
		if standardClaims.Expiry == 0 {
			return nil
		}
		if Clock().Add(leeway).Round(time.Second).Unix() > standardClaims.Expiry {
			return newTokenError(KindExpired, ErrExpired)
		}
		return nil
	}
}

// Future returns a TokenValidator that downgrades an ErrIssuedInTheFuture
// failure back to success as long as the token's "iat" is no more than
// dur ahead of now — tolerating the same kind of clock drift
// WithClockSkew tolerates for exp/nbf, but as an opt-in validator rather
// than a policy-wide setting, for callers that want skew tolerance on iat
// specifically without loosening exp/nbf too.
func Future(dur time.Duration) TokenValidatorFunc {
	return func(_ []byte, standardClaims Claims, err error) error {
		if !errors.Is(err, ErrIssuedInTheFuture) {
			return err
		}
		if Clock().Add(dur).Round(time.Second).Unix() < standardClaims.IssuedAt {
			return newTokenError(KindNotYetValid, ErrIssuedInTheFuture)
		}
		return nil
	}
}
