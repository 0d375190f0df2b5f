package jose

import (
	"errors"
	"fmt"

	"github.com/kataras/jose/internal/joseheader"
	"github.com/kataras/jose/jwe"
	"github.com/kataras/jose/jws"
)

// Kind classifies a TokenError so callers can branch on failure category
// with errors.As instead of comparing sentinel values one by one.
type Kind string

const (
	KindMalformedToken           Kind = "MalformedToken"
	KindTokenTooLarge            Kind = "TokenTooLarge"
	KindBase64Invalid            Kind = "Base64Invalid"
	KindHeaderInvalid            Kind = "HeaderInvalid"
	KindUnknownAlgorithm         Kind = "UnknownAlgorithm"
	KindAlgorithmNotAllowed      Kind = "AlgorithmNotAllowed"
	KindUnknownCriticalHeader    Kind = "UnknownCriticalHeader"
	KindKeyNotFound              Kind = "KeyNotFound"
	KindInvalidSignature         Kind = "InvalidSignature"
	KindInvalidTag               Kind = "InvalidTag"
	KindInvalidKeyWrap           Kind = "InvalidKeyWrap"
	KindKeyTooSmall              Kind = "KeyTooSmall"
	KindKeySizeMismatch          Kind = "KeySizeMismatch"
	KindUnsupportedCurve         Kind = "UnsupportedCurve"
	KindDestinationTooSmall      Kind = "DestinationTooSmall"
	KindExpired                  Kind = "Expired"
	KindNotYetValid              Kind = "NotYetValid"
	KindIssuerNotAllowed         Kind = "IssuerNotAllowed"
	KindAudienceNotAllowed       Kind = "AudienceNotAllowed"
	KindNestedTokenLimitExceeded Kind = "NestedTokenLimitExceeded"
	KindDisposed                 Kind = "Disposed"
	KindBlocked                  Kind = "Blocked"
	KindClaimMismatch            Kind = "ClaimMismatch"
	KindRequiredFieldMissing     Kind = "RequiredFieldMissing"
)

// TokenError is the error type every Read/Write failure surfaces as, once
// it originates from or is translated by the root package. The Err field
// keeps the original, package-qualified error (e.g. jws.ErrInvalidSignature)
// so errors.Is against that error still works; Kind lets callers switch
// without importing jws/jwe themselves.
type TokenError struct {
	Kind Kind
	Err  error
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("jose: %s: %v", e.Kind, e.Err)
}

func (e *TokenError) Unwrap() error { return e.Err }

func newTokenError(kind Kind, err error) *TokenError {
	return &TokenError{Kind: kind, Err: err}
}

// Sentinel errors for the policy/claims failures this package produces
// directly (as opposed to translating from jws/jwe).
var (
	ErrIssuerNotAllowed         = errors.New("jose: issuer not allowed")
	ErrAudienceNotAllowed       = errors.New("jose: audience not allowed")
	ErrNestedTokenLimitExceeded = errors.New("jose: nested token depth limit exceeded")
)

// wireJWSErr maps a jws package error to its TokenError Kind.
func wireJWSErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, jws.ErrMalformedToken):
		return newTokenError(KindMalformedToken, err)
	case errors.Is(err, jws.ErrTokenTooLarge):
		return newTokenError(KindTokenTooLarge, err)
	case errors.Is(err, jws.ErrBase64Invalid):
		return newTokenError(KindBase64Invalid, err)
	case errors.Is(err, joseheader.ErrUnknownCriticalHeader):
		return newTokenError(KindUnknownCriticalHeader, err)
	case errors.Is(err, jws.ErrHeaderInvalid):
		return newTokenError(KindHeaderInvalid, err)
	case errors.Is(err, jws.ErrUnknownAlgorithm):
		return newTokenError(KindUnknownAlgorithm, err)
	case errors.Is(err, jws.ErrAlgorithmNotAllowed):
		return newTokenError(KindAlgorithmNotAllowed, err)
	case errors.Is(err, jws.ErrKeyNotFound):
		return newTokenError(KindKeyNotFound, err)
	case errors.Is(err, jws.ErrInvalidSignature):
		return newTokenError(KindInvalidSignature, err)
	default:
		return err
	}
}

// wireJWEErr maps a jwe package error to its TokenError Kind.
func wireJWEErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, jwe.ErrMalformedToken):
		return newTokenError(KindMalformedToken, err)
	case errors.Is(err, jwe.ErrTokenTooLarge):
		return newTokenError(KindTokenTooLarge, err)
	case errors.Is(err, jwe.ErrBase64Invalid):
		return newTokenError(KindBase64Invalid, err)
	case errors.Is(err, joseheader.ErrUnknownCriticalHeader):
		return newTokenError(KindUnknownCriticalHeader, err)
	case errors.Is(err, jwe.ErrHeaderInvalid):
		return newTokenError(KindHeaderInvalid, err)
	case errors.Is(err, jwe.ErrUnknownAlgorithm):
		return newTokenError(KindUnknownAlgorithm, err)
	case errors.Is(err, jwe.ErrAlgorithmNotAllowed):
		return newTokenError(KindAlgorithmNotAllowed, err)
	case errors.Is(err, jwe.ErrKeyNotFound):
		return newTokenError(KindKeyNotFound, err)
	case errors.Is(err, jwe.ErrInvalidTag):
		return newTokenError(KindInvalidTag, err)
	case errors.Is(err, jwe.ErrInvalidKeyWrap):
		return newTokenError(KindInvalidKeyWrap, err)
	case errors.Is(err, jwe.ErrDecompressionBomb):
		return newTokenError(KindTokenTooLarge, err)
	default:
		return err
	}
}
