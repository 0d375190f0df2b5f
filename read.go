package jose

import (
	"bytes"

	"github.com/kataras/jose/internal/cryptocache"
	"github.com/kataras/jose/jwe"
	"github.com/kataras/jose/jws"
)

// Read parses, cryptographically verifies (JWS) or decrypts (JWE) and
// claims-validates a compact-serialized token, dispatching on the segment
// count: three dot-separated segments is a JWS, five is a JWE. A JWE
// whose header names "cty":"JWT" is unwrapped once more as a nested JWS
// per policy's WithMaxNestedDepth; anything past that depth fails with
// ErrNestedTokenLimitExceeded rather than recursing further.
//
// Additional TokenValidator values run, in order, after the built-in
// checks — exactly the extension point Expected, Leeway, Future and
// Blocklist attach to.
func Read(raw []byte, policy *ValidationPolicy, validators ...TokenValidator) (*Jwt, error) {
	if policy == nil {
		policy = NewPolicy()
	}

	jwt, err := readDispatch(raw, policy, policy.maxNestedDepth)
	if err != nil {
		return nil, runValidators(raw, Claims{}, err, validators)
	}

	claims, claimsErr := jwt.StandardClaims()
	if claimsErr != nil {
		return nil, runValidators(raw, Claims{}, claimsErr, validators)
	}

	if err := policy.checkClaims(claims); err != nil {
		return jwt, runValidators(raw, claims, err, validators)
	}

	return jwt, runValidators(raw, claims, nil, validators)
}

func runValidators(token []byte, claims Claims, err error, validators []TokenValidator) error {
	for _, v := range validators {
		err = v.ValidateToken(token, claims, err)
	}
	return err
}

func readDispatch(raw []byte, policy *ValidationPolicy, depth int) (*Jwt, error) {
	segments := bytes.Count(raw, []byte{'.'}) + 1

	switch segments {
	case 3:
		msg, err := jws.Read(raw, policy.maxTokenBytes, policy.resolveSigKey, policy.sigAllowed, signVerifiers)
		if err != nil {
			return nil, wireJWSErr(err)
		}
		return &Jwt{Header: msg.Header, Payload: msg.Payload}, nil
	case 5:
		msg, err := jwe.Read(raw, policy.maxTokenBytes, policy.resolveKWKey, policy.kwAllowed, keyWrappers, encryptors)
		if err != nil {
			return nil, wireJWEErr(err)
		}
		if msg.Header.Cty == "JWT" {
			if depth <= 0 {
				return nil, newTokenError(KindNestedTokenLimitExceeded, ErrNestedTokenLimitExceeded)
			}
			inner, err := readDispatch(msg.Plaintext, policy, depth-1)
			if err != nil {
				return nil, err
			}
			header := msg.Header
			inner.Outer = &header
			return inner, nil
		}
		return &Jwt{Header: msg.Header, Payload: msg.Plaintext}, nil
	default:
		return nil, newTokenError(KindMalformedToken, jws.ErrMalformedToken)
	}
}

// Package-level caches shared across every Read/Write call: cryptocache's
// factories memoize the per-(key,alg) primitive so concurrent requests
// reuse it instead of rebuilding it (see internal/cryptocache's own
// godoc). They are safe for concurrent use, so one instance per process
// is the right scope.
var (
	signVerifiers = cryptocache.NewSignVerifierFactory()
	keyWrappers   = cryptocache.NewKeyWrapperFactory()
	encryptors    = cryptocache.NewEncryptorFactory()
)
