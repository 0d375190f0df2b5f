package jose

import (
	"time"

	"github.com/kataras/jose/jwa"
	"github.com/kataras/jose/jwk"
)

// ValidationPolicy governs how Read resolves keys, which algorithms it
// accepts, and how it checks the standard timing and audience claims.
// The zero value accepts any algorithm, resolves keys from nothing (so
// KeyNotFound always fires) and applies no clock skew.
type ValidationPolicy struct {
	keys *jwk.Set

	issuers   map[string]bool
	audiences map[string]bool

	clockSkew time.Duration
	clock     func() time.Time

	maxTokenBytes int

	requireSignature bool

	allowedSigAlgs map[jwa.SignatureAlgorithm]bool
	allowedKWAlgs  map[jwa.KeyManagementAlgorithm]bool

	maxNestedDepth int
}

// Option configures a ValidationPolicy.
type Option func(*ValidationPolicy)

// NewPolicy builds a ValidationPolicy from the given options.
func NewPolicy(opts ...Option) *ValidationPolicy {
	p := &ValidationPolicy{
		clock:          time.Now,
		maxNestedDepth: 1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithKeys supplies the key set Read resolves "kid"/"kty" against.
func WithKeys(set *jwk.Set) Option {
	return func(p *ValidationPolicy) { p.keys = set }
}

// WithIssuers restricts accepted tokens to the given "iss" values.
func WithIssuers(issuers ...string) Option {
	return func(p *ValidationPolicy) {
		p.issuers = make(map[string]bool, len(issuers))
		for _, iss := range issuers {
			p.issuers[iss] = true
		}
	}
}

// WithAudiences restricts accepted tokens to those whose "aud" contains
// at least one of the given values.
func WithAudiences(audiences ...string) Option {
	return func(p *ValidationPolicy) {
		p.audiences = make(map[string]bool, len(audiences))
		for _, aud := range audiences {
			p.audiences[aud] = true
		}
	}
}

// WithClockSkew tolerates a token presented up to skew early or late
// relative to its "exp"/"nbf"/"iat" claims.
func WithClockSkew(skew time.Duration) Option {
	return func(p *ValidationPolicy) { p.clockSkew = skew }
}

// WithClock overrides the time source used for claims validation; useful
// for tests that need a fixed "now".
func WithClock(clock func() time.Time) Option {
	return func(p *ValidationPolicy) { p.clock = clock }
}

// WithMaxTokenBytes bounds the raw compact-serialization size (and, for a
// JWE with zip=DEF, the inflated plaintext size). Zero means unbounded.
func WithMaxTokenBytes(n int) Option {
	return func(p *ValidationPolicy) { p.maxTokenBytes = n }
}

// RequireSignature rejects the "none" algorithm regardless of what
// AllowSignatureAlgorithms permits.
func RequireSignature() Option {
	return func(p *ValidationPolicy) { p.requireSignature = true }
}

// AllowSignatureAlgorithms restricts Read to the given JWS algorithms.
// Not calling this accepts every algorithm the jwa registry knows.
func AllowSignatureAlgorithms(algs ...jwa.SignatureAlgorithm) Option {
	return func(p *ValidationPolicy) {
		p.allowedSigAlgs = make(map[jwa.SignatureAlgorithm]bool, len(algs))
		for _, a := range algs {
			p.allowedSigAlgs[a] = true
		}
	}
}

// AllowKeyManagementAlgorithms restricts Read to the given JWE "alg"
// (key-management) algorithms.
func AllowKeyManagementAlgorithms(algs ...jwa.KeyManagementAlgorithm) Option {
	return func(p *ValidationPolicy) {
		p.allowedKWAlgs = make(map[jwa.KeyManagementAlgorithm]bool, len(algs))
		for _, a := range algs {
			p.allowedKWAlgs[a] = true
		}
	}
}

// WithMaxNestedDepth bounds how many times Read will unwrap a JWE whose
// "cty" is "JWT" into a nested token before failing with
// ErrNestedTokenLimitExceeded. The default (set by NewPolicy) is 1: a
// single JWE-over-JWS is allowed, but that inner JWS may not itself
// contain another nested token.
func WithMaxNestedDepth(depth int) Option {
	return func(p *ValidationPolicy) { p.maxNestedDepth = depth }
}

func (p *ValidationPolicy) sigAllowed(alg jwa.SignatureAlgorithm) bool {
	if p.requireSignature && alg == jwa.None {
		return false
	}
	if p.allowedSigAlgs == nil {
		return true
	}
	return p.allowedSigAlgs[alg]
}

func (p *ValidationPolicy) kwAllowed(alg jwa.KeyManagementAlgorithm) bool {
	if p.allowedKWAlgs == nil {
		return true
	}
	return p.allowedKWAlgs[alg]
}

func (p *ValidationPolicy) resolveSigKey(alg jwa.SignatureAlgorithm, kid string) (*jwk.Key, error) {
	return p.resolveKey(kid)
}

func (p *ValidationPolicy) resolveKWKey(alg jwa.KeyManagementAlgorithm, kid string) (*jwk.Key, error) {
	return p.resolveKey(kid)
}

func (p *ValidationPolicy) resolveKey(kid string) (*jwk.Key, error) {
	if p.keys == nil {
		return nil, nil
	}
	if kid == "" {
		// No "kid" to select by: fall back to the lone registered key,
		// the common single-key HMAC/RSA deployment. With more than one
		// key registered there is no way to disambiguate.
		if len(p.keys.Keys) == 1 {
			return p.keys.Keys[0], nil
		}
		if len(p.keys.Keys) > 1 {
			return nil, newTokenError(KindKeyNotFound, ErrEmptyKid)
		}
		return nil, nil
	}
	key, ok := p.keys.ByKid(kid)
	if !ok {
		return nil, nil
	}
	return key, nil
}

// now returns the policy's current time, defaulting to time.Now.
func (p *ValidationPolicy) now() time.Time {
	if p.clock == nil {
		return time.Now()
	}
	return p.clock()
}

// checkClaims applies the clock-skew-aware exp/nbf/iat checks plus the
// issuer/audience allow-lists. This is the only claims-timing check Read
// runs; Leeway and Future are opt-in TokenValidators layered on top of it.
func (p *ValidationPolicy) checkClaims(claims Claims) error {
	now := p.now().Round(time.Second).Unix()
	skew := int64(p.clockSkew / time.Second)

	if claims.NotBefore > 0 && now+skew < claims.NotBefore {
		return newTokenError(KindNotYetValid, ErrNotValidYet)
	}
	if claims.IssuedAt > 0 && now+skew < claims.IssuedAt {
		return newTokenError(KindNotYetValid, ErrIssuedInTheFuture)
	}
	if claims.Expiry > 0 && now-skew > claims.Expiry {
		return newTokenError(KindExpired, ErrExpired)
	}

	if p.issuers != nil {
		if !p.issuers[claims.Issuer] {
			return newTokenError(KindIssuerNotAllowed, ErrIssuerNotAllowed)
		}
	}
	if p.audiences != nil {
		if !audienceIntersects(claims.Audience, p.audiences) {
			return newTokenError(KindAudienceNotAllowed, ErrAudienceNotAllowed)
		}
	}

	return nil
}

func audienceIntersects(aud Audience, allowed map[string]bool) bool {
	for _, a := range aud {
		if allowed[a] {
			return true
		}
	}
	return false
}
