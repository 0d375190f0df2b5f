package jose

import (
	"errors"

	"github.com/kataras/jose/jwa"
	"github.com/kataras/jose/jwk"
)

var (
	// ErrEmptyKid fires when a token header carries no "kid" and the
	// policy's key set has more than one key registered, leaving no way
	// to pick which one applies.
	ErrEmptyKid = errors.New("jose: kid is empty")
	// ErrUnknownKid fires when a header names a "kid" that Keys does not
	// recognize.
	ErrUnknownKid = errors.New("jose: unknown kid")
)

// Keys is a kid-indexed key store, the multi-key counterpart to passing a
// single *jwk.Key straight to Sign/Read. It builds the WithKeys policy
// option's backing *jwk.Set lazily from whatever has been Register-ed.
//
// Not safe for concurrent writes; register every key during startup and
// treat the store as read-only afterward.
type Keys struct {
	byKid map[string]*jwk.Key
}

// NewKeys returns an empty key store.
func NewKeys() *Keys {
	return &Keys{byKid: make(map[string]*jwk.Key)}
}

// Register adds or replaces the key for kid, tagging key with kid so that
// Policy's resulting *jwk.Set.ByKid resolves it back (jwk.Key's own "kid"
// field, not this map's key, is what ByKid matches against).
func (keys *Keys) Register(kid string, key *jwk.Key) {
	jwk.WithKid(kid)(key)
	keys.byKid[kid] = key
}

// Get returns the key registered under kid.
func (keys *Keys) Get(kid string) (*jwk.Key, bool) {
	k, ok := keys.byKid[kid]
	return k, ok
}

// Set builds the *jwk.Set Policy's WithKeys expects.
func (keys *Keys) Set() *jwk.Set {
	set := &jwk.Set{Keys: make([]*jwk.Key, 0, len(keys.byKid))}
	for _, k := range keys.byKid {
		set.Keys = append(set.Keys, k)
	}
	return set
}

// Policy returns a ValidationPolicy resolving keys from this store, with
// any further options layered on top.
func (keys *Keys) Policy(opts ...Option) *ValidationPolicy {
	return NewPolicy(append([]Option{WithKeys(keys.Set())}, opts...)...)
}

// SignToken signs claims with the key registered under kid, setting the
// header's "kid" so the receiving side's Keys.VerifyToken can select it
// back out.
func (keys *Keys) SignToken(kid string, alg jwa.SignatureAlgorithm, claims any, opts ...SignOption) ([]byte, error) {
	key, ok := keys.Get(kid)
	if !ok {
		return nil, ErrUnknownKid
	}

	return SignWithHeader(key, alg, claims, []Header{WithKid(kid)}, opts...)
}

// VerifyToken reads token, resolving the signing key by the header's
// "kid" against this store, and decodes its claims into claimsPtr.
func (keys *Keys) VerifyToken(token []byte, claimsPtr any, validators ...TokenValidator) error {
	jwt, err := Read(token, keys.Policy(), validators...)
	if err != nil {
		return err
	}
	return jwt.Claims(claimsPtr)
}
