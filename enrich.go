package jose

import (
	"encoding/json"
	"fmt"

	"github.com/kataras/jose/jwa"
	"github.com/kataras/jose/jwk"
	"github.com/kataras/jose/jws"
)

// Enrich creates a new, re-signed JWS by merging extraClaims into the
// payload of an existing one. It does not verify accessToken's
// signature first; callers that need that guarantee should Read it
// themselves before calling Enrich, since a JWT's payload cannot be
// edited in place without invalidating its signature regardless.
//
// The returned token is signed fresh with key under alg; of the original
// header only "kid" and "typ" are carried over.
func Enrich(key *jwk.Key, alg jwa.SignatureAlgorithm, accessToken []byte, extraClaims any) ([]byte, error) {
	msg, err := jws.Decode(accessToken, 0)
	if err != nil {
		return nil, fmt.Errorf("jose: enrich: failed to parse original token: %w", err)
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(msg.Payload, &merged); err != nil {
		return nil, fmt.Errorf("jose: enrich: failed to parse original claims: %w", err)
	}

	extraJSON, err := json.Marshal(extraClaims)
	if err != nil {
		return nil, fmt.Errorf("jose: enrich: failed to merge claims: %w", err)
	}
	var extra map[string]json.RawMessage
	if err := json.Unmarshal(extraJSON, &extra); err != nil {
		return nil, fmt.Errorf("jose: enrich: failed to merge claims: %w", err)
	}
	for k, v := range extra {
		merged[k] = v
	}

	payload, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("jose: enrich: failed to merge claims: %w", err)
	}

	return SignWithHeader(key, alg, json.RawMessage(payload), []Header{WithKid(msg.Header.Kid), WithTyp(msg.Header.Typ)})
}
