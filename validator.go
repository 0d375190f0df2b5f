package jose

// TokenValidator runs after the cryptographic verification/decryption
// step and the built-in exp/nbf/iat/iss/aud checks, in the order given to
// Read. Each validator receives the raw token bytes, the decoded standard
// claims, and the error accumulated by earlier steps (nil if none so
// far); a validator that sees a non-nil err should normally return it
// unchanged, letting a later validator (e.g. Leeway) decide whether to
// downgrade it instead of silently swallowing prior failures.
type TokenValidator interface {
	ValidateToken(token []byte, claims Claims, err error) error
}

// TokenValidatorFunc adapts a function to a TokenValidator.
type TokenValidatorFunc func(token []byte, claims Claims, err error) error

// ValidateToken calls f.
func (f TokenValidatorFunc) ValidateToken(token []byte, claims Claims, err error) error {
	return f(token, claims, err)
}
