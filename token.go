package jose

import (
	"encoding/json"

	"github.com/kataras/jose/internal/joseheader"
)

// Jwt is a successfully read token: its innermost header (the JWS header,
// or the JWE header when the token is "flat" ciphertext with no nested
// signature) and the final, decoded/decrypted payload bytes.
//
// A JWE whose "cty" is "JWT" is unwrapped one level by Read: Outer holds
// the JWE's own header and Jwt itself reflects the JWS it contained. The
// outer JWE header is transport metadata only — claims always come from
// the innermost layer, never merged with or overridden by anything in
// Outer.
type Jwt struct {
	Header  joseheader.Header
	Payload []byte

	// Outer is non-nil only when this token was a JWE wrapping a nested
	// JWS (cty=JWT). It holds the JWE's own header.
	Outer *joseheader.Header
}

// Claims decodes the token's payload into dest, which is typically a
// *Claims, a *map[string]any, or an application-defined struct. It
// decodes via the package-level Unmarshal variable (see required.go),
// so swapping that to UnmarshalWithRequired enforces required fields
// here too.
func (j *Jwt) Claims(dest any) error {
	return Unmarshal(j.Payload, dest)
}

// StandardClaims decodes and returns just the RFC 7519 standard claims.
// A JWE's plaintext is not required to be a JSON object — spec.md's data
// model allows variant (c), opaque bytes, and nothing stops a caller from
// encrypting a bare JSON string or number — so a payload whose first
// non-whitespace byte isn't '{' is reported as the zero Claims with no
// error rather than failing the unmarshal. Read then has nothing to
// claims-validate for such a token, which is correct: there's no "exp" to
// check in a payload that was never a claims object to begin with.
func (j *Jwt) StandardClaims() (Claims, error) {
	if !looksLikeJSONObject(j.Payload) {
		return Claims{}, nil
	}

	var c Claims
	if err := json.Unmarshal(j.Payload, &c); err != nil {
		return Claims{}, err
	}
	return c, nil
}

func looksLikeJSONObject(payload []byte) bool {
	for _, b := range payload {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}
