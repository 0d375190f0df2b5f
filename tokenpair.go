package jose

import (
	"encoding/json"
	"time"
)

// TokenPair is a standard OAuth2-style access/refresh token response
// (RFC 6749 §5.1). Tokens are stored as json.RawMessage so their exact
// compact-serialization bytes survive JSON round-tripping untouched.
//
//	{"access_token": "eyJ...", "refresh_token": "eyJ...", "token_type": "Bearer", "expires_in": 900}
type TokenPair struct {
	AccessToken  json.RawMessage `json:"access_token,omitempty"`
	RefreshToken json.RawMessage `json:"refresh_token,omitempty"`
	// TokenType is always "Bearer" for the tokens Sign/Encrypt produce;
	// carried explicitly because RFC 6749 §5.1 requires it in the
	// response and a client library may reject a response without it.
	TokenType string `json:"token_type,omitempty"`
	// ExpiresIn is the access token's remaining lifetime in seconds at
	// the moment the pair was built, per RFC 6749 §4.2.2. It is not
	// derived from AccessToken's "exp" claim (that would require
	// decoding a JWE, which ExpiresIn must work for too); callers pass
	// the same MaxAge they signed or encrypted the access token with.
	ExpiresIn int64 `json:"expires_in,omitempty"`
}

// NewTokenPair quotes accessToken and refreshToken into a TokenPair and
// stamps TokenType/ExpiresIn. refreshToken may be nil to omit it from the
// JSON output.
//
//	access, _ := jose.Sign(key, jwa.HS256, accessClaims, jose.MaxAge(15*time.Minute))
//	refresh, _ := jose.Sign(key, jwa.HS256, refreshClaims, jose.MaxAge(7*24*time.Hour))
//	pair := jose.NewTokenPair(access, refresh, 15*time.Minute)
func NewTokenPair(accessToken, refreshToken []byte, accessMaxAge time.Duration) TokenPair {
	return TokenPair{
		AccessToken:  BytesQuote(accessToken),
		RefreshToken: BytesQuote(refreshToken),
		TokenType:    "Bearer",
		ExpiresIn:    int64(accessMaxAge / time.Second),
	}
}

// BytesQuote wraps b in double quotes, producing a valid JSON string value
// without going through encoding/json (b is already JSON-safe base64url).
// An empty b quotes to nil rather than `""`, so a TokenPair field built
// from it is still dropped by its omitempty tag.
func BytesQuote(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	dst := make([]byte, len(b)+2)
	dst[0] = '"'
	copy(dst[1:], b)
	dst[len(dst)-1] = '"'
	return dst
}
