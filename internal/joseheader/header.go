// Package joseheader implements the shared JOSE header shape (RFC 7515
// §4, RFC 7516 §4) both jws and jwe build on: known fields pulled out for
// typed access, everything else preserved for round-tripping, and an
// Encode that emits a fixed field ordering (alg, enc, zip, kid, then the
// rest) instead of encoding/json's alphabetical map ordering.
package joseheader

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"

	"github.com/kataras/jose/internal/jsonscan"
)

// ErrUnknownCriticalHeader is returned by Parse when "crit" names a
// header this package does not understand.
var ErrUnknownCriticalHeader = errors.New("joseheader: unrecognized critical header")

// Header is the decoded JOSE header. Fields absent from the token are
// left at their zero value.
type Header struct {
	Alg  string
	Enc  string
	Zip  string
	Typ  string
	Cty  string
	Kid  string
	Crit []string

	Epk json.RawMessage // ECDH-ES ephemeral public key (RFC 7518 §4.6.1.1)
	Apu string          // base64url Agreement PartyUInfo
	Apv string          // base64url Agreement PartyVInfo
	IV  string          // base64url AxxxGCMKW iv
	Tag string          // base64url AxxxGCMKW tag

	Extra map[string]json.RawMessage // any other field, by name
}

var understoodCriticalNames = map[string]bool{
	"alg": true, "enc": true, "zip": true, "typ": true, "cty": true, "kid": true,
	"crit": true, "epk": true, "apu": true, "apv": true, "iv": true, "tag": true,
}

// Parse decodes raw JSON into a Header, rejecting any "crit" entry this
// package does not understand (RFC 7515 §4.1.11). The "crit" check runs
// against a jsonscan.Peek of raw first, so a header naming an unrecognized
// critical extension fails before Parse pays for unmarshaling every other
// field into Extra.
func Parse(raw []byte) (Header, error) {
	peeked, err := jsonscan.Peek(raw)
	if err != nil {
		return Header{}, err
	}
	for _, name := range peeked.Crit {
		if !understoodCriticalNames[name] {
			return Header{}, ErrUnknownCriticalHeader
		}
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return Header{}, err
	}

	h := Header{Extra: make(map[string]json.RawMessage)}
	for k, v := range m {
		switch k {
		case "alg":
			json.Unmarshal(v, &h.Alg)
		case "enc":
			json.Unmarshal(v, &h.Enc)
		case "zip":
			json.Unmarshal(v, &h.Zip)
		case "typ":
			json.Unmarshal(v, &h.Typ)
		case "cty":
			json.Unmarshal(v, &h.Cty)
		case "kid":
			json.Unmarshal(v, &h.Kid)
		case "crit":
			json.Unmarshal(v, &h.Crit)
		case "epk":
			h.Epk = append(json.RawMessage{}, v...)
		case "apu":
			json.Unmarshal(v, &h.Apu)
		case "apv":
			json.Unmarshal(v, &h.Apv)
		case "iv":
			json.Unmarshal(v, &h.IV)
		case "tag":
			json.Unmarshal(v, &h.Tag)
		default:
			h.Extra[k] = v
		}
	}

	return h, nil
}

// Encode renders h as compact JSON with alg first, then enc, zip, kid,
// then every remaining known field that is set, then Extra sorted by key
// (Go maps carry no insertion order to preserve, so sorting gives a
// deterministic byte-for-byte output instead of an arbitrary one).
func (h Header) Encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true

	writeString := func(key, val string) {
		if val == "" {
			return
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		kb, _ := json.Marshal(key)
		buf.Write(kb)
		buf.WriteByte(':')
		vb, _ := json.Marshal(val)
		buf.Write(vb)
	}

	writeString("alg", h.Alg)
	writeString("enc", h.Enc)
	writeString("zip", h.Zip)
	writeString("kid", h.Kid)
	writeString("typ", h.Typ)
	writeString("cty", h.Cty)

	if len(h.Crit) > 0 {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.WriteString(`"crit":`)
		cb, err := json.Marshal(h.Crit)
		if err != nil {
			return nil, err
		}
		buf.Write(cb)
	}

	if len(h.Epk) > 0 {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.WriteString(`"epk":`)
		buf.Write(h.Epk)
	}

	writeString("apu", h.Apu)
	writeString("apv", h.Apv)
	writeString("iv", h.IV)
	writeString("tag", h.Tag)

	keys := make([]string, 0, len(h.Extra))
	for k := range h.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		kb, _ := json.Marshal(k)
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(h.Extra[k])
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
