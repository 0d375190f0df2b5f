// Package jsonscan peeks a handful of top-level fields out of a raw JSON
// object using encoding/json's streaming Decoder/Token API, without paying
// for a full json.Unmarshal of every field the object carries.
//
// joseheader.Parse is the one place this matters: a JOSE header's "crit"
// list must be checked before the header can be trusted at all (RFC 7515
// §4.1.11), and a header with an unrecognized critical extension should be
// rejected without first decoding every other field into an Extra map that
// is about to be thrown away.
package jsonscan

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Peeked holds the fields Peek extracts.
type Peeked struct {
	Alg  string
	Enc  string
	Crit []string
}

// Peek scans the top-level keys of the JSON object raw, decoding only
// "alg" (string), "enc" (string) and "crit" ([]string) as it encounters
// them and skipping every other value via Decoder.Token without decoding
// it into a Go value. A skipped object or array is still read token by
// token to its closing delimiter, so the scan reads the whole input.
func Peek(raw []byte) (Peeked, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return Peeked{}, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return Peeked{}, fmt.Errorf("jsonscan: expected a JSON object, got %v", tok)
	}

	var p Peeked
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return Peeked{}, err
		}
		key, _ := keyTok.(string)

		switch key {
		case "alg":
			if err := dec.Decode(&p.Alg); err != nil {
				return Peeked{}, err
			}
		case "enc":
			if err := dec.Decode(&p.Enc); err != nil {
				return Peeked{}, err
			}
		case "crit":
			if err := dec.Decode(&p.Crit); err != nil {
				return Peeked{}, err
			}
		default:
			if err := skipValue(dec); err != nil {
				return Peeked{}, err
			}
		}
	}

	return p, nil
}

// skipValue reads and discards exactly one JSON value from dec without
// decoding it into anything, by token-walking any nested object/array to
// its matching close delimiter.
func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if _, ok := tok.(json.Delim); !ok {
		return nil // scalar: already consumed.
	}

	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if nd, ok := tok.(json.Delim); ok {
			switch nd {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}
