package jose

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrMissingKey indicates that a token is missing a required JSON field.
// This error is returned when using UnmarshalWithRequired and a struct field
// tagged with `json:"field,required"` is missing from the token payload.
//
// Use errors.Is(err, ErrMissingKey) to check for this specific error.
var ErrMissingKey = errors.New("jose: token is missing a required field")

// Unmarshal decodes a token's claims payload. Jwt.Claims calls through
// this package-level variable rather than encoding/json directly, so it
// can be swapped for UnmarshalWithRequired (or any other decoder) without
// touching call sites.
var Unmarshal = json.Unmarshal

// UnmarshalWithRequired decodes data into v with encoding/json and then
// walks v's fields (recursing into nested structs) failing with a
// *TokenError of Kind KindRequiredFieldMissing, wrapping ErrMissingKey, if
// any field tagged `json:"name,required"` was left at its zero value.
//
//	jose.Unmarshal = jose.UnmarshalWithRequired
//	claims := struct {
//	    jose.Claims
//	    Scope string `json:"scope,required"`
//	}{}
//	if err := jwt.Claims(&claims); errors.Is(err, jose.ErrMissingKey) {
//	    // the token is well-formed JWT but missing "scope"
//	}
func UnmarshalWithRequired(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return err
	}
	if err := meetRequirements(reflect.ValueOf(v)); err != nil {
		return newTokenError(KindRequiredFieldMissing, err)
	}
	return nil
}

// HasRequiredJSONTag reports whether a struct field has the "required" JSON tag.
//
// This function checks if a struct field is marked as required using the
// `json:"fieldname,required"` tag syntax. It only considers exported fields
// (fields with uppercase first letter).
//
// This function is useful for:
//   - Pre-validation of struct definitions
//   - Building custom unmarshaling logic
//   - Debugging required field configurations
//
// Example:
//
//	type Claims struct {
//	    Username string `json:"username,required"`
//	    Email    string `json:"email"`
//	}
//
//	field, _ := reflect.TypeOf(Claims{}).FieldByName("Username")
//	isRequired := jose.HasRequiredJSONTag(field) // returns true
func HasRequiredJSONTag(field reflect.StructField) bool {
	if isExported := field.PkgPath == ""; !isExported {
		return false
	}

	tag := field.Tag.Get("json")
	return strings.Contains(tag, ",required")
}

// jsonFieldName returns the name a struct field serializes under, falling
// back to the Go field name when the tag carries no explicit name (e.g.
// `json:",required"`). meetRequirements reports this name rather than the
// Go identifier so the error is meaningful to a caller who only ever sees
// the token's JSON payload, not the Go struct it unmarshals into.
func jsonFieldName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name
	}
	return field.Name
}

// meetRequirements validates that all required fields in a struct are non-zero.
// This function is used internally by UnmarshalWithRequired to enforce
// required field validation after JSON unmarshaling.
func meetRequirements(val reflect.Value) (err error) {
	val = reflect.Indirect(val)
	if val.Kind() != reflect.Struct {
		return nil
	}

	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		// skip unexported fields here.
		if isExported := field.PkgPath == ""; !isExported {
			continue
		}

		if fieldTyp := indirectType(field.Type); fieldTyp.Kind() == reflect.Struct {
			if err = meetRequirements(val.Field(i)); err != nil {
				return err
			}

			continue
		}

		if HasRequiredJSONTag(field) {
			if val.Field(i).IsZero() {
				return fmt.Errorf("%w: %q", ErrMissingKey, jsonFieldName(field))
			}
		}
	}

	return
}

// indirectType returns the underlying type for pointer and container types.
//
// This function "unwraps" pointer, array, channel, map, and slice types
// to get to the underlying element type. For other types, it returns
// the type unchanged.
//
// This is used internally for recursive struct field validation.
func indirectType(typ reflect.Type) reflect.Type {
	switch typ.Kind() {
	case reflect.Ptr, reflect.Array, reflect.Chan, reflect.Map, reflect.Slice:
		return typ.Elem()
	}
	return typ
}
