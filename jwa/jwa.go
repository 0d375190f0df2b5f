// Package jwa is the closed algorithm registry (RFC 7518): the three
// enums — SignatureAlgorithm, KeyManagementAlgorithm, EncryptionAlgorithm
// — plus a fast name parser. Each enum is a plain
// sized integer type so equality, hashing, and map keys all fall out of
// "==" on the id; there is no reference-identity comparison to leak.
package jwa

import (
	"encoding/binary"
)

// AlgCategory is a bitmask describing what an algorithm value is used
// for; it lets policy code ask "is this a signature algorithm that
// requires a private key" without a type switch.
type AlgCategory uint8

const (
	CategorySymmetric  AlgCategory = 1 << 0
	CategoryAsymmetric AlgCategory = 1 << 1
	CategoryNone       AlgCategory = 1 << 2 // the "none" signature algorithm
	CategoryDeprecated AlgCategory = 1 << 3
)

// ---- SignatureAlgorithm -----------------------------------------------

// SignatureAlgorithm identifies one of the closed set of JWS "alg"
// values. Its zero value is not a valid algorithm; use the named
// constants or Parse.
type SignatureAlgorithm uint8

const (
	sigInvalid SignatureAlgorithm = iota
	None
	HS256
	HS384
	HS512
	RS256
	RS384
	RS512
	PS256
	PS384
	PS512
	ES256
	ES384
	ES512
	EdDSA
)

type sigMeta struct {
	name          string
	requiredBits  int // minimum key size in bits; 0 = not key-size-checked here
	category      AlgCategory
	hashBlockSize int // SHA-2 block size the HMAC/digest runs over, 0 if n/a
}

var sigTable = map[SignatureAlgorithm]sigMeta{
	None:  {"none", 0, CategoryNone, 0},
	HS256: {"HS256", 256, CategorySymmetric, 64},
	HS384: {"HS384", 384, CategorySymmetric, 128},
	HS512: {"HS512", 512, CategorySymmetric, 128},
	RS256: {"RS256", 2048, CategoryAsymmetric, 64},
	RS384: {"RS384", 2048, CategoryAsymmetric, 128},
	RS512: {"RS512", 2048, CategoryAsymmetric, 128},
	PS256: {"PS256", 2048, CategoryAsymmetric, 64},
	PS384: {"PS384", 2048, CategoryAsymmetric, 128},
	PS512: {"PS512", 2048, CategoryAsymmetric, 128},
	ES256: {"ES256", 256, CategoryAsymmetric, 64},
	ES384: {"ES384", 384, CategoryAsymmetric, 128},
	ES512: {"ES512", 521, CategoryAsymmetric, 128},
	EdDSA: {"EdDSA", 256, CategoryAsymmetric, 0},
}

// allSignatureAlgorithms is the closed enumeration, used by the fast
// parser's linear fallback and by tests asserting fast/slow agreement.
var allSignatureAlgorithms = []SignatureAlgorithm{
	None, HS256, HS384, HS512, RS256, RS384, RS512,
	PS256, PS384, PS512, ES256, ES384, ES512, EdDSA,
}

// Name returns the canonical RFC 7518 name, e.g. "HS256".
func (a SignatureAlgorithm) Name() string { return sigTable[a].name }

// RequiredKeyBits returns the minimum key size this algorithm requires.
func (a SignatureAlgorithm) RequiredKeyBits() int { return sigTable[a].requiredBits }

// Category returns the algorithm's category bits.
func (a SignatureAlgorithm) Category() AlgCategory { return sigTable[a].category }

// Valid reports whether a is a known, non-zero enum member.
func (a SignatureAlgorithm) Valid() bool { _, ok := sigTable[a]; return ok }

func (a SignatureAlgorithm) String() string {
	if !a.Valid() {
		return "SignatureAlgorithm(invalid)"
	}
	return a.Name()
}

// ParseSignatureAlgorithm resolves a canonical name to its singleton
// value. It first tries the length-indexed packed-word fast path and
// then falls back to a linear scan; callers (and the parser property
// test) can call parseSignatureAlgorithmSlow directly to compare the two.
func ParseSignatureAlgorithm(name string) (SignatureAlgorithm, bool) {
	if a, ok := parseSignatureAlgorithmFast(name); ok {
		return a, true
	}
	return parseSignatureAlgorithmSlow(name)
}

// parseSignatureAlgorithmFast handles every SignatureAlgorithm name,
// which are all exactly 4 or 5 bytes ("none" is 4, everything else is
// 5), via a single packed little-endian load and comparison against a
// precomputed table — O(1) with no branching on individual characters.
func parseSignatureAlgorithmFast(name string) (SignatureAlgorithm, bool) {
	switch len(name) {
	case 4:
		if load32(name) == pack32("none") {
			return None, true
		}
	case 5:
		w := load40(name)
		switch w {
		case pack40("HS256"):
			return HS256, true
		case pack40("HS384"):
			return HS384, true
		case pack40("HS512"):
			return HS512, true
		case pack40("RS256"):
			return RS256, true
		case pack40("RS384"):
			return RS384, true
		case pack40("RS512"):
			return RS512, true
		case pack40("PS256"):
			return PS256, true
		case pack40("PS384"):
			return PS384, true
		case pack40("PS512"):
			return PS512, true
		case pack40("ES256"):
			return ES256, true
		case pack40("ES384"):
			return ES384, true
		case pack40("ES512"):
			return ES512, true
		case pack40("EdDSA"):
			return EdDSA, true
		}
	}
	return sigInvalid, false
}

func parseSignatureAlgorithmSlow(name string) (SignatureAlgorithm, bool) {
	for _, a := range allSignatureAlgorithms {
		if sigTable[a].name == name {
			return a, true
		}
	}
	return sigInvalid, false
}

// ---- KeyManagementAlgorithm --------------------------------------------

// KeyManagementAlgorithm identifies one of the closed set of JWE "alg"
// values governing how the content-encryption key is obtained.
type KeyManagementAlgorithm uint8

const (
	kmInvalid KeyManagementAlgorithm = iota
	Dir
	A128KW
	A192KW
	A256KW
	A128GCMKW
	A192GCMKW
	A256GCMKW
	RSA1_5
	RSAOAEP
	RSAOAEP256
	RSAOAEP384
	RSAOAEP512
	ECDHES
	ECDHESA128KW
	ECDHESA192KW
	ECDHESA256KW
)

type kmMeta struct {
	name         string
	category     AlgCategory
	kekBits      int // required KEK size in bits for the *KW family; 0 = n/a
	needsWrap    bool
	needsECDH    bool
	needsRSA     bool
	needsGCMIVTag bool
}

var kmTable = map[KeyManagementAlgorithm]kmMeta{
	Dir:           {"dir", CategorySymmetric, 0, false, false, false, false},
	A128KW:        {"A128KW", CategorySymmetric, 128, true, false, false, false},
	A192KW:        {"A192KW", CategorySymmetric, 192, true, false, false, false},
	A256KW:        {"A256KW", CategorySymmetric, 256, true, false, false, false},
	A128GCMKW:     {"A128GCMKW", CategorySymmetric, 128, true, false, false, true},
	A192GCMKW:     {"A192GCMKW", CategorySymmetric, 192, true, false, false, true},
	A256GCMKW:     {"A256GCMKW", CategorySymmetric, 256, true, false, false, true},
	RSA1_5:        {"RSA1_5", CategoryAsymmetric | CategoryDeprecated, 0, false, false, true, false},
	RSAOAEP:       {"RSA-OAEP", CategoryAsymmetric, 0, false, false, true, false},
	RSAOAEP256:    {"RSA-OAEP-256", CategoryAsymmetric, 0, false, false, true, false},
	RSAOAEP384:    {"RSA-OAEP-384", CategoryAsymmetric, 0, false, false, true, false},
	RSAOAEP512:    {"RSA-OAEP-512", CategoryAsymmetric, 0, false, false, true, false},
	ECDHES:        {"ECDH-ES", CategoryAsymmetric, 0, false, true, false, false},
	ECDHESA128KW:  {"ECDH-ES+A128KW", CategoryAsymmetric, 128, true, true, false, false},
	ECDHESA192KW:  {"ECDH-ES+A192KW", CategoryAsymmetric, 192, true, true, false, false},
	ECDHESA256KW:  {"ECDH-ES+A256KW", CategoryAsymmetric, 256, true, true, false, false},
}

var allKeyManagementAlgorithms = []KeyManagementAlgorithm{
	Dir, A128KW, A192KW, A256KW, A128GCMKW, A192GCMKW, A256GCMKW,
	RSA1_5, RSAOAEP, RSAOAEP256, RSAOAEP384, RSAOAEP512,
	ECDHES, ECDHESA128KW, ECDHESA192KW, ECDHESA256KW,
}

func (a KeyManagementAlgorithm) Name() string             { return kmTable[a].name }
func (a KeyManagementAlgorithm) Category() AlgCategory    { return kmTable[a].category }
func (a KeyManagementAlgorithm) RequiredKEKBits() int      { return kmTable[a].kekBits }
func (a KeyManagementAlgorithm) UsesKeyWrap() bool         { return kmTable[a].needsWrap }
func (a KeyManagementAlgorithm) UsesECDH() bool            { return kmTable[a].needsECDH }
func (a KeyManagementAlgorithm) UsesRSA() bool             { return kmTable[a].needsRSA }
func (a KeyManagementAlgorithm) UsesGCMIVAndTag() bool     { return kmTable[a].needsGCMIVTag }
func (a KeyManagementAlgorithm) Valid() bool               { _, ok := kmTable[a]; return ok }
func (a KeyManagementAlgorithm) String() string {
	if !a.Valid() {
		return "KeyManagementAlgorithm(invalid)"
	}
	return a.Name()
}

// ParseKeyManagementAlgorithm resolves a canonical name, including the
// ECDH-ES+AxxxKW spelling whose '+' is written as the JSON escape
// \u002 followed by "b" or "B" (handled by the fallback scan), to its
// singleton value.
func ParseKeyManagementAlgorithm(name string) (KeyManagementAlgorithm, bool) {
	if a, ok := parseKeyManagementAlgorithmFast(name); ok {
		return a, true
	}
	return parseKeyManagementAlgorithmSlow(name)
}

// parseKeyManagementAlgorithmFast packs the first 3-9 bytes of name into
// a little-endian word per length bucket (3 for "dir", 6 for "A128KW",
// 7 for "ECDH-ES", 8 for "RSA-OAEP", 9 for "A128GCMKW", etc.) and compares
// against the precomputed constants; anything it doesn't recognize
// (including the escaped '+' form, and RSA-OAEP-2/3/5xx at length 12)
// falls through to the slow scan.
func parseKeyManagementAlgorithmFast(name string) (KeyManagementAlgorithm, bool) {
	switch len(name) {
	case 3:
		if load24(name) == pack24("dir") {
			return Dir, true
		}
	case 6:
		w := load48(name)
		switch w {
		case pack48("A128KW"):
			return A128KW, true
		case pack48("A192KW"):
			return A192KW, true
		case pack48("A256KW"):
			return A256KW, true
		case pack48("RSA1_5"):
			return RSA1_5, true
		}
	case 7:
		if load56(name) == pack56("ECDH-ES") {
			return ECDHES, true
		}
	case 8:
		if load64(name) == pack64("RSA-OAEP") {
			return RSAOAEP, true
		}
	case 9:
		w := load64(name[:8])
		last := name[8]
		switch w {
		case pack64("A128GCMK"):
			if last == 'W' {
				return A128GCMKW, true
			}
		case pack64("A192GCMK"):
			if last == 'W' {
				return A192GCMKW, true
			}
		case pack64("A256GCMK"):
			if last == 'W' {
				return A256GCMKW, true
			}
		}
	}
	return kmInvalid, false
}

// parseKeyManagementAlgorithmSlow is the linear fallback. A name taken
// from a header decoded by encoding/json already carries a literal '+';
// a name whose '+' is still written as the escape \u002 followed by "b"
// or "B" (the hex digit's case is folded with 0x20) is rewritten to the
// literal '+' before the exact-match scan.
func parseKeyManagementAlgorithmSlow(name string) (KeyManagementAlgorithm, bool) {
	if len(name) == 19 && name[7:12] == `\u002` && name[12]|0x20 == 'b' {
		name = name[:7] + "+" + name[13:]
	}
	for _, a := range allKeyManagementAlgorithms {
		if kmTable[a].name == name {
			return a, true
		}
	}
	return kmInvalid, false
}

// ---- EncryptionAlgorithm ------------------------------------------------

// EncryptionAlgorithm identifies one of the closed set of JWE "enc"
// content encryption algorithms.
type EncryptionAlgorithm uint8

const (
	encInvalid EncryptionAlgorithm = iota
	A128CBC_HS256
	A192CBC_HS384
	A256CBC_HS512
	A128GCM
	A192GCM
	A256GCM
)

type encMeta struct {
	name       string
	cekBits    int
	ivLen      int
	composite  bool
}

var encTable = map[EncryptionAlgorithm]encMeta{
	A128CBC_HS256: {"A128CBC-HS256", 256, 16, true},
	A192CBC_HS384: {"A192CBC-HS384", 384, 16, true},
	A256CBC_HS512: {"A256CBC-HS512", 512, 16, true},
	A128GCM:       {"A128GCM", 128, 12, false},
	A192GCM:       {"A192GCM", 192, 12, false},
	A256GCM:       {"A256GCM", 256, 12, false},
}

var allEncryptionAlgorithms = []EncryptionAlgorithm{
	A128CBC_HS256, A192CBC_HS384, A256CBC_HS512, A128GCM, A192GCM, A256GCM,
}

func (a EncryptionAlgorithm) Name() string     { return encTable[a].name }
func (a EncryptionAlgorithm) CEKBits() int     { return encTable[a].cekBits }
func (a EncryptionAlgorithm) CEKSize() int     { return encTable[a].cekBits / 8 }
func (a EncryptionAlgorithm) IVSize() int      { return encTable[a].ivLen }
func (a EncryptionAlgorithm) IsComposite() bool { return encTable[a].composite }
func (a EncryptionAlgorithm) Valid() bool      { _, ok := encTable[a]; return ok }
func (a EncryptionAlgorithm) String() string {
	if !a.Valid() {
		return "EncryptionAlgorithm(invalid)"
	}
	return a.Name()
}

// ParseEncryptionAlgorithm resolves a canonical "enc" name.
func ParseEncryptionAlgorithm(name string) (EncryptionAlgorithm, bool) {
	if a, ok := parseEncryptionAlgorithmFast(name); ok {
		return a, true
	}
	for _, a := range allEncryptionAlgorithms {
		if encTable[a].name == name {
			return a, true
		}
	}
	return encInvalid, false
}

func parseEncryptionAlgorithmFast(name string) (EncryptionAlgorithm, bool) {
	switch len(name) {
	case 7:
		w := load56(name)
		switch w {
		case pack56("A128GCM"):
			return A128GCM, true
		case pack56("A192GCM"):
			return A192GCM, true
		case pack56("A256GCM"):
			return A256GCM, true
		}
	case 13:
		// 13 bytes doesn't fit one machine word; compare the first 8 and
		// the last 5 as two packed loads instead of a byte-by-byte scan.
		head := load64(name[:8])
		tail := load40(name[8:])
		switch {
		case head == pack64("A128CBC-") && tail == pack40("HS256"):
			return A128CBC_HS256, true
		case head == pack64("A192CBC-") && tail == pack40("HS384"):
			return A192CBC_HS384, true
		case head == pack64("A256CBC-") && tail == pack40("HS512"):
			return A256CBC_HS512, true
		}
	}
	return encInvalid, false
}

// ---- packed little-endian loaders --------------------------------------
//
// These give the registry its O(1) name-comparison fast path: instead of
// comparing strings byte-by-byte, the canonical names (all fixed-length
// per bucket) are compared as single integer loads. Each loadNN reads
// exactly NN bits from a string known to be at least that long; packNN
// does the same over a compile-time constant so the switch cases above
// are comparisons between two already-computed integers.

func load24(s string) uint32 {
	return uint32(s[0]) | uint32(s[1])<<8 | uint32(s[2])<<16
}
func pack24(s string) uint32 { return load24(s) }

func load32(s string) uint32 {
	return binary.LittleEndian.Uint32([]byte(s[:4]))
}
func pack32(s string) uint32 { return load32(s) }

func load40(s string) uint64 {
	var b [8]byte
	copy(b[:5], s[:5])
	return binary.LittleEndian.Uint64(b[:])
}
func pack40(s string) uint64 { return load40(s) }

func load48(s string) uint64 {
	var b [8]byte
	copy(b[:6], s[:6])
	return binary.LittleEndian.Uint64(b[:])
}
func pack48(s string) uint64 { return load48(s) }

func load56(s string) uint64 {
	var b [8]byte
	copy(b[:7], s[:7])
	return binary.LittleEndian.Uint64(b[:])
}
func pack56(s string) uint64 { return load56(s) }

func load64(s string) uint64 {
	return binary.LittleEndian.Uint64([]byte(s[:8]))
}
func pack64(s string) uint64 { return load64(s) }
