package jwa

import "testing"

func TestSignatureAlgorithmParseAllNames(t *testing.T) {
	for _, a := range allSignatureAlgorithms {
		name := sigTable[a].name
		got, ok := ParseSignatureAlgorithm(name)
		if !ok || got != a {
			t.Fatalf("ParseSignatureAlgorithm(%q) = %v, %v; want %v, true", name, got, ok, a)
		}
		fast, fastOK := parseSignatureAlgorithmFast(name)
		slow, slowOK := parseSignatureAlgorithmSlow(name)
		if fastOK != slowOK || fast != slow {
			t.Fatalf("fast/slow disagree for %q: fast=(%v,%v) slow=(%v,%v)", name, fast, fastOK, slow, slowOK)
		}
	}
}

func TestKeyManagementAlgorithmParseAllNames(t *testing.T) {
	for _, a := range allKeyManagementAlgorithms {
		name := kmTable[a].name
		got, ok := ParseKeyManagementAlgorithm(name)
		if !ok || got != a {
			t.Fatalf("ParseKeyManagementAlgorithm(%q) = %v, %v; want %v, true", name, got, ok, a)
		}
	}
}

func TestEncryptionAlgorithmParseAllNames(t *testing.T) {
	for _, a := range allEncryptionAlgorithms {
		name := encTable[a].name
		got, ok := ParseEncryptionAlgorithm(name)
		if !ok || got != a {
			t.Fatalf("ParseEncryptionAlgorithm(%q) = %v, %v; want %v, true", name, got, ok, a)
		}
	}
}

func TestParseFuzzedGarbageBothPathsAgree(t *testing.T) {
	garbage := []string{"", "x", "HS25", "HS2566", "none!", "ECDH-ES+A999KW", "RSA-OAEP-1024"}
	for _, s := range garbage {
		fast, fastOK := parseSignatureAlgorithmFast(s)
		slow, slowOK := parseSignatureAlgorithmSlow(s)
		if fastOK || slowOK {
			if fastOK != slowOK || fast != slow {
				t.Fatalf("disagreement on garbage %q", s)
			}
		}
	}
}

func TestEqualityIsByID(t *testing.T) {
	a, _ := ParseSignatureAlgorithm("HS256")
	b, _ := ParseSignatureAlgorithm("HS256")
	if a != b {
		t.Fatal("two parses of the same name must compare equal")
	}
	if HS256 != a {
		t.Fatal("parsed value must equal the exported singleton")
	}
}
