package jose

import (
	"encoding/json"
	"testing"

	"github.com/kataras/jose/jwa"
	"github.com/kataras/jose/jwk"
)

func enrichTestKey() *jwk.Key {
	return jwk.NewSymmetric([]byte("enrich-test-secret-key-1234567890"))
}

func enrichTestPolicy(key *jwk.Key) *ValidationPolicy {
	return NewPolicy(WithKeys(&jwk.Set{Keys: []*jwk.Key{key}}))
}

func TestEnrich(t *testing.T) {
	key := enrichTestKey()
	originalClaims := map[string]any{
		"sub":      "user123",
		"username": "kataras",
		"email":    "user@example.com",
	}

	originalToken, err := Sign(key, jwa.HS256, originalClaims)
	if err != nil {
		t.Fatalf("failed to create original token: %v", err)
	}

	t.Run("basic enrichment", func(t *testing.T) {
		extraClaims := map[string]any{
			"role":        "admin",
			"permissions": []string{"read", "write", "delete"},
		}

		enrichedToken, err := Enrich(key, jwa.HS256, originalToken, extraClaims)
		if err != nil {
			t.Fatalf("enrich failed: %v", err)
		}

		jwt, err := Read(enrichedToken, enrichTestPolicy(key))
		if err != nil {
			t.Fatalf("failed to verify enriched token: %v", err)
		}

		var claims map[string]any
		if err := jwt.Claims(&claims); err != nil {
			t.Fatalf("failed to extract claims: %v", err)
		}

		if claims["sub"] != "user123" {
			t.Errorf("expected sub to be 'user123', got %v", claims["sub"])
		}
		if claims["username"] != "kataras" {
			t.Errorf("expected username to be 'kataras', got %v", claims["username"])
		}
		if claims["role"] != "admin" {
			t.Errorf("expected role to be 'admin', got %v", claims["role"])
		}

		permissions, ok := claims["permissions"].([]any)
		if !ok || len(permissions) != 3 {
			t.Errorf("expected permissions to be a 3-element array, got %v (%T)", claims["permissions"], claims["permissions"])
		}
	})

	t.Run("enrichment with claim override", func(t *testing.T) {
		extraClaims := map[string]any{
			"username": "admin_user",
			"role":     "admin",
		}

		enrichedToken, err := Enrich(key, jwa.HS256, originalToken, extraClaims)
		if err != nil {
			t.Fatalf("enrich failed: %v", err)
		}

		jwt, err := Read(enrichedToken, enrichTestPolicy(key))
		if err != nil {
			t.Fatalf("failed to verify enriched token: %v", err)
		}

		var claims map[string]any
		if err := jwt.Claims(&claims); err != nil {
			t.Fatalf("failed to extract claims: %v", err)
		}

		if claims["username"] != "admin_user" {
			t.Errorf("expected username to be overridden to 'admin_user', got %v", claims["username"])
		}
		if claims["sub"] != "user123" {
			t.Errorf("expected sub to be preserved as 'user123', got %v", claims["sub"])
		}
	})

	t.Run("enrichment with struct claims", func(t *testing.T) {
		type RoleInfo struct {
			Role        string   `json:"role"`
			Permissions []string `json:"permissions"`
			Level       int      `json:"access_level"`
		}

		extraClaims := RoleInfo{
			Role:        "manager",
			Permissions: []string{"user_management", "reporting"},
			Level:       5,
		}

		enrichedToken, err := Enrich(key, jwa.HS256, originalToken, extraClaims)
		if err != nil {
			t.Fatalf("enrich failed: %v", err)
		}

		jwt, err := Read(enrichedToken, enrichTestPolicy(key))
		if err != nil {
			t.Fatalf("failed to verify enriched token: %v", err)
		}

		var claims map[string]any
		if err := jwt.Claims(&claims); err != nil {
			t.Fatalf("failed to extract claims: %v", err)
		}

		if claims["role"] != "manager" {
			t.Errorf("expected role to be 'manager', got %v", claims["role"])
		}
	})

	t.Run("enrichment with empty extra claims", func(t *testing.T) {
		enrichedToken, err := Enrich(key, jwa.HS256, originalToken, map[string]any{})
		if err != nil {
			t.Fatalf("enrich failed: %v", err)
		}

		jwt, err := Read(enrichedToken, enrichTestPolicy(key))
		if err != nil {
			t.Fatalf("failed to verify enriched token: %v", err)
		}

		var claims map[string]any
		if err := jwt.Claims(&claims); err != nil {
			t.Fatalf("failed to extract claims: %v", err)
		}

		if claims["username"] != "kataras" {
			t.Errorf("expected username to be preserved as 'kataras', got %v", claims["username"])
		}
	})
}

func TestEnrichRejectsMalformedOriginal(t *testing.T) {
	key := enrichTestKey()
	_, err := Enrich(key, jwa.HS256, []byte("not-a-token"), map[string]any{"role": "admin"})
	if err == nil {
		t.Fatal("expected an error for a malformed original token")
	}
}

func TestEnrichPreservesHeaderAlg(t *testing.T) {
	key := enrichTestKey()
	originalToken, err := Sign(key, jwa.HS256, map[string]any{"sub": "user123"})
	if err != nil {
		t.Fatalf("failed to create original token: %v", err)
	}

	enrichedToken, err := Enrich(key, jwa.HS256, originalToken, map[string]any{"role": "admin"})
	if err != nil {
		t.Fatalf("enrich failed: %v", err)
	}

	jwt, err := Read(enrichedToken, enrichTestPolicy(key))
	if err != nil {
		t.Fatalf("failed to verify enriched token: %v", err)
	}
	if jwt.Header.Alg != "HS256" {
		t.Fatalf("algorithm changed: got %v", jwt.Header.Alg)
	}

	var claims map[string]any
	if err := json.Unmarshal(jwt.Payload, &claims); err != nil {
		t.Fatalf("failed to parse claims: %v", err)
	}
	if claims["role"] != "admin" {
		t.Fatalf("expected role to be present, got %v", claims["role"])
	}
}
