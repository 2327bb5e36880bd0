package auth

import "testing"

func TestGenerateSessionToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := GenerateSessionToken()
		if err != nil {
			t.Fatalf("generate token: %v", err)
		}
		if !IsSessionToken(token) {
			t.Fatalf("generated token does not match expected format: %q", token)
		}
		if seen[token] {
			t.Fatalf("duplicate token generated: %q", token)
		}
		seen[token] = true
	}
}

func TestIsSessionToken_Rejects(t *testing.T) {
	tests := []string{
		"",
		"st_",
		"garbage",
		"st_short_aaaa",
		"pk_live_7a9x3k_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b",
	}

	for _, token := range tests {
		if IsSessionToken(token) {
			t.Errorf("expected %q to be rejected", token)
		}
	}
}
