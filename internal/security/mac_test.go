package security

import "testing"

func TestSignHexVerifies(t *testing.T) {
	t.Parallel()

	secret := []byte("link-secret")
	signature := SignHex(secret, "42")
	if len(signature) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(signature))
	}
	if !VerifyHex(secret, "42", signature) {
		t.Fatal("expected signature to verify")
	}
	if !VerifyHex(secret, "42", "  "+signature+"\n") {
		t.Fatal("expected surrounding whitespace to be ignored")
	}

	rejected := map[string]string{
		"other message": SignHex(secret, "43"),
		"other secret":  SignHex([]byte("rotated"), "42"),
		"not hex":       "zz",
		"empty":         "",
		"truncated":     signature[:62],
	}
	for name, candidate := range rejected {
		if VerifyHex(secret, "42", candidate) {
			t.Fatalf("%s: expected %q to be rejected", name, candidate)
		}
	}
}

func TestTokensMatch(t *testing.T) {
	t.Parallel()

	if !TokensMatch("op-token", "op-token") {
		t.Fatal("expected identical tokens to match")
	}
	if TokensMatch("op-token ", "op-token") || TokensMatch("", "op-token") {
		t.Fatal("expected differing tokens to be rejected")
	}
	if TokensMatch("", "") {
		t.Fatal("expected empty expected token to match nothing")
	}
}
