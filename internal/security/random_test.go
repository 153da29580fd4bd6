package security

import (
	"strings"
	"testing"
)

func TestRandomStringRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	if _, err := RandomString(-1, "abc"); err == nil {
		t.Fatal("expected negative length to fail")
	}
	if _, err := RandomString(4, ""); err == nil {
		t.Fatal("expected empty alphabet to fail")
	}
	if _, err := RandomString(4, strings.Repeat("a", 257)); err == nil {
		t.Fatal("expected oversized alphabet to fail")
	}
}

func TestRandomStringUsesOnlyAlphabet(t *testing.T) {
	t.Parallel()

	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	for _, length := range []int{0, 1, 12, 200} {
		value, err := RandomString(length, alphabet)
		if err != nil {
			t.Fatalf("RandomString(%d): %v", length, err)
		}
		if len(value) != length {
			t.Fatalf("expected length %d, got %d", length, len(value))
		}
		for _, symbol := range value {
			if !strings.ContainsRune(alphabet, symbol) {
				t.Fatalf("symbol %q is outside the alphabet", symbol)
			}
		}
	}
}

func TestRandomStringSingleSymbolAlphabet(t *testing.T) {
	t.Parallel()

	value, err := RandomString(6, "x")
	if err != nil {
		t.Fatalf("RandomString: %v", err)
	}
	if value != "xxxxxx" {
		t.Fatalf("expected xxxxxx, got %q", value)
	}
}
