package token

import (
	"strings"
	"testing"
)

const urlSafeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

func TestNew_Shape(t *testing.T) {
	tok := New()
	if len(tok) != 22 {
		t.Fatalf("len = %d, want 22 (128 bits, base64url, no padding)", len(tok))
	}
	for _, r := range tok {
		if !strings.ContainsRune(urlSafeAlphabet, r) {
			t.Fatalf("token %q contains non-URL-safe rune %q", tok, r)
		}
	}
}

func TestNew_Distinct(t *testing.T) {
	n := 1_000_000
	if testing.Short() {
		n = 10_000
	}
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		tok := New()
		if _, dup := seen[tok]; dup {
			t.Fatalf("collision after %d tokens: %q", i, tok)
		}
		seen[tok] = struct{}{}
	}
}
