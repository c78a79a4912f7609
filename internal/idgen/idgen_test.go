package idgen

import (
	"strings"
	"testing"
)

func TestUUIDv7_Unique(t *testing.T) {
	gen := UUIDv7()
	a, b := gen(), gen()
	if a == b {
		t.Errorf("duplicate IDs: %q", a)
	}
	if len(a) != 36 {
		t.Errorf("len(%q) = %d, want 36", a, len(a))
	}
}

func TestNanoID_LengthAndAlphabet(t *testing.T) {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	gen := NanoID(8)
	for i := 0; i < 10; i++ {
		id := gen()
		if len(id) != 8 {
			t.Fatalf("len(%q) = %d, want 8", id, len(id))
		}
		for _, r := range id {
			if !strings.ContainsRune(alphabet, r) {
				t.Fatalf("id %q contains %q outside the alphabet", id, r)
			}
		}
	}
}

func TestPrefixed(t *testing.T) {
	gen := Prefixed("req_", NanoID(8))
	id := gen()
	if !strings.HasPrefix(id, "req_") || len(id) != 12 {
		t.Errorf("id = %q", id)
	}
}
