package uuid

import "testing"

// TestNewIsValid tests that generated identifiers pass validation and do
// not repeat.
func TestNewIsValid(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := New()
		if !IsValid(id) {
			t.Fatalf("Generated identifier failed validation: %q", id)
		}
		if seen[id] {
			t.Fatalf("Generated identifier repeated: %q", id)
		}
		seen[id] = true
	}
}

// TestIsValidRejects tests malformed and non-v4 inputs.
func TestIsValidRejects(t *testing.T) {
	bad := []string{
		"",
		"not-a-uuid",
		"11111111-1111-1111-8111-111111111111", // wrong version nibble
		"11111111-1111-4111-7111-111111111111", // wrong variant nibble
		"11111111111141118111111111111111",     // no dashes
		"11111111-1111-4111-8111-11111111111",  // short
	}
	for _, s := range bad {
		if IsValid(s) {
			t.Errorf("Expected %q to be rejected", s)
		}
	}

	if !IsValid("11111111-1111-4111-8111-111111111111") {
		t.Error("Expected canonical v4 identifier to be accepted")
	}
}
