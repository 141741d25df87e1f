package otp

import "testing"

func TestNewNumericFallsBackToSixDigits(t *testing.T) {
	for _, digits := range []int{-1, 0, 3, 11} {
		if got := NewNumeric(digits).digits; got != 6 {
			t.Fatalf("NewNumeric(%d): expected fallback to 6 digits, got %d", digits, got)
		}
	}
}

func TestGenerateShape(t *testing.T) {
	for _, digits := range []int{4, 6, 10} {
		gen := NewNumeric(digits)
		for range 200 {
			code, err := gen.Generate()
			if err != nil {
				t.Fatalf("generate: %v", err)
			}
			if len(code) != digits {
				t.Fatalf("expected %d characters, got %q", digits, code)
			}
			for _, r := range code {
				if r < '0' || r > '9' {
					t.Fatalf("non-digit character in %q", code)
				}
			}
		}
	}
}

func TestGenerateVaries(t *testing.T) {
	gen := NewNumeric(6)
	seen := make(map[string]struct{})
	for range 50 {
		code, err := gen.Generate()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		seen[code] = struct{}{}
	}
	if len(seen) < 2 {
		t.Fatal("expected distinct codes across draws")
	}
}
