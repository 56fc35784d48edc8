package sanitizer

import "testing"

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"already normalized", "a@x.com", "a@x.com"},
		{"uppercase", "A@X.COM", "a@x.com"},
		{"surrounding whitespace", "  Student@Example.Com \n", "student@example.com"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeEmail(tt.input); got != tt.expected {
				t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"collapses inner whitespace", "Advanced   Calculus \t Crash Course", "Advanced Calculus Crash Course"},
		{"preserves case", "SAT Math Prep", "SAT Math Prep"},
		{"trims", "  Physics 101  ", "Physics 101"},
		{"only whitespace", "   \t\n ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTitle(tt.input); got != tt.expected {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
