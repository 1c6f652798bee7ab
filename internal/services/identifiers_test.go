package services

import "testing"

func TestIsValidRNA(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"W123456789", true},
		{"w12-345-6789", true},
		{"W75A000001", true},
		{"W12345678", false},
		{"X123456789", false},
		{"W1234567890", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsValidRNA(tt.input); got != tt.want {
				t.Errorf("IsValidRNA(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsValidSiret(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"12345678900012", true},
		{"123 456 789 00012", true},
		{"35600000000048", true}, // La Poste, fails the Luhn key
		{"1234567890001", false},
		{"1234567890001A", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsValidSiret(tt.input); got != tt.want {
				t.Errorf("IsValidSiret(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdentifier(t *testing.T) {
	if got := NormalizeIdentifier(" w75-100.0001 "); got != "W751000001" {
		t.Errorf("Expected W751000001, got %s", got)
	}
}
