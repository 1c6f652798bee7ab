package services

import (
	"strings"
	"unicode"
)

// NormalizeIdentifier strips every non-alphanumeric character and uppercases,
// so "w75-100 0001" and "W751000001" compare equal
func NormalizeIdentifier(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// IsValidRNA reports whether s normalizes to a registry id: W followed by 9 alphanumerics
func IsValidRNA(s string) bool {
	v := NormalizeIdentifier(s)
	return len(v) == 10 && v[0] == 'W'
}

// IsValidSiret reports whether s normalizes to exactly 14 digits. The Luhn key is
// not checked: La Poste establishments do not satisfy it.
func IsValidSiret(s string) bool {
	v := NormalizeIdentifier(s)
	if len(v) != 14 {
		return false
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// sirenOf returns the SIREN prefix of a valid SIRET
func sirenOf(siret string) string {
	if len(siret) < 9 {
		return ""
	}
	return siret[:9]
}
