package security

import "strings"

// NormalizeCardNumber strips the spaces and dashes shoppers type between
// digit groups.
func NormalizeCardNumber(raw string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, raw)
}

// CardLast4 returns the last four digits of a card number, or "" when the
// number is too short to have any.
func CardLast4(raw string) string {
	digits := NormalizeCardNumber(raw)
	if len(digits) < 4 {
		return ""
	}
	return digits[len(digits)-4:]
}

// MaskCardNumber redacts everything but the last four digits. It is the only
// form of a card number that may be logged, stored or returned.
func MaskCardNumber(raw string) string {
	last4 := CardLast4(raw)
	if last4 == "" {
		return "****"
	}
	return "**** **** **** " + last4
}
