package util

import "strings"

// DigitsOnly strips everything but ASCII digits, so "123.456.789-00" becomes "12345678900".
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
