package utils

import "strings"

// NormalizeDigits strips every non-digit character from a phone number.
// "+62 812-3456-7890" and "6281234567890" compare equal after normalization.
func NormalizeDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// LastDigits returns the last n digits of the normalized number, or the whole
// normalized number when shorter. Matching on the last 10 digits tolerates
// country-code variance (08xx vs 628xx vs +628xx).
func LastDigits(s string, n int) string {
	d := NormalizeDigits(s)
	if len(d) <= n {
		return d
	}
	return d[len(d)-n:]
}

// CensorNumber masks the middle of a phone number for user-facing listings.
func CensorNumber(num string) string {
	n := len(num)
	if n <= 4 {
		return num
	}
	if n <= 7 {
		return num[:n-4] + "****"
	}
	return num[:3] + "****" + num[n-4:]
}
