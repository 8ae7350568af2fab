package utils

import "testing"

func TestNormalizeDigits(t *testing.T) {
	if got := NormalizeDigits("+62 812-3456-7890"); got != "6281234567890" {
		t.Fatalf("expected normalized digits, got %s", got)
	}
	if got := NormalizeDigits("abc"); got != "" {
		t.Fatalf("expected empty string for non-digits, got %q", got)
	}
}

func TestLastDigits_CountryCodeVariance(t *testing.T) {
	a := LastDigits("081234567890", 10)
	b := LastDigits("+62 812-3456-7890", 10)
	if a != b {
		t.Fatalf("expected same suffix, got %s vs %s", a, b)
	}
	if got := LastDigits("1234", 10); got != "1234" {
		t.Fatalf("expected short number returned whole, got %s", got)
	}
}

func TestCensorNumber(t *testing.T) {
	if got := CensorNumber("081234567890"); got != "081****7890" {
		t.Fatalf("unexpected censored number: %s", got)
	}
	if got := CensorNumber("0812"); got != "0812" {
		t.Fatalf("short numbers should not be censored, got %s", got)
	}
	if got := CensorNumber("0812345"); got != "081****" {
		t.Fatalf("unexpected censored short number: %s", got)
	}
}
