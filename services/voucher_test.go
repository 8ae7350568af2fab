package services

import (
	"regexp"
	"testing"
)

func TestVoucherCodePrefix(t *testing.T) {
	cases := []struct {
		slug, want string
	}{
		{"kopikenangan", "KOPI"},
		{"sb-mart", "SBMA"},
		{"ab", "ABXX"},
		{"", "XXXX"},
		{"toko 21", "TOKO"},
		{"x9", "X9XX"},
	}
	for _, c := range cases {
		if got := VoucherCodePrefix(c.slug); got != c.want {
			t.Fatalf("VoucherCodePrefix(%q) = %q, want %q", c.slug, got, c.want)
		}
	}
}

func TestRandomVoucherSuffix_Format(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z0-9]{12}$`)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		s, err := randomVoucherSuffix()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !pattern.MatchString(s) {
			t.Fatalf("suffix %q does not match expected format", s)
		}
		seen[s] = true
	}
	if len(seen) < 100 {
		t.Fatalf("expected 100 distinct suffixes, got %d", len(seen))
	}
}

func TestVoucherCodeShape(t *testing.T) {
	// The externally-visible format: 4 chars, dash, 12 chars, all uppercase
	// alphanumeric. The redemption endpoint depends on this exact shape.
	suffix, err := randomVoucherSuffix()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	code := VoucherCodePrefix("kopikenangan") + "-" + suffix
	if !regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{12}$`).MatchString(code) {
		t.Fatalf("code %q does not match the redemption format", code)
	}
	if code[4] != '-' {
		t.Fatalf("dash must sit at position 5, got %q", code)
	}
}
