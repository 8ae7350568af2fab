package services

import "testing"

func TestPendingReferralUnlocks(t *testing.T) {
	cases := []struct {
		verified, required, unlocked, want uint
	}{
		{0, 3, 0, 0},
		{2, 3, 0, 0},
		{3, 3, 0, 1},
		{5, 3, 1, 0},
		{6, 3, 1, 1},
		{9, 3, 1, 2}, // two thresholds crossed since last unlock
		{4, 0, 0, 0}, // referral unlock disabled
		{3, 3, 2, 0}, // never hands back already-unlocked spins
	}
	for _, c := range cases {
		got := PendingReferralUnlocks(c.verified, c.required, c.unlocked)
		if got != c.want {
			t.Fatalf("PendingReferralUnlocks(%d, %d, %d) = %d, want %d", c.verified, c.required, c.unlocked, got, c.want)
		}
	}
}
