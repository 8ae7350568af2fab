package services

import "testing"

func TestSpinsToGrant(t *testing.T) {
	cases := []struct {
		max, total, want uint
	}{
		{3, 0, 1},
		{3, 1, 1},
		{3, 2, 1},
		{3, 3, 0},
		{3, 4, 0}, // legacy overshoot: still no further grants
		{1, 0, 1},
		{0, 0, 0},
	}
	for _, c := range cases {
		if got := SpinsToGrant(c.max, c.total); got != c.want {
			t.Fatalf("SpinsToGrant(%d, %d) = %d, want %d", c.max, c.total, got, c.want)
		}
	}
}
