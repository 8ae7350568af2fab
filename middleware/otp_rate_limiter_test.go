package middleware

import (
	"testing"
	"time"
)

func TestOTPCheckPhone_FirstRequestAllowed(t *testing.T) {
	l := NewOTPRateLimiter()
	ok, wait, msg := l.CheckPhone("0812000001")
	if !ok || wait != 0 || msg != "" {
		t.Fatalf("first request should be allowed, got ok=%v wait=%v msg=%q", ok, wait, msg)
	}
}

func TestOTPCheckPhone_SecondRequestTooSoon(t *testing.T) {
	l := NewOTPRateLimiter()
	l.CheckPhone("0812000002")
	ok, wait, msg := l.CheckPhone("0812000002")
	if ok {
		t.Fatal("second request within a minute should be denied")
	}
	if wait <= 0 || wait > time.Minute {
		t.Fatalf("wait should be under a minute, got %v", wait)
	}
	if msg != "Tunggu 1 menit sebelum meminta OTP lagi" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestOTPCheckPhone_LadderAdvancesAfterWait(t *testing.T) {
	l := NewOTPRateLimiter()
	l.CheckPhone("0812000003")
	// backdate the window so the 1 minute requirement is already met
	l.phones["0812000003"].FirstReqAt = time.Now().Add(-2 * time.Minute)
	ok, _, _ := l.CheckPhone("0812000003")
	if !ok {
		t.Fatal("second request after a minute should be allowed")
	}
	if l.phones["0812000003"].Count != 2 {
		t.Fatalf("count should be 2, got %d", l.phones["0812000003"].Count)
	}
}

func TestOTPCheckPhone_LockAfterLadderExhausted(t *testing.T) {
	l := NewOTPRateLimiter()
	l.phones["0812000004"] = &phoneRecord{
		Count:      4,
		FirstReqAt: time.Now().Add(-time.Hour),
		LastReqAt:  time.Now(),
	}
	ok, wait, _ := l.CheckPhone("0812000004")
	if ok {
		t.Fatal("fifth request should lock the phone")
	}
	if wait != time.Hour {
		t.Fatalf("lock should last an hour, got %v", wait)
	}
	// locked phone stays locked
	ok, _, msg := l.CheckPhone("0812000004")
	if ok {
		t.Fatal("locked phone should stay denied")
	}
	if msg != "Anda telah mencapai batas permintaan, silahkan ulangi dalam 1 jam" {
		t.Fatalf("unexpected lock message: %q", msg)
	}
}

func TestOTPCheckPhone_ResetClearsLadder(t *testing.T) {
	l := NewOTPRateLimiter()
	l.CheckPhone("0812000005")
	l.ResetPhone("0812000005")
	ok, _, _ := l.CheckPhone("0812000005")
	if !ok {
		t.Fatal("request after reset should be allowed")
	}
}

func TestOTPCheckIP_BudgetWithinWindow(t *testing.T) {
	l := NewOTPRateLimiter()
	for i := 0; i < 5; i++ {
		ok, _, _ := l.CheckIP("203.0.113.1")
		if !ok {
			t.Fatalf("request %d should be within budget", i+1)
		}
	}
	ok, wait, _ := l.CheckIP("203.0.113.1")
	if ok {
		t.Fatal("sixth request within 30 minutes should be denied")
	}
	if wait <= 0 || wait > 30*time.Minute {
		t.Fatalf("wait out of range: %v", wait)
	}
}

func TestOTPCheckIP_WindowResets(t *testing.T) {
	l := NewOTPRateLimiter()
	l.ips["203.0.113.2"] = &ipRecord{
		Count:      5,
		FirstReqAt: time.Now().Add(-31 * time.Minute),
		LastReqAt:  time.Now().Add(-31 * time.Minute),
	}
	ok, _, _ := l.CheckIP("203.0.113.2")
	if !ok {
		t.Fatal("request after the window should be allowed")
	}
}
