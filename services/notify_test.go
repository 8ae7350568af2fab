package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/erabhijeetghosh28-lab/spinner-sub001/utils"
)

func TestDeliver_RetriesWithBackoff(t *testing.T) {
	origSend, origSleep := waSend, sleepFn
	defer func() { waSend, sleepFn = origSend, origSleep }()

	calls := 0
	waSend = func(cfg utils.WaConfig, phone, message string) error {
		calls++
		return errors.New("gateway down")
	}
	var delays []time.Duration
	sleepFn = func(d time.Duration) { delays = append(delays, d) }

	attempts, err := deliver(utils.WaConfig{}, "081234567890", "halo")
	if err == nil {
		t.Fatal("expected delivery failure")
	}
	if attempts != 3 || calls != 3 {
		t.Fatalf("expected exactly 3 attempts, got attempts=%d calls=%d", attempts, calls)
	}
	if len(delays) != 2 || delays[0] != 2*time.Second || delays[1] != 4*time.Second {
		t.Fatalf("expected 2s then 4s backoff, got %v", delays)
	}
}

func TestDeliver_StopsOnSuccess(t *testing.T) {
	origSend, origSleep := waSend, sleepFn
	defer func() { waSend, sleepFn = origSend, origSleep }()

	calls := 0
	waSend = func(cfg utils.WaConfig, phone, message string) error {
		calls++
		if calls == 2 {
			return nil
		}
		return errors.New("temporary")
	}
	slept := 0
	sleepFn = func(d time.Duration) { slept++ }

	attempts, err := deliver(utils.WaConfig{}, "081234567890", "halo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 2 || calls != 2 || slept != 1 {
		t.Fatalf("expected success on second attempt, got attempts=%d calls=%d slept=%d", attempts, calls, slept)
	}
}

func TestBuildApprovalMessage(t *testing.T) {
	one := BuildApprovalMessage("instagram_follow", 1)
	if !strings.Contains(one, "instagram_follow") || !strings.Contains(one, "1 bonus spin") {
		t.Fatalf("approval message missing task type or singular count: %q", one)
	}
	if strings.Contains(one, "1 bonus spins") {
		t.Fatalf("count of 1 must not pluralize: %q", one)
	}
	many := BuildApprovalMessage("google_review", 3)
	if !strings.Contains(many, "google_review") || !strings.Contains(many, "3 bonus spins") {
		t.Fatalf("approval message missing task type or plural count: %q", many)
	}
}

func TestBuildRejectionMessage(t *testing.T) {
	msg := BuildRejectionMessage("instagram_follow", "bukti tidak terbaca")
	if !strings.Contains(msg, "instagram_follow") {
		t.Fatalf("rejection message missing task type: %q", msg)
	}
	if !strings.Contains(msg, "bukti tidak terbaca") {
		t.Fatalf("rejection message must carry the verbatim reason: %q", msg)
	}
}

func TestBuildVoucherMessage(t *testing.T) {
	expires := time.Date(2026, time.September, 15, 0, 0, 0, 0, time.UTC)
	msg := BuildVoucherMessage("KOPI-ABCDEFGH2345", "Es Kopi Gratis", expires, nil)
	for _, want := range []string{"KOPI-ABCDEFGH2345", "Es Kopi Gratis", "15 September 2026"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("voucher message missing %q: %q", want, msg)
		}
	}
	if strings.Contains(msg, "QR") {
		t.Fatalf("no QR mention without a QR URL: %q", msg)
	}

	qr := "https://cdn.example.com/vouchers/1/abc.png"
	withQR := BuildVoucherMessage("KOPI-ABCDEFGH2345", "Es Kopi Gratis", expires, &qr)
	if !strings.Contains(withQR, qr) {
		t.Fatalf("voucher message missing QR URL: %q", withQR)
	}
}

func TestBuildOTPMessage(t *testing.T) {
	msg := BuildOTPMessage("482913")
	if !strings.Contains(msg, "482913") {
		t.Fatalf("OTP message missing code: %q", msg)
	}
}
