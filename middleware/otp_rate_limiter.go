package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// OTP requests are the only unauthenticated write on the customer surface, so
// they get their own limiter: a progressive per-phone ladder plus a coarse
// per-IP window. Each WhatsApp message sent costs money, which is why the
// ladder is stricter than the generic IP limiter.

// otpDelays[n] is the minimum elapsed time since the first request before
// request n+1 is allowed. Past the ladder the phone locks for an hour.
var otpDelays = []time.Duration{
	0,
	time.Minute,
	5 * time.Minute,
	10 * time.Minute,
}

const otpLockDuration = time.Hour

type phoneRecord struct {
	Count       int
	FirstReqAt  time.Time
	LastReqAt   time.Time
	LockedUntil time.Time
}

type ipRecord struct {
	Count      int
	FirstReqAt time.Time
	LastReqAt  time.Time
}

// OTPRateLimiter tracks OTP request budgets per phone number and per IP.
type OTPRateLimiter struct {
	mu     sync.Mutex
	phones map[string]*phoneRecord
	ips    map[string]*ipRecord
}

var (
	globalOTPLimiter *OTPRateLimiter
	otpLimiterOnce   sync.Once
)

// GetOTPRateLimiter returns the process-wide OTP limiter.
func GetOTPRateLimiter() *OTPRateLimiter {
	otpLimiterOnce.Do(func() {
		globalOTPLimiter = NewOTPRateLimiter()
		go globalOTPLimiter.cleanupLoop(5 * time.Minute)
	})
	return globalOTPLimiter
}

func NewOTPRateLimiter() *OTPRateLimiter {
	return &OTPRateLimiter{
		phones: make(map[string]*phoneRecord),
		ips:    make(map[string]*ipRecord),
	}
}

func (l *OTPRateLimiter) cleanupLoop(every time.Duration) {
	tick := time.NewTicker(every)
	defer tick.Stop()
	for range tick.C {
		l.mu.Lock()
		now := time.Now()
		for phone, rec := range l.phones {
			if !rec.LockedUntil.IsZero() && now.After(rec.LockedUntil) {
				delete(l.phones, phone)
			} else if rec.LockedUntil.IsZero() && now.Sub(rec.LastReqAt) > time.Hour {
				delete(l.phones, phone)
			}
		}
		for ip, rec := range l.ips {
			if now.Sub(rec.LastReqAt) > 30*time.Minute {
				delete(l.ips, ip)
			}
		}
		l.mu.Unlock()
	}
}

// CheckPhone reports whether this phone may request another OTP now.
// Returns (allowed, waitDuration, message).
func (l *OTPRateLimiter) CheckPhone(phone string) (bool, time.Duration, string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	rec, exists := l.phones[phone]
	if !exists {
		l.phones[phone] = &phoneRecord{Count: 1, FirstReqAt: now, LastReqAt: now}
		return true, 0, ""
	}

	if !rec.LockedUntil.IsZero() {
		if now.Before(rec.LockedUntil) {
			return false, rec.LockedUntil.Sub(now), "Anda telah mencapai batas permintaan, silahkan ulangi dalam 1 jam"
		}
		// lock expired; start a fresh window
		*rec = phoneRecord{Count: 1, FirstReqAt: now, LastReqAt: now}
		return true, 0, ""
	}

	if rec.Count >= len(otpDelays) {
		rec.LockedUntil = now.Add(otpLockDuration)
		return false, otpLockDuration, "Anda telah mencapai batas permintaan, silahkan ulangi dalam 1 jam"
	}

	required := otpDelays[rec.Count]
	elapsed := now.Sub(rec.FirstReqAt)
	if elapsed < required {
		wait := required - elapsed
		return false, wait, waitMessage(required)
	}

	rec.Count++
	rec.LastReqAt = now
	return true, 0, ""
}

func waitMessage(required time.Duration) string {
	minutes := int(required.Minutes())
	switch minutes {
	case 1:
		return "Tunggu 1 menit sebelum meminta OTP lagi"
	case 5:
		return "Tunggu 5 menit sebelum meminta OTP lagi"
	default:
		return "Tunggu 10 menit sebelum meminta OTP lagi"
	}
}

// CheckIP enforces a coarse per-IP budget of 5 OTP requests per 30 minutes
// regardless of phone number.
func (l *OTPRateLimiter) CheckIP(ip string) (bool, time.Duration, string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	rec, exists := l.ips[ip]
	if !exists {
		l.ips[ip] = &ipRecord{Count: 1, FirstReqAt: now, LastReqAt: now}
		return true, 0, ""
	}

	elapsed := now.Sub(rec.FirstReqAt)
	if elapsed >= 30*time.Minute {
		*rec = ipRecord{Count: 1, FirstReqAt: now, LastReqAt: now}
		return true, 0, ""
	}

	if rec.Count >= 5 {
		return false, 30*time.Minute - elapsed, "Terlalu banyak permintaan. Coba lagi nanti."
	}

	rec.Count++
	rec.LastReqAt = now
	return true, 0, ""
}

// ResetPhone clears the ladder after a successful OTP verification.
func (l *OTPRateLimiter) ResetPhone(phone string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.phones, phone)
}

// GetClientIP extracts the client IP from the request, honoring proxy
// headers. The OTP endpoints sit behind the tenant's CDN so the forwarded
// header is normally present.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if xr := r.Header.Get("X-Real-IP"); xr != "" {
		return strings.TrimSpace(xr)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
