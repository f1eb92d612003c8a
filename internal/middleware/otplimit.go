package middleware

import (
	"net/http"
	"sync"
	"time"
)

const (
	otpVerifyMaxAttempts    = 5
	otpVerifyWindowDuration = time.Minute
	otpVerifyCleanupPeriod  = 5 * time.Minute
)

type verifyAttempt struct {
	count       int
	windowStart time.Time
}

// OTPVerifyLimiter throttles login attempts per client IP so a stolen
// identifier cannot be brute-forced through the 6-digit code space.
// State is in-process; it intentionally does not depend on redis so the
// limit also holds for memory and postgres cache deployments.
type OTPVerifyLimiter struct {
	mu          sync.RWMutex
	attempts    map[string]*verifyAttempt
	lastCleanup time.Time
}

func NewOTPVerifyLimiter() *OTPVerifyLimiter {
	return &OTPVerifyLimiter{
		attempts:    make(map[string]*verifyAttempt),
		lastCleanup: time.Now(),
	}
}

func (l *OTPVerifyLimiter) cleanup() {
	now := time.Now()
	if now.Sub(l.lastCleanup) < otpVerifyCleanupPeriod {
		return
	}
	l.lastCleanup = now

	for ip, attempt := range l.attempts {
		if now.Sub(attempt.windowStart) > otpVerifyWindowDuration {
			delete(l.attempts, ip)
		}
	}
}

func (l *OTPVerifyLimiter) isAllowed(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cleanup()

	now := time.Now()
	attempt, exists := l.attempts[ip]

	if !exists {
		l.attempts[ip] = &verifyAttempt{
			count:       1,
			windowStart: now,
		}
		return true
	}

	if now.Sub(attempt.windowStart) > otpVerifyWindowDuration {
		attempt.count = 1
		attempt.windowStart = now
		return true
	}

	if attempt.count >= otpVerifyMaxAttempts {
		return false
	}

	attempt.count++
	return true
}

// Handler keys attempts by RemoteAddr; the RealIP middleware upstream
// has already resolved proxy headers, so a client cannot mint a new
// bucket per request by varying X-Forwarded-For here.
func (l *OTPVerifyLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.isAllowed(r.RemoteAddr) {
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, map[string]string{
				"error": "Too many login attempts. Please try again later.",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
