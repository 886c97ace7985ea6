// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Decision is the outcome of counting one request against a key.
type Decision struct {
	Allowed   bool
	Count     int
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Backend counts requests per key in fixed windows.
type Backend interface {
	Take(ctx context.Context, key string) Decision
	Reset(ctx context.Context, key string)
}

// Limiter provides in-process rate limiting using a fixed window per key.
// It is safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int           // max requests per window
	duration time.Duration // window duration
	cleanup  time.Duration // how often to clean old entries
	stopCh   chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

type window struct {
	count     int
	expiresAt time.Time
}

// New creates a new in-memory rate limiter.
// limit: maximum requests allowed per duration
// duration: the time window for counting requests
func New(limit int, duration time.Duration) *Limiter {
	if limit <= 0 {
		limit = 1
	}
	if duration <= 0 {
		duration = time.Minute
	}
	l := &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		cleanup:  duration * 2,
		stopCh:   make(chan struct{}),
		now:      time.Now,
	}
	go l.cleanupLoop()
	return l
}

// Allow reports whether a request from key is within the limit.
func (l *Limiter) Allow(key string) bool {
	return l.Take(context.Background(), key).Allowed
}

// Take counts one request against key.
func (l *Limiter) Take(_ context.Context, key string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, exists := l.windows[key]
	if !exists || !now.Before(w.expiresAt) {
		w = &window{expiresAt: now.Add(l.duration)}
		l.windows[key] = w
	}

	d := Decision{Limit: l.limit, ResetAt: w.expiresAt}
	if w.count >= l.limit {
		d.Count = w.count
		return d
	}
	w.count++
	d.Allowed = true
	d.Count = w.count
	d.Remaining = l.limit - w.count
	return d
}

// Remaining returns how many requests are left for this key in the current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, exists := l.windows[key]
	if !exists || !l.now().Before(w.expiresAt) {
		return l.limit
	}
	if remaining := l.limit - w.count; remaining > 0 {
		return remaining
	}
	return 0
}

// Reset clears the rate limit for a specific key.
func (l *Limiter) Reset(_ context.Context, key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// Stop ends the cleanup goroutine. Safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

// cleanupLoop periodically removes expired entries to prevent memory leaks.
func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			l.mu.Lock()
			now := l.now()
			for key, w := range l.windows {
				if !now.Before(w.expiresAt) {
					delete(l.windows, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// ClientIP extracts the client IP from an HTTP request.
// It checks X-Forwarded-For and X-Real-IP headers first (for proxied requests),
// then falls back to RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// LoginLimiter tracks both IP-based and email-based limits on login:
// the IP limit slows credential stuffing, the email limit slows attacks on
// one account from many addresses.
type LoginLimiter struct {
	ip    Backend
	email Backend
}

// NewLoginLimiter combines an IP backend and an email backend.
func NewLoginLimiter(ip, email Backend) *LoginLimiter {
	return &LoginLimiter{ip: ip, email: email}
}

// Check verifies if a login attempt should be allowed.
// Returns (allowed, reason) where reason explains why it was blocked.
func (ll *LoginLimiter) Check(ctx context.Context, r *http.Request, email string) (bool, string) {
	if !ll.ip.Take(ctx, "login:ip:"+ClientIP(r)).Allowed {
		return false, "Too many login attempts. Please wait a minute before trying again."
	}
	if key := normalizeEmail(email); key != "" {
		if !ll.email.Take(ctx, "login:email:"+key).Allowed {
			return false, "Too many login attempts for this account. Please wait a few minutes."
		}
	}
	return true, ""
}

// ResetEmail clears the email limit after a successful login.
func (ll *LoginLimiter) ResetEmail(ctx context.Context, email string) {
	if key := normalizeEmail(email); key != "" {
		ll.email.Reset(ctx, "login:email:"+key)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
