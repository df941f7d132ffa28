// Per-IP request throttling for abuse-prone endpoints (disasters are
// cheap to request and expensive to watch). Fixed-window counters in
// memory; state is per-process.
package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter allows at most maxRate requests per window for each IP.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	maxRate int
	length  time.Duration
}

type window struct {
	remaining int
	openedAt  time.Time
}

// NewRateLimiter creates a limiter allowing maxRate requests per length.
func NewRateLimiter(maxRate int, length time.Duration) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string]*window),
		maxRate: maxRate,
		length:  length,
	}
}

// Allow consumes one request slot for ip. The second return value is the
// seconds until the window resets, for the Retry-After header.
func (rl *RateLimiter) Allow(ip string) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.windows[ip]
	if !ok || now.Sub(w.openedAt) >= rl.length {
		rl.windows[ip] = &window{remaining: rl.maxRate - 1, openedAt: now}
		rl.sweep(now)
		return true, 0
	}
	if w.remaining > 0 {
		w.remaining--
		return true, 0
	}
	retry := int((rl.length - now.Sub(w.openedAt)).Seconds()) + 1
	return false, retry
}

// sweep drops windows stale for more than two lengths. Called with the
// lock held, piggybacked on window creation so no background goroutine
// is needed.
func (rl *RateLimiter) sweep(now time.Time) {
	for ip, w := range rl.windows {
		if now.Sub(w.openedAt) > 2*rl.length {
			delete(rl.windows, ip)
		}
	}
}

// RateLimitMiddleware wraps a handler with per-IP limiting, answering
// 429 with Retry-After once the window is exhausted.
func RateLimitMiddleware(rl *RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		ok, retry := rl.Allow(ip)
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
