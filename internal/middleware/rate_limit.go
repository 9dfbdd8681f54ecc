package middleware

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"skyline/flightsync/internal/common"
)

// IPRateLimiter hands out one token bucket per client IP
type IPRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
	allowed  map[string]bool
}

// NewIPRateLimiter creates a limiter. Requests from allowlisted IPs are never limited.
func NewIPRateLimiter(limit rate.Limit, burst int, allowlist ...string) *IPRateLimiter {
	allowed := make(map[string]bool, len(allowlist))
	for _, ip := range allowlist {
		allowed[ip] = true
	}
	return &IPRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
		allowed:  allowed,
	}
}

func (l *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, exists := l.limiters[ip]; exists {
		return limiter
	}
	limiter := rate.NewLimiter(l.limit, l.burst)
	l.limiters[ip] = limiter
	return limiter
}

// Middleware rejects requests over the per-IP rate with 429
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if l.allowed[ip] {
			next.ServeHTTP(w, r)
			return
		}

		if !l.getLimiter(ip).Allow() {
			common.RespondFlightError(w, "Too many requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
