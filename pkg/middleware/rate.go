// Package middleware holds the HTTP middleware shared by every route:
// authentication, access logging, CORS, panic recovery and rate limiting.
package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/marketplace/pkg/response"
)

// window is a fixed-window request counter for one client.
type window struct {
	count   int
	resetAt time.Time
}

type limiter struct {
	mu        sync.Mutex
	max       int
	period    time.Duration
	clients   map[string]*window
	lastSweep time.Time
	now       func() time.Time
}

func newLimiter(max int, period time.Duration) *limiter {
	return &limiter{
		max:     max,
		period:  period,
		clients: make(map[string]*window),
		now:     time.Now,
	}
}

// allow counts one request for key and reports whether it is within the
// limit, plus the time the current window resets.
func (l *limiter) allow(key string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > l.period {
		for k, w := range l.clients {
			if now.After(w.resetAt) {
				delete(l.clients, k)
			}
		}
		l.lastSweep = now
	}

	w, ok := l.clients[key]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(l.period)}
		l.clients[key] = w
	}
	w.count++
	return w.count <= l.max, w.resetAt
}

// RateLimit allows each client IP max requests per period. Every call
// builds an independent limiter.
func RateLimit(max int, period time.Duration) func(http.Handler) http.Handler {
	l := newLimiter(max, period)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, resetAt := l.allow(ClientIP(r))
			if !ok {
				retry := int(time.Until(resetAt).Seconds()) + 1
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				response.Error(w, http.StatusTooManyRequests, "Too many requests, please try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the first X-Forwarded-For hop, X-Real-Ip, or the remote
// address without its port.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	if real := r.Header.Get("X-Real-Ip"); real != "" {
		return real
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
