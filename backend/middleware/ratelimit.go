// ABOUTME: Per-client token bucket rate limiting for the planning API
// ABOUTME: Buckets refill continuously; idle clients are evicted on a sweep

package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"
)

// sweepEvery is how many new clients are admitted between idle sweeps
const sweepEvery = 100

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter gives each client key a token bucket holding limit tokens that
// refills at limit per window. A client that has been idle for a full window
// has a full bucket, so its entry can be dropped.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	every   rate.Limit
	burst   int
	idle    time.Duration
	admits  int
}

// NewRateLimiter allows limit requests per window per client.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		every:   rate.Limit(float64(limit) / window.Seconds()),
		burst:   limit,
		idle:    window,
	}
}

// Allow takes a token for key. When the bucket is empty it returns false and
// the wait until the next token is available.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rl.every, rl.burst)}
		rl.buckets[key] = b

		rl.admits++
		if rl.admits >= sweepEvery {
			rl.sweep(now)
			rl.admits = 0
		}
	}
	b.lastSeen = now

	res := b.limiter.ReserveN(now, 1)
	if !res.OK() {
		return false, rl.idle
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// sweep drops buckets idle for at least one window. Caller holds rl.mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for k, b := range rl.buckets {
		if now.Sub(b.lastSeen) >= rl.idle {
			delete(rl.buckets, k)
		}
	}
}

// ClientIP keys requests by the leftmost X-Forwarded-For address, falling back
// to RemoteAddr. The service is expected to sit behind a load balancer that
// sets the header.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); net.ParseIP(ip) != nil {
			return "ip:" + ip
		}
	}

	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return "ip:" + host
}

// RateLimit rejects requests with 429 once the client's bucket is empty.
// A nil limiter disables the check, and requests with no key pass through.
func RateLimit(limiter *RateLimiter, keyFunc func(*http.Request) string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		if limiter == nil || keyFunc == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFunc(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			allowed, retryAfter := limiter.Allow(key)
			if allowed {
				next.ServeHTTP(w, r)
				return
			}

			retrySeconds := int(math.Ceil(retryAfter.Seconds()))
			slog.Warn("Rate limit exceeded", "key", key, "path", sanitizePath(r.URL.Path), "retry_after", retrySeconds)

			w.Header().Set("Retry-After", strconv.Itoa(retrySeconds))
			writeJSONError(w, r, "Rate limit exceeded", http.StatusTooManyRequests)
		})
	}
}
