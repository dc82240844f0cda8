package mcp

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// bucketIdle is how long an unused bucket is kept.
const bucketIdle = 10 * time.Minute

// ipRateLimiter is a per-client token bucket for the HTTP transport.
// Loopback clients are never limited.
type ipRateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*tokenBucket
	rps       float64
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

type tokenBucket struct {
	tokens   float64
	lastTime time.Time
}

func newIPRateLimiter(rps float64, burst int) *ipRateLimiter {
	return &ipRateLimiter{
		buckets: make(map[string]*tokenBucket),
		rps:     rps,
		burst:   burst,
		now:     time.Now,
	}
}

func (l *ipRateLimiter) enabled() bool {
	return l != nil && l.rps > 0 && l.burst > 0
}

func (l *ipRateLimiter) allow(ip string) bool {
	if !l.enabled() {
		return true
	}
	clientIP := normalizeClientIP(ip)
	if clientIP == "" || isLoopbackClientIP(clientIP) {
		return true
	}

	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweepLocked(now)

	bucket, ok := l.buckets[clientIP]
	if !ok {
		l.buckets[clientIP] = &tokenBucket{tokens: float64(l.burst - 1), lastTime: now}
		return true
	}
	if elapsed := now.Sub(bucket.lastTime).Seconds(); elapsed > 0 {
		bucket.tokens += elapsed * l.rps
		if limit := float64(l.burst); bucket.tokens > limit {
			bucket.tokens = limit
		}
	}
	bucket.lastTime = now
	if bucket.tokens >= 1 {
		bucket.tokens--
		return true
	}
	return false
}

// sweepLocked drops idle buckets at most once per bucketIdle.
func (l *ipRateLimiter) sweepLocked(now time.Time) {
	if now.Sub(l.lastSweep) < bucketIdle {
		return
	}
	l.lastSweep = now
	for ip, bucket := range l.buckets {
		if now.Sub(bucket.lastTime) > bucketIdle {
			delete(l.buckets, ip)
		}
	}
}

// middleware answers 429 once a client has spent its burst.
func (l *ipRateLimiter) middleware(next http.Handler) http.Handler {
	if !l.enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(remoteIP(r)) {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func remoteIP(r *http.Request) string {
	remote := strings.TrimSpace(r.RemoteAddr)
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		return remote
	}
	return host
}

func normalizeClientIP(ip string) string {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return ""
	}
	if strings.EqualFold(ip, "localhost") {
		return "localhost"
	}
	ip = strings.Trim(ip, "[]")
	if zone := strings.Index(ip, "%"); zone >= 0 {
		ip = ip[:zone]
	}
	if parsed := net.ParseIP(ip); parsed != nil {
		return parsed.String()
	}
	return strings.ToLower(ip)
}

func isLoopbackClientIP(ip string) bool {
	if ip == "localhost" {
		return true
	}
	parsed := net.ParseIP(ip)
	return parsed != nil && parsed.IsLoopback()
}
