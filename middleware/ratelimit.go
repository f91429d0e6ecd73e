package middleware

import (
	"math"
	"net"
	"sync"

	"golang.org/x/time/rate"
)

// KeyedRateLimiter manages one token bucket per caller identity. Each bucket
// holds rps tokens at capacity and refills at rps tokens per second; every
// admitted request consumes one token.
type KeyedRateLimiter struct {
	buckets map[string]*rate.Limiter
	mu      *sync.Mutex
	rps     int
	enabled bool
}

// NewKeyedRateLimiter creates a rate limiter with the given per-bucket rate.
// When enabled is false every check passes unconditionally.
func NewKeyedRateLimiter(rps int, enabled bool) *KeyedRateLimiter {
	if rps <= 0 {
		rps = 1
	}
	return &KeyedRateLimiter{
		buckets: make(map[string]*rate.Limiter),
		mu:      &sync.Mutex{},
		rps:     rps,
		enabled: enabled,
	}
}

// Enabled reports whether the limiter is active.
func (l *KeyedRateLimiter) Enabled() bool {
	return l.enabled
}

// RPS returns the configured per-bucket rate.
func (l *KeyedRateLimiter) RPS() int {
	return l.rps
}

func (l *KeyedRateLimiter) bucket(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = rate.NewLimiter(rate.Limit(l.rps), l.rps)
		l.buckets[key] = b
	}
	return b
}

// Check consumes one token from the caller's bucket. On rejection it returns
// a retry-after hint in whole seconds, never less than 1.
func (l *KeyedRateLimiter) Check(key string) (allowed bool, retryAfterSeconds int) {
	if !l.enabled {
		return true, 0
	}

	b := l.bucket(key)
	tokens := b.Tokens()
	if b.Allow() {
		return true, 0
	}

	retry := int(math.Ceil(1.0 - tokens))
	if retry < 1 {
		retry = 1
	}
	return false, retry
}

// BucketKey derives the bucket identity for a caller: the declared API key if
// present, else the network peer address, else a fixed anonymous bucket.
// Callers sharing a key or address share a budget.
func BucketKey(apiKey, remoteAddr string) string {
	if apiKey != "" {
		return apiKey
	}
	if remoteAddr != "" {
		if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
			return host
		}
		return remoteAddr
	}
	return "anon"
}
