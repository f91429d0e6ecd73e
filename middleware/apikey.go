package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/jwgv/QuickTone/logcolors"
	"github.com/jwgv/QuickTone/stats"

	log "github.com/sirupsen/logrus"
)

// ExtractAPIKey reads the caller's API key from the X-API-Key header, falling
// back to an "Authorization: Api-Key <key>" header.
func ExtractAPIKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(auth), "api-key ") {
		return strings.TrimSpace(auth[len("api-key "):])
	}
	return ""
}

// AdminOnly gates administrative endpoints behind the configured admin key.
// When no admin key is configured the gate is left open, which keeps local
// development and tests working without credentials.
func AdminOnly(adminKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminKey == "" {
				next.ServeHTTP(w, r)
				return
			}
			if ExtractAPIKey(r) != adminKey {
				log.Warnf("%s Invalid or missing admin key from %s for %s", logcolors.LogAPIKey, r.RemoteAddr, r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Invalid or missing admin key",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitMiddleware enforces per-caller admission control. The privileged
// admin key bypasses the limiter entirely, and keys on the configured
// whitelist are exempt; everyone else shares a bucket per key-or-address.
// Limiting is only enforced in api_key auth mode, matching the admission
// policy the rest of the API assumes.
func RateLimitMiddleware(limiter *KeyedRateLimiter, authMode, adminKey string, apiKeys map[string]bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Enabled() || authMode != "api_key" {
				next.ServeHTTP(w, r)
				return
			}

			key := ExtractAPIKey(r)

			// Privileged identity: no rate limiting at all.
			if adminKey != "" && key == adminKey {
				w.Header().Set("X-RateLimit-Bypass", "true")
				next.ServeHTTP(w, r)
				return
			}

			// Whitelisted keys are exempt.
			if key != "" && apiKeys[key] {
				w.Header().Set("X-RateLimit-Bypass", "true")
				next.ServeHTTP(w, r)
				return
			}

			bucket := BucketKey(key, r.RemoteAddr)
			allowed, retryAfter := limiter.Check(bucket)
			if !allowed {
				stats.Get().RecordRateLimit("rejected")
				log.Warnf("%s Bucket %s exceeded rate limit", logcolors.LogRateLimit, bucket)
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Rate limit exceeded",
				})
				return
			}

			stats.Get().RecordRateLimit("accepted")
			next.ServeHTTP(w, r)
		})
	}
}
