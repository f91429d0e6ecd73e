package stats

import (
	"sync/atomic"
	"time"
)

// Stats holds all server statistics with atomic counters
type Stats struct {
	// Server info
	StartTime time.Time

	// Request counters
	TotalRequests     atomic.Int64
	SentimentRequests atomic.Int64
	BatchRequests     atomic.Int64
	ModelRequests     atomic.Int64
	HealthRequests    atomic.Int64
	StatsRequests     atomic.Int64
	OtherRequests     atomic.Int64

	// Cache performance
	CacheHits        atomic.Int64
	CacheMisses      atomic.Int64
	BatchCacheHits   atomic.Int64
	BatchCacheMisses atomic.Int64

	// Orchestration
	Fallbacks       atomic.Int64
	BackendFailures atomic.Int64

	// Rate limiting
	RateLimitAccepted atomic.Int64
	RateLimitRejected atomic.Int64

	// Response status codes
	Status2xx atomic.Int64
	Status4xx atomic.Int64
	Status5xx atomic.Int64

	// Response time tracking (in microseconds for precision)
	totalResponseTime atomic.Int64
	responseCount     atomic.Int64
	minResponseTime   atomic.Int64
	maxResponseTime   atomic.Int64
}

// Global stats instance
var global = &Stats{
	StartTime: time.Now(),
}

func init() {
	global.minResponseTime.Store(int64(^uint64(0) >> 1)) // Max int64
}

// Get returns the global stats instance
func Get() *Stats {
	return global
}

// RecordRequest records a request to a specific endpoint
func (s *Stats) RecordRequest(path string) {
	s.TotalRequests.Add(1)
	switch path {
	case "/api/v1/sentiment":
		s.SentimentRequests.Add(1)
	case "/api/v1/sentiment/batch":
		s.BatchRequests.Add(1)
	case "/api/v1/models/warm", "/api/v1/models/status", "/api/v1/models/clear":
		s.ModelRequests.Add(1)
	case "/health":
		s.HealthRequests.Add(1)
	case "/stats":
		s.StatsRequests.Add(1)
	default:
		s.OtherRequests.Add(1)
	}
}

// RecordCacheHit records a single-item cache hit
func (s *Stats) RecordCacheHit() {
	s.CacheHits.Add(1)
}

// RecordCacheMiss records a single-item cache miss
func (s *Stats) RecordCacheMiss() {
	s.CacheMisses.Add(1)
}

// RecordBatchCacheHit records a batch cache hit
func (s *Stats) RecordBatchCacheHit() {
	s.BatchCacheHits.Add(1)
}

// RecordBatchCacheMiss records a batch cache miss
func (s *Stats) RecordBatchCacheMiss() {
	s.BatchCacheMisses.Add(1)
}

// RecordFallback records a graceful-degradation fallback dispatch
func (s *Stats) RecordFallback() {
	s.Fallbacks.Add(1)
}

// RecordBackendFailure records a failed backend dispatch
func (s *Stats) RecordBackendFailure() {
	s.BackendFailures.Add(1)
}

// RecordRateLimit records a rate limiter decision
func (s *Stats) RecordRateLimit(outcome string) {
	switch outcome {
	case "accepted":
		s.RateLimitAccepted.Add(1)
	case "rejected":
		s.RateLimitRejected.Add(1)
	}
}

// RecordStatusCode records a response status code
func (s *Stats) RecordStatusCode(code int) {
	switch {
	case code >= 200 && code < 300:
		s.Status2xx.Add(1)
	case code >= 400 && code < 500:
		s.Status4xx.Add(1)
	case code >= 500:
		s.Status5xx.Add(1)
	}
}

// RecordResponseTime records a request's wall-clock duration
func (s *Stats) RecordResponseTime(d time.Duration) {
	us := d.Microseconds()
	s.totalResponseTime.Add(us)
	s.responseCount.Add(1)

	for {
		min := s.minResponseTime.Load()
		if us >= min || s.minResponseTime.CompareAndSwap(min, us) {
			break
		}
	}
	for {
		max := s.maxResponseTime.Load()
		if us <= max || s.maxResponseTime.CompareAndSwap(max, us) {
			break
		}
	}
}

// ResponseTimes returns (avgMs, minMs, maxMs) across all recorded requests
func (s *Stats) ResponseTimes() (avgMs, minMs, maxMs float64) {
	count := s.responseCount.Load()
	if count == 0 {
		return 0, 0, 0
	}
	avgMs = float64(s.totalResponseTime.Load()) / float64(count) / 1000.0
	minMs = float64(s.minResponseTime.Load()) / 1000.0
	maxMs = float64(s.maxResponseTime.Load()) / 1000.0
	return avgMs, minMs, maxMs
}

// UptimeSeconds returns seconds since the stats instance was created
func (s *Stats) UptimeSeconds() int64 {
	return int64(time.Since(s.StartTime).Seconds())
}

// Snapshot captures the counters for persistence or the /stats endpoint
func (s *Stats) Snapshot() PersistedStats {
	return PersistedStats{
		TotalRequests:     s.TotalRequests.Load(),
		SentimentRequests: s.SentimentRequests.Load(),
		BatchRequests:     s.BatchRequests.Load(),
		ModelRequests:     s.ModelRequests.Load(),
		HealthRequests:    s.HealthRequests.Load(),
		StatsRequests:     s.StatsRequests.Load(),
		OtherRequests:     s.OtherRequests.Load(),
		CacheHits:         s.CacheHits.Load(),
		CacheMisses:       s.CacheMisses.Load(),
		BatchCacheHits:    s.BatchCacheHits.Load(),
		BatchCacheMisses:  s.BatchCacheMisses.Load(),
		Fallbacks:         s.Fallbacks.Load(),
		BackendFailures:   s.BackendFailures.Load(),
		RateLimitAccepted: s.RateLimitAccepted.Load(),
		RateLimitRejected: s.RateLimitRejected.Load(),
		Status2xx:         s.Status2xx.Load(),
		Status4xx:         s.Status4xx.Load(),
		Status5xx:         s.Status5xx.Load(),
		TotalResponseTime: s.totalResponseTime.Load(),
		ResponseCount:     s.responseCount.Load(),
		MinResponseTime:   s.minResponseTime.Load(),
		MaxResponseTime:   s.maxResponseTime.Load(),
		LastSaved:         time.Now(),
	}
}

// Restore reloads counters from a persisted snapshot. Called once at boot,
// before any traffic is served.
func (s *Stats) Restore(p PersistedStats) {
	s.TotalRequests.Store(p.TotalRequests)
	s.SentimentRequests.Store(p.SentimentRequests)
	s.BatchRequests.Store(p.BatchRequests)
	s.ModelRequests.Store(p.ModelRequests)
	s.HealthRequests.Store(p.HealthRequests)
	s.StatsRequests.Store(p.StatsRequests)
	s.OtherRequests.Store(p.OtherRequests)
	s.CacheHits.Store(p.CacheHits)
	s.CacheMisses.Store(p.CacheMisses)
	s.BatchCacheHits.Store(p.BatchCacheHits)
	s.BatchCacheMisses.Store(p.BatchCacheMisses)
	s.Fallbacks.Store(p.Fallbacks)
	s.BackendFailures.Store(p.BackendFailures)
	s.RateLimitAccepted.Store(p.RateLimitAccepted)
	s.RateLimitRejected.Store(p.RateLimitRejected)
	s.Status2xx.Store(p.Status2xx)
	s.Status4xx.Store(p.Status4xx)
	s.Status5xx.Store(p.Status5xx)
	s.totalResponseTime.Store(p.TotalResponseTime)
	s.responseCount.Store(p.ResponseCount)
	if p.MinResponseTime > 0 {
		s.minResponseTime.Store(p.MinResponseTime)
	}
	s.maxResponseTime.Store(p.MaxResponseTime)
}
