package sentiment

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jwgv/QuickTone/cache"
	"github.com/jwgv/QuickTone/config"
	"github.com/jwgv/QuickTone/logcolors"
	"github.com/jwgv/QuickTone/services/backends"
	"github.com/jwgv/QuickTone/stats"

	log "github.com/sirupsen/logrus"
)

// Concurrent single-item dispatches in flight during a batch fan-out.
const fanOutConcurrency = 8

// Request is a single-item analysis request. Model is optional; an empty
// value selects the configured default. TaskType defaults to sentiment.
type Request struct {
	Text      string
	Model     string
	TaskType  backends.TaskType
	Threshold *float64
}

// BatchRequest is an ordered list of texts sharing one backend, task mode and
// threshold.
type BatchRequest struct {
	Texts     []string
	Model     string
	TaskType  backends.TaskType
	Threshold *float64
}

// Result is one analysis outcome. Model names the backend that produced it,
// which differs from the requested one after a fallback. Cached reports
// whether the result was served from the cache; it is transport metadata, not
// part of the payload.
type Result struct {
	Model            string            `json:"model"`
	Sentiment        string            `json:"sentiment"`
	Confidence       float64           `json:"confidence"`
	ProcessingTimeMs int64             `json:"processing_time_ms"`
	TaskType         backends.TaskType `json:"task_type"`
	Text             string            `json:"text,omitempty"`
	Cached           bool              `json:"-"`
}

// BatchResult holds per-item results in input order plus the true wall-clock
// total for the whole batch.
type BatchResult struct {
	Results               []Result `json:"results"`
	TotalProcessingTimeMs int64    `json:"total_processing_time_ms"`
	ItemsProcessed        int      `json:"items_processed"`
	Cached                bool     `json:"-"`
}

// Manager orchestrates analysis requests: cache lookups, backend dispatch
// with a bounded timeout, graceful-degradation fallback, and batch
// coordination. It owns its caches and references the shared registry.
type Manager struct {
	cfg        config.Config
	registry   *backends.Registry
	cache      *cache.MemoryCache[string, Result]
	batchCache *cache.MemoryCache[string, BatchResult]
}

// NewManager creates a manager over the given registry. Caches are created
// only when the memory cache backend is configured.
func NewManager(cfg config.Config, registry *backends.Registry) *Manager {
	m := &Manager{cfg: cfg, registry: registry}
	if cfg.Cache.Backend == "memory" {
		ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
		m.cache = cache.NewMemoryCache[string, Result](cfg.Cache.SingleMaxSize, ttl, nil)
		m.batchCache = cache.NewMemoryCache[string, BatchResult](cfg.Cache.BatchMaxSize, ttl, nil)
	}
	return m
}

func (m *Manager) resolveBackend(model string) string {
	if model == "" {
		model = m.cfg.Models.Default
	}
	return strings.ToLower(model)
}

func normalizeTask(t backends.TaskType) backends.TaskType {
	if t == "" {
		return backends.TaskSentiment
	}
	return t
}

// Analyze runs the single-item path: validate, cache check, dispatch with
// timeout, fall back to vader on backend failure, store in the cache.
//
// A fallback result is stored under the key of the originally resolved
// backend, so the next identical request after the TTL re-attempts the
// intended backend instead of permanently masking it.
func (m *Manager) Analyze(ctx context.Context, req Request) (Result, error) {
	if m.cfg.Limits.TextLengthLimit > 0 && len(req.Text) > m.cfg.Limits.TextLengthLimit {
		return Result{}, fmt.Errorf("%w: %d > %d", ErrTextTooLong, len(req.Text), m.cfg.Limits.TextLengthLimit)
	}

	model := m.resolveBackend(req.Model)
	if !KnownBackend(model) {
		return Result{}, fmt.Errorf("%w: %s", backends.ErrUnknownBackend, model)
	}
	task := normalizeTask(req.TaskType)

	var key string
	if m.cache != nil {
		key = cache.SingleKey(model, string(task), req.Threshold, req.Text)
		if hit, ok := m.cache.Get(key); ok {
			stats.Get().RecordCacheHit()
			hit.Cached = true
			return hit, nil
		}
		stats.Get().RecordCacheMiss()
	}

	res, err := m.analyzeWith(ctx, model, req.Text, task)
	if err != nil {
		stats.Get().RecordBackendFailure()
		if !m.cfg.Models.GracefulDegradation || model == BackendVader {
			return Result{}, err
		}
		log.Warnf("%s Backend %q failed, degrading to %q: %v", logcolors.LogFallback, model, BackendVader, err)
		stats.Get().RecordFallback()
		// The fallback only speaks plain sentiment. Its own failure
		// propagates, not the original error.
		res, err = m.analyzeWith(ctx, BackendVader, req.Text, backends.TaskSentiment)
		if err != nil {
			return Result{}, err
		}
	}

	if m.cache != nil {
		m.cache.Set(key, res)
	}
	return res, nil
}

// analyzeWith dispatches one text to the named backend. Registry construction
// failures are reported like any other backend failure so the fallback policy
// applies to them.
func (m *Manager) analyzeWith(ctx context.Context, id, text string, task backends.TaskType) (Result, error) {
	b, err := m.registry.Get(id)
	if err != nil {
		return Result{}, err
	}
	if id == BackendVader {
		task = backends.TaskSentiment
	}

	r, err := m.dispatch(ctx, b, text, task)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Model:            id,
		Sentiment:        r.Label,
		Confidence:       r.Confidence,
		ProcessingTimeMs: r.ElapsedMs,
		TaskType:         task,
	}, nil
}

// dispatch bounds a backend call with the configured response timeout. The
// abandoned call keeps running after the deadline; preemption is not
// attempted, the buffered channel just lets it finish and be collected.
func (m *Manager) dispatch(ctx context.Context, b backends.Backend, text string, task backends.TaskType) (backends.Result, error) {
	cctx, cancel := context.WithTimeout(ctx, time.Duration(m.cfg.Limits.ResponseTimeoutMs)*time.Millisecond)
	defer cancel()

	type outcome struct {
		res backends.Result
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		r, err := b.Analyze(cctx, text, task)
		ch <- outcome{r, err}
	}()

	select {
	case o := <-ch:
		return o.res, o.err
	case <-cctx.Done():
		return backends.Result{}, backends.NewBackendError(b.Name(), "analysis timed out", backends.ErrTimeout)
	}
}

// AnalyzeBatch runs the batch path. The whole batch is validated before any
// dispatch; a violation rejects it in full. Backends with native batch
// support get one call for the full list, everything else is fanned out
// through the single-item path under bounded concurrency.
func (m *Manager) AnalyzeBatch(ctx context.Context, req BatchRequest) (BatchResult, error) {
	if m.cfg.Limits.BatchSizeLimit > 0 && len(req.Texts) > m.cfg.Limits.BatchSizeLimit {
		return BatchResult{}, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(req.Texts), m.cfg.Limits.BatchSizeLimit)
	}
	for i, t := range req.Texts {
		if m.cfg.Limits.TextLengthLimit > 0 && len(t) > m.cfg.Limits.TextLengthLimit {
			return BatchResult{}, fmt.Errorf("%w: item %d: %d > %d", ErrTextTooLong, i, len(t), m.cfg.Limits.TextLengthLimit)
		}
	}

	model := m.resolveBackend(req.Model)
	if !KnownBackend(model) {
		return BatchResult{}, fmt.Errorf("%w: %s", backends.ErrUnknownBackend, model)
	}
	task := normalizeTask(req.TaskType)

	var key string
	if m.batchCache != nil {
		key = cache.BatchKey(model, string(task), req.Threshold, req.Texts)
		if hit, ok := m.batchCache.Get(key); ok {
			stats.Get().RecordBatchCacheHit()
			hit.Cached = true
			return hit, nil
		}
		stats.Get().RecordBatchCacheMiss()
	}

	b, err := m.registry.Get(model)
	if err != nil {
		return BatchResult{}, err
	}

	var resp BatchResult
	if batcher, ok := b.(backends.BatchAnalyzer); ok {
		resp, err = m.batchNative(ctx, model, batcher, req.Texts, task)
	} else {
		resp, err = m.batchFanOut(ctx, req, task)
	}
	if err != nil {
		return BatchResult{}, err
	}

	if m.batchCache != nil {
		m.batchCache.Set(key, resp)
	}
	return resp, nil
}

// batchNative issues exactly one dispatch for the whole ordered list. The
// batch total is the true measured value; per-item times are the total split
// evenly, floored at 1ms. There is no batch-level fallback: a native failure
// fails the whole batch.
func (m *Manager) batchNative(ctx context.Context, model string, b backends.BatchAnalyzer, texts []string, task backends.TaskType) (BatchResult, error) {
	items, totalMs, err := b.AnalyzeBatch(ctx, texts, task)
	if err != nil {
		stats.Get().RecordBackendFailure()
		return BatchResult{}, err
	}
	if len(items) != len(texts) {
		stats.Get().RecordBackendFailure()
		return BatchResult{}, backends.NewBackendError(model,
			fmt.Sprintf("native batch returned %d results for %d inputs", len(items), len(texts)), nil)
	}

	// Floor the divisor so a zero-length batch cannot divide by zero; the
	// per-item floor of 1ms applies either way.
	divisor := int64(len(items))
	if divisor < 1 {
		divisor = 1
	}
	perItemMs := totalMs / divisor
	if perItemMs < 1 {
		perItemMs = 1
	}
	results := make([]Result, len(items))
	for i, it := range items {
		results[i] = Result{
			Model:            model,
			Sentiment:        it.Label,
			Confidence:       it.Confidence,
			ProcessingTimeMs: perItemMs,
			TaskType:         task,
		}
	}
	log.Debugf("%s Native batch of %d via %q in %dms", logcolors.LogBatch, len(results), model, totalMs)
	return BatchResult{Results: results, TotalProcessingTimeMs: totalMs, ItemsProcessed: len(results)}, nil
}

// batchFanOut runs one single-item analysis per text with a bounded number in
// flight, preserving input order regardless of completion order. Fallback
// degradation is inherited per item from the single-item path. The total is
// the wall-clock span of the whole fan-out.
func (m *Manager) batchFanOut(ctx context.Context, req BatchRequest, task backends.TaskType) (BatchResult, error) {
	start := time.Now()

	sem := make(chan struct{}, fanOutConcurrency)
	results := make([]Result, len(req.Texts))
	errs := make([]error, len(req.Texts))
	var wg sync.WaitGroup
	for i, t := range req.Texts {
		wg.Add(1)
		go func(i int, t string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i], errs[i] = m.Analyze(ctx, Request{
				Text:      t,
				Model:     req.Model,
				TaskType:  task,
				Threshold: req.Threshold,
			})
		}(i, t)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return BatchResult{}, err
		}
	}
	return BatchResult{
		Results:               results,
		TotalProcessingTimeMs: time.Since(start).Milliseconds(),
		ItemsProcessed:        len(results),
	}, nil
}

// CacheStats returns the single and batch cache counters for the stats
// endpoint. Zero stats when caching is disabled.
func (m *Manager) CacheStats() (single, batch cache.Stats) {
	if m.cache != nil {
		single = m.cache.Stats()
	}
	if m.batchCache != nil {
		batch = m.batchCache.Stats()
	}
	return single, batch
}

// ClearCaches drops all cached results.
func (m *Manager) ClearCaches() {
	if m.cache != nil {
		m.cache.Clear()
	}
	if m.batchCache != nil {
		m.batchCache.Clear()
	}
	log.Infof("%s Result caches cleared", logcolors.LogCache)
}
