package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jwgv/QuickTone/logcolors"
	"github.com/jwgv/QuickTone/services/backends"
	"github.com/jwgv/QuickTone/services/sentiment"
	"github.com/jwgv/QuickTone/stats"

	log "github.com/sirupsen/logrus"
)

// writeAnalysisError maps orchestration errors onto HTTP status codes:
// oversize input → 413, unknown model/task → 400, everything else → 500.
func writeAnalysisError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sentiment.ErrTextTooLong), errors.Is(err, sentiment.ErrBatchTooLarge):
		Respond(w).Error(http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, backends.ErrUnknownBackend):
		Respond(w).Error(http.StatusBadRequest, err.Error())
	default:
		log.Errorf("%s Analysis failed: %v", logcolors.LogManager, err)
		Respond(w).Error(http.StatusInternalServerError, "analysis failed: "+err.Error())
	}
}

func parseTaskType(raw string) (backends.TaskType, bool) {
	if raw == "" {
		return backends.TaskSentiment, true
	}
	t := backends.TaskType(raw)
	return t, t.Valid()
}

func analyzeSentiment(w http.ResponseWriter, r *http.Request) {
	var req sentimentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Respond(w).Error(http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Text == "" {
		Respond(w).Error(http.StatusBadRequest, "text is required")
		return
	}
	task, ok := parseTaskType(req.TaskType)
	if !ok {
		Respond(w).Error(http.StatusBadRequest, "task_type must be sentiment or emotion")
		return
	}

	res, err := manager.Analyze(r.Context(), sentiment.Request{
		Text:      req.Text,
		Model:     req.Model,
		TaskType:  task,
		Threshold: req.Threshold,
	})
	if err != nil {
		writeAnalysisError(w, err)
		return
	}

	Respond(w).SetBackend(res.Model).SetCacheStatus(cacheStatus(res.Cached)).JSON(res)
}

func analyzeBatchSentiment(w http.ResponseWriter, r *http.Request) {
	var req batchSentimentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Respond(w).Error(http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Texts) == 0 {
		Respond(w).Error(http.StatusBadRequest, "texts is required")
		return
	}
	task, ok := parseTaskType(req.TaskType)
	if !ok {
		Respond(w).Error(http.StatusBadRequest, "task_type must be sentiment or emotion")
		return
	}

	res, err := manager.AnalyzeBatch(r.Context(), sentiment.BatchRequest{
		Texts:     req.Texts,
		Model:     req.Model,
		TaskType:  task,
		Threshold: req.Threshold,
	})
	if err != nil {
		writeAnalysisError(w, err)
		return
	}

	Respond(w).SetCacheStatus(cacheStatus(res.Cached)).JSON(res)
}

func cacheStatus(cached bool) string {
	if cached {
		return "HIT"
	}
	return "MISS"
}

func warmModels(w http.ResponseWriter, r *http.Request) {
	var req warmRequest
	if r.Body != nil {
		// An empty or missing body warms the default set.
		json.NewDecoder(r.Body).Decode(&req)
	}

	ids := req.Models
	if len(ids) == 0 {
		ids = sentiment.NeuralBackends()
	}
	for _, id := range ids {
		if !sentiment.KnownBackend(id) {
			Respond(w).Error(http.StatusBadRequest, "unknown model: "+id)
			return
		}
	}

	times, err := registry.WarmUp(ids)
	if err != nil {
		log.Errorf("%s Warm-up failed: %v", logcolors.LogWarmUp, err)
		Respond(w).Error(http.StatusInternalServerError, "warm-up failed: "+err.Error())
		return
	}

	ms := make(map[string]int64, len(times))
	for id, d := range times {
		ms[id] = d.Milliseconds()
	}
	Respond(w).JSON(warmResponse{
		ModelsLoaded: registry.Loaded(),
		WarmUpTimeMs: ms,
	})
}

func getModelStatus(w http.ResponseWriter, r *http.Request) {
	Respond(w).JSON(modelStatusResponse{
		ModelsLoaded:  registry.Loaded(),
		ModelsKnown:   sentiment.KnownBackends(),
		DefaultModel:  conf.Models.Default,
		UptimeSeconds: stats.Get().UptimeSeconds(),
	})
}

func clearModels(w http.ResponseWriter, r *http.Request) {
	registry.Clear()
	manager.ClearCaches()
	Respond(w).JSON(map[string]interface{}{
		"status":        "cleared",
		"models_loaded": registry.Loaded(),
	})
}

func getHealthStatus(w http.ResponseWriter, r *http.Request) {
	Respond(w).JSON(healthResponse{
		Status:          "ok",
		Version:         version,
		DefaultModel:    conf.Models.Default,
		ModelsAvailable: sentiment.KnownBackends(),
	})
}

func getStats(w http.ResponseWriter, r *http.Request) {
	s := stats.Get()
	single, batch := manager.CacheStats()
	avgMs, minMs, maxMs := s.ResponseTimes()

	Respond(w).JSON(map[string]interface{}{
		"uptime_seconds": s.UptimeSeconds(),
		"requests": map[string]int64{
			"total":     s.TotalRequests.Load(),
			"sentiment": s.SentimentRequests.Load(),
			"batch":     s.BatchRequests.Load(),
			"models":    s.ModelRequests.Load(),
			"health":    s.HealthRequests.Load(),
			"stats":     s.StatsRequests.Load(),
			"other":     s.OtherRequests.Load(),
		},
		"cache": map[string]interface{}{
			"single": single,
			"batch":  batch,
		},
		"orchestration": map[string]int64{
			"fallbacks":        s.Fallbacks.Load(),
			"backend_failures": s.BackendFailures.Load(),
		},
		"rate_limit": map[string]int64{
			"accepted": s.RateLimitAccepted.Load(),
			"rejected": s.RateLimitRejected.Load(),
		},
		"status_codes": map[string]int64{
			"2xx": s.Status2xx.Load(),
			"4xx": s.Status4xx.Load(),
			"5xx": s.Status5xx.Load(),
		},
		"response_times_ms": map[string]float64{
			"avg": avgMs,
			"min": minMs,
			"max": maxMs,
		},
	})
}

func helpHandler(w http.ResponseWriter, r *http.Request) {
	Respond(w).JSON(map[string]interface{}{
		"help": "POST /api/v1/sentiment with {\"text\": \"...\", \"model\": \"vader|distilbert|distilbert-sst-2\", \"task_type\": \"sentiment|emotion\"}. " +
			"POST /api/v1/sentiment/batch with {\"texts\": [...]}. See /health and /stats for server state.",
	})
}
