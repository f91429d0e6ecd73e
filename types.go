package main

// sentimentRequest is the body of POST /api/v1/sentiment. Model and task_type
// are optional; threshold is an optional per-request override folded into the
// cache key.
type sentimentRequest struct {
	Text      string   `json:"text"`
	Model     string   `json:"model,omitempty"`
	TaskType  string   `json:"task_type,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// batchSentimentRequest is the body of POST /api/v1/sentiment/batch. All
// texts share one model, task mode and threshold.
type batchSentimentRequest struct {
	Texts     []string `json:"texts"`
	Model     string   `json:"model,omitempty"`
	TaskType  string   `json:"task_type,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// warmRequest lists the logical models to warm. Empty means all neural
// models.
type warmRequest struct {
	Models []string `json:"models,omitempty"`
}

type warmResponse struct {
	ModelsLoaded []string         `json:"models_loaded"`
	WarmUpTimeMs map[string]int64 `json:"warm_up_time_ms"`
}

type modelStatusResponse struct {
	ModelsLoaded  []string `json:"models_loaded"`
	ModelsKnown   []string `json:"models_known"`
	DefaultModel  string   `json:"default_model"`
	UptimeSeconds int64    `json:"uptime_seconds"`
}

type healthResponse struct {
	Status          string   `json:"status"`
	Version         string   `json:"version"`
	DefaultModel    string   `json:"default_model"`
	ModelsAvailable []string `json:"models_available"`
}

type errorResponse struct {
	Error string `json:"error"`
}
