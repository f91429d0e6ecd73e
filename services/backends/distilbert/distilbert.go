package distilbert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jwgv/QuickTone/circuitbreaker"
	"github.com/jwgv/QuickTone/logcolors"
	"github.com/jwgv/QuickTone/services/backends"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// emotionToSentiment buckets the emotion model's labels into plain sentiment.
// Identity entries cover SST-2 style models that already emit sentiment
// labels. Labels outside the table contribute to neither bucket.
var emotionToSentiment = map[string]string{
	// Positive bucket
	"joy":        backends.LabelPositive,
	"optimism":   backends.LabelPositive,
	"amusement":  backends.LabelPositive,
	"admiration": backends.LabelPositive,
	"love":       backends.LabelPositive,
	"positive":   backends.LabelPositive,
	// Negative bucket
	"anger":          backends.LabelNegative,
	"disgust":        backends.LabelNegative,
	"fear":           backends.LabelNegative,
	"sadness":        backends.LabelNegative,
	"disappointment": backends.LabelNegative,
	"negative":       backends.LabelNegative,
}

// scorePair is one label/probability entry of the inference server's
// per-input score distribution.
type scorePair struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type inferenceRequest struct {
	Inputs []string `json:"inputs"`
}

// Options configures a Classifier.
type Options struct {
	// Name is the logical backend identifier ("distilbert" or
	// "distilbert-sst-2").
	Name string
	// ModelID is the HF-style model path on the inference server.
	ModelID string
	// BaseURL is the inference server root, e.g. http://localhost:8081.
	BaseURL string
	// Timeout bounds each HTTP call.
	Timeout time.Duration
	// BreakerThreshold is the consecutive-failure count that opens the
	// circuit; BreakerCooldown is how long it stays open.
	BreakerThreshold int
	BreakerCooldown  time.Duration
	// Threshold and Epsilon tune the emotion-to-sentiment tiebreak.
	Threshold float64
	Epsilon   float64
}

// Classifier is a neural text-classification backend served over HTTP by an
// HF-style inference server. It supports native batch evaluation and guards
// the endpoint with a circuit breaker so a dead server fails fast instead of
// burning the full timeout on every request.
type Classifier struct {
	name      string
	modelID   string
	baseURL   string
	client    *http.Client
	breaker   *circuitbreaker.CircuitBreaker
	threshold float64
	epsilon   float64
}

// New creates a classifier for the given inference endpoint.
func New(opts Options) *Classifier {
	return &Classifier{
		name:    opts.Name,
		modelID: opts.ModelID,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		client:  &http.Client{Timeout: opts.Timeout},
		breaker: circuitbreaker.New(circuitbreaker.Config{
			Name:      opts.Name,
			Threshold: opts.BreakerThreshold,
			Cooldown:  opts.BreakerCooldown,
		}),
		threshold: opts.Threshold,
		epsilon:   opts.Epsilon,
	}
}

// Name returns the backend identifier
func (c *Classifier) Name() string {
	return c.name
}

// Analyze classifies a single text.
func (c *Classifier) Analyze(ctx context.Context, text string, taskType backends.TaskType) (backends.Result, error) {
	start := time.Now()

	scores, err := c.infer(ctx, []string{text})
	if err != nil {
		return backends.Result{}, err
	}

	label, conf := c.postprocess(scores[0], taskType)
	return backends.Result{
		Label:      label,
		Confidence: conf,
		ElapsedMs:  time.Since(start).Milliseconds(),
	}, nil
}

// AnalyzeBatch classifies all texts in a single inference call.
func (c *Classifier) AnalyzeBatch(ctx context.Context, texts []string, taskType backends.TaskType) ([]backends.ItemResult, int64, error) {
	if len(texts) == 0 {
		return []backends.ItemResult{}, 0, nil
	}
	start := time.Now()

	scores, err := c.infer(ctx, texts)
	if err != nil {
		return nil, 0, err
	}

	results := make([]backends.ItemResult, len(scores))
	for i, item := range scores {
		label, conf := c.postprocess(item, taskType)
		results[i] = backends.ItemResult{Label: label, Confidence: conf}
	}
	return results, time.Since(start).Milliseconds(), nil
}

// infer POSTs the inputs to the inference server and returns one score
// distribution per input. Every call outcome feeds the circuit breaker.
func (c *Classifier) infer(ctx context.Context, inputs []string) ([][]scorePair, error) {
	if !c.breaker.Allow() {
		return nil, backends.NewBackendError(c.name, "inference endpoint unavailable", circuitbreaker.ErrCircuitOpen)
	}

	body, err := json.Marshal(inferenceRequest{Inputs: inputs})
	if err != nil {
		return nil, backends.NewBackendError(c.name, "failed to marshal request", err)
	}

	url := c.baseURL + "/models/" + c.modelID
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, backends.NewBackendError(c.name, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.client.Do(req)
	if err != nil {
		c.breaker.RecordFailure()
		return nil, backends.NewBackendError(c.name, "inference request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.breaker.RecordFailure()
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, backends.NewBackendError(c.name,
			fmt.Sprintf("inference server returned status %d: %s", resp.StatusCode, string(respBody)), nil)
	}

	var scores [][]scorePair
	if err := json.NewDecoder(resp.Body).Decode(&scores); err != nil {
		c.breaker.RecordFailure()
		return nil, backends.NewBackendError(c.name, "failed to decode response", err)
	}
	if len(scores) != len(inputs) {
		c.breaker.RecordFailure()
		return nil, backends.NewBackendError(c.name,
			fmt.Sprintf("expected %d results, got %d", len(inputs), len(scores)), nil)
	}

	c.breaker.RecordSuccess()
	log.Debugf("%s Scored %d input(s) via %s", logcolors.BackendPrefix(c.name), len(inputs), c.modelID)
	return scores, nil
}

// postprocess turns one score distribution into a label and confidence. In
// emotion mode the top-scoring label wins as-is. In sentiment mode the
// distribution is folded into positive and negative bucket sums; when both
// sums are weak or nearly tied the result is neutral, with confidence
// reflecting how close the tie was.
func (c *Classifier) postprocess(scores []scorePair, taskType backends.TaskType) (string, float64) {
	if taskType == backends.TaskEmotion {
		top := scorePair{Label: backends.LabelNeutral}
		for _, s := range scores {
			if s.Score > top.Score {
				top = s
			}
		}
		return strings.ToLower(top.Label), top.Score
	}

	var pos, neg float64
	for _, s := range scores {
		switch emotionToSentiment[strings.ToLower(s.Label)] {
		case backends.LabelPositive:
			pos += s.Score
		case backends.LabelNegative:
			neg += s.Score
		}
	}

	diff := pos - neg
	if diff < 0 {
		diff = -diff
	}
	if max(pos, neg) < c.threshold || diff <= c.epsilon {
		return backends.LabelNeutral, max(0.0, c.threshold-diff)
	}
	if pos > neg {
		return backends.LabelPositive, min(1.0, pos)
	}
	return backends.LabelNegative, min(1.0, neg)
}

// BreakerState exposes the circuit state for status reporting.
func (c *Classifier) BreakerState() circuitbreaker.State {
	return c.breaker.State()
}
