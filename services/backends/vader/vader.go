package vader

import (
	"context"
	"time"

	"github.com/jwgv/QuickTone/services/backends"

	"github.com/jonreiter/govader"
)

// Analyzer is the fast lexicon/rule-based sentiment backend. It is the
// designated graceful-degradation fallback for the neural backends and only
// produces plain sentiment labels.
type Analyzer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// New creates a vader analyzer. Construction is cheap (lexicon tables only).
func New() *Analyzer {
	return &Analyzer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Name returns the backend identifier
func (a *Analyzer) Name() string {
	return "vader"
}

// Analyze scores text with the vader lexicon. The compound score is bucketed
// at ±0.05: above is positive, below is negative, in between is neutral with
// confidence 1-|compound|.
func (a *Analyzer) Analyze(ctx context.Context, text string, taskType backends.TaskType) (backends.Result, error) {
	start := time.Now()

	scores := a.analyzer.PolarityScores(text)
	compound := scores.Compound

	var label string
	var conf float64
	switch {
	case compound >= 0.05:
		label = backends.LabelPositive
		conf = compound
	case compound <= -0.05:
		label = backends.LabelNegative
		conf = -compound
	default:
		label = backends.LabelNeutral
		conf = 1.0 - abs(compound)
	}

	return backends.Result{
		Label:      label,
		Confidence: clamp01(conf),
		ElapsedMs:  time.Since(start).Milliseconds(),
	}, nil
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
