package backends

import "context"

// TaskType selects between plain sentiment labeling and raw emotion labeling.
type TaskType string

const (
	TaskSentiment TaskType = "sentiment"
	TaskEmotion   TaskType = "emotion"
)

// Valid reports whether the task type is one of the supported modes.
func (t TaskType) Valid() bool {
	return t == TaskSentiment || t == TaskEmotion
}

// Sentiment labels produced in sentiment task mode.
const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
)

// Result is a single classification outcome.
type Result struct {
	Label      string
	Confidence float64
	ElapsedMs  int64
}

// ItemResult is one entry of a native batch evaluation. Timing is reported
// once for the whole batch, not per item.
type ItemResult struct {
	Label      string
	Confidence float64
}

// Backend is the capability interface every classification backend
// implements.
type Backend interface {
	// Name returns the backend's logical identifier (e.g. "vader",
	// "distilbert", "distilbert-sst-2")
	Name() string

	// Analyze classifies a single text. The context carries the caller's
	// deadline; a backend that cannot observe it may keep running after the
	// caller gives up.
	Analyze(ctx context.Context, text string, taskType TaskType) (Result, error)
}

// BatchAnalyzer is implemented by backends with native multi-item
// evaluation. Backends without it are fanned out one item at a time.
type BatchAnalyzer interface {
	// AnalyzeBatch classifies an ordered list of texts in one call,
	// returning one result per input in input order plus the total elapsed
	// time in milliseconds.
	AnalyzeBatch(ctx context.Context, texts []string, taskType TaskType) ([]ItemResult, int64, error)
}
