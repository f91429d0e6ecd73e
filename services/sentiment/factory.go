package sentiment

import (
	"fmt"
	"time"

	"github.com/jwgv/QuickTone/config"
	"github.com/jwgv/QuickTone/services/backends"
	"github.com/jwgv/QuickTone/services/backends/distilbert"
	"github.com/jwgv/QuickTone/services/backends/vader"
)

// Logical backend names. The set is closed: unknown names are a validation
// failure, rejected before any dispatch.
const (
	BackendVader          = "vader"
	BackendDistilbert     = "distilbert"
	BackendDistilbertSST2 = "distilbert-sst-2"
)

// KnownBackend reports whether id names a supported backend.
func KnownBackend(id string) bool {
	switch id {
	case BackendVader, BackendDistilbert, BackendDistilbertSST2:
		return true
	}
	return false
}

// KnownBackends lists the supported logical backend names.
func KnownBackends() []string {
	return []string{BackendVader, BackendDistilbert, BackendDistilbertSST2}
}

// NeuralBackends lists the backends worth warming ahead of traffic. vader is
// a lexicon lookup and needs no warm-up.
func NeuralBackends() []string {
	return []string{BackendDistilbert, BackendDistilbertSST2}
}

// NewBackendFactory maps logical backend names to concrete constructions for
// the registry.
func NewBackendFactory(cfg config.Config) backends.Factory {
	return func(id string) (backends.Backend, error) {
		switch id {
		case BackendVader:
			return vader.New(), nil
		case BackendDistilbert:
			return distilbert.New(neuralOptions(cfg, id, cfg.Models.DistilbertModel)), nil
		case BackendDistilbertSST2:
			return distilbert.New(neuralOptions(cfg, id, cfg.Models.DistilbertSST2Model)), nil
		default:
			return nil, fmt.Errorf("%w: %s", backends.ErrUnknownBackend, id)
		}
	}
}

func neuralOptions(cfg config.Config, name, modelID string) distilbert.Options {
	return distilbert.Options{
		Name:             name,
		ModelID:          modelID,
		BaseURL:          cfg.Models.InferenceBaseURL,
		Timeout:          time.Duration(cfg.Limits.ResponseTimeoutMs) * time.Millisecond,
		BreakerThreshold: cfg.Models.CircuitBreakerThreshold,
		BreakerCooldown:  time.Duration(cfg.Models.CircuitBreakerCooldownSecs) * time.Second,
		Threshold:        cfg.Models.EmoSentThreshold,
		Epsilon:          cfg.Models.EmoSentEpsilon,
	}
}
