package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

var conf = mustLoad()

type Config struct {
	Server struct {
		Host     string `envconfig:"QT_HOST" default:"0.0.0.0"`
		Port     string `envconfig:"QT_PORT" default:"8080"`
		LogLevel string `envconfig:"QT_LOG_LEVEL" default:"info"`
	}

	Auth struct {
		Mode        string `envconfig:"QT_AUTH_MODE" default:"none"` // none|api_key
		APIKeys     string `envconfig:"QT_API_KEYS" default:""`      // comma-separated
		AdminAPIKey string `envconfig:"QT_ADMIN_API_KEY" default:""`
	}

	Limits struct {
		RateLimitEnabled  bool `envconfig:"QT_RATE_LIMIT_ENABLED" default:"false"`
		RateLimitRPS      int  `envconfig:"QT_RATE_LIMIT_RPS" default:"10"`
		ResponseTimeoutMs int  `envconfig:"QT_RESPONSE_TIMEOUT_MS" default:"500"`
		BatchSizeLimit    int  `envconfig:"QT_BATCH_SIZE_LIMIT" default:"32"`
		TextLengthLimit   int  `envconfig:"QT_TEXT_LENGTH_LIMIT" default:"2500"`
	}

	Cache struct {
		Backend        string `envconfig:"QT_CACHE_BACKEND" default:"memory"` // none|memory
		TTLSeconds     int    `envconfig:"QT_CACHE_TTL_SECONDS" default:"3600"`
		SingleMaxSize  int    `envconfig:"QT_CACHE_SINGLE_MAX_SIZE" default:"2048"`
		BatchMaxSize   int    `envconfig:"QT_CACHE_BATCH_MAX_SIZE" default:"256"`
		StatsDBPath    string `envconfig:"QT_STATS_DB_PATH" default:"/tmp/quicktone-stats.db"`
		StatsPersisted bool   `envconfig:"QT_STATS_PERSISTED" default:"true"`
	}

	Models struct {
		Default             string  `envconfig:"QT_MODEL_DEFAULT" default:"vader"` // vader|distilbert|distilbert-sst-2
		WarmOnStartup       bool    `envconfig:"QT_MODEL_WARM_ON_STARTUP" default:"true"`
		DistilbertModel     string  `envconfig:"QT_DISTILBERT_MODEL" default:"joeddav/distilbert-base-uncased-go-emotions-student"`
		DistilbertSST2Model string  `envconfig:"QT_DISTILBERT_SST_2_MODEL" default:"distilbert-base-uncased-finetuned-sst-2-english"`
		InferenceBaseURL    string  `envconfig:"QT_INFERENCE_BASE_URL" default:"http://localhost:8081"`
		GracefulDegradation bool    `envconfig:"QT_GRACEFUL_DEGRADATION" default:"true"`
		EmoSentThreshold    float64 `envconfig:"QT_EMO_SENT_THRESHOLD" default:"0.35"`
		EmoSentEpsilon      float64 `envconfig:"QT_EMO_SENT_EPSILON" default:"0.05"`
		// Circuit breaker for the inference endpoint
		CircuitBreakerThreshold    int `envconfig:"QT_CIRCUIT_BREAKER_THRESHOLD" default:"5"`
		CircuitBreakerCooldownSecs int `envconfig:"QT_CIRCUIT_BREAKER_COOLDOWN_SECS" default:"300"`
	}

	FeatureFlags struct {
		PerformanceLogging bool `envconfig:"QT_PERFORMANCE_LOGGING" default:"true"`
	}
}

// APIKeySet returns the configured API keys as a set for O(1) membership checks.
func (c Config) APIKeySet() map[string]bool {
	set := make(map[string]bool)
	for _, k := range strings.Split(c.Auth.APIKeys, ",") {
		k = strings.TrimSpace(k)
		if k != "" {
			set[k] = true
		}
	}
	return set
}

// load loads the configuration from the environment.
func load() (Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Warnf("Error loading env config: %v", err)
	}

	cfg := Config{}
	err = envconfig.Process("", &cfg)
	return cfg, err
}

func mustLoad() Config {
	c, err := load()
	if err != nil {
		log.WithError(err).Warnf("Unable to load configuration")
	}

	return c
}

func Get() Config {
	return conf
}
