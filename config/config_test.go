package config

import (
	"os"
	"testing"
)

func TestConfigDefaultValues(t *testing.T) {
	// Clear any existing env vars that might interfere
	envVars := []string{
		"QT_MODEL_DEFAULT",
		"QT_AUTH_MODE",
		"QT_RATE_LIMIT_ENABLED",
		"QT_RATE_LIMIT_RPS",
		"QT_RESPONSE_TIMEOUT_MS",
		"QT_BATCH_SIZE_LIMIT",
		"QT_TEXT_LENGTH_LIMIT",
		"QT_CACHE_BACKEND",
		"QT_CACHE_TTL_SECONDS",
		"QT_GRACEFUL_DEGRADATION",
		"QT_MODEL_WARM_ON_STARTUP",
	}

	// Store original values
	originalValues := make(map[string]string)
	for _, key := range envVars {
		originalValues[key] = os.Getenv(key)
		os.Unsetenv(key)
	}
	defer func() {
		// Restore original values
		for key, value := range originalValues {
			if value != "" {
				os.Setenv(key, value)
			}
		}
	}()

	cfg, err := load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{
			name:     "Default model",
			got:      cfg.Models.Default,
			expected: "vader",
		},
		{
			name:     "AuthMode default",
			got:      cfg.Auth.Mode,
			expected: "none",
		},
		{
			name:     "RateLimitEnabled default",
			got:      cfg.Limits.RateLimitEnabled,
			expected: false,
		},
		{
			name:     "RateLimitRPS default",
			got:      cfg.Limits.RateLimitRPS,
			expected: 10,
		},
		{
			name:     "ResponseTimeoutMs default",
			got:      cfg.Limits.ResponseTimeoutMs,
			expected: 500,
		},
		{
			name:     "BatchSizeLimit default",
			got:      cfg.Limits.BatchSizeLimit,
			expected: 32,
		},
		{
			name:     "TextLengthLimit default",
			got:      cfg.Limits.TextLengthLimit,
			expected: 2500,
		},
		{
			name:     "CacheBackend default",
			got:      cfg.Cache.Backend,
			expected: "memory",
		},
		{
			name:     "CacheTTLSeconds default",
			got:      cfg.Cache.TTLSeconds,
			expected: 3600,
		},
		{
			name:     "GracefulDegradation default",
			got:      cfg.Models.GracefulDegradation,
			expected: true,
		},
		{
			name:     "WarmOnStartup default",
			got:      cfg.Models.WarmOnStartup,
			expected: true,
		},
		{
			name:     "PerformanceLogging default",
			got:      cfg.FeatureFlags.PerformanceLogging,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, tt.got)
			}
		})
	}
}

func TestConfigEnvironmentOverrides(t *testing.T) {
	os.Setenv("QT_MODEL_DEFAULT", "distilbert")
	os.Setenv("QT_RATE_LIMIT_ENABLED", "true")
	os.Setenv("QT_RATE_LIMIT_RPS", "3")
	os.Setenv("QT_BATCH_SIZE_LIMIT", "16")
	os.Setenv("QT_TEXT_LENGTH_LIMIT", "500")
	os.Setenv("QT_CACHE_BACKEND", "none")
	os.Setenv("QT_CACHE_TTL_SECONDS", "120")
	os.Setenv("QT_GRACEFUL_DEGRADATION", "false")

	defer func() {
		os.Unsetenv("QT_MODEL_DEFAULT")
		os.Unsetenv("QT_RATE_LIMIT_ENABLED")
		os.Unsetenv("QT_RATE_LIMIT_RPS")
		os.Unsetenv("QT_BATCH_SIZE_LIMIT")
		os.Unsetenv("QT_TEXT_LENGTH_LIMIT")
		os.Unsetenv("QT_CACHE_BACKEND")
		os.Unsetenv("QT_CACHE_TTL_SECONDS")
		os.Unsetenv("QT_GRACEFUL_DEGRADATION")
	}()

	cfg, err := load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{
			name:     "Default model override",
			got:      cfg.Models.Default,
			expected: "distilbert",
		},
		{
			name:     "RateLimitEnabled override",
			got:      cfg.Limits.RateLimitEnabled,
			expected: true,
		},
		{
			name:     "RateLimitRPS override",
			got:      cfg.Limits.RateLimitRPS,
			expected: 3,
		},
		{
			name:     "BatchSizeLimit override",
			got:      cfg.Limits.BatchSizeLimit,
			expected: 16,
		},
		{
			name:     "TextLengthLimit override",
			got:      cfg.Limits.TextLengthLimit,
			expected: 500,
		},
		{
			name:     "CacheBackend override",
			got:      cfg.Cache.Backend,
			expected: "none",
		},
		{
			name:     "CacheTTLSeconds override",
			got:      cfg.Cache.TTLSeconds,
			expected: 120,
		},
		{
			name:     "GracefulDegradation override",
			got:      cfg.Models.GracefulDegradation,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, tt.got)
			}
		})
	}
}

func TestAPIKeySet(t *testing.T) {
	os.Setenv("QT_API_KEYS", "key-a, key-b,,key-c ")
	defer os.Unsetenv("QT_API_KEYS")

	cfg, err := load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	set := cfg.APIKeySet()
	if len(set) != 3 {
		t.Errorf("Expected 3 API keys after trimming empties, got %d", len(set))
	}
	for _, k := range []string{"key-a", "key-b", "key-c"} {
		if !set[k] {
			t.Errorf("Expected key %q in set", k)
		}
	}
}

func TestAPIKeySetEmpty(t *testing.T) {
	os.Setenv("QT_API_KEYS", "")
	defer os.Unsetenv("QT_API_KEYS")

	cfg, err := load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if len(cfg.APIKeySet()) != 0 {
		t.Errorf("Expected empty API key set, got %v", cfg.APIKeySet())
	}
}

func TestGet(t *testing.T) {
	cfg := Get()

	// Should return a valid config struct
	if cfg.Limits.RateLimitRPS == 0 && cfg.Limits.BatchSizeLimit == 0 {
		t.Error("Expected Get() to return initialized config, got zero values")
	}
}

func TestMustLoad(t *testing.T) {
	// mustLoad should not panic with valid config
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("mustLoad() panicked: %v", r)
		}
	}()

	cfg := mustLoad()

	if cfg.Limits.RateLimitRPS <= 0 {
		t.Error("Expected mustLoad to return valid config with positive RateLimitRPS")
	}
}
