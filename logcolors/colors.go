package logcolors

// ANSI color codes for log prefixes
const (
	Reset  = "\033[0m"
	Green  = "\033[32m"
	Blue   = "\033[34m"
	Purple = "\033[35m"
	Cyan   = "\033[36m"
	Red    = "\033[31m"
)

// Cache-related log prefixes
const (
	LogCache      = Blue + "[Cache]" + Reset
	LogBatchCache = Cyan + "[Cache:Batch]" + Reset
)

// Admission control log prefixes
const (
	LogRateLimit = Purple + "[RateLimit]" + Reset
	LogAPIKey    = Purple + "[APIKey]" + Reset
)

// Orchestration log prefixes
const (
	LogManager  = Green + "[Manager]" + Reset
	LogBatch    = Green + "[Manager:Batch]" + Reset
	LogFallback = Cyan + "[Fallback]" + Reset
	LogRegistry = Blue + "[Registry]" + Reset
	LogWarmUp   = Cyan + "[WarmUp]" + Reset
)

// Server/Init log prefixes
const (
	LogServer  = Green + "[Server]" + Reset
	LogConfig  = Cyan + "[Config]" + Reset
	LogStats   = Blue + "[Stats]" + Reset
	LogRequest = Purple + "[Request]" + Reset
)

// BackendPrefix returns a colored backend prefix with the given name
func BackendPrefix(name string) string {
	return Blue + "[Backend:" + name + "]" + Reset
}

// CircuitBreakerPrefix returns a colored circuit breaker prefix with the given name
func CircuitBreakerPrefix(name string) string {
	return Purple + "[CircuitBreaker:" + name + "]" + Reset
}
