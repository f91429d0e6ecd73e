package middleware

import (
	"net/http"
	"time"

	"github.com/jwgv/QuickTone/logcolors"
	"github.com/jwgv/QuickTone/stats"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// statusRecorder captures the status code written by downstream handlers.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// getStatusColor returns the ANSI color for a status code class.
func getStatusColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return logcolors.Green
	case statusCode >= 300 && statusCode < 400:
		return logcolors.Cyan
	case statusCode >= 400 && statusCode < 500:
		return logcolors.Purple
	default:
		return logcolors.Red
	}
}

// LoggingMiddleware tags every request with an ID, logs method/path/status,
// and feeds the request counters. Per-request timing appears in the log line
// only when performanceLogging is on; response-time stats are recorded
// regardless.
func LoggingMiddleware(performanceLogging bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", requestID)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			elapsed := time.Since(start)

			s := stats.Get()
			s.RecordRequest(r.URL.Path)
			s.RecordStatusCode(rec.status)
			s.RecordResponseTime(elapsed)

			if performanceLogging {
				log.Infof("%s %s %s %s%d%s %dms id=%s",
					logcolors.LogRequest, r.Method, r.URL.Path,
					getStatusColor(rec.status), rec.status, logcolors.Reset,
					elapsed.Milliseconds(), requestID)
			} else {
				log.Infof("%s %s %s %s%d%s id=%s",
					logcolors.LogRequest, r.Method, r.URL.Path,
					getStatusColor(rec.status), rec.status, logcolors.Reset,
					requestID)
			}
		})
	}
}
