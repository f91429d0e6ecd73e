package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwgv/QuickTone/config"
	"github.com/jwgv/QuickTone/logcolors"
	"github.com/jwgv/QuickTone/middleware"
	"github.com/jwgv/QuickTone/services/backends"
	"github.com/jwgv/QuickTone/services/sentiment"
	"github.com/jwgv/QuickTone/stats"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
)

const version = "1.0.0"

var conf = config.Get()

var (
	registry *backends.Registry
	manager  *sentiment.Manager
)

func init() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetOutput(os.Stdout)
	if lvl, err := log.ParseLevel(conf.Server.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
}

func main() {
	registry = backends.NewRegistry(sentiment.NewBackendFactory(conf))
	manager = sentiment.NewManager(conf, registry)

	store := openStatsStore()

	if conf.Models.WarmOnStartup {
		// Warm the neural backends in the background so a slow model load
		// never delays boot.
		go func() {
			if _, err := registry.WarmUp(sentiment.NeuralBackends()); err != nil {
				log.Warnf("%s Startup warm-up failed: %v", logcolors.LogWarmUp, err)
			}
		}()
	}

	router := mux.NewRouter()
	setupRoutes(router)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "X-API-Key", "Authorization", "X-Request-ID"},
	})
	limiter := middleware.NewKeyedRateLimiter(conf.Limits.RateLimitRPS, conf.Limits.RateLimitEnabled)

	// Middleware chain: rate limiting → CORS → request logging → router.
	handler := middleware.LoggingMiddleware(conf.FeatureFlags.PerformanceLogging)(router)
	handler = c.Handler(handler)
	handler = middleware.RateLimitMiddleware(limiter, conf.Auth.Mode, conf.Auth.AdminAPIKey, conf.APIKeySet())(handler)

	addr := conf.Server.Host + ":" + conf.Server.Port
	srv := &http.Server{Addr: addr, Handler: handler}

	go func() {
		log.Infof("%s Listening on %s (default model: %s)", logcolors.LogServer, addr, conf.Models.Default)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("%s Server failed: %v", logcolors.LogServer, err)
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("%s Shutdown error: %v", logcolors.LogServer, err)
	}
	if store != nil {
		if err := store.Close(stats.Get()); err != nil {
			log.Errorf("%s Failed to close stats store: %v", logcolors.LogStats, err)
		}
	}
	log.Infof("%s Shutdown complete", logcolors.LogServer)
}

// openStatsStore restores persisted counters and starts the auto-save loop.
// Persistence failures degrade to in-memory stats rather than failing boot.
func openStatsStore() *stats.Store {
	if !conf.Cache.StatsPersisted {
		return nil
	}
	store, err := stats.NewStore(conf.Cache.StatsDBPath)
	if err != nil {
		log.Warnf("%s Stats persistence disabled: %v", logcolors.LogStats, err)
		return nil
	}

	persisted, found, err := store.Load()
	if err != nil {
		log.Warnf("%s Failed to load persisted stats: %v", logcolors.LogStats, err)
	} else if found {
		stats.Get().Restore(persisted)
		log.Infof("%s Restored persisted stats (last saved %s)", logcolors.LogStats, persisted.LastSaved.Format(time.RFC3339))
	}

	store.StartAutoSave(stats.Get(), time.Minute)
	return store
}
