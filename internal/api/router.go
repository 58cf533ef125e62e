package api

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/topgainers/internal/api/handlers"
	"github.com/wonny/topgainers/pkg/logger"
	"github.com/wonny/topgainers/pkg/redis"
)

// NewRouter creates and configures the HTTP router. limiter may be nil to
// disable per-client rate limiting; ah may be nil when the Postgres archive
// is not enabled.
func NewRouter(gh *handlers.GainersHandler, sh *handlers.StatusHandler, ah *handlers.ArchiveHandler,
	stream http.Handler, limiter *redis.RateLimiter, log *logger.Logger) http.Handler {

	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// Live status stream
	r.Handle("/ws/status", stream).Methods("GET")

	// API v1
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/gainers/today", gh.Today).Methods("GET")
	api.HandleFunc("/gainers/week", gh.Week).Methods("GET")
	api.HandleFunc("/status", sh.Status).Methods("GET")
	if ah != nil {
		api.HandleFunc("/gainers/archive", ah.Range).Methods("GET")
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))
	if limiter != nil {
		api.Use(rateLimitMiddleware(limiter, log))
	}

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "topgainers-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitMiddleware bounds requests per client IP; Redis outages fail open
func rateLimitMiddleware(limiter *redis.RateLimiter, log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cfg := redis.APIRateLimit
			cfg.Key = fmt.Sprintf("api:%s", clientIP(r))

			allowed, _, err := limiter.Allow(r.Context(), cfg)
			if err != nil {
				log.WithError(err).Warn("Rate limit check failed, allowing request")
			} else if !allowed {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Too many requests",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
