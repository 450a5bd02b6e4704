// Package api serves the admin dashboard's JSON and download endpoints.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/TechnoServe/KMFI-Web-sub001/internal/config"
	"github.com/TechnoServe/KMFI-Web-sub001/internal/monitoring"
	"github.com/TechnoServe/KMFI-Web-sub001/internal/store"
)

// Server wires the store and scoring configuration into the admin API.
type Server struct {
	store     store.Store
	cfg       *config.Config
	collector *monitoring.Collector
}

// NewServer creates an API server over the given store.
func NewServer(st store.Store, cfg *config.Config) *Server {
	return &Server{
		store:     st,
		cfg:       cfg,
		collector: monitoring.NewCollector(st),
	}
}

// Router builds the chi router with CORS, rate limiting, and request
// logging.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(rateLimiter(s.cfg.Server.RateLimitRPS, s.cfg.Server.RateLimitBurst))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)
		r.Get("/cycles", s.handleCycles)
		r.Get("/rankings", s.handleRankings)
		r.Get("/rankings.csv", s.handleRankingsCSV)
		r.Get("/rankings.xlsx", s.handleRankingsXLSX)
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/variance", s.handleVariance)
		r.Get("/variance.csv", s.handleVarianceCSV)
		r.Get("/improvement", s.handleImprovement)
		r.Get("/improvement.csv", s.handleImprovementCSV)
		r.Get("/product-tests", s.handleProductTests)
	})

	return r
}

// requestLogger logs one structured line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// rateLimiter applies one global token bucket across all endpoints.
func rateLimiter(rps float64, burst int) func(http.Handler) http.Handler {
	if rps <= 0 {
		rps = 25
	}
	if burst <= 0 {
		burst = 50
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
