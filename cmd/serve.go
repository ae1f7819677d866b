package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/harborlight/scout-cli/internal/config"
	"github.com/harborlight/scout-cli/internal/model"
	"github.com/harborlight/scout-cli/internal/monitoring"
	"github.com/harborlight/scout-cli/internal/optimizer"
	"github.com/harborlight/scout-cli/internal/registry"
	"github.com/harborlight/scout-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the optimizer API server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initApp(ctx, "serve")
		if err != nil {
			return err
		}
		defer env.Close()

		collector := monitoring.NewCollector(env.Engine)

		// Background alert checks when a webhook is configured.
		if cfg.Monitoring.WebhookURL != "" {
			checker := monitoring.NewChecker(collector, monitoring.NewAlerter(cfg.Monitoring), cfg.Monitoring)
			go checker.Run(ctx)
		}

		s := &server{
			engine:    env.Engine,
			registry:  env.Registry,
			store:     env.Store,
			collector: collector,
			monCfg:    cfg.Monitoring,
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           s.routes(cfg.Server),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

type server struct {
	engine    *optimizer.Engine
	registry  *registry.Registry
	store     store.Store
	collector *monitoring.Collector
	monCfg    config.MonitoringConfig
}

func (s *server) routes(cfg config.ServerConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Use(rateLimit(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst))

	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)

	r.Route("/api", func(r chi.Router) {
		r.Post("/extractions", s.handleRecord)
		r.Post("/extractions/{id}/feedback", s.handleFeedback)
		r.Get("/recommendations", s.handleRecommendations)
		r.Get("/strategy", s.handleStrategy)
		r.Get("/similar-sites", s.handleSimilarSites)
		r.Get("/sites", s.handleSites)
		r.Get("/stats", s.handleStats)
	})

	return r
}

// rateLimit applies one shared token bucket to every request.
func rateLimit(limit rate.Limit, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(limit, burst)
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

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := monitoring.CheckStore(r.Context(), s.store); err != nil {
		zap.L().Warn("store probe failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	snap, err := s.collector.Collect(r.Context(), s.monCfg.LookbackMins)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "collect metrics")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *server) handleRecord(w http.ResponseWriter, r *http.Request) {
	var obs optimizer.Observation
	if err := json.NewDecoder(r.Body).Decode(&obs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if obs.URL == "" || obs.Field == "" || obs.Strategy == "" {
		writeError(w, http.StatusBadRequest, "url, field and strategy are required")
		return
	}

	field, ok := s.registry.Resolve(obs.Field)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown field %q", obs.Field))
		return
	}
	obs.Field = field

	id := s.engine.RecordExtraction(r.Context(), obs)
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IsCorrect      *bool `json:"is_correct"`
		CorrectedValue any   `json:"corrected_value,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.IsCorrect == nil {
		writeError(w, http.StatusBadRequest, "is_correct is required")
		return
	}

	// Unknown or already-verified ids are accepted and ignored; review
	// tools replay feedback without tracking eviction.
	s.engine.ProvideFeedback(r.Context(), chi.URLParam(r, "id"), *req.IsCorrect, req.CorrectedValue)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (s *server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	field, domain, ok := s.fieldDomainParams(w, r)
	if !ok {
		return
	}
	def, _ := s.registry.Get(field)
	recs := fieldGate(s.engine.GetRecommendations(field, domain), def.ConfidenceThreshold)
	writeJSON(w, http.StatusOK, recs)
}

func (s *server) handleStrategy(w http.ResponseWriter, r *http.Request) {
	field, domain, ok := s.fieldDomainParams(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.engine.GetOptimizedStrategy(field, domain))
}

func (s *server) handleSimilarSites(w http.ResponseWriter, r *http.Request) {
	domain := r.URL.Query().Get("domain")
	if domain == "" {
		writeError(w, http.StatusBadRequest, "domain is required")
		return
	}
	similar := s.engine.FindSimilarSites(domain)
	if similar == nil {
		similar = []model.SimilarSite{}
	}
	writeJSON(w, http.StatusOK, similar)
}

func (s *server) handleSites(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.SiteProfiles())
}

func (s *server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Stats())
}

func (s *server) fieldDomainParams(w http.ResponseWriter, r *http.Request) (field, domain string, ok bool) {
	q := r.URL.Query()
	field, domain = q.Get("field"), q.Get("domain")
	if field == "" || domain == "" {
		writeError(w, http.StatusBadRequest, "field and domain are required")
		return "", "", false
	}
	resolved, known := s.registry.Resolve(field)
	if !known {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown field %q", field))
		return "", "", false
	}
	return resolved, domain, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
