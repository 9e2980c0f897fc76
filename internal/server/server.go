package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/phishguard/phishguard/internal/config"
	"github.com/phishguard/phishguard/internal/core"
	"github.com/phishguard/phishguard/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// defaultStatsWindowDays is the stats lookback when the request doesn't give
// one.
const defaultStatsWindowDays = 7

// Server exposes the assessment API and the dashboard queries over HTTP.
type Server struct {
	service    *core.ThreatService
	store      core.AssessmentStore
	logger     *zap.Logger
	httpServer *http.Server
}

// New creates a new HTTP API server. store may be nil; the dashboard
// endpoints then report the store as unavailable.
func New(service *core.ThreatService, assessmentStore core.AssessmentStore, cfg config.ServerConfig, logger *zap.Logger) *Server {
	s := &Server{
		service: service,
		store:   assessmentStore,
		logger:  logger,
	}

	router := mux.NewRouter()
	router.HandleFunc("/api/v1/emails/analyze", s.handleAnalyze).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/emails/recent", s.handleRecent).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/emails/stats/summary", s.handleStats).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	readTimeout, err := time.ParseDuration(cfg.ReadTimeout)
	if err != nil {
		readTimeout = 15 * time.Second
	}
	writeTimeout, err := time.ParseDuration(cfg.WriteTimeout)
	if err != nil {
		writeTimeout = 15 * time.Second
	}

	s.httpServer = &http.Server{
		Addr:         cfg.ListenAddress,
		Handler:      router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	return s
}

// Start begins serving HTTP requests. It blocks until the server shuts down.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", zap.String("address", s.httpServer.Addr))
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// handleAnalyze scores a normalized email posted as JSON.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var email core.NormalizedEmail
	if err := json.NewDecoder(r.Body).Decode(&email); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	started := time.Now()
	assessment, err := s.service.Assess(r.Context(), &email)
	if err != nil {
		s.logger.Error("Assessment failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "assessment failed")
		return
	}

	metrics.ObserveAssessment(string(assessment.Level), string(assessment.Action),
		time.Since(started).Seconds(), len(assessment.Indicators))

	s.writeJSON(w, http.StatusOK, assessment)
}

// handleRecent returns the most recently stored assessments.
func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, http.StatusServiceUnavailable, "assessment store not configured")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 500 {
			s.writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = parsed
	}

	assessments, err := s.store.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to query recent assessments", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to query assessments")
		return
	}
	if assessments == nil {
		assessments = []*core.StoredAssessment{}
	}

	s.writeJSON(w, http.StatusOK, assessments)
}

// handleStats returns aggregate statistics over a lookback window.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, http.StatusServiceUnavailable, "assessment store not configured")
		return
	}

	days := defaultStatsWindowDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 365 {
			s.writeError(w, http.StatusBadRequest, "days must be between 1 and 365")
			return
		}
		days = parsed
	}

	since := time.Now().AddDate(0, 0, -days)
	stats, err := s.store.Stats(r.Context(), since)
	if err != nil {
		s.logger.Error("Failed to query assessment stats", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to query stats")
		return
	}

	s.writeJSON(w, http.StatusOK, stats)
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
