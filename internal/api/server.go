// Package api exposes the HTTP trigger surface: an external scheduler (or a
// human with the shared secret) POSTs to /api/sync and gets the run summary
// back synchronously.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/teslawire/teslawire/internal/config"
	syncer "github.com/teslawire/teslawire/internal/sync"
	"github.com/teslawire/teslawire/internal/types"
)

// maxRunHistory bounds the in-memory run log.
const maxRunHistory = 50

// Runner is the interface the server uses to trigger a pipeline run.
type Runner interface {
	Run(ctx context.Context) (*syncer.Summary, error)
}

// Server serves the trigger endpoint, health, and run history.
type Server struct {
	mux    *http.ServeMux
	cfg    *config.ServerConfig
	runner Runner
	logger *slog.Logger

	runsMu  sync.Mutex
	running bool
	runs    []*syncer.Summary
}

// NewServer creates the trigger server.
func NewServer(cfg *config.ServerConfig, runner Runner, logger *slog.Logger) *Server {
	s := &Server{
		mux:    http.NewServeMux(),
		cfg:    cfg,
		runner: runner,
		logger: logger.With("component", "api_server"),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("POST /api/sync", s.handleSync)
	s.mux.HandleFunc("GET /api/runs", s.handleRuns)
}

// ListenAndServe blocks serving HTTP until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("server listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Handler returns the route mux, for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": config.Version,
	})
}

// handleSync triggers one pipeline run. The response always carries the
// structured summary, even on a failed run: a bare 500 would leave the
// operator with nothing to read.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"success": false,
			"error":   types.ErrUnauthorized.Error(),
		})
		return
	}

	s.runsMu.Lock()
	if s.running {
		s.runsMu.Unlock()
		writeJSON(w, http.StatusConflict, map[string]any{
			"success": false,
			"error":   "a sync run is already in progress",
		})
		return
	}
	s.running = true
	s.runsMu.Unlock()

	defer func() {
		s.runsMu.Lock()
		s.running = false
		s.runsMu.Unlock()
	}()

	summary, err := s.runner.Run(r.Context())
	if err != nil {
		s.logger.Error("run aborted", "error", err)
	}
	s.record(summary)

	writeJSON(w, http.StatusOK, summary)
}

// handleRuns returns the recent run summaries, newest first.
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"success": false,
			"error":   types.ErrUnauthorized.Error(),
		})
		return
	}

	s.runsMu.Lock()
	runs := make([]*syncer.Summary, len(s.runs))
	copy(runs, s.runs)
	s.runsMu.Unlock()

	writeJSON(w, http.StatusOK, runs)
}

// authorized checks the shared secret. An empty configured secret means the
// endpoint is open (local development).
func (s *Server) authorized(r *http.Request) bool {
	if s.cfg.SyncSecret == "" {
		return true
	}
	got := r.Header.Get("Authorization")
	want := "Bearer " + s.cfg.SyncSecret
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// record prepends a summary to the bounded run history.
func (s *Server) record(summary *syncer.Summary) {
	if summary == nil {
		return
	}
	s.runsMu.Lock()
	defer s.runsMu.Unlock()
	s.runs = append([]*syncer.Summary{summary}, s.runs...)
	if len(s.runs) > maxRunHistory {
		s.runs = s.runs[:maxRunHistory]
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
