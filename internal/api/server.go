// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api exposes the pipeline over HTTP: starting runs, inspecting
// their outcomes, and streaming progress as server-sent events.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/ZJashi/math-conjecturer/internal/events"
	"github.com/ZJashi/math-conjecturer/internal/ingest"
	"github.com/ZJashi/math-conjecturer/internal/runstore"
	"github.com/ZJashi/math-conjecturer/pkg/types"
)

const defaultHeartbeat = 15 * time.Second

// Server serves the run API. Runs execute asynchronously; clients follow
// progress over the events endpoint or by polling the run resource.
type Server struct {
	Cfg      types.ServeConfig
	Runs     *runstore.Store
	Bus      *events.Bus
	Pipeline Pipeline
	Logger   *slog.Logger

	// HeartbeatFreq is the SSE keepalive interval. Zero means the default.
	HeartbeatFreq time.Duration
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Server) heartbeat() time.Duration {
	if s.HeartbeatFreq > 0 {
		return s.HeartbeatFreq
	}
	return defaultHeartbeat
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: s.Cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}).Handler)

	r.Get("/health", s.handleHealth)
	r.Route("/api/runs", func(r chi.Router) {
		r.Post("/", s.handleCreateRun)
		r.Get("/", s.handleListRuns)
		r.Get("/{id}", s.handleGetRun)
		r.Get("/{id}/events", s.handleRunEvents)
	})
	return r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger().Info("api server listening", "addr", s.Cfg.Addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createRunRequest struct {
	PaperID    string `json:"paper_id"`
	Kind       string `json:"kind"`
	Directions int    `json:"directions,omitempty"`
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req createRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Kind != runstore.KindProcess && req.Kind != runstore.KindPropose {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("kind must be %q or %q", runstore.KindProcess, runstore.KindPropose))
		return
	}
	paperID, err := ingest.NormalizeArxivID(req.PaperID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	run, err := s.Runs.Create(r.Context(), paperID, req.Kind)
	if err != nil {
		s.logger().Error("creating run failed", "error", err)
		writeError(w, http.StatusInternalServerError, "creating run failed")
		return
	}
	s.startRun(run, req.Directions)
	writeJSON(w, http.StatusAccepted, run)
}

// startRun executes the run in the background. The run outlives the
// creating request, so it gets a fresh context.
func (s *Server) startRun(run runstore.Run, directions int) {
	go func() {
		ctx := context.Background()
		s.publish(events.Event{RunID: run.ID, Kind: events.KindRunStarted, Message: run.Kind + " " + run.PaperID})

		records, err := s.Pipeline.Execute(ctx, run, directions)
		for _, rec := range records {
			if perr := s.Runs.RecordProposal(ctx, run.ID, rec); perr != nil {
				s.logger().Error("recording proposal failed", "run_id", run.ID, "error", perr)
			}
		}
		if ferr := s.Runs.Finish(ctx, run.ID, err); ferr != nil {
			s.logger().Error("finishing run failed", "run_id", run.ID, "error", ferr)
		}

		if err != nil {
			s.logger().Error("run failed", "run_id", run.ID, "kind", run.Kind, "error", err)
			s.publish(events.Event{RunID: run.ID, Kind: events.KindRunFailed, Message: err.Error()})
			return
		}
		s.publish(events.Event{RunID: run.ID, Kind: events.KindRunFinished})
	}()
}

func (s *Server) publish(ev events.Event) {
	if s.Bus != nil {
		s.Bus.Publish(ev)
	}
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.Runs.List(r.Context())
	if err != nil {
		s.logger().Error("listing runs failed", "error", err)
		writeError(w, http.StatusInternalServerError, "listing runs failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

type runDetail struct {
	Run       runstore.Run              `json:"run"`
	Proposals []runstore.ProposalRecord `json:"proposals"`
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := s.Runs.Get(r.Context(), id)
	if errors.Is(err, runstore.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.logger().Error("loading run failed", "run_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "loading run failed")
		return
	}

	proposals, err := s.Runs.Proposals(r.Context(), id)
	if err != nil {
		s.logger().Error("loading proposals failed", "run_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "loading proposals failed")
		return
	}
	writeJSON(w, http.StatusOK, runDetail{Run: run, Proposals: proposals})
}

// handleRunEvents streams run progress as server-sent events. The stream
// closes when the run finishes or the client disconnects.
func (s *Server) handleRunEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := s.Runs.Get(r.Context(), id)
	if errors.Is(err, runstore.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "loading run failed")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ch := s.Bus.Subscribe(id)
	defer s.Bus.Unsubscribe(ch)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	// A finished run produces no further events; close immediately so
	// clients do not hang on a dead stream.
	if run.Status != runstore.StatusRunning {
		return
	}

	heartbeat := time.NewTicker(s.heartbeat())
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		case ev, open := <-ch:
			if !open {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
			if ev.Kind == events.KindRunFinished || ev.Kind == events.KindRunFailed {
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Warn("encoding response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
