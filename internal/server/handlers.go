package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ledgerline/soi-cli/internal/model"
	"github.com/ledgerline/soi-cli/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

// handleValidate validates a posted extraction document synchronously and
// returns the full report. When a store is configured, the run is
// persisted as well.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	maxBody := s.cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 32 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	var doc model.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid document payload: "+err.Error())
		return
	}
	if doc.SourceFile == "" {
		doc.SourceFile = "api-request"
	}

	report := s.engine.Validate(&doc)

	if s.store != nil {
		run, err := s.store.CreateRun(r.Context(), doc.SourceFile, doc.JobID)
		if err != nil {
			s.log.Error("create run", zap.Error(err))
		} else if err := s.store.CompleteRun(r.Context(), run.ID, report); err != nil {
			s.log.Error("complete run", zap.Error(err), zap.String("run_id", run.ID))
		} else {
			w.Header().Set("X-Run-ID", run.ID)
		}
	}

	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, http.StatusServiceUnavailable, "run store not configured")
		return
	}

	filter := store.RunFilter{
		Status:     model.RunStatus(r.URL.Query().Get("status")),
		SourceFile: r.URL.Query().Get("source_file"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = n
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid offset")
			return
		}
		filter.Offset = n
	}

	runs, err := s.store.ListRuns(r.Context(), filter)
	if err != nil {
		s.log.Error("list runs", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "list runs failed")
		return
	}
	if runs == nil {
		runs = []model.Run{}
	}

	// Trim full reports from the listing; they are fetched per run.
	for i := range runs {
		runs[i].Report = nil
	}
	s.writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, http.StatusServiceUnavailable, "run store not configured")
		return
	}

	runID := chi.URLParam(r, "runID")
	run, err := s.store.GetRun(r.Context(), runID)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "run not found: "+runID)
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

// handleHealth reports liveness, plus a 24h metrics snapshot when a store
// is configured.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok"}
	if s.collector != nil {
		snap, err := s.collector.Collect(r.Context(), 24)
		if err != nil {
			s.log.Error("collect metrics", zap.Error(err))
			resp["status"] = "degraded"
		} else {
			resp["metrics"] = snap
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}
