package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lowaak/hiit-timer/internal/history"
	"github.com/lowaak/hiit-timer/internal/workout"
)

const maxListLimit = 500

type adjustRequest struct {
	Field string `json:"field"`
	Value *int   `json:"value"`
}

type renameRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

// sessionAction adapts a parameterless controller command into a handler
func (s *Server) sessionAction(action func() workout.Progress) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, action())
	}
}

func (s *Server) handleAdjust(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	field, ok := workout.GetFieldByKey(req.Field)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown field "+strconv.Quote(req.Field))
		return
	}
	if req.Value == nil {
		writeError(w, http.StatusBadRequest, "value is required")
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Adjust(field, *req.Value))
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	workouts, err := s.history.LoadLast(r.Context(), limit)
	if err != nil {
		s.internalError(w, err)
		return
	}
	if workouts == nil {
		workouts = []workout.Summary{}
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleExportWorkouts(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	workouts, err := s.history.LoadLast(r.Context(), limit)
	if err != nil {
		s.internalError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := history.ExportYAML(&buf, workouts); err != nil {
		s.internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Content-Disposition", `attachment; filename="workouts.yaml"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	summary, err := s.history.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.historyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleRenameWorkout(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.history.Rename(r.Context(), id, req.Name); err != nil {
		s.historyError(w, err)
		return
	}
	summary, err := s.history.Get(r.Context(), id)
	if err != nil {
		s.historyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	if err := s.history.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.historyError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLoadWorkout(w http.ResponseWriter, r *http.Request) {
	summary, err := s.history.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.historyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Load(summary.Config, summary.Name))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.history.Stats(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) historyError(w http.ResponseWriter, err error) {
	if errors.Is(err, history.ErrNotFound) {
		writeError(w, http.StatusNotFound, "workout not found")
		return
	}
	s.internalError(w, err)
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.logger.Printf("Server: %v", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

// parseLimit reads ?limit=N, writing a 400 and returning false when it is invalid
func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return history.DefaultListLimit, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > maxListLimit {
		writeError(w, http.StatusBadRequest, "limit must be between 1 and "+strconv.Itoa(maxListLimit))
		return 0, false
	}
	return limit, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
