package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/claude/runcoach/internal/ingest/coachtext"
	"github.com/claude/runcoach/internal/models"
	"github.com/claude/runcoach/internal/store"
	"github.com/claude/runcoach/internal/workout"
	"github.com/go-chi/chi/v5"
)

// fallbackDurationMin sizes the default template returned when coach text
// yields nothing parseable.
const fallbackDurationMin = 30

type generateRequest struct {
	DurationMin int    `json:"duration_min"`
	Seed        *int64 `json:"seed,omitempty"`
}

func (s *Server) handleGenerateWorkout(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	tpl, err := s.workouts.Generate(r.Context(), req.DurationMin, req.Seed)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

type parseRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleParseWorkout(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	intervals := coachtext.Parse(req.Text)
	tpl, err := s.workouts.SavePlan(r.Context(), coachtext.Segments(intervals),
		models.SourceParsed, map[string]any{"text": req.Text})
	if errors.Is(err, workout.ErrEmptyPlan) {
		// Upstream text producers are unreliable; fall back to a default
		// generated plan rather than surfacing an error to the client.
		s.log.Warn("coach text yielded no intervals, using default plan", "text_len", len(req.Text))
		tpl, err = s.workouts.Generate(r.Context(), fallbackDurationMin, nil)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (s *Server) handleRegenerateWorkout(w http.ResponseWriter, r *http.Request) {
	tpl, err := s.workouts.Regenerate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	templates, err := s.templates.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	tpl, err := s.templates.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

type createSessionRequest struct {
	WorkoutID string `json:"workout_id"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	snap, err := s.engine.Create(r.Context(), req.WorkoutID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.engine.State(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// sessionOp adapts an engine lifecycle operation into a handler.
func (s *Server) sessionOp(op func(context.Context, string) (models.SessionSnapshot, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := op(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

// writeError maps domain errors onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, workout.ErrInvalidDuration):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		s.log.Error("internal error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
