package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/runcoach/internal/session"
	"github.com/claude/runcoach/internal/store"
	"github.com/claude/runcoach/internal/workout"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	workouts  *workout.Service
	templates store.TemplateStore
	engine    *session.Engine
	log       *slog.Logger
	apiKey    string
	router    chi.Router
}

// New creates a new Server with all routes configured.
func New(workouts *workout.Service, templates store.TemplateStore, engine *session.Engine, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		workouts:  workouts,
		templates: templates,
		engine:    engine,
		log:       log,
		apiKey:    apiKey,
		router:    chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.router.Route("/api/v1", func(r chi.Router) {
		// Workout creation requires the API key; these routes may be driven
		// by an external text-generation collaborator.
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/workouts/generate", s.handleGenerateWorkout)
			r.Post("/workouts/parse", s.handleParseWorkout)
			r.Post("/workouts/{id}/regenerate", s.handleRegenerateWorkout)
		})

		// Reads and session control are unauthenticated; tsnet handles access.
		r.Get("/workouts", s.handleListWorkouts)
		r.Get("/workouts/{id}", s.handleGetWorkout)

		r.Post("/sessions", s.handleCreateSession)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Post("/sessions/{id}/start", s.sessionOp(s.engine.Start))
		r.Post("/sessions/{id}/pause", s.sessionOp(s.engine.Pause))
		r.Post("/sessions/{id}/resume", s.sessionOp(s.engine.Start))
		r.Post("/sessions/{id}/skip", s.sessionOp(s.engine.Skip))
		r.Post("/sessions/{id}/back", s.sessionOp(s.engine.Back))
		r.Post("/sessions/{id}/abort", s.sessionOp(s.engine.Abort))
	})
}
