// Package mcp exposes workout planning and session control to MCP clients,
// so an agent can build a plan, hand its id to a treadmill client, and watch
// the authoritative timer.
package mcp

import (
	"log/slog"

	"github.com/claude/runcoach/internal/session"
	"github.com/claude/runcoach/internal/store"
	"github.com/claude/runcoach/internal/workout"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(workouts *workout.Service, templates store.TemplateStore, engine *session.Engine, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("RunCoach", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("RunCoach treadmill workout server. Generate or parse interval workout plans, then create and control timed run sessions over them. The server owns the timer: session reads always return reconciled elapsed time."),
	)

	h := &handlers{workouts: workouts, templates: templates, engine: engine, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGenerateWorkout, Handler: h.generateWorkout},
		server.ServerTool{Tool: toolParseWorkout, Handler: h.parseWorkout},
		server.ServerTool{Tool: toolRegenerateWorkout, Handler: h.regenerateWorkout},
		server.ServerTool{Tool: toolGetWorkout, Handler: h.getWorkout},
		server.ServerTool{Tool: toolListWorkouts, Handler: h.listWorkouts},
		server.ServerTool{Tool: toolCreateSession, Handler: h.createSession},
		server.ServerTool{Tool: toolGetSession, Handler: h.getSession},
		server.ServerTool{Tool: toolSessionAction, Handler: h.sessionAction},
	)

	s.AddResources(
		server.ServerResource{Resource: resWorkoutCatalog, Handler: h.workoutCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	workouts  *workout.Service
	templates store.TemplateStore
	engine    *session.Engine
	log       *slog.Logger
}
