package mcp

import (
	"context"
	"encoding/json"

	"github.com/claude/runcoach/internal/ingest/coachtext"
	"github.com/claude/runcoach/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolGenerateWorkout = mcp.NewTool("generate_workout",
	mcp.WithDescription("Generate a deterministic treadmill interval plan for a target duration. The same duration and seed always produce the same plan; omit the seed to get a fresh one (it is recorded on the result)."),
	mcp.WithNumber("duration_min", mcp.Required(), mcp.Description("Total workout duration in minutes (positive integer)")),
	mcp.WithNumber("seed", mcp.Description("Seed for reproducible generation. Omit to draw a random one.")),
)

var toolParseWorkout = mcp.NewTool("parse_workout",
	mcp.WithDescription("Parse loosely structured workout text (section headers, 'Repeat N times' blocks, '* 5 min @ 6.0 mph' interval lines) into a stored plan. Malformed lines are skipped; if nothing parses, a default plan is generated instead."),
	mcp.WithString("text", mcp.Required(), mcp.Description("The workout text to parse")),
)

var toolRegenerateWorkout = mcp.NewTool("regenerate_workout",
	mcp.WithDescription("Produce a new plan from an existing workout's inputs with a fresh seed. The original workout is preserved and stays retrievable."),
	mcp.WithString("workout_id", mcp.Required(), mcp.Description("Id of the workout to regenerate")),
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("Retrieve a workout plan by id, including its segment list and total duration."),
	mcp.WithString("workout_id", mcp.Required(), mcp.Description("Workout id")),
)

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List all stored workout plans, newest first."),
)

var toolCreateSession = mcp.NewTool("create_session",
	mcp.WithDescription("Create a new idle run session over a stored workout."),
	mcp.WithString("workout_id", mcp.Required(), mcp.Description("Workout id to run")),
)

var toolGetSession = mcp.NewTool("get_session",
	mcp.WithDescription("Get a session's authoritative timer state. Elapsed time is reconciled on every read; no polling cadence is assumed."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
)

var toolSessionAction = mcp.NewTool("session_action",
	mcp.WithDescription("Apply a lifecycle action to a run session."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
	mcp.WithString("action", mcp.Required(), mcp.Description("Lifecycle action"),
		mcp.Enum("start", "pause", "resume", "skip", "back", "abort")),
)

// --- Tool handlers ---

func (h *handlers) generateWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	durationMin, err := req.RequireInt("duration_min")
	if err != nil {
		return mcp.NewToolResultError("duration_min parameter is required"), nil
	}

	var seed *int64
	if v, ok := req.GetArguments()["seed"]; ok {
		if f, ok := v.(float64); ok {
			s := int64(f)
			seed = &s
		}
	}

	tpl, err := h.workouts.Generate(ctx, durationMin, seed)
	if err != nil {
		return mcp.NewToolResultError("generation failed: " + err.Error()), nil
	}
	return templateResult(tpl)
}

func (h *handlers) parseWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text parameter is required"), nil
	}

	intervals := coachtext.Parse(text)
	if len(intervals) == 0 {
		h.log.Warn("mcp parse_workout: nothing parseable, using default plan")
		tpl, err := h.workouts.Generate(ctx, 30, nil)
		if err != nil {
			return mcp.NewToolResultError("fallback generation failed: " + err.Error()), nil
		}
		return templateResult(tpl)
	}

	tpl, err := h.workouts.SavePlan(ctx, coachtext.Segments(intervals),
		models.SourceParsed, map[string]any{"text": text})
	if err != nil {
		return mcp.NewToolResultError("saving plan failed: " + err.Error()), nil
	}
	return templateResult(tpl)
}

func (h *handlers) regenerateWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("workout_id")
	if err != nil {
		return mcp.NewToolResultError("workout_id parameter is required"), nil
	}

	tpl, err := h.workouts.Regenerate(ctx, id)
	if err != nil {
		return mcp.NewToolResultError("regeneration failed: " + err.Error()), nil
	}
	return templateResult(tpl)
}

func (h *handlers) getWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("workout_id")
	if err != nil {
		return mcp.NewToolResultError("workout_id parameter is required"), nil
	}

	tpl, err := h.templates.Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError("lookup failed: " + err.Error()), nil
	}
	return templateResult(tpl)
}

func (h *handlers) listWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	templates, err := h.templates.List(ctx)
	if err != nil {
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(catalogSummaries(templates))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) createSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("workout_id")
	if err != nil {
		return mcp.NewToolResultError("workout_id parameter is required"), nil
	}

	snap, err := h.engine.Create(ctx, id)
	if err != nil {
		return mcp.NewToolResultError("create failed: " + err.Error()), nil
	}
	return snapshotResult(snap)
}

func (h *handlers) getSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id parameter is required"), nil
	}

	snap, err := h.engine.State(ctx, id)
	if err != nil {
		return mcp.NewToolResultError("lookup failed: " + err.Error()), nil
	}
	return snapshotResult(snap)
}

func (h *handlers) sessionAction(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id parameter is required"), nil
	}
	action, err := req.RequireString("action")
	if err != nil {
		return mcp.NewToolResultError("action parameter is required"), nil
	}

	var snap models.SessionSnapshot
	switch action {
	case "start", "resume":
		snap, err = h.engine.Start(ctx, id)
	case "pause":
		snap, err = h.engine.Pause(ctx, id)
	case "skip":
		snap, err = h.engine.Skip(ctx, id)
	case "back":
		snap, err = h.engine.Back(ctx, id)
	case "abort":
		snap, err = h.engine.Abort(ctx, id)
	default:
		return mcp.NewToolResultError("unknown action: " + action), nil
	}
	if err != nil {
		return mcp.NewToolResultError("action failed: " + err.Error()), nil
	}
	return snapshotResult(snap)
}

func templateResult(tpl *models.Template) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(tpl)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func snapshotResult(snap models.SessionSnapshot) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(snap)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// --- Resource definitions ---

var resWorkoutCatalog = mcp.NewResource(
	"runcoach://workout_catalog",
	"Workout Catalog",
	mcp.WithResourceDescription("All stored workout plans with source, seed, segment count, and total duration"),
	mcp.WithMIMEType("application/json"),
)

type catalogEntry struct {
	ID          string  `json:"id"`
	Source      string  `json:"source"`
	Seed        int64   `json:"seed"`
	Segments    int     `json:"segments"`
	TotalTimeS  int     `json:"total_time_s"`
	DurationMin float64 `json:"duration_min"`
}

func catalogSummaries(templates []*models.Template) []catalogEntry {
	out := make([]catalogEntry, 0, len(templates))
	for _, t := range templates {
		out = append(out, catalogEntry{
			ID:          t.ID,
			Source:      string(t.Source),
			Seed:        t.Seed,
			Segments:    len(t.Segments),
			TotalTimeS:  t.Stats.TotalTimeS,
			DurationMin: float64(t.Stats.TotalTimeS) / 60,
		})
	}
	return out
}

func (h *handlers) workoutCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	templates, err := h.templates.List(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(catalogSummaries(templates))
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
