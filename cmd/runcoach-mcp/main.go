package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/claude/runcoach/internal/clock"
	"github.com/claude/runcoach/internal/config"
	"github.com/claude/runcoach/internal/mcp"
	"github.com/claude/runcoach/internal/session"
	"github.com/claude/runcoach/internal/storage"
	"github.com/claude/runcoach/internal/store"
	"github.com/claude/runcoach/internal/workout"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// runcoach-mcp serves the MCP tools over stdio. Logs go to stderr so they
// don't corrupt the protocol stream on stdout.
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var templates store.TemplateStore
	switch cfg.Database.Driver {
	case "postgres":
		pg, err := storage.NewPostgres(ctx, cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		templates = pg

	case "sqlite":
		db, err := storage.OpenSQLite(cfg.Database.Path)
		if err != nil {
			log.Error("failed to open sqlite store", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		templates = db

	default:
		templates = store.NewMemory()
	}

	workouts := workout.NewService(templates, log)
	if err := workouts.SeedPresets(ctx); err != nil {
		log.Error("preset seeding failed", "error", err)
		os.Exit(1)
	}

	engine := session.NewEngine(templates, session.NewMemoryStore(), clock.System{}, log)

	s := mcp.New(workouts, templates, engine, Version, log)
	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
