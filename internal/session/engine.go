package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/runcoach/internal/clock"
	"github.com/claude/runcoach/internal/models"
	"github.com/claude/runcoach/internal/store"
	"github.com/google/uuid"
)

// Store is the keyed session collection the engine operates over. Sessions
// live in memory only: their state embeds monotonic clock baselines that are
// meaningless across process restarts.
type Store interface {
	Put(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
}

// MemoryStore is the in-process Store implementation.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (m *MemoryStore) Put(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID()] = s
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, store.ErrNotFound)
	}
	return s, nil
}

// Engine creates sessions over stored templates and dispatches lifecycle
// operations, supplying each with the injected clock's current reading.
type Engine struct {
	templates store.TemplateStore
	sessions  Store
	clk       clock.Clock
	log       *slog.Logger
}

// NewEngine wires the engine to its stores and clock.
func NewEngine(templates store.TemplateStore, sessions Store, clk clock.Clock, log *slog.Logger) *Engine {
	return &Engine{templates: templates, sessions: sessions, clk: clk, log: log}
}

// Create makes a new idle session referencing the given template. Fails with
// store.ErrNotFound when the template id is unknown.
func (e *Engine) Create(ctx context.Context, templateID string) (models.SessionSnapshot, error) {
	tpl, err := e.templates.Get(ctx, templateID)
	if err != nil {
		return models.SessionSnapshot{}, err
	}

	s := newSession(uuid.New().String(), tpl)
	if err := e.sessions.Put(ctx, s); err != nil {
		return models.SessionSnapshot{}, fmt.Errorf("storing session: %w", err)
	}
	e.log.Info("session created", "id", s.ID(), "workout_id", templateID)
	return s.State(e.clk.Now()), nil
}

// Start transitions the session to running; it also serves as resume.
func (e *Engine) Start(ctx context.Context, id string) (models.SessionSnapshot, error) {
	return e.apply(ctx, id, (*Session).Start)
}

// Pause freezes the session's timer after flushing pending elapsed time.
func (e *Engine) Pause(ctx context.Context, id string) (models.SessionSnapshot, error) {
	return e.apply(ctx, id, (*Session).Pause)
}

// Skip advances past the current segment.
func (e *Engine) Skip(ctx context.Context, id string) (models.SessionSnapshot, error) {
	return e.apply(ctx, id, (*Session).Skip)
}

// Back returns to the start of the previous segment.
func (e *Engine) Back(ctx context.Context, id string) (models.SessionSnapshot, error) {
	return e.apply(ctx, id, (*Session).Back)
}

// Abort terminates the session.
func (e *Engine) Abort(ctx context.Context, id string) (models.SessionSnapshot, error) {
	return e.apply(ctx, id, (*Session).Abort)
}

// State returns the reconciled snapshot for the session.
func (e *Engine) State(ctx context.Context, id string) (models.SessionSnapshot, error) {
	return e.apply(ctx, id, (*Session).State)
}

func (e *Engine) apply(ctx context.Context, id string, op func(*Session, time.Time) models.SessionSnapshot) (models.SessionSnapshot, error) {
	s, err := e.sessions.Get(ctx, id)
	if err != nil {
		return models.SessionSnapshot{}, err
	}
	return op(s, e.clk.Now()), nil
}
