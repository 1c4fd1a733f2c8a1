package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/claude/runcoach/internal/models"
)

// Memory is an in-process TemplateStore backed by a map. It is the default
// backend for dev and tests; the storage package provides durable ones.
type Memory struct {
	mu        sync.RWMutex
	templates map[string]*models.Template
}

var _ TemplateStore = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{templates: make(map[string]*models.Template)}
}

// Put stores a template. Inserting an id twice is an error; templates are
// immutable and ids are never reused.
func (m *Memory) Put(ctx context.Context, t *models.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.templates[t.ID]; exists {
		return fmt.Errorf("template %s already exists", t.ID)
	}
	m.templates[t.ID] = t
	return nil
}

// Get returns the template for id, or ErrNotFound.
func (m *Memory) Get(ctx context.Context, id string) (*models.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.templates[id]
	if !ok {
		return nil, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	return t, nil
}

// List returns all templates, newest first.
func (m *Memory) List(ctx context.Context) ([]*models.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Template, 0, len(m.templates))
	for _, t := range m.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
