package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panel-layout/backend/internal/models"
)

// MemoryStore implements Store with an in-process map.
type MemoryStore struct {
	mu      sync.RWMutex
	layouts map[string]*models.Layout
	opts    Options
}

// NewMemoryStore creates a new MemoryStore.
func NewMemoryStore(opts Options) *MemoryStore {
	return &MemoryStore{
		layouts: make(map[string]*models.Layout),
		opts:    opts,
	}
}

// Get returns a copy of the project's layout.
func (s *MemoryStore) Get(ctx context.Context, projectID string) (*models.Layout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	l, ok := s.layouts[projectID]
	s.mu.RUnlock()
	if ok {
		return l.Clone(), nil
	}
	if !s.opts.AutoCreate {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreateLocked(projectID).Clone(), nil
}

// ReplacePanels swaps the panel set and advances the revision.
func (s *MemoryStore) ReplacePanels(ctx context.Context, projectID string, panels []models.Panel, meta ReplaceMeta) (*models.Layout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.layouts[projectID]
	if !ok {
		if !s.opts.AutoCreate {
			return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
		}
		l = s.getOrCreateLocked(projectID)
	}
	if meta.IfRevision != 0 && meta.IfRevision != l.Revision {
		return nil, fmt.Errorf("%w: expected %d, have %d", ErrRevisionConflict, meta.IfRevision, l.Revision)
	}

	l.Panels = models.ClonePanels(panels)
	l.Revision++
	l.UpdatedAt = time.Now()
	return l.Clone(), nil
}

// Create adds an empty layout with the given container size.
func (s *MemoryStore) Create(ctx context.Context, projectID string, width, height float64) (*models.Layout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.layouts[projectID]; ok {
		return nil, fmt.Errorf("%w: %s", ErrProjectExists, projectID)
	}
	l := newStoredLayout(projectID, width, height)
	s.layouts[projectID] = l
	return l.Clone(), nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) getOrCreateLocked(projectID string) *models.Layout {
	if l, ok := s.layouts[projectID]; ok {
		return l
	}
	l := newStoredLayout(projectID, 0, 0)
	s.layouts[projectID] = l
	return l
}

func newStoredLayout(projectID string, width, height float64) *models.Layout {
	l := models.NewLayout(projectID)
	l.ContainerWidth, l.ContainerHeight = containerOrDefault(width, height)
	l.Revision = 1
	return l
}
