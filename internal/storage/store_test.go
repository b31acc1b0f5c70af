package storage

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/panel-layout/backend/internal/models"
)

type storeFactory func(t *testing.T, opts Options) Store

func factories() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(t *testing.T, opts Options) Store {
			return NewMemoryStore(opts)
		},
		"duckdb": func(t *testing.T, opts Options) Store {
			s, err := NewDuckStoreAtPath(filepath.Join(t.TempDir(), "layouts.duckdb"), opts, zap.NewNop())
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
	}
}

func samplePanels() []models.Panel {
	return []models.Panel{
		{ID: "a", PanelNumber: "P001", Shape: models.ShapeRectangle, X: 0, Y: 0, Width: 40, Height: 40, Material: "vinyl", Color: "#fff"},
		{ID: "b", PanelNumber: "P002", RollNumber: "R9", Shape: models.ShapePatch, X: 50, Y: 10, Width: 20, Height: 30, Rotation: 90, Thickness: 1.5},
	}
}

func TestStore_Contract(t *testing.T) {
	ctx := context.Background()

	for name, newStore := range factories() {
		t.Run(name, func(t *testing.T) {
			t.Run("get unknown project without auto create", func(t *testing.T) {
				s := newStore(t, Options{})
				_, err := s.Get(ctx, "missing")
				assert.ErrorIs(t, err, ErrProjectNotFound)
			})

			t.Run("get unknown project with auto create", func(t *testing.T) {
				s := newStore(t, Options{AutoCreate: true})
				l, err := s.Get(ctx, "p1")
				require.NoError(t, err)
				assert.Equal(t, "p1", l.ProjectID)
				assert.Equal(t, models.DefaultContainerWidth, l.ContainerWidth)
				assert.Equal(t, models.DefaultContainerHeight, l.ContainerHeight)
				assert.Equal(t, int64(1), l.Revision)
				assert.Empty(t, l.Panels)
			})

			t.Run("create then duplicate", func(t *testing.T) {
				s := newStore(t, Options{})
				l, err := s.Create(ctx, "p1", 800, 600)
				require.NoError(t, err)
				assert.Equal(t, 800.0, l.ContainerWidth)
				assert.Equal(t, 600.0, l.ContainerHeight)

				_, err = s.Create(ctx, "p1", 800, 600)
				assert.ErrorIs(t, err, ErrProjectExists)
			})

			t.Run("create with invalid size uses defaults", func(t *testing.T) {
				s := newStore(t, Options{})
				l, err := s.Create(ctx, "p1", -1, 0)
				require.NoError(t, err)
				assert.Equal(t, models.DefaultContainerWidth, l.ContainerWidth)
				assert.Equal(t, models.DefaultContainerHeight, l.ContainerHeight)
			})

			t.Run("replace round trips panels in order", func(t *testing.T) {
				s := newStore(t, Options{})
				_, err := s.Create(ctx, "p1", 500, 300)
				require.NoError(t, err)

				l, err := s.ReplacePanels(ctx, "p1", samplePanels(), ReplaceMeta{Source: "direct"})
				require.NoError(t, err)
				assert.Equal(t, int64(2), l.Revision)
				assert.Equal(t, samplePanels(), l.Panels)

				got, err := s.Get(ctx, "p1")
				require.NoError(t, err)
				assert.Equal(t, samplePanels(), got.Panels)
				assert.Equal(t, int64(2), got.Revision)
			})

			t.Run("replace checks revision", func(t *testing.T) {
				s := newStore(t, Options{})
				_, err := s.Create(ctx, "p1", 500, 300)
				require.NoError(t, err)

				_, err = s.ReplacePanels(ctx, "p1", samplePanels(), ReplaceMeta{IfRevision: 1})
				require.NoError(t, err)

				_, err = s.ReplacePanels(ctx, "p1", nil, ReplaceMeta{IfRevision: 1})
				assert.ErrorIs(t, err, ErrRevisionConflict)

				got, err := s.Get(ctx, "p1")
				require.NoError(t, err)
				assert.Len(t, got.Panels, 2, "conflicting write must not apply")
			})

			t.Run("replace unknown project", func(t *testing.T) {
				s := newStore(t, Options{})
				_, err := s.ReplacePanels(ctx, "nope", samplePanels(), ReplaceMeta{})
				assert.ErrorIs(t, err, ErrProjectNotFound)

				s = newStore(t, Options{AutoCreate: true})
				l, err := s.ReplacePanels(ctx, "nope", samplePanels(), ReplaceMeta{})
				require.NoError(t, err)
				assert.Equal(t, int64(2), l.Revision)
			})

			t.Run("replace with empty set", func(t *testing.T) {
				s := newStore(t, Options{AutoCreate: true})
				_, err := s.ReplacePanels(ctx, "p1", samplePanels(), ReplaceMeta{})
				require.NoError(t, err)
				l, err := s.ReplacePanels(ctx, "p1", []models.Panel{}, ReplaceMeta{})
				require.NoError(t, err)
				assert.Empty(t, l.Panels)
			})
		})
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(Options{AutoCreate: true})
	_, err := s.ReplacePanels(ctx, "p1", samplePanels(), ReplaceMeta{})
	require.NoError(t, err)

	l, err := s.Get(ctx, "p1")
	require.NoError(t, err)
	l.Panels[0].X = 999

	again, err := s.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, again.Panels[0].X)
}

func TestMemoryStore_ConcurrentConditionalWrites(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(Options{})
	_, err := s.Create(ctx, "p1", 500, 300)
	require.NoError(t, err)

	const writers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.ReplacePanels(ctx, "p1", samplePanels(), ReplaceMeta{IfRevision: 1})
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes, "exactly one writer may win the same revision")
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewMemoryStore(Options{AutoCreate: true})
	_, err := s.Get(ctx, "p1")
	assert.ErrorIs(t, err, context.Canceled)
}
