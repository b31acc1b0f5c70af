package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/panel-layout/backend/internal/models"
)

func TestMemoryStore_PutGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)

	job := models.NewJob("j1", "p1", "material")
	require.NoError(t, s.Put(ctx, job))

	got, err := s.Get(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ProjectID)
	assert.Equal(t, models.JobStatusPending, got.Status)

	// Stored values are copies.
	got.Status = models.JobStatusError
	again, err := s.Get(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPending, again.Status)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(time.Minute)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Put(ctx, models.NewJob("old", "p1", "balanced")))
	now = now.Add(30 * time.Second)
	require.NoError(t, s.Put(ctx, models.NewJob("new", "p1", "balanced")))

	now = now.Add(45 * time.Second)
	_, err := s.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound, "expired jobs are invisible before cleanup")
	_, err = s.Get(ctx, "new")
	assert.NoError(t, err)

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 1, s.Cleanup())
	assert.Equal(t, 1, s.Len())
}

func TestRunner_Success(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(NewMemoryStore(time.Minute), time.Second, zap.NewNop())
	defer r.Shutdown()

	job, err := r.Start(ctx, "p1", "labor", func(context.Context) (Result, error) {
		return Result{PanelCount: 3, Revision: 9}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPending, job.Status)

	require.Eventually(t, func() bool {
		j, err := r.Get(ctx, job.ID)
		return err == nil && j.Done()
	}, time.Second, 5*time.Millisecond)

	j, err := r.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusComplete, j.Status)
	assert.Equal(t, 3, j.PanelCount)
	assert.Equal(t, int64(9), j.Revision)
	assert.NotNil(t, j.CompletedAt)
}

func TestRunner_Failure(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(NewMemoryStore(time.Minute), time.Second, zap.NewNop())

	job, err := r.Start(ctx, "p1", "balanced", func(context.Context) (Result, error) {
		return Result{}, errors.New("store offline")
	})
	require.NoError(t, err)
	r.Shutdown()

	j, err := r.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusError, j.Status)
	assert.Equal(t, "store offline", j.Error)
}

func TestRunner_ShutdownCancelsWork(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(NewMemoryStore(time.Minute), time.Minute, zap.NewNop())

	started := make(chan struct{})
	job, err := r.Start(ctx, "p1", "balanced", func(ctx context.Context) (Result, error) {
		close(started)
		<-ctx.Done()
		return Result{}, ctx.Err()
	})
	require.NoError(t, err)

	<-started
	r.Shutdown()

	j, err := r.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusError, j.Status)
}
