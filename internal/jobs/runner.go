package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/panel-layout/backend/internal/models"
)

// Result is what a job's work reports on success.
type Result struct {
	PanelCount int
	Revision   int64
}

// WorkFunc performs the job's work.
type WorkFunc func(ctx context.Context) (Result, error)

// Runner executes jobs in the background and records their status.
type Runner struct {
	store   Store
	timeout time.Duration
	log     *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRunner creates a Runner. Each job is bounded by timeout.
func NewRunner(store Store, timeout time.Duration, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		store:   store,
		timeout: timeout,
		log:     log.With(zap.String("component", "jobs")),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start records a pending job and runs work asynchronously.
func (r *Runner) Start(ctx context.Context, projectID, strategy string, work WorkFunc) (*models.Job, error) {
	job := models.NewJob(uuid.New().String(), projectID, strategy)
	if err := r.store.Put(ctx, job); err != nil {
		return nil, fmt.Errorf("recording job: %w", err)
	}

	snapshot := *job
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.process(job, work)
	}()
	return &snapshot, nil
}

// Get returns the job's current status.
func (r *Runner) Get(ctx context.Context, id string) (*models.Job, error) {
	return r.store.Get(ctx, id)
}

// Shutdown cancels running jobs and waits for them to record their outcome.
func (r *Runner) Shutdown() {
	r.cancel()
	r.wg.Wait()
}

func (r *Runner) process(job *models.Job, work WorkFunc) {
	log := r.log.With(zap.String("job", job.ID), zap.String("project", job.ProjectID))
	log.Debug("job started", zap.String("strategy", job.Strategy))

	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()

	job.Status = models.JobStatusRunning
	r.save(log, job)

	res, err := work(ctx)
	now := time.Now()
	job.CompletedAt = &now
	if err != nil {
		job.Status = models.JobStatusError
		job.Error = err.Error()
		log.Warn("job failed", zap.Error(err))
	} else {
		job.Status = models.JobStatusComplete
		job.PanelCount = res.PanelCount
		job.Revision = res.Revision
		log.Debug("job complete", zap.Int("panels", res.PanelCount), zap.Duration("elapsed", now.Sub(job.CreatedAt)))
	}
	r.save(log, job)
}

func (r *Runner) save(log *zap.Logger, job *models.Job) {
	// The request context is gone by now; status writes get their own deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.store.Put(ctx, job); err != nil {
		log.Error("failed to record job status", zap.Error(err))
	}
}
