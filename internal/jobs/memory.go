package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/panel-layout/backend/internal/models"
)

type entry struct {
	job     models.Job
	expires time.Time
}

// MemoryStore keeps jobs in process. Expired entries are invisible to Get
// and removed by Cleanup.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]entry
	ttl  time.Duration
	now  func() time.Time
}

// NewMemoryStore creates a MemoryStore. A non-positive ttl uses DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		jobs: make(map[string]entry),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Put stores a copy of job and refreshes its expiry.
func (s *MemoryStore) Put(ctx context.Context, job *models.Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = entry{job: *job, expires: s.now().Add(s.ttl)}
	return nil
}

// Get returns a copy of the job.
func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.jobs[id]
	if !ok || !s.now().Before(e.expires) {
		return nil, ErrNotFound
	}
	job := e.job
	return &job, nil
}

// Cleanup removes expired jobs and returns how many were dropped.
func (s *MemoryStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, e := range s.jobs {
		if !now.Before(e.expires) {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored jobs, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
