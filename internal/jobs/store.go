// Package jobs tracks async optimize runs. Every record carries a TTL so the
// status map cannot grow without bound.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/panel-layout/backend/internal/models"
)

// ErrNotFound is returned for unknown or expired jobs.
var ErrNotFound = errors.New("job not found")

// DefaultTTL is how long a job record is kept after its last update.
const DefaultTTL = time.Hour

// Store persists job records with expiry.
type Store interface {
	Put(ctx context.Context, job *models.Job) error
	Get(ctx context.Context, id string) (*models.Job, error)
	Close() error
}
