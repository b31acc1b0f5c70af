// handlers_jobs.go - Background job status handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/panel-layout/backend/internal/jobs"
)

// JobHandlerImpl implements the JobHandler interface
type JobHandlerImpl struct {
	runner *jobs.Runner
}

// NewJobHandler creates a new job handler
func NewJobHandler(runner *jobs.Runner) JobHandler {
	return &JobHandlerImpl{runner: runner}
}

// HandleGetJob returns a job's status
func (h *JobHandlerImpl) HandleGetJob(c echo.Context) error {
	id := c.Param("jobId")
	if id == "" {
		return NewValidationError("jobId")
	}
	if h.runner == nil {
		return NewServiceUnavailableError("background jobs are not configured")
	}

	job, err := h.runner.Get(c.Request().Context(), id)
	if err != nil {
		return storeError(err, "job", id)
	}
	return c.JSON(http.StatusOK, job)
}
