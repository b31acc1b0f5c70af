package models

import "time"

// JobStatus represents the status of an async optimize job.
type JobStatus string

const (
	JobStatusPending  JobStatus = "pending"
	JobStatusRunning  JobStatus = "running"
	JobStatusComplete JobStatus = "complete"
	JobStatusError    JobStatus = "error"
)

// Job tracks an optimize run started through the async endpoint.
type Job struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"projectId"`
	Strategy    string     `json:"strategy"`
	Status      JobStatus  `json:"status"`
	PanelCount  int        `json:"panelCount,omitempty"`
	Revision    int64      `json:"revision,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// NewJob creates a job in pending status.
func NewJob(id, projectID, strategy string) *Job {
	return &Job{
		ID:        id,
		ProjectID: projectID,
		Strategy:  strategy,
		Status:    JobStatusPending,
		CreatedAt: time.Now(),
	}
}

// Done reports whether the job reached a terminal status.
func (j *Job) Done() bool {
	return j.Status == JobStatusComplete || j.Status == JobStatusError
}
