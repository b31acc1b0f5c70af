package models

import "time"

// ActionRecord is one entry of the audit trail returned with a command reply.
type ActionRecord struct {
	ID          string    `json:"id"`
	Intent      string    `json:"intent"`
	PanelID     string    `json:"panelId,omitempty"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
}
