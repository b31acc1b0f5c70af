// Package storage holds the Layout Store: the shared, revisioned record of
// each project's panels.
package storage

import (
	"context"
	"errors"

	"github.com/panel-layout/backend/internal/models"
)

var (
	// ErrProjectNotFound is returned when a project has no layout and the
	// store is not allowed to create one.
	ErrProjectNotFound = errors.New("project not found")
	// ErrProjectExists is returned by Create for a project that already has a layout.
	ErrProjectExists = errors.New("project already exists")
	// ErrRevisionConflict is returned when ReplaceMeta.IfRevision no longer
	// matches the stored revision.
	ErrRevisionConflict = errors.New("layout revision conflict")
)

// ReplaceMeta describes a panel replacement.
type ReplaceMeta struct {
	// IfRevision makes the write conditional on the stored revision.
	// Layouts start at revision 1, so 0 disables the check.
	IfRevision int64
	Source     string // "command", "optimize", "direct"
	Reason     string
}

// Store defines the interface for layout storage.
type Store interface {
	Get(ctx context.Context, projectID string) (*models.Layout, error)
	ReplacePanels(ctx context.Context, projectID string, panels []models.Panel, meta ReplaceMeta) (*models.Layout, error)
	Create(ctx context.Context, projectID string, width, height float64) (*models.Layout, error)
	Close() error
}

// Options configures a Store.
type Options struct {
	// AutoCreate makes Get and ReplacePanels create a default layout for
	// unknown projects instead of returning ErrProjectNotFound.
	AutoCreate bool
}

func containerOrDefault(width, height float64) (float64, float64) {
	if !(width > 0) {
		width = models.DefaultContainerWidth
	}
	if !(height > 0) {
		height = models.DefaultContainerHeight
	}
	return width, height
}
