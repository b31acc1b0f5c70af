package models

import "time"

// Default container metadata for a newly created layout.
const (
	DefaultContainerWidth  = 500.0
	DefaultContainerHeight = 300.0
	DefaultScale           = 1.0
)

// Layout is the full set of panels plus container bounds for one project.
type Layout struct {
	ProjectID       string    `json:"projectId" msgpack:"projectId"`
	ContainerWidth  float64   `json:"containerWidth" msgpack:"containerWidth"`
	ContainerHeight float64   `json:"containerHeight" msgpack:"containerHeight"`
	Scale           float64   `json:"scale" msgpack:"scale"`
	Panels          []Panel   `json:"panels" msgpack:"panels"`
	UpdatedAt       time.Time `json:"updatedAt" msgpack:"updatedAt"`
	Revision        int64     `json:"revision" msgpack:"revision"`
}

// NewLayout creates an empty layout with default container metadata.
func NewLayout(projectID string) *Layout {
	return &Layout{
		ProjectID:       projectID,
		ContainerWidth:  DefaultContainerWidth,
		ContainerHeight: DefaultContainerHeight,
		Scale:           DefaultScale,
		Panels:          make([]Panel, 0),
		UpdatedAt:       time.Now(),
	}
}

// Clone returns a deep copy so callers can mutate panels freely.
func (l *Layout) Clone() *Layout {
	if l == nil {
		return nil
	}
	cp := *l
	cp.Panels = ClonePanels(l.Panels)
	return &cp
}

// ClonePanels copies a panel slice.
func ClonePanels(panels []Panel) []Panel {
	out := make([]Panel, len(panels))
	copy(out, panels)
	return out
}

// FindIndex returns the index of the panel with the given ID, or -1.
func (l *Layout) FindIndex(id string) int {
	for i := range l.Panels {
		if l.Panels[i].ID == id {
			return i
		}
	}
	return -1
}
