package geometry

import (
	"math"

	"github.com/panel-layout/backend/internal/models"
)

// ApplyConstraints enforces minimum sizes, optional grid alignment and the
// container bounds. Applying it twice with the same arguments yields the
// same panels as applying it once.
func ApplyConstraints(panels []models.Panel, settings Settings, containerW, containerH float64) []models.Panel {
	s := settings.Normalized()
	out := models.ClonePanels(panels)

	for i := range out {
		p := &out[i]
		sanitize(p, s)

		if s.Aligned() {
			p.X = snapNearest(p.X, s.GridSize)
			p.Y = snapNearest(p.Y, s.GridSize)
			p.Width = snapUp(p.Width, s.GridSize)
			p.Height = snapUp(p.Height, s.GridSize)
		}

		grid := 0.0
		if s.Aligned() {
			grid = s.GridSize
		}
		p.X, p.Width = clampAxis(p.X, p.Width, s.MinPanelWidth, containerW, grid)
		p.Y, p.Height = clampAxis(p.Y, p.Height, s.MinPanelHeight, containerH, grid)
	}
	return out
}

// sanitize replaces NaN/negative values and applies the minimum size.
func sanitize(p *models.Panel, s Settings) {
	if !finite(p.X) || p.X < 0 {
		p.X = 0
	}
	if !finite(p.Y) || p.Y < 0 {
		p.Y = 0
	}
	if !finite(p.Width) {
		p.Width = s.MinPanelWidth
	}
	if !finite(p.Height) {
		p.Height = s.MinPanelHeight
	}
	p.Width = math.Max(p.Width, s.MinPanelWidth)
	p.Height = math.Max(p.Height, s.MinPanelHeight)
	p.Rotation = models.NormalizeRotation(p.Rotation)
	if p.Shape == "" {
		p.Shape = models.ShapeRectangle
	}
}

// clampAxis fits one axis of a panel into [0, limit]. A panel whose position
// lies past the midpoint is translated back; otherwise it is shrunk, but
// never below the minimum.
func clampAxis(pos, size, minSize, limit, grid float64) (float64, float64) {
	if limit <= 0 || pos+size <= limit {
		return pos, size
	}

	floor := minSize
	if grid > 0 {
		floor = snapUp(minSize, grid)
	}
	if floor > limit {
		floor = math.Max(limit, minSize)
	}

	if pos > limit/2 {
		if size > limit {
			size = math.Max(limit, floor)
		}
		return snapDown(math.Max(0, limit-size), grid), size
	}

	size = limit - pos
	if size < floor {
		size = floor
		pos = snapDown(math.Max(0, limit-size), grid)
	}
	return pos, size
}

func snapNearest(v, grid float64) float64 {
	return math.Round(v/grid) * grid
}

func snapUp(v, grid float64) float64 {
	return math.Ceil(v/grid) * grid
}

func snapDown(v, grid float64) float64 {
	if grid <= 0 {
		return v
	}
	return math.Floor(v/grid) * grid
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
