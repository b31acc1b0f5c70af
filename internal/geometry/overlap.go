package geometry

import (
	"math"

	"github.com/panel-layout/backend/internal/models"
)

// Overlaps reports whether two panels share a positive intersection area.
// Rotation is ignored; panels are treated as axis-aligned boxes.
func Overlaps(a, b models.Panel) bool {
	return a.X < b.Right() && b.X < a.Right() && a.Y < b.Bottom() && b.Y < a.Bottom()
}

// IntersectionArea returns the overlapping area of two panels.
func IntersectionArea(a, b models.Panel) float64 {
	w := math.Min(a.Right(), b.Right()) - math.Max(a.X, b.X)
	h := math.Min(a.Bottom(), b.Bottom()) - math.Max(a.Y, b.Y)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// ResolveOverlaps runs a single pairwise pass. For each overlapping pair the
// lower-priority panel is pushed out along the direction that needs the
// smallest displacement, plus the margin. Chains of three or more mutually
// overlapping panels may still overlap afterwards.
func ResolveOverlaps(panels []models.Panel, settings Settings) []models.Panel {
	s := settings.Normalized()
	out := models.ClonePanels(panels)

	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if !Overlaps(out[i], out[j]) {
				continue
			}
			fixed, moving := i, j
			if lowerPriority(out[i], out[j]) {
				fixed, moving = j, i
			}
			out[moving] = displace(out[fixed], out[moving], s.Margin)
		}
	}
	return out
}

// lowerPriority reports whether a yields to b: smaller panels move, and the
// ID breaks ties so the choice does not depend on slice order.
func lowerPriority(a, b models.Panel) bool {
	if a.Area() != b.Area() {
		return a.Area() < b.Area()
	}
	return a.ID > b.ID
}

type push struct {
	magnitude float64
	x, y      float64
}

func displace(fixed, moving models.Panel, margin float64) models.Panel {
	candidates := []push{
		{moving.Right() - fixed.X, fixed.X - moving.Width - margin, moving.Y},   // left
		{fixed.Right() - moving.X, fixed.Right() + margin, moving.Y},            // right
		{moving.Bottom() - fixed.Y, moving.X, fixed.Y - moving.Height - margin}, // up
		{fixed.Bottom() - moving.Y, moving.X, fixed.Bottom() + margin},          // down
	}

	best := -1
	for i, c := range candidates {
		if c.x < 0 || c.y < 0 {
			continue
		}
		if best < 0 || c.magnitude < candidates[best].magnitude {
			best = i
		}
	}
	if best < 0 {
		return moving
	}
	moving.X, moving.Y = candidates[best].x, candidates[best].y
	return moving
}
