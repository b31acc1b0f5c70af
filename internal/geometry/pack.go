package geometry

import (
	"fmt"
	"math"
	"sort"

	"github.com/panel-layout/backend/internal/models"
)

// Strategy selects a packing heuristic.
type Strategy string

const (
	StrategyMaterial Strategy = "material"
	StrategyLabor    Strategy = "labor"
	StrategyBalanced Strategy = "balanced"
)

// ParseStrategy maps a keyword onto a Strategy. "grid" is a plain shelf
// pack and therefore balanced; anything unknown is balanced as well.
func ParseStrategy(s string) Strategy {
	switch s {
	case "material", "material-efficient", "material_efficient":
		return StrategyMaterial
	case "labor", "labour", "labor-efficient", "labor_efficient":
		return StrategyLabor
	default:
		return StrategyBalanced
	}
}

// PackMaterialEfficient groups panels by material and shelf-packs each group
// into its own band of rows, widest panels first.
func PackMaterialEfficient(panels []models.Panel, settings Settings, containerW, containerH float64) []models.Panel {
	s := settings.Normalized()
	groups := make(map[string][]models.Panel)
	var keys []string
	for _, p := range panels {
		if _, ok := groups[p.Material]; !ok {
			keys = append(keys, p.Material)
		}
		groups[p.Material] = append(groups[p.Material], p)
	}
	sort.Strings(keys)

	out := make([]models.Panel, 0, len(panels))
	y := 0.0
	for gi, key := range keys {
		group := groups[key]
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].Width != group[j].Width {
				return group[i].Width > group[j].Width
			}
			return group[i].ID < group[j].ID
		})

		if gi > 0 {
			y += s.GroupSpacing
		}
		var bottom float64
		group, bottom = shelfPack(group, y, containerW, s.Margin)
		out = append(out, group...)
		y = bottom
	}
	return out
}

// PackLaborEfficient keeps panels of the same seam/size class adjacent on a
// polar spiral that starts from the container center.
func PackLaborEfficient(panels []models.Panel, settings Settings, containerW, containerH float64) []models.Panel {
	s := settings.Normalized()
	groups := make(map[string][]models.Panel)
	for _, p := range panels {
		k := seamKey(p)
		groups[k] = append(groups[k], p)
	}

	type group struct {
		key     string
		panels  []models.Panel
		maxArea float64
	}
	ordered := make([]group, 0, len(groups))
	for k, g := range groups {
		sort.SliceStable(g, func(i, j int) bool {
			if g[i].Area() != g[j].Area() {
				return g[i].Area() > g[j].Area()
			}
			return g[i].ID < g[j].ID
		})
		ordered = append(ordered, group{key: k, panels: g, maxArea: g[0].Area()})
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].maxArea != ordered[j].maxArea {
			return ordered[i].maxArea > ordered[j].maxArea
		}
		return ordered[i].key < ordered[j].key
	})

	cx, cy := containerW/2, containerH/2
	step := s.SpiralAngleStep * math.Pi / 180

	out := make([]models.Panel, 0, len(panels))
	for _, g := range ordered {
		for _, p := range g.panels {
			if n := len(out); n == 0 {
				p.X = cx - p.Width/2
				p.Y = cy - p.Height/2
			} else {
				k := n - 1
				r := float64(k/s.SpiralTurnEvery+1) * s.SpiralRadiusStep
				theta := float64(k) * step
				p.X = cx + r*math.Cos(theta) - p.Width/2
				p.Y = cy + r*math.Sin(theta) - p.Height/2
			}
			p.X = clampPosition(p.X, p.Width, containerW)
			p.Y = clampPosition(p.Y, p.Height, containerH)
			out = append(out, p)
		}
	}
	return out
}

// PackBalanced shelf-packs every panel, largest area first, without grouping.
func PackBalanced(panels []models.Panel, settings Settings, containerW, containerH float64) []models.Panel {
	s := settings.Normalized()
	sorted := models.ClonePanels(panels)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Area() != sorted[j].Area() {
			return sorted[i].Area() > sorted[j].Area()
		}
		return sorted[i].ID < sorted[j].ID
	})
	out, _ := shelfPack(sorted, 0, containerW, s.Margin)
	return out
}

// shelfPack places panels left to right starting at startY, wrapping to a new
// row once the container width would be exceeded. It returns the placed
// panels and the bottom edge of the last row.
func shelfPack(panels []models.Panel, startY, containerW, margin float64) ([]models.Panel, float64) {
	out := models.ClonePanels(panels)
	x, y, rowHeight := 0.0, startY, 0.0
	for i := range out {
		p := &out[i]
		if x > 0 && x+p.Width > containerW {
			y += rowHeight + margin
			x, rowHeight = 0, 0
		}
		p.X, p.Y = x, y
		x += p.Width + margin
		rowHeight = math.Max(rowHeight, p.Height)
	}
	return out, y + rowHeight
}

// seamKey groups panels that can be seamed by the same crew setup.
func seamKey(p models.Panel) string {
	area := p.Area()
	class := "large"
	switch {
	case area < 400:
		class = "small"
	case area < 2500:
		class = "medium"
	}
	return fmt.Sprintf("%s|%s", p.Material, class)
}

func clampPosition(pos, size, limit float64) float64 {
	if limit <= 0 {
		return math.Max(0, pos)
	}
	if pos+size > limit {
		pos = limit - size
	}
	return math.Max(0, pos)
}
