package geometry

import "github.com/panel-layout/backend/internal/models"

// Pack dispatches to the packing heuristic for strategy.
func Pack(panels []models.Panel, strategy Strategy, settings Settings, containerW, containerH float64) []models.Panel {
	switch strategy {
	case StrategyMaterial:
		return PackMaterialEfficient(panels, settings, containerW, containerH)
	case StrategyLabor:
		return PackLaborEfficient(panels, settings, containerW, containerH)
	default:
		return PackBalanced(panels, settings, containerW, containerH)
	}
}

// OptimizePanelLayout runs constraints, the strategy pack and overlap
// resolution, in that order.
func OptimizePanelLayout(panels []models.Panel, strategy Strategy, settings Settings, containerW, containerH float64) []models.Panel {
	constrained := ApplyConstraints(panels, settings, containerW, containerH)
	packed := Pack(constrained, strategy, settings, containerW, containerH)
	return ResolveOverlaps(packed, settings)
}

// Utilization is the share of the container covered by panel area, in [0, 1]
// unless panels overlap or overflow.
func Utilization(panels []models.Panel, containerW, containerH float64) float64 {
	if containerW <= 0 || containerH <= 0 {
		return 0
	}
	var total float64
	for _, p := range panels {
		total += p.Area()
	}
	return total / (containerW * containerH)
}

// Bounds returns the bounding box of all panels.
func Bounds(panels []models.Panel) (minX, minY, maxX, maxY float64) {
	for i, p := range panels {
		if i == 0 {
			minX, minY, maxX, maxY = p.X, p.Y, p.Right(), p.Bottom()
			continue
		}
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.Right())
		maxY = max(maxY, p.Bottom())
	}
	return
}
