package geometry

import (
	"strings"
	"testing"

	"github.com/panel-layout/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertNoOverlaps(t *testing.T, panels []models.Panel) {
	t.Helper()
	for i := range panels {
		for j := i + 1; j < len(panels); j++ {
			assert.Zero(t, IntersectionArea(panels[i], panels[j]), "%s overlaps %s", panels[i].ID, panels[j].ID)
		}
	}
}

func TestParseStrategy(t *testing.T) {
	assert.Equal(t, StrategyMaterial, ParseStrategy("material"))
	assert.Equal(t, StrategyLabor, ParseStrategy("labor"))
	assert.Equal(t, StrategyLabor, ParseStrategy("labour"))
	assert.Equal(t, StrategyBalanced, ParseStrategy("grid"))
	assert.Equal(t, StrategyBalanced, ParseStrategy(""))
	assert.Equal(t, StrategyBalanced, ParseStrategy("whatever"))
}

func TestPackMaterialEfficient_RowBandsPerMaterial(t *testing.T) {
	panels := []models.Panel{
		{ID: "a", Material: "vinyl", Width: 60, Height: 40},
		{ID: "c", Material: "steel", Width: 80, Height: 50},
		{ID: "b", Material: "vinyl", Width: 50, Height: 30},
	}

	out := OptimizePanelLayout(panels, StrategyMaterial, DefaultSettings(), 200, 300)
	require.Len(t, out, 3)
	assertNoOverlaps(t, out)

	byMaterial := map[string][]models.Panel{}
	for _, p := range out {
		assert.LessOrEqual(t, p.Right(), 200.0)
		byMaterial[p.Material] = append(byMaterial[p.Material], p)
	}

	_, _, _, steelBottom := Bounds(byMaterial["steel"])
	_, vinylTop, _, _ := Bounds(byMaterial["vinyl"])
	assert.Less(t, steelBottom, vinylTop, "material groups must occupy separate bands")
	assert.Equal(t, 60.0, vinylTop, "group spacing follows the previous band")
}

func TestPackMaterialEfficient_WrapsRows(t *testing.T) {
	var panels []models.Panel
	for _, id := range []string{"p1", "p2", "p3", "p4"} {
		panels = append(panels, models.Panel{ID: id, Material: "m", Width: 45, Height: 20})
	}
	s := DefaultSettings()

	out := PackMaterialEfficient(panels, s, 100, 100)

	assert.Equal(t, 0.0, out[0].Y)
	assert.Equal(t, 0.0, out[1].Y)
	assert.Equal(t, 47.0, out[1].X)
	assert.Equal(t, 22.0, out[2].Y, "third panel wraps to a new row")
	assert.Equal(t, 0.0, out[2].X)
}

func TestPackLaborEfficient(t *testing.T) {
	panels := []models.Panel{
		{ID: "small", Material: "m", Width: 10, Height: 10},
		{ID: "big", Material: "m", Width: 60, Height: 60},
		{ID: "mid", Material: "m", Width: 30, Height: 30},
	}

	out := PackLaborEfficient(panels, DefaultSettings(), 400, 200)
	require.Len(t, out, 3)

	assert.Equal(t, "big", out[0].ID)
	assert.Equal(t, 170.0, out[0].X, "largest panel is centred")
	assert.Equal(t, 70.0, out[0].Y)

	for _, p := range out {
		assert.GreaterOrEqual(t, p.X, 0.0)
		assert.GreaterOrEqual(t, p.Y, 0.0)
		assert.LessOrEqual(t, p.Right(), 400.0)
		assert.LessOrEqual(t, p.Bottom(), 200.0)
	}
}

func TestPackBalanced(t *testing.T) {
	var panels []models.Panel
	for i, w := range []float64{30, 70, 50, 90, 20} {
		panels = append(panels, models.Panel{ID: strings.Repeat("x", i+1), Width: w, Height: 25})
	}

	out := OptimizePanelLayout(panels, StrategyBalanced, DefaultSettings(), 150, 200)

	assert.Equal(t, 90.0, out[0].Width, "largest area first")
	assertNoOverlaps(t, out)
	for _, p := range out {
		assert.LessOrEqual(t, p.Right(), 150.0)
	}
}

func TestParseSettings(t *testing.T) {
	s, err := ParseSettings(strings.NewReader(`
min_panel_width: 8
margin: 0
alignment: 90
spiral_turn_every: -1
`))
	require.NoError(t, err)

	assert.Equal(t, 8.0, s.MinPanelWidth)
	assert.Equal(t, 5.0, s.MinPanelHeight)
	assert.Equal(t, 0.0, s.Margin)
	assert.True(t, s.Aligned())
	assert.Equal(t, 8, s.SpiralTurnEvery)

	_, err = ParseSettings(strings.NewReader("margin: [1, 2"))
	assert.Error(t, err)
}
