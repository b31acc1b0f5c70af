package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRotation(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{90, 90},
		{360, 0},
		{370, 10},
		{-90, 270},
		{720.5, 0.5},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, NormalizeRotation(tt.in), 1e-9, "rotation %v", tt.in)
	}
}

func TestNormalizePanel(t *testing.T) {
	t.Run("accepts alternate field names", func(t *testing.T) {
		p := NormalizePanel(map[string]any{
			"panel_id":     "abc",
			"panel_number": "P001",
			"roll_number":  "R-7",
			"width_feet":   22.5,
			"length_feet":  "100",
			"x_feet":       10,
			"y":            json.Number("4"),
			"rotation":     -45.0,
			"shape":        "triangle",
		})

		assert.Equal(t, "abc", p.ID)
		assert.Equal(t, "P001", p.PanelNumber)
		assert.Equal(t, "R-7", p.RollNumber)
		assert.Equal(t, 22.5, p.Width)
		assert.Equal(t, 100.0, p.Height)
		assert.Equal(t, 10.0, p.X)
		assert.Equal(t, 4.0, p.Y)
		assert.Equal(t, 315.0, p.Rotation)
		assert.Equal(t, ShapeRightTriangle, p.Shape)
	})

	t.Run("fills defaults for missing or invalid values", func(t *testing.T) {
		p := NormalizePanel(map[string]any{
			"width": -3,
			"x":     -10,
			"y":     "not a number",
		})

		assert.NotEmpty(t, p.ID)
		assert.Equal(t, DefaultPanelWidth, p.Width)
		assert.Equal(t, DefaultPanelHeight, p.Height)
		assert.Zero(t, p.X)
		assert.Zero(t, p.Y)
		assert.Equal(t, ShapeRectangle, p.Shape)
		assert.Equal(t, DefaultMaterial, p.Material)
	})
}

func TestLayoutClone(t *testing.T) {
	l := NewLayout("proj")
	l.Panels = append(l.Panels, Panel{ID: "a", Width: 1, Height: 1})

	cp := l.Clone()
	cp.Panels[0].Width = 99

	assert.Equal(t, 1.0, l.Panels[0].Width)
	assert.Equal(t, 0, l.FindIndex("a"))
	assert.Equal(t, -1, l.FindIndex("missing"))
}
