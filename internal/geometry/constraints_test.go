package geometry

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/panel-layout/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func constraintFixtures() []models.Panel {
	return []models.Panel{
		{ID: "tiny", X: 3, Y: 7, Width: 1, Height: 2},
		{ID: "negative", X: -20, Y: -1, Width: 30, Height: 30},
		{ID: "past-mid", X: 420, Y: 10, Width: 130, Height: 20},
		{ID: "before-mid", X: 60, Y: 250, Width: 480, Height: 90},
		{ID: "huge", X: 0, Y: 0, Width: 900, Height: 700},
		{ID: "outside", X: 800, Y: 600, Width: 12, Height: 13},
		{ID: "odd", X: 12.3, Y: 47.9, Width: 17.2, Height: 3.3, Rotation: 725},
		{ID: "nan", X: math.NaN(), Y: 4, Width: math.Inf(1), Height: 10},
	}
}

func TestApplyConstraints_Idempotent(t *testing.T) {
	tests := []struct {
		name      string
		alignment float64
		w, h      float64
	}{
		{"no alignment", 0, 500, 300},
		{"grid alignment", 80, 500, 300},
		{"grid alignment odd container", 80, 498, 301},
		{"container below minimum", 80, 3, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			s.Alignment = tt.alignment

			once := ApplyConstraints(constraintFixtures(), s, tt.w, tt.h)
			twice := ApplyConstraints(once, s, tt.w, tt.h)

			if diff := cmp.Diff(once, twice); diff != "" {
				t.Errorf("second pass changed panels (-once +twice):\n%s", diff)
			}
		})
	}
}

func TestApplyConstraints_Bounds(t *testing.T) {
	for _, alignment := range []float64{0, 100} {
		s := DefaultSettings()
		s.Alignment = alignment
		out := ApplyConstraints(constraintFixtures(), s, 500, 300)

		for _, p := range out {
			assert.GreaterOrEqual(t, p.Width, s.MinPanelWidth, p.ID)
			assert.GreaterOrEqual(t, p.Height, s.MinPanelHeight, p.ID)
			assert.GreaterOrEqual(t, p.X, 0.0, p.ID)
			assert.GreaterOrEqual(t, p.Y, 0.0, p.ID)
			assert.LessOrEqual(t, p.Right(), 500.0, p.ID)
			assert.LessOrEqual(t, p.Bottom(), 300.0, p.ID)
			assert.True(t, p.Rotation >= 0 && p.Rotation < 360, p.ID)
		}
	}
}

func TestApplyConstraints_TranslateOrShrink(t *testing.T) {
	s := DefaultSettings()
	out := ApplyConstraints([]models.Panel{
		{ID: "right", X: 420, Y: 0, Width: 130, Height: 10},
		{ID: "left", X: 60, Y: 0, Width: 480, Height: 10},
	}, s, 500, 300)

	// past the midpoint: moved back, size kept
	assert.Equal(t, 370.0, out[0].X)
	assert.Equal(t, 130.0, out[0].Width)

	// before the midpoint: position kept, shrunk to fit
	assert.Equal(t, 60.0, out[1].X)
	assert.Equal(t, 440.0, out[1].Width)
}

func TestApplyConstraints_GridSnap(t *testing.T) {
	s := DefaultSettings()
	s.Alignment = 75

	out := ApplyConstraints([]models.Panel{{ID: "a", X: 12, Y: 18, Width: 21, Height: 9}}, s, 500, 300)

	assert.Equal(t, models.Panel{ID: "a", Shape: models.ShapeRectangle, X: 10, Y: 20, Width: 25, Height: 10}, out[0])
}

func TestApplyConstraints_DoesNotMutateInput(t *testing.T) {
	in := []models.Panel{{ID: "a", X: -5, Width: 1, Height: 1}}
	ApplyConstraints(in, DefaultSettings(), 100, 100)
	assert.Equal(t, -5.0, in[0].X)
}
