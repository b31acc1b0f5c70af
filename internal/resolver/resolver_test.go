package resolver

import (
	"testing"

	"github.com/panel-layout/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func fixturePanels() []models.Panel {
	return []models.Panel{
		{ID: "8f2c", PanelNumber: "P1", RollNumber: "R-100", X: 0, Y: 0, Width: 40, Height: 100},
		{ID: "9a1d", PanelNumber: "P003", RollNumber: "R-200", X: 50, Y: 0, Width: 20, Height: 20},
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"P1", "p1"},
		{"Panel p1", "p1"},
		{"  PANEL   #P1 ", "p1"},
		{"#12", "12"},
		{"panel", "panel"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestFindPanel(t *testing.T) {
	panels := fixturePanels()
	ctx := Context{ProjectID: "proj"}

	tests := []struct {
		name       string
		identifier string
		wantID     string
		wantFound  bool
	}{
		{"by panel number", "P1", "8f2c", true},
		{"prefix and case tolerant", "Panel p1", "8f2c", true},
		{"by id", "9A1D", "9a1d", true},
		{"by roll number", "r-200", "9a1d", true},
		{"leading zeros dropped", "p3", "9a1d", true},
		{"position in list is not a key", "#2", "", false},
		{"synthetic key", "proj:50,0:20x20", "9a1d", true},
		{"unknown", "ZZZ", "", false},
		{"empty", "   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := FindPanel(panels, tt.identifier, ctx)
			assert.Equal(t, tt.wantFound, ok)
			assert.Equal(t, tt.wantID, p.ID)
		})
	}
}

func TestFindPanel_NumericPanelNumbers(t *testing.T) {
	panels := []models.Panel{
		{ID: "a", PanelNumber: "2"},
		{ID: "b", PanelNumber: "1"},
		{ID: "c", PanelNumber: "P03"},
		{ID: "d", PanelNumber: "P3"},
	}

	tests := []struct {
		identifier string
		wantID     string
	}{
		{"1", "b"},
		{"panel 2", "a"},
		{"P3", "d"},
		{"p03", "c"},
	}
	for _, tt := range tests {
		t.Run(tt.identifier, func(t *testing.T) {
			p, ok := FindPanel(panels, tt.identifier, Context{})
			assert.True(t, ok)
			assert.Equal(t, tt.wantID, p.ID)
		})
	}
}

func TestFindPanel_SameEntityForEquivalentIdentifiers(t *testing.T) {
	panels := fixturePanels()
	a, okA := FindPanel(panels, "Panel p1", Context{})
	b, okB := FindPanel(panels, "P1", Context{})

	assert.True(t, okA)
	assert.True(t, okB)
	assert.Equal(t, a, b)
}
