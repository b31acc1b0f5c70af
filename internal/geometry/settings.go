// Package geometry packs, constrains and de-overlaps panels inside a
// rectangular container. Every function here is pure: inputs are copied,
// malformed values are normalized and nothing returns an error.
package geometry

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings tunes constraint application and the packing strategies.
type Settings struct {
	MinPanelWidth      float64 `json:"minPanelWidth" yaml:"min_panel_width" xml:"MinPanelWidth"`
	MinPanelHeight     float64 `json:"minPanelHeight" yaml:"min_panel_height" xml:"MinPanelHeight"`
	Margin             float64 `json:"margin" yaml:"margin" xml:"Margin"`
	Alignment          float64 `json:"alignment" yaml:"alignment" xml:"Alignment"` // 0-100
	AlignmentThreshold float64 `json:"alignmentThreshold" yaml:"alignment_threshold" xml:"AlignmentThreshold"`
	GridSize           float64 `json:"gridSize" yaml:"grid_size" xml:"GridSize"`
	GroupSpacing       float64 `json:"groupSpacing" yaml:"group_spacing" xml:"GroupSpacing"`
	SpiralAngleStep    float64 `json:"spiralAngleStep" yaml:"spiral_angle_step" xml:"SpiralAngleStep"` // degrees
	SpiralRadiusStep   float64 `json:"spiralRadiusStep" yaml:"spiral_radius_step" xml:"SpiralRadiusStep"`
	SpiralTurnEvery    int     `json:"spiralTurnEvery" yaml:"spiral_turn_every" xml:"SpiralTurnEvery"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		MinPanelWidth:      5,
		MinPanelHeight:     5,
		Margin:             2,
		Alignment:          0,
		AlignmentThreshold: 50,
		GridSize:           5,
		GroupSpacing:       10,
		SpiralAngleStep:    45,
		SpiralRadiusStep:   25,
		SpiralTurnEvery:    8,
	}
}

// Normalized replaces out-of-range values with defaults. Zero margins and
// zero alignment are legitimate and kept.
func (s Settings) Normalized() Settings {
	d := DefaultSettings()
	if s.MinPanelWidth <= 0 {
		s.MinPanelWidth = d.MinPanelWidth
	}
	if s.MinPanelHeight <= 0 {
		s.MinPanelHeight = d.MinPanelHeight
	}
	if s.Margin < 0 {
		s.Margin = d.Margin
	}
	if s.GroupSpacing < 0 {
		s.GroupSpacing = d.GroupSpacing
	}
	if s.Alignment < 0 {
		s.Alignment = 0
	}
	if s.Alignment > 100 {
		s.Alignment = 100
	}
	if s.AlignmentThreshold <= 0 {
		s.AlignmentThreshold = d.AlignmentThreshold
	}
	if s.GridSize <= 0 {
		s.GridSize = d.GridSize
	}
	if s.SpiralAngleStep <= 0 {
		s.SpiralAngleStep = d.SpiralAngleStep
	}
	if s.SpiralRadiusStep <= 0 {
		s.SpiralRadiusStep = d.SpiralRadiusStep
	}
	if s.SpiralTurnEvery <= 0 {
		s.SpiralTurnEvery = d.SpiralTurnEvery
	}
	return s
}

// Aligned reports whether grid snapping is active.
func (s Settings) Aligned() bool {
	return s.Alignment > s.AlignmentThreshold
}

// LoadSettings reads a YAML settings profile. Keys that are absent keep
// their default value.
func LoadSettings(path string) (Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return Settings{}, fmt.Errorf("opening settings profile: %w", err)
	}
	defer f.Close()

	return ParseSettings(f)
}

// ParseSettings reads a YAML settings profile from r.
func ParseSettings(r io.Reader) (Settings, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Settings{}, err
	}

	s := DefaultSettings()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parsing settings profile: %w", err)
	}
	return s.Normalized(), nil
}
