// Package models contains domain types for the panel layout service.
package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Shape is the outline class of a panel.
type Shape string

const (
	ShapeRectangle     Shape = "rectangle"
	ShapeRightTriangle Shape = "right-triangle"
	ShapePatch         Shape = "patch"
	ShapeIrregular     Shape = "irregular"
)

// Default values applied when a panel field is missing or invalid.
const (
	DefaultPanelWidth  = 40.0
	DefaultPanelHeight = 40.0
	DefaultMaterial    = "standard"
	DefaultColor       = "#9E9E9E"
)

// ParseShape maps free text onto a Shape. Unknown values are rectangles.
func ParseShape(s string) Shape {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "right-triangle", "right_triangle", "righttriangle", "triangle":
		return ShapeRightTriangle
	case "patch":
		return ShapePatch
	case "irregular", "polygon":
		return ShapeIrregular
	default:
		return ShapeRectangle
	}
}

// Panel is a positioned, sized, rotatable unit inside a layout.
type Panel struct {
	ID          string  `json:"id" msgpack:"id"`
	PanelNumber string  `json:"panelNumber" msgpack:"panelNumber"`
	RollNumber  string  `json:"rollNumber,omitempty" msgpack:"rollNumber,omitempty"`
	Shape       Shape   `json:"shape" msgpack:"shape"`
	X           float64 `json:"x" msgpack:"x"`
	Y           float64 `json:"y" msgpack:"y"`
	Width       float64 `json:"width" msgpack:"width"`
	Height      float64 `json:"height" msgpack:"height"`
	Rotation    float64 `json:"rotation" msgpack:"rotation"` // degrees, [0, 360)
	Material    string  `json:"material,omitempty" msgpack:"material,omitempty"`
	Thickness   float64 `json:"thickness,omitempty" msgpack:"thickness,omitempty"`
	Color       string  `json:"color,omitempty" msgpack:"color,omitempty"`
}

// Area returns width * height.
func (p Panel) Area() float64 {
	return p.Width * p.Height
}

// Right returns the x coordinate of the right edge.
func (p Panel) Right() float64 {
	return p.X + p.Width
}

// Bottom returns the y coordinate of the bottom edge.
func (p Panel) Bottom() float64 {
	return p.Y + p.Height
}

// Label is the name used when talking about the panel to a user.
func (p Panel) Label() string {
	if p.PanelNumber != "" {
		return p.PanelNumber
	}
	return p.ID
}

// NormalizeRotation folds any angle into [0, 360).
func NormalizeRotation(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}
	r := math.Mod(deg, 360)
	if r < 0 {
		r += 360
	}
	if r >= 360 {
		r = 0
	}
	return r
}

// NormalizePanel converts a loosely typed panel payload into a Panel.
// It is the only place that knows about alternate field spellings; invalid
// or missing values fall back to defaults instead of failing.
func NormalizePanel(raw map[string]any) Panel {
	p := Panel{
		ID:          stringField(raw, "id", "panel_id", "panelId"),
		PanelNumber: stringField(raw, "panelNumber", "panel_number", "number", "display_number"),
		RollNumber:  stringField(raw, "rollNumber", "roll_number", "roll", "lot", "lot_number"),
		Shape:       ParseShape(stringField(raw, "shape", "type")),
		Material:    stringField(raw, "material", "material_type"),
		Color:       stringField(raw, "color", "colour"),
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Material == "" {
		p.Material = DefaultMaterial
	}
	if p.Color == "" {
		p.Color = DefaultColor
	}

	if v, ok := numberField(raw, "x", "x_feet", "xFeet", "left"); ok && v > 0 {
		p.X = v
	}
	if v, ok := numberField(raw, "y", "y_feet", "yFeet", "top"); ok && v > 0 {
		p.Y = v
	}
	p.Width = DefaultPanelWidth
	if v, ok := numberField(raw, "width", "width_feet", "widthFeet", "w"); ok && v > 0 {
		p.Width = v
	}
	p.Height = DefaultPanelHeight
	if v, ok := numberField(raw, "height", "height_feet", "heightFeet", "length", "length_feet", "h"); ok && v > 0 {
		p.Height = v
	}
	if v, ok := numberField(raw, "rotation", "angle", "rotation_degrees"); ok {
		p.Rotation = NormalizeRotation(v)
	}
	if v, ok := numberField(raw, "thickness", "thickness_mil", "thicknessMil"); ok && v > 0 {
		p.Thickness = v
	}
	return p
}

func stringField(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64)
		case int:
			return strconv.Itoa(t)
		case json.Number:
			return t.String()
		}
	}
	return ""
}

func numberField(raw map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		var f float64
		switch t := v.(type) {
		case float64:
			f = t
		case float32:
			f = float64(t)
		case int:
			f = float64(t)
		case int64:
			f = float64(t)
		case json.Number:
			n, err := t.Float64()
			if err != nil {
				continue
			}
			f = n
		case string:
			n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
			if err != nil {
				continue
			}
			f = n
		default:
			continue
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		return f, true
	}
	return 0, false
}
