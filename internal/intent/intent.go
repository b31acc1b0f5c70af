// Package intent classifies free-form layout commands into one of a fixed
// set of intents and extracts their parameters.
package intent

import "github.com/panel-layout/backend/internal/models"

// Kind is the tag of an Intent.
type Kind string

const (
	KindSummary  Kind = "summary"
	KindOptimize Kind = "optimize"
	KindCreate   Kind = "create"
	KindMove     Kind = "move"
	KindResize   Kind = "resize"
	KindRotate   Kind = "rotate"
	KindDelete   Kind = "delete"
	KindReorder  Kind = "reorder-numeric"
	KindHelp     Kind = "help"
	KindFallback Kind = "fallback"
)

// Params holds everything an extractor could pull out of the text. The Has*
// flags distinguish "absent" from a zero value.
type Params struct {
	Identifier string `json:"identifier,omitempty"`

	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
	HasSize bool    `json:"hasSize,omitempty"`

	X           float64 `json:"x,omitempty"`
	Y           float64 `json:"y,omitempty"`
	HasPosition bool    `json:"hasPosition,omitempty"`
	Anchor      Anchor  `json:"anchor,omitempty"`

	Rotation    float64 `json:"rotation,omitempty"`
	HasRotation bool    `json:"hasRotation,omitempty"`

	// ScaleFactor is a relative resize such as 1.1 for "bigger"; 0 when absent.
	ScaleFactor float64 `json:"scaleFactor,omitempty"`

	Strategy string       `json:"strategy,omitempty"`
	Shape    models.Shape `json:"shape,omitempty"`
	All      bool         `json:"all,omitempty"`
}

// Intent is the classified purpose of a command.
type Intent struct {
	Kind   Kind   `json:"kind"`
	Params Params `json:"params"`
	Text   string `json:"text"` // normalized input
}

// Missing lists required parameters that the text did not supply.
func (i Intent) Missing() []string {
	var missing []string
	p := i.Params
	switch i.Kind {
	case KindMove, KindResize, KindRotate, KindDelete:
		if p.Identifier == "" {
			missing = append(missing, "identifier")
		}
	}
	switch i.Kind {
	case KindMove:
		if !p.HasPosition && p.Anchor == AnchorNone {
			missing = append(missing, "coordinates")
		}
	case KindResize:
		if !p.HasSize && p.ScaleFactor == 0 {
			missing = append(missing, "dimensions")
		}
	case KindRotate:
		if !p.HasRotation {
			missing = append(missing, "rotation")
		}
	}
	return missing
}

// Example returns a sample command for kind, used in clarifying replies.
func Example(kind Kind) string {
	switch kind {
	case KindSummary:
		return `"show me a summary of the panels"`
	case KindOptimize:
		return `"optimize the layout for material"`
	case KindCreate:
		return `"create a new 40ft x 100ft panel at 10, 20"`
	case KindMove:
		return `"move panel P1 to 120, 40" or "move panel P1 to the north edge"`
	case KindResize:
		return `"resize panel P1 to 40 x 80" or "make panel P1 bigger"`
	case KindRotate:
		return `"rotate panel P1 by 90 degrees"`
	case KindDelete:
		return `"delete panel P1"`
	case KindReorder:
		return `"reorder panels in numerical order"`
	default:
		return `"help"`
	}
}
