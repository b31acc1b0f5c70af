package intent

import (
	"math"
	"regexp"
	"strings"
)

// AnchorPadding keeps anchored panels this far from the container edge.
const AnchorPadding = 20.0

// Anchor is a named location inside the container.
type Anchor string

const (
	AnchorNone      Anchor = ""
	AnchorCenter    Anchor = "center"
	AnchorNorth     Anchor = "north"
	AnchorSouth     Anchor = "south"
	AnchorEast      Anchor = "east"
	AnchorWest      Anchor = "west"
	AnchorNorthEast Anchor = "northeast"
	AnchorNorthWest Anchor = "northwest"
	AnchorSouthEast Anchor = "southeast"
	AnchorSouthWest Anchor = "southwest"
)

// Corners are matched before single edges so "top right" is not read as "top".
var anchorPatterns = []struct {
	anchor Anchor
	re     *regexp.Regexp
}{
	{AnchorNorthEast, regexp.MustCompile(`\b(north[\s-]?east|top[\s-]?right|upper[\s-]?right)\b`)},
	{AnchorNorthWest, regexp.MustCompile(`\b(north[\s-]?west|top[\s-]?left|upper[\s-]?left)\b`)},
	{AnchorSouthEast, regexp.MustCompile(`\b(south[\s-]?east|bottom[\s-]?right|lower[\s-]?right)\b`)},
	{AnchorSouthWest, regexp.MustCompile(`\b(south[\s-]?west|bottom[\s-]?left|lower[\s-]?left)\b`)},
	{AnchorCenter, regexp.MustCompile(`\b(center|centre|middle)\b`)},
	{AnchorNorth, regexp.MustCompile(`\b(north|top)\b`)},
	{AnchorSouth, regexp.MustCompile(`\b(south|bottom)\b`)},
	{AnchorEast, regexp.MustCompile(`\b(east|right)\b`)},
	{AnchorWest, regexp.MustCompile(`\b(west|left)\b`)},
}

func extractAnchor(text string) Anchor {
	text = strings.NewReplacer("right triangle", "", "right-triangle", "").Replace(text)
	for _, ap := range anchorPatterns {
		if ap.re.MatchString(text) {
			return ap.anchor
		}
	}
	return AnchorNone
}

// AnchorPoint resolves an anchor to the top-left corner a panel of size
// panelW x panelH should take inside a containerW x containerH container.
func AnchorPoint(a Anchor, containerW, containerH, panelW, panelH float64) (x, y float64) {
	midX := (containerW - panelW) / 2
	midY := (containerH - panelH) / 2
	farX := containerW - panelW - AnchorPadding
	farY := containerH - panelH - AnchorPadding

	switch a {
	case AnchorNorth:
		x, y = midX, AnchorPadding
	case AnchorSouth:
		x, y = midX, farY
	case AnchorEast:
		x, y = farX, midY
	case AnchorWest:
		x, y = AnchorPadding, midY
	case AnchorNorthEast:
		x, y = farX, AnchorPadding
	case AnchorNorthWest:
		x, y = AnchorPadding, AnchorPadding
	case AnchorSouthEast:
		x, y = farX, farY
	case AnchorSouthWest:
		x, y = AnchorPadding, farY
	default:
		x, y = midX, midY
	}
	return math.Max(0, x), math.Max(0, y)
}

// Describe renders an anchor for replies, e.g. "the north edge".
func (a Anchor) Describe() string {
	switch a {
	case AnchorCenter:
		return "the center"
	case AnchorNorth, AnchorSouth, AnchorEast, AnchorWest:
		return "the " + string(a) + " edge"
	case AnchorNone:
		return ""
	default:
		return "the " + string(a) + " corner"
	}
}
