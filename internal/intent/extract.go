package intent

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/panel-layout/backend/internal/models"
)

const number = `(-?\d+(?:\.\d+)?)`

var (
	reDimensions   = regexp.MustCompile(`\b(\d+(?:\.\d+)?)\s*(?:ft|feet|foot|')?\s*(?:x|×|by)\s*(\d+(?:\.\d+)?)`)
	reCoordsToAt   = regexp.MustCompile(`\b(?:to|at)\s+(?:x\s*=?\s*)?` + number + `\s*(?:ft|feet)?\s*(?:,\s*|\s+and\s+|\s+)(?:y\s*=?\s*)?` + number)
	reCoordsParen  = regexp.MustCompile(`\(\s*` + number + `\s*,\s*` + number + `\s*\)`)
	reCoordsXY     = regexp.MustCompile(`\bx\s*=\s*` + number + `\s*,?\s*(?:and\s+)?y\s*=\s*` + number)
	reIdentifier   = regexp.MustCompile(`\bpanels?\s+(?:number\s+|no\.?\s+|id\s+)?(#?[a-z0-9][a-z0-9_\-.]*)`)
	reLooseID      = regexp.MustCompile(`(?:^|\s)(#[a-z0-9][a-z0-9_\-]*|p-?\d+[a-z0-9]*)\b`)
	reRotationBy   = regexp.MustCompile(`\b(?:by|to)\s+` + number)
	reRotationDeg  = regexp.MustCompile(number + `\s*(?:°|deg\b|degrees?\b)`)
	reStandalone   = regexp.MustCompile(`(?:^|\s)` + number + `(?:\s|$|[.,!?])`)
	rePercent      = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:%|percent\b)`)
	reGrow         = regexp.MustCompile(`\b(bigger|larger|enlarge|grow|increase)\b`)
	reShrink       = regexp.MustCompile(`\b(smaller|shrink|reduce|decrease)\b`)
	reStrategy     = regexp.MustCompile(`\b(material|labor|labour|grid|balanced)\b`)
	reTriangle     = regexp.MustCompile(`\b(triangle|triangular)\b`)
	rePatch        = regexp.MustCompile(`\bpatch\b`)
	reAll          = regexp.MustCompile(`\b(all|complete|full|every)\b`)
	identifierStop = map[string]bool{
		"to": true, "by": true, "at": true, "the": true, "a": true, "an": true,
		"in": true, "on": true, "into": true, "near": true, "toward": true, "towards": true,
		"bigger": true, "smaller": true, "larger": true, "north": true, "south": true,
		"east": true, "west": true, "center": true, "centre": true, "up": true, "down": true,
		"left": true, "right": true, "top": true, "bottom": true, "please": true, "and": true,
		"layout": true, "for": true, "so": true, "with": true, "of": true,
	}
	scaleStep = 0.10
)

// extractDimensions reads "<w> [ft] x <h>".
func extractDimensions(text string) (w, h float64, ok bool) {
	m := reDimensions.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, false
	}
	w, errW := strconv.ParseFloat(m[1], 64)
	h, errH := strconv.ParseFloat(m[2], 64)
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

// extractCoordinates reads "to|at [x=] N, [y=] M", "(N, M)" or "x=N y=M".
func extractCoordinates(text string) (x, y float64, ok bool) {
	for _, re := range []*regexp.Regexp{reCoordsXY, reCoordsToAt, reCoordsParen} {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		x, errX := strconv.ParseFloat(m[1], 64)
		y, errY := strconv.ParseFloat(m[2], 64)
		if errX == nil && errY == nil {
			return x, y, true
		}
	}
	return 0, 0, false
}

// extractIdentifier returns the token naming a panel, e.g. "p1" from
// "move panel p1 to 10, 10".
func extractIdentifier(text string) string {
	for _, m := range reIdentifier.FindAllStringSubmatch(text, -1) {
		tok := strings.TrimRight(m[1], ".,;:!?")
		if tok == "" || identifierStop[tok] || strings.HasSuffix(tok, "ft") {
			continue
		}
		return tok
	}
	if m := reLooseID.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// extractRotation prefers "by|to N", then "N degrees", then the last bare
// number that is not the panel identifier.
func extractRotation(text string) (float64, bool) {
	rest := text
	if id := extractIdentifier(text); id != "" {
		rest = regexp.MustCompile(`(^|\s)`+regexp.QuoteMeta(id)+`\b`).ReplaceAllString(rest, " ")
	}

	var raw string
	if m := reRotationBy.FindStringSubmatch(rest); m != nil {
		raw = m[1]
	} else if m := reRotationDeg.FindStringSubmatch(rest); m != nil {
		raw = m[1]
	} else if all := reStandalone.FindAllStringSubmatch(rest, -1); len(all) > 0 {
		raw = all[len(all)-1][1]
	}
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return models.NormalizeRotation(v), true
}

// extractScale turns bigger/smaller language into a factor. A percentage
// overrides the default step of 10%.
func extractScale(text string) float64 {
	grow, shrink := reGrow.MatchString(text), reShrink.MatchString(text)
	pct := 0.0
	if m := rePercent.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > 0 {
			pct = v / 100
		}
	}
	if grow == shrink {
		// "resize panel 3 to 50%" is an absolute factor.
		if !grow && pct > 0 {
			return pct
		}
		return 0
	}
	step := scaleStep
	if pct > 0 {
		step = pct
	}
	if grow {
		return 1 + step
	}
	if step >= 1 {
		return 0
	}
	return 1 - step
}

func extractStrategy(text string) string {
	m := reStrategy.FindStringSubmatch(text)
	if m == nil {
		return "balanced"
	}
	switch m[1] {
	case "labour":
		return "labor"
	case "grid":
		return "balanced"
	}
	return m[1]
}

func extractShape(text string) models.Shape {
	switch {
	case reTriangle.MatchString(text):
		return models.ShapeRightTriangle
	case rePatch.MatchString(text):
		return models.ShapePatch
	default:
		return models.ShapeRectangle
	}
}

func extractAll(text string) bool {
	return reAll.MatchString(text)
}
