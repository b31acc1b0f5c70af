package intent

import (
	"regexp"
	"strings"
)

// rule pairs a predicate with the extractor run when it wins.
type rule struct {
	kind    Kind
	match   func(text string) bool
	extract func(text string, p *Params)
}

var (
	reTargetPanel  = regexp.MustCompile(`\bpanels?\b`)
	reTargetLayout = regexp.MustCompile(`\b(panels?|layout)\b`)
	reNumericOrder = regexp.MustCompile(`\b(numeric|numerical|numerically)\b|\bby (panel )?number\b`)

	reSummaryVerb  = regexp.MustCompile(`\b(list|show|summary|summarize|summarise|overview|status)\b`)
	reOptimizeVerb = regexp.MustCompile(`\b(optimi[sz]e|balance|arrange|organi[sz]e)\b`)
	reCreateVerb   = regexp.MustCompile(`\b(create|add)\b`)
	reMoveVerb     = regexp.MustCompile(`\b(move|relocate|position|place|shift)\b`)
	reResizeVerb   = regexp.MustCompile(`\b(resize|rescale|bigger|larger|enlarge|smaller|shrink)\b|\badjust (the )?size\b`)
	reRotateVerb   = regexp.MustCompile(`\b(rotate|rotation|angle)\b`)
	reDeleteVerb   = regexp.MustCompile(`\b(delete|remove|discard)\b`)
	reReorderVerb  = regexp.MustCompile(`\b(reorder|re-order|sort|arrange|order)\b`)
	reHelp         = regexp.MustCompile(`\b(help|capabilities)\b|what can you do`)
)

func both(a, b *regexp.Regexp) func(string) bool {
	return func(text string) bool {
		return a.MatchString(text) && b.MatchString(text)
	}
}

// rules are evaluated in order; the first match wins.
var rules = []rule{
	{
		kind:    KindSummary,
		match:   both(reSummaryVerb, reTargetLayout),
		extract: func(text string, p *Params) { p.All = extractAll(text) },
	},
	{
		kind: KindOptimize,
		match: func(text string) bool {
			return both(reOptimizeVerb, reTargetLayout)(text) && !reNumericOrder.MatchString(text)
		},
		extract: func(text string, p *Params) { p.Strategy = extractStrategy(text) },
	},
	{
		kind:  KindCreate,
		match: both(reCreateVerb, reTargetPanel),
		extract: func(text string, p *Params) {
			p.Width, p.Height, p.HasSize = extractDimensions(text)
			p.X, p.Y, p.HasPosition = extractCoordinates(text)
			if !p.HasPosition {
				p.Anchor = extractAnchor(text)
			}
			p.Shape = extractShape(text)
		},
	},
	{
		kind:  KindMove,
		match: both(reMoveVerb, reTargetPanel),
		extract: func(text string, p *Params) {
			p.Identifier = extractIdentifier(text)
			p.X, p.Y, p.HasPosition = extractCoordinates(text)
			if !p.HasPosition {
				p.Anchor = extractAnchor(text)
			}
		},
	},
	{
		kind:  KindResize,
		match: reResizeVerb.MatchString,
		extract: func(text string, p *Params) {
			p.Identifier = extractIdentifier(text)
			p.ScaleFactor = extractScale(text)
			if p.ScaleFactor == 0 {
				p.Width, p.Height, p.HasSize = extractDimensions(text)
			}
		},
	},
	{
		kind:  KindRotate,
		match: both(reRotateVerb, reTargetPanel),
		extract: func(text string, p *Params) {
			p.Identifier = extractIdentifier(text)
			p.Rotation, p.HasRotation = extractRotation(text)
		},
	},
	{
		kind:    KindDelete,
		match:   both(reDeleteVerb, reTargetPanel),
		extract: func(text string, p *Params) { p.Identifier = extractIdentifier(text) },
	},
	{
		kind:    KindReorder,
		match:   both(reReorderVerb, reNumericOrder),
		extract: func(string, *Params) {},
	},
	{
		kind:    KindHelp,
		match:   reHelp.MatchString,
		extract: func(string, *Params) {},
	},
}

// Normalize lowercases text and collapses whitespace.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// Parse classifies text. Exactly one rule is applied; when none matches the
// intent is KindFallback.
func Parse(text string) Intent {
	norm := Normalize(text)
	for _, r := range rules {
		if !r.match(norm) {
			continue
		}
		in := Intent{Kind: r.kind, Text: norm}
		r.extract(norm, &in.Params)
		return in
	}
	return Intent{Kind: KindFallback, Text: norm, Params: Params{All: extractAll(norm)}}
}
