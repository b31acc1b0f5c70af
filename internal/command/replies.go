package command

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/panel-layout/backend/internal/intent"
	"github.com/panel-layout/backend/internal/models"
)

const helpText = `I can work with the panel layout for you:
- Summarize it: "show me a summary of the panels"
- Optimize it: "optimize the layout for material" (material, labor or balanced)
- Add panels: "create a new 40ft x 100ft panel near the north edge"
- Move panels: "move panel P1 to 120, 40" or "move panel P1 to the top right"
- Resize panels: "resize panel P1 to 40 x 80" or "make panel P1 20% bigger"
- Rotate panels: "rotate panel P1 by 90 degrees"
- Delete panels: "delete panel P1"
- Reorder panels: "reorder panels in numerical order"
Anything else goes to the assistant.`

func validationReply(projectID, text string) string {
	if projectID == "" {
		return "I need to know which project you're working on before I can help."
	}
	return "What would you like to do with the layout? Type \"help\" to see what I can do."
}

func clarification(kind intent.Kind, missing []string) string {
	return fmt.Sprintf("I can %s that, but I need %s. Try %s.", verb(kind), joinWords(describeMissing(missing)), intent.Example(kind))
}

func describeMissing(missing []string) []string {
	out := make([]string, len(missing))
	for i, m := range missing {
		switch m {
		case "identifier":
			out[i] = "to know which panel"
		case "coordinates":
			out[i] = "a position or direction"
		case "dimensions":
			out[i] = "the new size"
		case "rotation":
			out[i] = "an angle in degrees"
		default:
			out[i] = m
		}
	}
	return out
}

func verb(kind intent.Kind) string {
	switch kind {
	case intent.KindMove:
		return "move"
	case intent.KindResize:
		return "resize"
	case intent.KindRotate:
		return "rotate"
	case intent.KindDelete:
		return "delete"
	default:
		return "do"
	}
}

func notFoundReply(identifier string, panels []models.Panel, kind intent.Kind) string {
	if len(panels) == 0 {
		return fmt.Sprintf("I couldn't find panel %q because the layout is empty.", identifier)
	}
	const shown = 10
	labels := make([]string, 0, shown)
	for i, p := range panels {
		if i == shown {
			break
		}
		labels = append(labels, p.Label())
	}
	more := ""
	if len(panels) > shown {
		more = fmt.Sprintf(" and %d more", len(panels)-shown)
	}
	return fmt.Sprintf("I couldn't find panel %q. Available panels: %s%s. Try %s.",
		identifier, strings.Join(labels, ", "), more, intent.Example(kind))
}

// suggestions proposes follow-ups for the last action. subject is the
// panel the action touched, when known.
func suggestions(last intent.Kind, subject string) []string {
	ref := "P1"
	if subject != "" {
		ref = subject
	}
	switch last {
	case intent.KindCreate:
		return []string{
			fmt.Sprintf("Move panel %s to the center", ref),
			fmt.Sprintf("Rotate panel %s by 90 degrees", ref),
			fmt.Sprintf("Make panel %s bigger", ref),
		}
	case intent.KindMove:
		return []string{
			fmt.Sprintf("Rotate panel %s by 90 degrees", ref),
			fmt.Sprintf("Resize panel %s to 40 x 80", ref),
			"Optimize the layout",
		}
	case intent.KindResize:
		return []string{
			fmt.Sprintf("Move panel %s to the center", ref),
			"Optimize the layout",
		}
	case intent.KindRotate:
		return []string{
			fmt.Sprintf("Move panel %s to the top left", ref),
			fmt.Sprintf("Rotate panel %s by 0 degrees", ref),
		}
	case intent.KindDelete:
		return []string{"Show me a summary of the panels", "Create a new 40 x 40 panel"}
	case intent.KindOptimize:
		return []string{"Show me a summary of the panels", "Reorder panels in numerical order"}
	case intent.KindReorder:
		return []string{"Show me a summary of the panels", "Optimize the layout for labor"}
	case intent.KindSummary:
		return []string{"Optimize the layout for material", "Create a new 40 x 100 panel"}
	default:
		return []string{"Show me a summary of the panels", "Help"}
	}
}

// listing renders one line per panel, at most limit lines.
func listing(panels []models.Panel, limit int) string {
	var b strings.Builder
	for i, p := range panels {
		if i == limit {
			fmt.Fprintf(&b, "...and %d more. Ask for the complete list to see them all.", len(panels)-limit)
			break
		}
		fmt.Fprintf(&b, "- %s: %s x %s at (%s, %s)", p.Label(), dim(p.Width), dim(p.Height), dim(p.X), dim(p.Y))
		if p.Rotation != 0 {
			fmt.Fprintf(&b, ", rotated %s°", dim(p.Rotation))
		}
		if p.Material != "" {
			fmt.Fprintf(&b, ", %s", p.Material)
		}
		if p.Shape != "" && p.Shape != models.ShapeRectangle {
			fmt.Fprintf(&b, ", %s", p.Shape)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// countMaterials returns "<n> <material>" entries, largest first.
func countMaterials(panels []models.Panel) []string {
	counts := make(map[string]int)
	for _, p := range panels {
		if p.Material != "" {
			counts[p.Material]++
		}
	}
	names := make([]string, 0, len(counts))
	for m := range counts {
		names = append(names, m)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	out := make([]string, len(names))
	for i, m := range names {
		out[i] = fmt.Sprintf("%d %s", counts[m], m)
	}
	return out
}

// nextPanelNumber returns the first unused "P###" display number.
func nextPanelNumber(panels []models.Panel) string {
	used := make(map[string]bool, len(panels))
	for _, p := range panels {
		used[strings.ToUpper(p.PanelNumber)] = true
	}
	for n := len(panels) + 1; ; n++ {
		candidate := fmt.Sprintf("P%03d", n)
		if !used[candidate] {
			return candidate
		}
	}
}

// dim formats a length or angle to one decimal place.
func dim(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func joinWords(words []string) string {
	switch len(words) {
	case 0:
		return ""
	case 1:
		return words[0]
	default:
		return strings.Join(words[:len(words)-1], ", ") + " and " + words[len(words)-1]
	}
}
