package command

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/panel-layout/backend/internal/intent"
	"github.com/panel-layout/backend/internal/models"
)

// Reorder places panels on a single row, one slot per panel.
const (
	ReorderSlotWidth = 40.0
	ReorderGap       = 10.0
	ReorderSpacing   = ReorderSlotWidth + ReorderGap
)

var reDigits = regexp.MustCompile(`\d+`)

// numericKey returns the first run of digits in the panel's display number.
// Panels without one sort last.
func numericKey(p models.Panel) (float64, bool) {
	m := reDigits.FindString(p.PanelNumber)
	if m == "" {
		return math.Inf(1), false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return math.Inf(1), false
	}
	return v, true
}

// numericOrder returns the panels sorted by numericKey, stable on ties.
func numericOrder(panels []models.Panel) []models.Panel {
	sorted := models.ClonePanels(panels)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, _ := numericKey(sorted[i])
		b, _ := numericKey(sorted[j])
		return a < b
	})
	return sorted
}

// reorder moves each panel in turn. Moves run one after another so the
// final order is deterministic; a failed move is recorded and skipped.
func (t *turn) reorder() {
	if len(t.layout.Panels) == 0 {
		t.transition(StateResponding)
		t.resp.Reply = "There are no panels to reorder."
		return
	}

	order := numericOrder(t.layout.Panels)
	moved := 0
	for i, target := range order {
		x := intent.AnchorPadding + float64(i)*ReorderSpacing
		y := intent.AnchorPadding
		desc := fmt.Sprintf("Moved panel %s to slot %d (%s, %s)", target.Label(), i+1, dim(x), dim(y))

		idx := t.layout.FindIndex(target.ID)
		if idx < 0 {
			t.record(target.ID, desc, fmt.Errorf("panel %s no longer exists", target.Label()))
			continue
		}
		panels := models.ClonePanels(t.layout.Panels)
		panels[idx].X, panels[idx].Y = x, y

		if err := t.commit(panels, desc); err != nil {
			t.record(target.ID, desc, err)
			// Pick up whatever the store has now and keep going.
			if fresh, gerr := t.d.store.Get(t.ctx, t.req.ProjectID); gerr == nil {
				t.layout = fresh
			}
			continue
		}
		t.record(target.ID, desc, nil)
		moved++
	}
	if moved > 0 {
		t.notify()
	}

	labels := make([]string, len(order))
	for i, p := range order {
		labels[i] = p.Label()
	}

	t.transition(StateResponding)
	reply := fmt.Sprintf("Reordered %d of %d panels in numerical order: %s.", moved, len(order), strings.Join(labels, ", "))
	if failed := len(order) - moved; failed > 0 {
		reply += fmt.Sprintf(" %d move%s failed; see the action list for details.", failed, plural(failed))
	}
	t.resp.Reply = reply
}
