package command

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/panel-layout/backend/internal/geometry"
	"github.com/panel-layout/backend/internal/intent"
	"github.com/panel-layout/backend/internal/models"
)

func (t *turn) summary() {
	t.transition(StateResponding)
	panels := t.layout.Panels
	if len(panels) == 0 {
		t.resp.Reply = "The layout is empty. Try \"create a new 40 x 100 panel\" to add one."
		return
	}

	limit := t.d.opts.SummaryLimit
	if t.in.Params.All {
		limit = len(panels)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The layout has %d panel%s in a %s x %s container", len(panels), plural(len(panels)),
		dim(t.layout.ContainerWidth), dim(t.layout.ContainerHeight))
	if materials := countMaterials(panels); len(materials) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(materials, ", "))
	}
	b.WriteString(":\n")
	b.WriteString(listing(panels, limit))
	t.resp.Reply = b.String()
}

func (t *turn) optimize() {
	strategy := geometry.ParseStrategy(t.in.Params.Strategy)
	if len(t.layout.Panels) == 0 {
		t.transition(StateResponding)
		t.resp.Reply = "There are no panels to optimize yet."
		return
	}

	optimized := geometry.OptimizePanelLayout(t.layout.Panels, strategy, t.d.settings,
		t.layout.ContainerWidth, t.layout.ContainerHeight)
	desc := fmt.Sprintf("Optimized %d panels using the %s strategy", len(optimized), strategy)
	if err := t.commit(optimized, desc); err != nil {
		t.mutationFailed("", desc, err)
		return
	}
	t.record("", desc, nil)
	t.notify()

	t.transition(StateResponding)
	util := geometry.Utilization(t.layout.Panels, t.layout.ContainerWidth, t.layout.ContainerHeight)
	t.resp.Reply = fmt.Sprintf("%s. Container utilization is now %.1f%%.", desc, util*100)
}

func (t *turn) create() {
	p := t.in.Params
	panel := models.Panel{
		ID:          uuid.New().String(),
		PanelNumber: nextPanelNumber(t.layout.Panels),
		Shape:       p.Shape,
		Width:       models.DefaultPanelWidth,
		Height:      models.DefaultPanelHeight,
		Material:    models.DefaultMaterial,
		Color:       models.DefaultColor,
	}
	if panel.Shape == "" {
		panel.Shape = models.ShapeRectangle
	}
	if p.HasSize {
		panel.Width, panel.Height = p.Width, p.Height
	}

	switch {
	case p.HasPosition:
		panel.X, panel.Y = p.X, p.Y
	case p.Anchor != intent.AnchorNone:
		panel.X, panel.Y = intent.AnchorPoint(p.Anchor, t.layout.ContainerWidth, t.layout.ContainerHeight, panel.Width, panel.Height)
	default:
		panel.X, panel.Y = intent.AnchorPoint(intent.AnchorNorthWest, t.layout.ContainerWidth, t.layout.ContainerHeight, panel.Width, panel.Height)
	}
	panel = t.constrain(panel)
	t.subject = panel.Label()

	desc := fmt.Sprintf("Created panel %s (%s x %s)", panel.Label(), dim(panel.Width), dim(panel.Height))
	panels := append(models.ClonePanels(t.layout.Panels), panel)
	if err := t.commit(panels, desc); err != nil {
		t.mutationFailed(panel.ID, desc, err)
		return
	}
	t.record(panel.ID, desc, nil)
	t.notify()

	t.transition(StateResponding)
	reply := fmt.Sprintf("%s at (%s, %s).", desc, dim(panel.X), dim(panel.Y))
	switch {
	case p.HasPosition:
	case p.Anchor != intent.AnchorNone:
		reply += fmt.Sprintf(" I placed it near %s. Tell me coordinates, e.g. \"move panel %s to 120, 40\", if you want it somewhere exact.",
			p.Anchor.Describe(), panel.Label())
	default:
		reply += fmt.Sprintf(" Where should it go? Say \"move panel %s to 120, 40\" or \"move panel %s to the center\".",
			panel.Label(), panel.Label())
	}
	t.resp.Reply = reply
}

func (t *turn) move() {
	target, ok := t.resolve()
	if !ok {
		return
	}

	p := t.in.Params
	moved := target
	if p.HasPosition {
		moved.X, moved.Y = p.X, p.Y
	} else {
		moved.X, moved.Y = intent.AnchorPoint(p.Anchor, t.layout.ContainerWidth, t.layout.ContainerHeight, target.Width, target.Height)
	}
	moved = t.constrain(moved)

	desc := fmt.Sprintf("Moved panel %s to (%s, %s)", moved.Label(), dim(moved.X), dim(moved.Y))
	if !t.replace(moved, desc) {
		return
	}
	reply := desc
	if !p.HasPosition {
		reply += " near " + p.Anchor.Describe()
	}
	t.resp.Reply = reply + "."
}

func (t *turn) resize() {
	target, ok := t.resolve()
	if !ok {
		return
	}

	p := t.in.Params
	resized := target
	if p.ScaleFactor > 0 {
		resized.Width = target.Width * p.ScaleFactor
		resized.Height = target.Height * p.ScaleFactor
	} else {
		resized.Width, resized.Height = p.Width, p.Height
	}
	resized = t.constrain(resized)

	desc := fmt.Sprintf("Resized panel %s from %s x %s to %s x %s", resized.Label(),
		dim(target.Width), dim(target.Height), dim(resized.Width), dim(resized.Height))
	if !t.replace(resized, desc) {
		return
	}
	t.resp.Reply = desc + "."
}

func (t *turn) rotate() {
	target, ok := t.resolve()
	if !ok {
		return
	}

	deg := t.in.Params.Rotation
	if math.IsNaN(deg) || deg < 0 || deg >= 360 {
		t.transition(StateResponding)
		t.resp.Reply = fmt.Sprintf("Rotation must be between 0 and 360 degrees. Try %s.", intent.Example(intent.KindRotate))
		return
	}

	rotated := target
	rotated.Rotation = deg
	desc := fmt.Sprintf("Rotated panel %s to %s°", rotated.Label(), dim(deg))
	if !t.replace(rotated, desc) {
		return
	}
	t.resp.Reply = desc + "."
}

func (t *turn) remove() {
	target, ok := t.resolve()
	if !ok {
		return
	}

	panels := make([]models.Panel, 0, len(t.layout.Panels))
	for _, p := range t.layout.Panels {
		if p.ID != target.ID {
			panels = append(panels, p)
		}
	}
	desc := fmt.Sprintf("Deleted panel %s", target.Label())
	if err := t.commit(panels, desc); err != nil {
		t.mutationFailed(target.ID, desc, err)
		return
	}
	t.record(target.ID, desc, nil)
	t.notify()

	t.transition(StateResponding)
	t.resp.Reply = fmt.Sprintf("%s. %d panel%s left.", desc, len(t.layout.Panels), plural(len(t.layout.Panels)))
}

// replace swaps one panel in the layout and commits. It reports whether the
// write succeeded; on failure the reply is already set.
func (t *turn) replace(updated models.Panel, desc string) bool {
	idx := t.layout.FindIndex(updated.ID)
	panels := models.ClonePanels(t.layout.Panels)
	panels[idx] = updated

	if err := t.commit(panels, desc); err != nil {
		t.mutationFailed(updated.ID, desc, err)
		return false
	}
	t.record(updated.ID, desc, nil)
	t.notify()
	t.transition(StateResponding)
	return true
}

// constrain applies the geometry constraints to a single panel.
func (t *turn) constrain(p models.Panel) models.Panel {
	return geometry.ApplyConstraints([]models.Panel{p}, t.d.settings, t.layout.ContainerWidth, t.layout.ContainerHeight)[0]
}
