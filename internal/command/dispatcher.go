// Package command turns one free-form message into a layout change and a
// conversational reply.
package command

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/panel-layout/backend/internal/broadcast"
	"github.com/panel-layout/backend/internal/geometry"
	"github.com/panel-layout/backend/internal/intent"
	"github.com/panel-layout/backend/internal/models"
	"github.com/panel-layout/backend/internal/oracle"
	"github.com/panel-layout/backend/internal/resolver"
	"github.com/panel-layout/backend/internal/storage"
)

// ErrValidation is returned for requests without a project or a message.
var ErrValidation = errors.New("invalid command request")

// Options tunes the dispatcher.
type Options struct {
	SummaryLimit      int
	HistoryLimit      int
	OracleMaxTokens   int
	OracleTemperature float64
	BroadcastTimeout  time.Duration
}

// DefaultOptions returns the standard tuning.
func DefaultOptions() Options {
	return Options{
		SummaryLimit:      50,
		HistoryLimit:      6,
		OracleMaxTokens:   512,
		OracleTemperature: 0.3,
		BroadcastTimeout:  5 * time.Second,
	}
}

// Dispatcher runs the parse, resolve, mutate, respond pipeline.
type Dispatcher struct {
	store     storage.Store
	oracle    oracle.Oracle
	publisher broadcast.Publisher
	settings  geometry.Settings
	opts      Options
	log       *zap.Logger

	notifications sync.WaitGroup
}

// New creates a Dispatcher. oracle and publisher may be nil.
func New(store storage.Store, orc oracle.Oracle, pub broadcast.Publisher, settings geometry.Settings, opts Options, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	def := DefaultOptions()
	if opts.SummaryLimit <= 0 {
		opts.SummaryLimit = def.SummaryLimit
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = def.HistoryLimit
	}
	if opts.OracleMaxTokens <= 0 {
		opts.OracleMaxTokens = def.OracleMaxTokens
	}
	if opts.OracleTemperature < 0 {
		opts.OracleTemperature = def.OracleTemperature
	}
	if opts.BroadcastTimeout <= 0 {
		opts.BroadcastTimeout = def.BroadcastTimeout
	}
	return &Dispatcher{
		store:     store,
		oracle:    orc,
		publisher: pub,
		settings:  settings.Normalized(),
		opts:      opts,
		log:       log.With(zap.String("component", "dispatcher")),
	}
}

// turn is the state of one message moving through the pipeline.
type turn struct {
	d      *Dispatcher
	ctx    context.Context
	req    Request
	in     intent.Intent
	layout *models.Layout
	resp   *Response
	state  State
	log    *zap.Logger

	// panel the reply is about, for suggestions
	subject string
}

// Handle processes one request. Unresolved panels, missing parameters, write
// failures and oracle problems all produce a reply rather than an error.
// Errors are returned only for invalid requests (ErrValidation) and for a
// project that cannot be loaded.
func (d *Dispatcher) Handle(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	t := &turn{
		d:     d,
		ctx:   ctx,
		req:   req,
		resp:  newResponse(),
		state: StateIdle,
		log:   d.log.With(zap.String("project", req.ProjectID)),
	}
	defer func() {
		t.resp.Meta.DurationMs = time.Since(start).Milliseconds()
	}()

	t.transition(StateParsing)
	text := req.Text()
	if req.ProjectID == "" || text == "" {
		t.transition(StateResponding)
		t.resp.Reply = validationReply(req.ProjectID, text)
		t.finish()
		field := "message"
		if req.ProjectID == "" {
			field = "projectId"
		}
		return t.resp, fmt.Errorf("%w: %s is required", ErrValidation, field)
	}

	t.in = intent.Parse(text)
	t.resp.Meta.Intent = string(t.in.Kind)
	t.log = t.log.With(zap.String("intent", string(t.in.Kind)))

	layout, err := d.store.Get(ctx, req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("loading layout: %w", err)
	}
	t.layout = layout

	if missing := t.in.Missing(); len(missing) > 0 {
		t.transition(StateResponding)
		t.resp.Reply = clarification(t.in.Kind, missing)
		t.resp.Meta.Handled = true
		t.finish()
		return t.resp, nil
	}

	switch t.in.Kind {
	case intent.KindSummary:
		t.summary()
	case intent.KindOptimize:
		t.optimize()
	case intent.KindCreate:
		t.create()
	case intent.KindMove:
		t.move()
	case intent.KindResize:
		t.resize()
	case intent.KindRotate:
		t.rotate()
	case intent.KindDelete:
		t.remove()
	case intent.KindReorder:
		t.reorder()
	case intent.KindHelp:
		t.transition(StateResponding)
		t.resp.Reply = helpText
	default:
		t.fallback()
	}

	t.resp.Meta.Handled = t.in.Kind != intent.KindFallback
	t.finish()
	return t.resp, nil
}

// Wait blocks until in-flight broadcast notifications finish.
func (d *Dispatcher) Wait() {
	d.notifications.Wait()
}

func (t *turn) transition(to State) {
	if t.state == to && to != StateMutating {
		return
	}
	if !canTransition(t.state, to) {
		t.log.Warn("unexpected state transition",
			zap.Stringer("from", t.state), zap.Stringer("to", to))
	}
	t.log.Debug("state", zap.Stringer("from", t.state), zap.Stringer("to", to))
	t.state = to
}

// finish fills the envelope from the final layout and returns to Idle.
func (t *turn) finish() {
	if t.state != StateResponding {
		t.transition(StateResponding)
	}
	if t.layout != nil {
		t.resp.Panels = models.ClonePanels(t.layout.Panels)
		t.resp.Meta.PanelCount = len(t.layout.Panels)
		t.resp.Meta.Revision = t.layout.Revision
	}

	last := ""
	for i := len(t.resp.Actions) - 1; i >= 0; i-- {
		if t.resp.Actions[i].Success {
			last = t.resp.Actions[i].Intent
			break
		}
	}
	switch {
	case last != "":
		t.resp.LastAction = last
	case t.in.Kind == intent.KindSummary:
		last = string(intent.KindSummary)
	default:
		last = t.req.Context.LastAction
	}
	t.resp.Suggestions = suggestions(intent.Kind(last), t.subject)
	t.transition(StateIdle)
}

// record appends an ActionRecord.
func (t *turn) record(panelID, description string, err error) {
	a := models.ActionRecord{
		ID:          uuid.New().String(),
		Intent:      string(t.in.Kind),
		PanelID:     panelID,
		Description: description,
		Timestamp:   time.Now(),
		Success:     err == nil,
	}
	if err != nil {
		a.Error = err.Error()
	}
	t.resp.Actions = append(t.resp.Actions, a)
}

// resolve finds the panel named by the intent's identifier.
func (t *turn) resolve() (models.Panel, bool) {
	t.transition(StateResolving)
	p, ok := resolver.FindPanel(t.layout.Panels, t.in.Params.Identifier, resolver.Context{ProjectID: t.req.ProjectID})
	if !ok {
		t.transition(StateResponding)
		t.resp.Reply = notFoundReply(t.in.Params.Identifier, t.layout.Panels, t.in.Kind)
		return models.Panel{}, false
	}
	t.subject = p.Label()
	return p, true
}

// commit writes panels conditioned on the revision this turn last saw,
// re-reads the layout and notifies subscribers.
func (t *turn) commit(panels []models.Panel, reason string) error {
	t.transition(StateMutating)
	written, err := t.d.store.ReplacePanels(t.ctx, t.req.ProjectID, panels, storage.ReplaceMeta{
		IfRevision: t.layout.Revision,
		Source:     "command",
		Reason:     reason,
	})
	if err != nil {
		t.log.Warn("layout write failed", zap.String("reason", reason), zap.Error(err))
		return err
	}

	fresh, err := t.d.store.Get(t.ctx, t.req.ProjectID)
	if err != nil {
		t.log.Warn("re-read after write failed", zap.Error(err))
		fresh = written
	}
	t.layout = fresh
	return nil
}

// notify publishes the committed layout without holding up the reply.
func (t *turn) notify() {
	d := t.d
	if d.publisher == nil || t.layout == nil {
		return
	}
	ev := broadcast.LayoutUpdated(t.layout, "command:"+string(t.in.Kind))
	projectID := t.req.ProjectID

	d.notifications.Add(1)
	go func() {
		defer d.notifications.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.opts.BroadcastTimeout)
		defer cancel()
		if err := d.publisher.Publish(ctx, projectID, ev); err != nil {
			d.log.Warn("broadcast failed", zap.String("project", projectID), zap.Error(err))
		}
	}()
}

// mutationFailed renders a store write error as a reply.
func (t *turn) mutationFailed(panelID, description string, err error) {
	t.record(panelID, description, err)
	t.transition(StateResponding)
	if errors.Is(err, storage.ErrRevisionConflict) {
		t.resp.Reply = "The layout changed while I was working on that. Please try again."
		return
	}
	t.resp.Reply = "Sorry, I couldn't save that change. Please try again in a moment."
}
