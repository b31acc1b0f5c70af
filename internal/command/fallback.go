package command

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/panel-layout/backend/internal/oracle"
)

const systemPrompt = `You are the assistant of a panel layout tool. Users arrange rectangular and
irregular panels inside a bounded container. Answer briefly and concretely using
the layout listing you are given. When the user wants to change the layout,
tell them the exact command to type, for example "move panel P1 to 120, 40",
"rotate panel P1 by 90 degrees", "optimize the layout for material" or
"create a new 40 x 100 panel". Never claim you changed the layout yourself.`

const (
	fallbackUnavailable = "I can only handle layout commands right now. Type \"help\" to see what I can do."
	fallbackFailed      = "Sorry, I couldn't work that one out. Type \"help\" to see the commands I understand."
)

// fallback asks the oracle. It never fails the request.
func (t *turn) fallback() {
	t.transition(StateResponding)
	if t.d.oracle == nil {
		t.resp.Reply = fallbackUnavailable
		return
	}

	opts := t.d.opts
	text, err := t.d.oracle.Complete(t.ctx, systemPrompt, t.prompt(), opts.OracleMaxTokens, opts.OracleTemperature)
	switch {
	case err == nil:
		t.resp.Reply = text
	case errors.Is(err, oracle.ErrUnavailable):
		t.resp.Reply = fallbackUnavailable
	default:
		t.log.Warn("oracle fallback failed", zap.Error(err))
		t.resp.Reply = fallbackFailed
	}
}

// prompt assembles project context, a condensed listing, recent history and
// the message itself.
func (t *turn) prompt() string {
	var b strings.Builder

	b.WriteString("Project: ")
	b.WriteString(t.req.ProjectID)
	if name := t.req.Context.ProjectName; name != "" {
		fmt.Fprintf(&b, " (%s)", name)
	}
	b.WriteString("\n")
	if notes := t.req.Context.Notes; notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", notes)
	}

	l := t.layout
	fmt.Fprintf(&b, "Container: %s x %s, %d panels\n", dim(l.ContainerWidth), dim(l.ContainerHeight), len(l.Panels))
	if len(l.Panels) > 0 {
		limit := t.d.opts.SummaryLimit
		if t.in.Params.All {
			limit = len(l.Panels)
		}
		b.WriteString("Panels:\n")
		b.WriteString(listing(l.Panels, limit))
		b.WriteString("\n")
	}

	if history := t.history(); len(history) > 0 {
		b.WriteString("Recent conversation:\n")
		for _, m := range history {
			fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
		}
	}

	b.WriteString("User message: ")
	b.WriteString(t.req.Text())
	return b.String()
}

// history returns up to HistoryLimit messages preceding the current one.
func (t *turn) history() []Message {
	msgs := t.req.Messages
	if _, idx := t.req.command(); idx >= 0 {
		// The command itself is sent separately.
		msgs = append(append([]Message(nil), msgs[:idx]...), msgs[idx+1:]...)
	}
	if n := t.d.opts.HistoryLimit; len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		if m.Role == "" {
			m.Role = "user"
		}
		out = append(out, m)
	}
	return out
}
