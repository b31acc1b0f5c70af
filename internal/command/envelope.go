package command

import (
	"strings"

	"github.com/panel-layout/backend/internal/models"
)

// Message is one turn of a conversation sent along with the request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RequestContext carries hints from the client. Only LastAction influences
// behaviour, and only the suggestions.
type RequestContext struct {
	LastAction  string `json:"lastAction,omitempty"`
	ProjectName string `json:"projectName,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// Request is the command endpoint input.
type Request struct {
	ProjectID string         `json:"projectId"`
	Message   string         `json:"message,omitempty"`
	Messages  []Message      `json:"messages,omitempty"`
	Context   RequestContext `json:"context"`
}

// Text returns the command to interpret: Message, or else the last user
// entry of Messages.
func (r Request) Text() string {
	text, _ := r.command()
	return text
}

// command returns the command text and the index of the Messages entry it
// came from, or -1 when it came from Message or nothing matched.
func (r Request) command() (string, int) {
	if s := strings.TrimSpace(r.Message); s != "" {
		return s, -1
	}
	for i := len(r.Messages) - 1; i >= 0; i-- {
		m := r.Messages[i]
		if m.Role == "" || m.Role == "user" {
			if s := strings.TrimSpace(m.Content); s != "" {
				return s, i
			}
		}
	}
	return "", -1
}

// Meta describes how a request was processed.
type Meta struct {
	Handled    bool   `json:"handled"`
	DurationMs int64  `json:"durationMs"`
	PanelCount int    `json:"panelCount"`
	Intent     string `json:"intent,omitempty"`
	Revision   int64  `json:"revision,omitempty"`
}

// Response is the command endpoint output.
type Response struct {
	Reply       string                `json:"reply"`
	Actions     []models.ActionRecord `json:"actions"`
	Panels      []models.Panel        `json:"panels"`
	Suggestions []string              `json:"suggestions"`
	LastAction  string                `json:"lastAction,omitempty"`
	Meta        Meta                  `json:"meta"`
}

func newResponse() *Response {
	return &Response{
		Actions:     make([]models.ActionRecord, 0),
		Panels:      make([]models.Panel, 0),
		Suggestions: make([]string, 0),
	}
}
