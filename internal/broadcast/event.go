package broadcast

import (
	"encoding/json"
	"time"

	"github.com/panel-layout/backend/internal/models"
)

// layoutPayload is the body of a layout.updated event.
type layoutPayload struct {
	Panels     []models.Panel `json:"panels"`
	PanelCount int            `json:"panelCount"`
}

// LayoutUpdated builds the event sent after a committed layout change.
func LayoutUpdated(l *models.Layout, source string) Event {
	payload, err := json.Marshal(layoutPayload{Panels: l.Panels, PanelCount: len(l.Panels)})
	if err != nil {
		payload = nil
	}
	return Event{
		Type:      MsgTypeLayoutUpdated,
		ProjectID: l.ProjectID,
		Revision:  l.Revision,
		Source:    source,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}
}
