package api

import (
	"errors"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/panel-layout/backend/internal/broadcast"
)

// BroadcastHandlerImpl subscribes websocket clients to a project's layout
// events.
type BroadcastHandlerImpl struct {
	hub *broadcast.Hub
	log *zap.Logger
}

// NewBroadcastHandler creates a new websocket subscription handler
func NewBroadcastHandler(hub *broadcast.Hub, log *zap.Logger) BroadcastHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &BroadcastHandlerImpl{hub: hub, log: log}
}

// HandleSubscribe upgrades the connection and holds it until the client
// leaves. The upgrader writes its own error response on a bad handshake.
func (h *BroadcastHandlerImpl) HandleSubscribe(c echo.Context) error {
	id := c.Param("projectId")
	if id == "" {
		return NewValidationError("projectId")
	}
	if h.hub == nil {
		return NewServiceUnavailableError("live updates are not enabled")
	}

	// The connection is hijacked once upgraded, so errors are logged rather
	// than written back.
	err := h.hub.ServeWS(c.Response(), c.Request(), id)
	switch {
	case errors.Is(err, broadcast.ErrClosed):
		h.log.Debug("subscription refused, hub closed", zap.String("project", id))
	case err != nil:
		h.log.Debug("websocket upgrade failed", zap.String("project", id), zap.Error(err))
	}
	return nil
}
