// handlers_command.go - Free-form command handlers
package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/panel-layout/backend/internal/command"
)

// CommandHandlerImpl implements the CommandHandler interface
type CommandHandlerImpl struct {
	dispatcher CommandDispatcher
	log        *zap.Logger
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(dispatcher CommandDispatcher, log *zap.Logger) CommandHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CommandHandlerImpl{
		dispatcher: dispatcher,
		log:        log,
	}
}

// HandleCommand runs one message through the dispatcher and returns its envelope
func (h *CommandHandlerImpl) HandleCommand(c echo.Context) error {
	var req command.Request
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	resp, err := h.dispatcher.Handle(c.Request().Context(), req)
	switch {
	case errors.Is(err, command.ErrValidation):
		apiErr := NewBadRequestError(err.Error(), nil)
		if resp != nil {
			apiErr.Details = resp.Reply
		}
		return apiErr
	case err != nil:
		return storeError(err, "project", req.ProjectID)
	}

	h.log.Debug("command handled",
		zap.String("project", req.ProjectID),
		zap.String("intent", resp.Meta.Intent),
		zap.Bool("handled", resp.Meta.Handled),
		zap.Int64("durationMs", resp.Meta.DurationMs))
	return c.JSON(http.StatusOK, resp)
}
