// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/panel-layout/backend/internal/command"
)

// CommandHandler handles free-form layout commands
type CommandHandler interface {
	HandleCommand(c echo.Context) error
}

// LayoutHandler handles project layouts and direct panel edits
type LayoutHandler interface {
	HandleCreateProject(c echo.Context) error
	HandleGetLayout(c echo.Context) error
	HandleReplacePanels(c echo.Context) error
	HandleGetPanelsMsgpack(c echo.Context) error
}

// OptimizeHandler handles optimize runs, inline or as background jobs
type OptimizeHandler interface {
	HandleOptimize(c echo.Context) error
}

// JobHandler handles background job status lookups
type JobHandler interface {
	HandleGetJob(c echo.Context) error
}

// BroadcastHandler handles websocket subscriptions to layout changes
type BroadcastHandler interface {
	HandleSubscribe(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// CommandDispatcher processes one command request.
// This allows mocking in tests
type CommandDispatcher interface {
	Handle(ctx context.Context, req command.Request) (*command.Response, error)
}
