// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/panel-layout/backend/internal/broadcast"
	"github.com/panel-layout/backend/internal/geometry"
	"github.com/panel-layout/backend/internal/jobs"
	"github.com/panel-layout/backend/internal/storage"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Store      storage.Store
	Dispatcher CommandDispatcher
	Jobs       *jobs.Runner   // optional; async optimize is unavailable without it
	Hub        *broadcast.Hub // optional; websocket subscriptions are unavailable without it
	Settings   geometry.Settings
	Version    string
	Log        *zap.Logger
}

// publisher returns the hub as a Publisher, or nil when there is no hub.
func (d *Dependencies) publisher() broadcast.Publisher {
	if d.Hub == nil {
		return nil
	}
	return d.Hub
}

func (d *Dependencies) logger() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}

// Handlers holds all handler instances
type Handlers struct {
	Health    HealthHandler
	Command   CommandHandler
	Layout    LayoutHandler
	Optimize  OptimizeHandler
	Job       JobHandler
	Broadcast BroadcastHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	log := deps.logger()
	return &Handlers{
		Health:    NewHealthHandler(deps.Version, deps.Store),
		Command:   NewCommandHandler(deps.Dispatcher, log),
		Layout:    NewLayoutHandler(deps.Store, deps.publisher(), log),
		Optimize:  NewOptimizeHandler(deps.Store, deps.Jobs, deps.publisher(), deps.Settings, log),
		Job:       NewJobHandler(deps.Jobs),
		Broadcast: NewBroadcastHandler(deps.Hub, log),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// Health check
	e.GET("/api/health", handlers.Health.HandleHealth)

	e.POST("/api/command", handlers.Command.HandleCommand)

	// Project layout routes
	projectGroup := e.Group("/api/projects")
	projectGroup.POST("", handlers.Layout.HandleCreateProject)
	projectGroup.GET("/:projectId/layout", handlers.Layout.HandleGetLayout)
	projectGroup.PUT("/:projectId/panels", handlers.Layout.HandleReplacePanels)
	projectGroup.GET("/:projectId/panels/msgpack", handlers.Layout.HandleGetPanelsMsgpack)
	projectGroup.POST("/:projectId/optimize", handlers.Optimize.HandleOptimize)
	projectGroup.GET("/:projectId/ws", handlers.Broadcast.HandleSubscribe)

	e.GET("/api/jobs/:jobId", handlers.Job.HandleGetJob)
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo) {
	// Use custom error handler
	e.HTTPErrorHandler = ErrorHandler
}
