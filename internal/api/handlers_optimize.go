// handlers_optimize.go - Layout optimization handlers
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/panel-layout/backend/internal/broadcast"
	"github.com/panel-layout/backend/internal/geometry"
	"github.com/panel-layout/backend/internal/jobs"
	"github.com/panel-layout/backend/internal/models"
	"github.com/panel-layout/backend/internal/storage"
)

// OptimizeRequest is the body of POST /api/projects/:projectId/optimize.
// Settings may be partial; absent fields keep the server's values.
type OptimizeRequest struct {
	Strategy string          `json:"strategy"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

// Extent is the bounding box of the packed panels.
type Extent struct {
	MinX float64 `json:"minX"`
	MinY float64 `json:"minY"`
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
}

// OptimizeResponse is returned by a synchronous optimize run
type OptimizeResponse struct {
	Strategy    string         `json:"strategy"`
	Panels      []models.Panel `json:"panels"`
	Layout      *models.Layout `json:"layout"`
	Utilization float64        `json:"utilization"`
	Extent      Extent         `json:"extent"`
}

// OptimizeHandlerImpl implements the OptimizeHandler interface
type OptimizeHandlerImpl struct {
	store     storage.Store
	runner    *jobs.Runner
	publisher broadcast.Publisher
	settings  geometry.Settings
	log       *zap.Logger
}

// NewOptimizeHandler creates a new optimize handler. runner may be nil, in
// which case async requests are rejected.
func NewOptimizeHandler(store storage.Store, runner *jobs.Runner, publisher broadcast.Publisher, settings geometry.Settings, log *zap.Logger) OptimizeHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &OptimizeHandlerImpl{
		store:     store,
		runner:    runner,
		publisher: publisher,
		settings:  settings.Normalized(),
		log:       log,
	}
}

// HandleOptimize repacks the layout. With ?async=true the run happens in
// the background and the job is returned with 202.
func (h *OptimizeHandlerImpl) HandleOptimize(c echo.Context) error {
	id := c.Param("projectId")
	if id == "" {
		return NewValidationError("projectId")
	}

	var req OptimizeRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	strategy := geometry.ParseStrategy(req.Strategy)
	settings := h.settings
	if len(req.Settings) > 0 && string(req.Settings) != "null" {
		if err := json.Unmarshal(req.Settings, &settings); err != nil {
			return NewBadRequestError("invalid settings", err)
		}
		settings = settings.Normalized()
	}

	ctx := c.Request().Context()
	if c.QueryParam("async") == "true" {
		if h.runner == nil {
			return NewServiceUnavailableError("background jobs are not configured")
		}
		if _, err := h.store.Get(ctx, id); err != nil {
			return storeError(err, "project", id)
		}
		job, err := h.runner.Start(ctx, id, string(strategy), func(ctx context.Context) (jobs.Result, error) {
			l, err := h.optimize(ctx, id, strategy, settings)
			if err != nil {
				return jobs.Result{}, err
			}
			return jobs.Result{PanelCount: len(l.Panels), Revision: l.Revision}, nil
		})
		if err != nil {
			return NewInternalError("failed to start optimize job", err)
		}
		return c.JSON(http.StatusAccepted, job)
	}

	layout, err := h.optimize(ctx, id, strategy, settings)
	if err != nil {
		return storeError(err, "project", id)
	}
	var ext Extent
	ext.MinX, ext.MinY, ext.MaxX, ext.MaxY = geometry.Bounds(layout.Panels)
	return c.JSON(http.StatusOK, OptimizeResponse{
		Strategy:    string(strategy),
		Panels:      layout.Panels,
		Layout:      layout,
		Utilization: geometry.Utilization(layout.Panels, layout.ContainerWidth, layout.ContainerHeight),
		Extent:      ext,
	})
}

// optimize loads, repacks and stores the layout, guarded by the revision it read.
func (h *OptimizeHandlerImpl) optimize(ctx context.Context, projectID string, strategy geometry.Strategy, settings geometry.Settings) (*models.Layout, error) {
	current, err := h.store.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	panels := geometry.OptimizePanelLayout(current.Panels, strategy, settings,
		current.ContainerWidth, current.ContainerHeight)
	layout, err := h.store.ReplacePanels(ctx, projectID, panels, storage.ReplaceMeta{
		IfRevision: current.Revision,
		Source:     "optimize",
		Reason:     fmt.Sprintf("optimized %d panels (%s)", len(panels), strategy),
	})
	if err != nil {
		return nil, fmt.Errorf("storing optimized layout: %w", err)
	}

	h.log.Debug("layout optimized",
		zap.String("project", projectID),
		zap.String("strategy", string(strategy)),
		zap.Int("panels", len(panels)),
		zap.Int64("revision", layout.Revision))
	publishLayout(ctx, h.publisher, h.log, layout, "optimize")
	return layout, nil
}
