// handlers_layout.go - Project layout and direct panel edit handlers
package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/panel-layout/backend/internal/broadcast"
	"github.com/panel-layout/backend/internal/models"
	"github.com/panel-layout/backend/internal/storage"
)

// CreateProjectRequest is the body of POST /api/projects
type CreateProjectRequest struct {
	ProjectID       string  `json:"projectId"`
	ContainerWidth  float64 `json:"containerWidth"`
	ContainerHeight float64 `json:"containerHeight"`
}

// ReplacePanelsRequest is the body of PUT /api/projects/:projectId/panels.
// Panels are loosely typed and normalized on the way in.
type ReplacePanelsRequest struct {
	Panels   []map[string]any `json:"panels"`
	Revision int64            `json:"revision"` // 0 skips the conflict check
	Reason   string           `json:"reason,omitempty"`
}

// LayoutHandlerImpl implements the LayoutHandler interface
type LayoutHandlerImpl struct {
	store     storage.Store
	publisher broadcast.Publisher
	log       *zap.Logger
}

// NewLayoutHandler creates a new layout handler
func NewLayoutHandler(store storage.Store, publisher broadcast.Publisher, log *zap.Logger) LayoutHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &LayoutHandlerImpl{
		store:     store,
		publisher: publisher,
		log:       log,
	}
}

// HandleCreateProject creates an empty layout with the given container size
func (h *LayoutHandlerImpl) HandleCreateProject(c echo.Context) error {
	var req CreateProjectRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if req.ProjectID == "" {
		return NewValidationError("projectId")
	}

	layout, err := h.store.Create(c.Request().Context(), req.ProjectID, req.ContainerWidth, req.ContainerHeight)
	if err != nil {
		return storeError(err, "project", req.ProjectID)
	}
	return c.JSON(http.StatusCreated, layout)
}

// HandleGetLayout returns the project's layout
func (h *LayoutHandlerImpl) HandleGetLayout(c echo.Context) error {
	id := c.Param("projectId")
	if id == "" {
		return NewValidationError("projectId")
	}

	layout, err := h.store.Get(c.Request().Context(), id)
	if err != nil {
		return storeError(err, "project", id)
	}
	return c.JSON(http.StatusOK, layout)
}

// HandleReplacePanels replaces every panel of the layout in one write
func (h *LayoutHandlerImpl) HandleReplacePanels(c echo.Context) error {
	id := c.Param("projectId")
	if id == "" {
		return NewValidationError("projectId")
	}

	var req ReplacePanelsRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if req.Panels == nil {
		return NewValidationError("panels")
	}

	panels := make([]models.Panel, 0, len(req.Panels))
	for _, raw := range req.Panels {
		panels = append(panels, models.NormalizePanel(raw))
	}

	reason := req.Reason
	if reason == "" {
		reason = "direct edit"
	}
	ctx := c.Request().Context()
	layout, err := h.store.ReplacePanels(ctx, id, panels, storage.ReplaceMeta{
		IfRevision: req.Revision,
		Source:     "direct",
		Reason:     reason,
	})
	if err != nil {
		return storeError(err, "project", id)
	}

	publishLayout(ctx, h.publisher, h.log, layout, "direct")
	return c.JSON(http.StatusOK, layout)
}

// HandleGetPanelsMsgpack returns the layout's panels in MessagePack format
func (h *LayoutHandlerImpl) HandleGetPanelsMsgpack(c echo.Context) error {
	id := c.Param("projectId")
	if id == "" {
		return NewValidationError("projectId")
	}

	layout, err := h.store.Get(c.Request().Context(), id)
	if err != nil {
		return storeError(err, "project", id)
	}

	data, err := msgpack.Marshal(map[string]interface{}{
		"projectId": layout.ProjectID,
		"revision":  layout.Revision,
		"panels":    layout.Panels,
	})
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// publishLayout tells subscribers about a committed layout. Failures are
// logged only; the write already happened.
func publishLayout(ctx context.Context, pub broadcast.Publisher, log *zap.Logger, l *models.Layout, source string) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, l.ProjectID, broadcast.LayoutUpdated(l, source)); err != nil {
		log.Warn("layout broadcast failed",
			zap.String("project", l.ProjectID), zap.Int64("revision", l.Revision), zap.Error(err))
	}
}
