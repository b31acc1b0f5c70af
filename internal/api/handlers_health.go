// handlers_health.go - Health check handlers
package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/panel-layout/backend/internal/storage"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version string
	store   storage.Store
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, store storage.Store) HealthHandler {
	return &HealthHandlerImpl{
		version: version,
		store:   store,
	}
}

// HandleHealth returns server health status
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": h.version,
		"store":   storeKind(h.store),
	})
}

func storeKind(s storage.Store) string {
	switch s.(type) {
	case nil:
		return "none"
	case *storage.DuckStore:
		return "duckdb"
	case *storage.MemoryStore:
		return "memory"
	default:
		return fmt.Sprintf("%T", s)
	}
}
