package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/panel-layout/backend/internal/command"
	"github.com/panel-layout/backend/internal/geometry"
	"github.com/panel-layout/backend/internal/models"
	"github.com/panel-layout/backend/internal/storage"
	"github.com/panel-layout/backend/internal/testutil"
)

const testProject = "proj-1"

func seedPanels() []models.Panel {
	return []models.Panel{
		{ID: "a", PanelNumber: "P001", Shape: models.ShapeRectangle, X: 0, Y: 0, Width: 40, Height: 100, Material: "vinyl"},
		{ID: "b", PanelNumber: "P002", Shape: models.ShapeRectangle, X: 50, Y: 0, Width: 40, Height: 100, Material: "vinyl"},
	}
}

// newContext builds an echo context for a JSON request. params are
// name/value pairs for path parameters.
func newContext(method, target, body string, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	if len(names) > 0 {
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	return c, rec
}

func requireAPIError(t *testing.T, err error, status int, code string) *APIError {
	t.Helper()
	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "expected APIError, got %T", err)
	assert.Equal(t, status, apiErr.Status)
	assert.Equal(t, code, apiErr.Code)
	return apiErr
}

func TestHandleHealth(t *testing.T) {
	h := NewHealthHandler("1.2.3", storage.NewMemoryStore(storage.Options{}))
	c, rec := newContext(http.MethodGet, "/api/health", "")

	if assert.NoError(t, h.HandleHealth(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, "1.2.3", body["version"])
		assert.Equal(t, "memory", body["store"])
	}
}

type stubDispatcher struct {
	resp *command.Response
	err  error
}

func (s stubDispatcher) Handle(ctx context.Context, req command.Request) (*command.Response, error) {
	return s.resp, s.err
}

func TestHandleCommand(t *testing.T) {
	store := testutil.NewMockStore()
	store.Seed(testProject, seedPanels())
	d := command.New(store, nil, nil, geometry.DefaultSettings(), command.DefaultOptions(), zap.NewNop())
	h := NewCommandHandler(d, zap.NewNop())

	t.Run("rotates a panel", func(t *testing.T) {
		c, rec := newContext(http.MethodPost, "/api/command",
			`{"projectId":"proj-1","message":"rotate panel P001 by 90 degrees"}`)

		if assert.NoError(t, h.HandleCommand(c)) {
			assert.Equal(t, http.StatusOK, rec.Code)
			var resp command.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.True(t, resp.Meta.Handled)
			assert.Equal(t, "rotate", resp.Meta.Intent)
			require.Len(t, resp.Actions, 1)
			assert.True(t, resp.Actions[0].Success)
			assert.Len(t, resp.Panels, 2)
		}

		l, err := store.Get(context.Background(), testProject)
		require.NoError(t, err)
		assert.Equal(t, 90.0, l.Panels[l.FindIndex("a")].Rotation)
	})

	t.Run("uses the last user message", func(t *testing.T) {
		c, rec := newContext(http.MethodPost, "/api/command",
			`{"projectId":"proj-1","messages":[{"role":"user","content":"help"}]}`)

		if assert.NoError(t, h.HandleCommand(c)) {
			assert.Equal(t, http.StatusOK, rec.Code)
			var resp command.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "help", resp.Meta.Intent)
			assert.NotEmpty(t, resp.Reply)
		}
	})

	t.Run("missing message is a validation error with a reply", func(t *testing.T) {
		c, _ := newContext(http.MethodPost, "/api/command", `{"projectId":"proj-1"}`)

		apiErr := requireAPIError(t, h.HandleCommand(c), http.StatusBadRequest, "BAD_REQUEST")
		assert.NotEmpty(t, apiErr.Details)
	})

	t.Run("malformed body", func(t *testing.T) {
		c, _ := newContext(http.MethodPost, "/api/command", `{"projectId":`)

		requireAPIError(t, h.HandleCommand(c), http.StatusBadRequest, "BAD_REQUEST")
	})
}

func TestHandleCommand_StoreErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"unknown project", storage.ErrProjectNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"store failure", errors.New("disk full"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCommandHandler(stubDispatcher{err: tt.err}, nil)
			c, _ := newContext(http.MethodPost, "/api/command",
				`{"projectId":"missing","message":"show the layout"}`)

			requireAPIError(t, h.HandleCommand(c), tt.wantStatus, tt.wantCode)
		})
	}
}

func TestHandleCommand_UnknownProjectWithoutAutoCreate(t *testing.T) {
	store := storage.NewMemoryStore(storage.Options{})
	d := command.New(store, nil, nil, geometry.DefaultSettings(), command.DefaultOptions(), nil)
	h := NewCommandHandler(d, nil)
	c, _ := newContext(http.MethodPost, "/api/command",
		`{"projectId":"nope","message":"show the layout"}`)

	requireAPIError(t, h.HandleCommand(c), http.StatusNotFound, "NOT_FOUND")
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"api error", NewConflictError("busy"), http.StatusConflict, "CONFLICT"},
		{"echo error", echo.NewHTTPError(http.StatusMethodNotAllowed, "nope"), http.StatusMethodNotAllowed, "HTTP_ERROR"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "UNKNOWN_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext(http.MethodGet, "/", "")
			ErrorHandler(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body APIError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
		})
	}
}
