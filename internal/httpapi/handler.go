// Package httpapi exposes the replay registry over HTTP/JSON.
package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/jobscope/jobscope"
)

// Handler handles HTTP requests against a registry of applications.
type Handler struct {
	registry *jobscope.Registry
	logger   *zap.Logger
}

// NewHandler builds a handler over the registry.
func NewHandler(registry *jobscope.Registry, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{registry: registry, logger: logger}
}

// RegisterRoutes registers all routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.GET("/api/v1/apps", h.ListApps)
	e.GET("/api/v1/apps/:id/state", h.GetState)
	e.GET("/api/v1/apps/:id/stages", h.GetStageMetrics)
	e.GET("/api/v1/apps/:id/progress", h.GetProgress)
	e.POST("/api/v1/apps/:id/forward", h.Forward)
	e.POST("/api/v1/apps/:id/rewind", h.Rewind)
	e.POST("/api/v1/apps/:id/start", h.ToStart)
	e.POST("/api/v1/apps/:id/end", h.ToEnd)
}

// Health returns liveness.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// AppSummary is one row of the application listing.
type AppSummary struct {
	ID       string            `json:"id"`
	Name     string            `json:"name,omitempty"`
	Source   string            `json:"source,omitempty"`
	Events   int               `json:"events"`
	Progress jobscope.Progress `json:"progress"`
}

// ListApps lists all registered applications.
func (h *Handler) ListApps(c echo.Context) error {
	out := make([]AppSummary, 0, h.registry.Len())
	for _, id := range h.registry.IDs() {
		src, err := h.registry.Get(id)
		if err != nil {
			continue
		}
		meta := src.Meta()
		out = append(out, AppSummary{
			ID:       meta.ID,
			Name:     meta.Name,
			Source:   meta.Source,
			Events:   src.Log().Len(),
			Progress: src.Progress(),
		})
	}
	return c.JSON(http.StatusOK, out)
}

// GetState returns the full state report at the current cursor.
func (h *Handler) GetState(c echo.Context) error {
	src, err := h.registry.Get(c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	report := jobscope.BuildStateReport(src.Meta(), src.Snapshot(), src.Progress())
	return c.JSON(http.StatusOK, report)
}

// GetStageMetrics returns per-stage statistics, optionally filtered by exact
// jobGroup / jobDescription match.
func (h *Handler) GetStageMetrics(c echo.Context) error {
	src, err := h.registry.Get(c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	var filter jobscope.StageFilter
	if v, ok := queryValue(c, "jobGroup"); ok {
		filter.JobGroup = &v
	}
	if v, ok := queryValue(c, "jobDescription"); ok {
		filter.JobDescription = &v
	}
	return c.JSON(http.StatusOK, jobscope.StageMetrics(src.Snapshot(), filter))
}

// GetProgress returns the current position.
func (h *Handler) GetProgress(c echo.Context) error {
	src, err := h.registry.Get(c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, src.Progress())
}

// Forward moves the cursor forward and returns the new progress.
func (h *Handler) Forward(c echo.Context) error {
	return h.navigate(c, func(src *jobscope.ScrollingSource, n int, g jobscope.Granularity) error {
		_, err := src.Forward(n, g)
		return err
	})
}

// Rewind moves the cursor backward and returns the new progress.
func (h *Handler) Rewind(c echo.Context) error {
	return h.navigate(c, func(src *jobscope.ScrollingSource, n int, g jobscope.Granularity) error {
		_, err := src.Rewind(n, g)
		return err
	})
}

// ToStart rewinds the application to cursor 0.
func (h *Handler) ToStart(c echo.Context) error {
	src, err := h.registry.Get(c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	src.ToStart()
	return c.JSON(http.StatusOK, src.Progress())
}

// ToEnd fast-forwards the application through the whole log.
func (h *Handler) ToEnd(c echo.Context) error {
	src, err := h.registry.Get(c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	src.ToEnd()
	return c.JSON(http.StatusOK, src.Progress())
}

func (h *Handler) navigate(c echo.Context, move func(*jobscope.ScrollingSource, int, jobscope.Granularity) error) error {
	src, err := h.registry.Get(c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	count := 1
	if raw, ok := queryValue(c, "count"); ok {
		count, err = strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "malformed count: "+raw)
		}
	}
	gran, err := jobscope.ParseGranularity(c.QueryParam("granularity"))
	if err != nil {
		return h.fail(c, err)
	}
	if err := move(src, count, gran); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, src.Progress())
}

func (h *Handler) fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, jobscope.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, jobscope.ErrInvalidGranularity):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	h.logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func queryValue(c echo.Context, name string) (string, bool) {
	params := c.QueryParams()
	if _, ok := params[name]; !ok {
		return "", false
	}
	return params.Get(name), true
}
