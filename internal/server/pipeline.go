package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jobdeck/jobdeck/internal/store"
)

type PipelineHandler struct {
	Store *store.Store
}

func (h *PipelineHandler) Register(g *echo.Group, withAuth echo.MiddlewareFunc) {
	g.Use(withAuth)
	g.GET("", h.list)
	g.POST("", h.upsert)
	g.PUT("/reorder", h.reorder)
}

func (h *PipelineHandler) list(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	items, err := h.Store.ListPipeline(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]PipelineItemResponse, 0, len(items))
	for _, it := range items {
		resp = append(resp, toPipelineItemResponse(it))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *PipelineHandler) upsert(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	var req UpsertPipelineRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.JobID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "jobId is required")
	}
	col, err := store.ParsePipelineColumn(req.Column)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Position < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "position must be non-negative")
	}
	if err := h.Store.UpsertPipelineItem(c.Request().Context(), userID, req.JobID, col, req.Position); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown job")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *PipelineHandler) reorder(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	var req ReorderPipelineRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.Store.ReorderPipeline(c.Request().Context(), userID, req.ItemIDs, req.Positions); err != nil {
		if errors.Is(err, store.ErrInvalidArgument) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
