package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/jobdeck/jobdeck/internal/store"
)

const (
	filterBoundsKey = "jobdeck:filter_bounds"
	filterBoundsTTL = 5 * time.Minute
)

// FiltersHandler serves the facet metadata the UI builds its filter widgets
// from. Redis is optional; when absent every request recomputes the bounds.
type FiltersHandler struct {
	Store *store.Store
	Redis *redis.Client
}

func (h *FiltersHandler) Register(g *echo.Group, withAuth echo.MiddlewareFunc) {
	g.GET("/filters", h.bounds, withAuth)
}

func (h *FiltersHandler) bounds(c echo.Context) error {
	ctx := c.Request().Context()

	if h.Redis != nil {
		if raw, err := h.Redis.Get(ctx, filterBoundsKey).Bytes(); err == nil {
			var cached store.FilterBounds
			if json.Unmarshal(raw, &cached) == nil {
				return c.JSON(http.StatusOK, cached)
			}
		}
	}

	bounds, err := h.Store.FilterBoundsStats(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "filter metadata unavailable")
	}

	if h.Redis != nil {
		if raw, err := json.Marshal(bounds); err == nil {
			// best effort; a failed cache write never fails the request
			h.Redis.Set(ctx, filterBoundsKey, raw, filterBoundsTTL)
		}
	}
	return c.JSON(http.StatusOK, bounds)
}
