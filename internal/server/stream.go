package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jobdeck/jobdeck/internal/notify"
)

const streamKeepalive = 25 * time.Second

// StreamHandler pushes new job postings to connected clients over SSE.
type StreamHandler struct {
	Hub *notify.Hub
}

func (h *StreamHandler) Register(g *echo.Group, withAuth echo.MiddlewareFunc) {
	g.GET("/stream", h.stream, withAuth)
}

// stream subscribes the caller to the new-job feed. Delivery starts once the
// subscription is activated after the headers flush; anything published
// before that point is skipped, never replayed.
func (h *StreamHandler) stream(c echo.Context) error {
	var minFit float64
	if v := c.QueryParam("minFit"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil || n < 0 || n > 100 {
			return echo.NewHTTPError(http.StatusBadRequest, "minFit must be within [0,100]")
		}
		minFit = n
	}

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "streaming unsupported")
	}

	sub := h.Hub.Subscribe(minFit)
	defer h.Hub.Unsubscribe(sub)

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub.Activate()

	ctx := c.Request().Context()
	keepalive := time.NewTicker(streamKeepalive)
	defer keepalive.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case job, open := <-sub.Events():
			if !open {
				return nil
			}
			payload, err := json.Marshal(toJobResponse(job, false, false))
			if err != nil {
				continue
			}
			fmt.Fprintf(res, "event: new_job\ndata: %s\n\n", payload)
			flusher.Flush()
		case <-keepalive.C:
			fmt.Fprint(res, ": ping\n\n")
			flusher.Flush()
		}
	}
}
