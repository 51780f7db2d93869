package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jobdeck/jobdeck/internal/jobfeed"
	"github.com/jobdeck/jobdeck/internal/store"
)

type JobsHandler struct {
	Store   *store.Store
	Planner *jobfeed.Planner
}

func (h *JobsHandler) Register(g *echo.Group, withAuth echo.MiddlewareFunc) {
	g.GET("", h.list, withAuth)
	g.POST("/:id/bookmark", h.toggleBookmark, withAuth)
}

func (h *JobsHandler) list(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	filters, err := parseJobFilters(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	page, err := h.Planner.Query(c.Request().Context(), userID, filters)
	if err != nil {
		switch {
		case errors.Is(err, jobfeed.ErrUnauthenticated):
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		case errors.Is(err, jobfeed.ErrInvalidFilter), errors.Is(err, jobfeed.ErrInvalidCursor):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusServiceUnavailable, "job search unavailable")
		}
	}
	jobsQueriesTotal.WithLabelValues(string(page.Mode)).Inc()

	ids := make([]string, 0, len(page.Jobs))
	for _, j := range page.Jobs {
		ids = append(ids, j.ID)
	}
	bookmarked, err := h.Store.BookmarkedSet(c.Request().Context(), userID, ids)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "job search unavailable")
	}
	tracked, err := h.Store.TrackedSet(c.Request().Context(), userID, ids)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "job search unavailable")
	}

	resp := JobsResponse{
		Edges:       make([]JobResponse, 0, len(page.Jobs)),
		HasNextPage: page.HasNextPage,
		Mode:        string(page.Mode),
	}
	for _, j := range page.Jobs {
		resp.Edges = append(resp.Edges, toJobResponse(j, bookmarked[j.ID], tracked[j.ID]))
	}
	if page.EndCursor != "" {
		resp.EndCursor = &page.EndCursor
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *JobsHandler) toggleBookmark(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	jobID := c.Param("id")
	on, err := h.Store.ToggleBookmark(c.Request().Context(), userID, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown job")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, BookmarkResponse{JobID: jobID, Bookmarked: on})
}

// parseJobFilters maps query parameters onto the raw filter bag.
// Validation and normalisation happen later in jobfeed.BuildSpec.
func parseJobFilters(c echo.Context) (jobfeed.Filters, error) {
	var f jobfeed.Filters
	q := c.QueryParams()

	if v := q.Get("first"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, errors.New("first must be an integer")
		}
		f.First = &n
	}
	if v := q.Get("after"); v != "" {
		f.After = &v
	}
	if v := q.Get("minFit"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, errors.New("minFit must be a number")
		}
		f.MinFit = &n
	}
	if v := q.Get("minSalary"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, errors.New("minSalary must be an integer")
		}
		f.MinSalary = &n
	}
	if v := q.Get("search"); v != "" {
		f.Search = &v
	}
	if v := q.Get("location"); v != "" {
		f.Location = &v
	}
	if v := q.Get("workType"); v != "" {
		f.WorkType = &v
	}
	if v := q.Get("sources"); v != "" {
		f.Sources = strings.Split(v, ",")
	}
	if v := q.Get("sortBy"); v != "" {
		f.SortBy = &v
	}
	var err error
	if f.Bookmarked, err = triState(q.Get("bookmarked")); err != nil {
		return f, errors.New("bookmarked must be true or false")
	}
	if f.Tracked, err = triState(q.Get("isTracked")); err != nil {
		return f, errors.New("isTracked must be true or false")
	}
	return f, nil
}

func triState(v string) (*bool, error) {
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
