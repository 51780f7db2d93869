package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jobdeck/jobdeck/internal/embedder"
	"github.com/jobdeck/jobdeck/internal/store"
)

// MaxSkills caps the skill list a profile may carry.
const MaxSkills = 64

type ProfileHandler struct {
	Store    *store.Store
	Embedder *embedder.Client
}

func (h *ProfileHandler) Register(g *echo.Group, withAuth echo.MiddlewareFunc) {
	g.Use(withAuth)
	g.GET("", h.me)
	g.PUT("/skills", h.setSkills)
}

func (h *ProfileHandler) me(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	resp := MeResponse{UserID: userID, Skills: []string{}}
	p, err := h.Store.GetProfile(c.Request().Context(), userID)
	switch {
	case err == nil:
		resp.Skills = p.Skills
	case errors.Is(err, store.ErrNotFound):
		// no profile yet, return the empty skill list
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, resp)
}

// setSkills replaces the skill list and recomputes the skill vector from the
// joined skill text. An empty list clears the vector and drops the caller
// back to the generic feed.
func (h *ProfileHandler) setSkills(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	var req SetSkillsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	skills := make([]string, 0, len(req.Skills))
	for _, s := range req.Skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		skills = append(skills, s)
		if len(skills) == MaxSkills {
			break
		}
	}

	var vector []float32
	if len(skills) > 0 {
		v, err := h.Embedder.Embed(c.Request().Context(), strings.Join(skills, ", "))
		if err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "embedding service unavailable")
		}
		vector = v
	}

	if err := h.Store.UpsertProfile(c.Request().Context(), userID, skills, vector); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, MeResponse{UserID: userID, Skills: skills})
}
