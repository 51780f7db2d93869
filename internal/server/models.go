package server

import (
	"strings"
	"time"

	"github.com/jobdeck/jobdeck/internal/jobfeed"
	"github.com/jobdeck/jobdeck/internal/store"
)

// HTTPError is a generic error envelope returned by the server.
type HTTPError struct {
	Error string `json:"error"`
}

// AuthSignupRequest represents the signup payload.
type AuthSignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthLoginRequest represents the login payload.
type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries a bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}

// MeResponse returns the current authenticated user profile.
type MeResponse struct {
	UserID string   `json:"user_id"`
	Skills []string `json:"skills"`
}

// SetSkillsRequest replaces the caller's skill list.
type SetSkillsRequest struct {
	Skills []string `json:"skills"`
}

// JobResponse is one job posting as the API renders it. FitScore is
// always present and defaults to zero when no score is known.
type JobResponse struct {
	ID          string  `json:"id"`
	Source      string  `json:"source"`
	Title       string  `json:"title"`
	Company     string  `json:"company"`
	Description string  `json:"description"`
	Location    *string `json:"location"`
	WorkType    *string `json:"workType"`
	SalaryMin   *int    `json:"salaryMin"`
	SalaryMax   *int    `json:"salaryMax"`
	URL         string  `json:"url"`
	PublishedAt string  `json:"publishedAt"`
	FitScore    float64 `json:"fitScore"`
	Bookmarked  bool    `json:"bookmarked"`
	IsTracked   bool    `json:"isTracked"`
}

// JobsResponse is one page of jobs plus cursor metadata.
type JobsResponse struct {
	Edges       []JobResponse `json:"edges"`
	EndCursor   *string       `json:"endCursor"`
	HasNextPage bool          `json:"hasNextPage"`
	Mode        string        `json:"mode"`
}

// BookmarkResponse reports the bookmark state after a toggle.
type BookmarkResponse struct {
	JobID      string `json:"jobId"`
	Bookmarked bool   `json:"bookmarked"`
}

// PipelineItemResponse is one tracked job on the board.
type PipelineItemResponse struct {
	ID       string      `json:"id"`
	Column   string      `json:"column"`
	Position int         `json:"position"`
	Job      JobResponse `json:"job"`
}

// UpsertPipelineRequest adds or moves a job on the board.
type UpsertPipelineRequest struct {
	JobID    string `json:"jobId"`
	Column   string `json:"column"`
	Position int    `json:"position"`
}

// ReorderPipelineRequest carries parallel item/position arrays applied as
// one atomic batch.
type ReorderPipelineRequest struct {
	ItemIDs   []string `json:"itemIds"`
	Positions []int    `json:"positions"`
}

func toJobResponse(j jobfeed.Job, bookmarked, tracked bool) JobResponse {
	resp := JobResponse{
		ID:          j.ID,
		Source:      strings.ToUpper(j.Source),
		Title:       j.Title,
		Company:     j.Company,
		Description: j.Description,
		Location:    j.Location,
		WorkType:    j.WorkType,
		SalaryMin:   j.SalaryMin,
		SalaryMax:   j.SalaryMax,
		URL:         j.URL,
		PublishedAt: j.PublishedAt.UTC().Format(time.RFC3339),
		Bookmarked:  bookmarked,
		IsTracked:   tracked,
	}
	if j.FitScore != nil {
		resp.FitScore = *j.FitScore
	}
	return resp
}

func toPipelineItemResponse(it store.PipelineItem) PipelineItemResponse {
	return PipelineItemResponse{
		ID:       it.ID,
		Column:   string(it.Column),
		Position: it.Position,
		Job:      toJobResponse(it.Job, false, true),
	}
}
