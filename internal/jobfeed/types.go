// Package jobfeed contains the retrieval and ranking core for job postings:
// filter normalization, cursor pagination, fit scoring and query planning.
// It owns no SQL; storage is reached through the Store interface so the
// planner can be exercised without a live backend.
package jobfeed

import (
	"errors"
	"time"
)

// EmbeddingDimensions is the expected length of skill and job vectors stored
// in pgvector columns.
const EmbeddingDimensions = 384

var (
	// ErrUnauthenticated marks a request with no resolved caller identity.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidFilter marks a request whose filter arguments cannot be
	// normalized into a Spec.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrInvalidCursor marks a pagination cursor that does not decode to a
	// job identifier. Always a client error, never a server fault.
	ErrInvalidCursor = errors.New("invalid cursor")
)

// Job is a posting row as the core sees it. FitScore is nil when the store
// has no score for the row; on the personalized path it carries the
// per-request computed score instead of the stored one.
type Job struct {
	ID          string
	Source      string
	Title       string
	Company     string
	Description string
	Location    *string
	WorkType    *string
	SalaryMin   *int
	SalaryMax   *int
	URL         string
	PublishedAt time.Time
	FitScore    *float64
}

// Page is one page of the jobs feed.
type Page struct {
	Jobs        []Job
	EndCursor   string // empty when the page is empty
	HasNextPage bool
	Mode        PlanMode
}
