package jobfeed

import (
	"context"
	"fmt"
)

// PlanMode tags which query path a request takes. The mode is decided once
// per request, before any job rows are read, and carried on the resulting
// Page.
type PlanMode string

const (
	// PlanGeneric orders by stored columns; no similarity computation.
	PlanGeneric PlanMode = "generic"
	// PlanPersonalized ranks by cosine similarity against the caller's
	// skill vector.
	PlanPersonalized PlanMode = "personalized"
)

// Plan is the resolved strategy for one request.
type Plan struct {
	Mode   PlanMode
	UserID string
	Spec   Spec
}

// Store is the slice of storage the planner needs. Both listing methods must
// honor every Spec predicate, apply the documented ordering with its
// tie-breaks (sort key, then published_at DESC, then id ASC) and return at
// most limit rows.
type Store interface {
	// SkillVector returns the caller's skill embedding, or nil when the
	// user has no profile or an empty skill list.
	SkillVector(ctx context.Context, userID string) ([]float32, error)
	// SearchPersonalized executes the vector-ranked path. Returned rows
	// carry the computed (unclamped) fit score.
	SearchPersonalized(ctx context.Context, userID string, spec Spec, limit int) ([]Job, error)
	// ListGeneric executes the field-ranked path. Returned rows carry the
	// stored fit score, nil when the store has none.
	ListGeneric(ctx context.Context, userID string, spec Spec, limit int) ([]Job, error)
}

// Planner resolves a request into a page of the jobs feed.
type Planner struct {
	Store Store
}

// Decide picks the query path for userID: personalized iff a non-empty skill
// vector exists. The presence of the vector is the sole signal.
func (p *Planner) Decide(ctx context.Context, userID string, spec Spec) (Plan, error) {
	vec, err := p.Store.SkillVector(ctx, userID)
	if err != nil {
		return Plan{}, fmt.Errorf("load skill vector: %w", err)
	}
	plan := Plan{Mode: PlanGeneric, UserID: userID, Spec: spec}
	if len(vec) > 0 {
		plan.Mode = PlanPersonalized
	}
	return plan, nil
}

// Query builds the Spec from f, decides the plan and executes it with
// overfetch-and-trim pagination: limit+1 rows are requested, the extra row
// only signals hasNextPage and is never returned. The end cursor encodes the
// identifier of the last returned row, which keeps paging duplicate-free
// under concurrent inserts (rows inserted after paging began may be missed;
// rows already returned are never delivered again).
func (p *Planner) Query(ctx context.Context, userID string, f Filters) (Page, error) {
	if userID == "" {
		return Page{}, ErrUnauthenticated
	}
	spec, err := BuildSpec(f)
	if err != nil {
		return Page{}, err
	}
	plan, err := p.Decide(ctx, userID, spec)
	if err != nil {
		return Page{}, err
	}

	var rows []Job
	switch plan.Mode {
	case PlanPersonalized:
		rows, err = p.Store.SearchPersonalized(ctx, userID, spec, spec.PageSize+1)
	default:
		rows, err = p.Store.ListGeneric(ctx, userID, spec, spec.PageSize+1)
	}
	if err != nil {
		// A failed page is a failed page; partial results are never
		// passed off as complete.
		return Page{}, fmt.Errorf("execute %s plan: %w", plan.Mode, err)
	}

	page := Page{Mode: plan.Mode, HasNextPage: len(rows) > spec.PageSize}
	if page.HasNextPage {
		rows = rows[:spec.PageSize]
	}
	if plan.Mode == PlanPersonalized {
		for i := range rows {
			if rows[i].FitScore != nil {
				clamped := ClampScore(*rows[i].FitScore)
				rows[i].FitScore = &clamped
			}
		}
	}
	page.Jobs = rows
	if len(rows) > 0 {
		page.EndCursor = EncodeCursor(rows[len(rows)-1].ID)
	}
	return page, nil
}
