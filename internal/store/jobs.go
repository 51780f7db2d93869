package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/jobdeck/jobdeck/internal/jobfeed"
)

const jobColumns = `j.id, j.source, j.title, j.company, j.description, j.location, j.work_type, j.salary_min, j.salary_max, j.url, j.published_at`

// jobPredicates compiles the Spec into WHERE clauses with bound parameters.
// Clause order is fixed so generated SQL is stable for identical specs. The
// minFit predicate is excluded here: on the personalized path it applies to
// the computed score, not a stored column, so each caller binds it itself.
func jobPredicates(spec jobfeed.Spec, userID string) ([]string, []interface{}) {
	var clauses []string
	var args []interface{}

	if spec.AfterID != "" {
		args = append(args, spec.AfterID)
		clauses = append(clauses, fmt.Sprintf("j.id > $%d", len(args)))
	}
	if spec.MinSalary != nil {
		args = append(args, *spec.MinSalary)
		clauses = append(clauses, fmt.Sprintf("j.salary_min >= $%d", len(args)))
	}
	if spec.Location != "" {
		args = append(args, "%"+spec.Location+"%")
		clauses = append(clauses, fmt.Sprintf("j.location ILIKE $%d", len(args)))
	}
	if spec.WorkType != "" {
		args = append(args, "%"+spec.WorkType+"%")
		clauses = append(clauses, fmt.Sprintf("j.work_type ILIKE $%d", len(args)))
	}
	if len(spec.Sources) > 0 {
		args = append(args, pq.Array(spec.Sources))
		clauses = append(clauses, fmt.Sprintf("LOWER(j.source) = ANY($%d)", len(args)))
	}
	if spec.Search != "" {
		pattern := "%" + spec.Search + "%"
		args = append(args, pattern, pattern)
		clauses = append(clauses, fmt.Sprintf("(j.title ILIKE $%d OR j.description ILIKE $%d)", len(args)-1, len(args)))
	}
	if spec.Bookmarked != nil {
		args = append(args, userID)
		sub := fmt.Sprintf("EXISTS (SELECT 1 FROM bookmarks b WHERE b.job_id = j.id AND b.user_id = $%d)", len(args))
		if !*spec.Bookmarked {
			sub = "NOT " + sub
		}
		clauses = append(clauses, sub)
	}
	if spec.Tracked != nil {
		args = append(args, userID)
		sub := fmt.Sprintf("EXISTS (SELECT 1 FROM pipeline_items p WHERE p.job_id = j.id AND p.user_id = $%d)", len(args))
		if !*spec.Tracked {
			sub = "NOT " + sub
		}
		clauses = append(clauses, sub)
	}
	return clauses, args
}

func whereSQL(clauses []string) string {
	if len(clauses) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(clauses, " AND ")
}

// orderSQL resolves the sort key into a fully deterministic ORDER BY:
// the requested field, then published_at DESC, then id ASC.
func orderSQL(sort jobfeed.SortKey, prefix string) string {
	switch sort {
	case jobfeed.SortDate:
		return fmt.Sprintf("%spublished_at DESC, %sid ASC", prefix, prefix)
	case jobfeed.SortSalary:
		return fmt.Sprintf("%ssalary_min DESC NULLS LAST, %spublished_at DESC, %sid ASC", prefix, prefix, prefix)
	default:
		return fmt.Sprintf("%sfit_score DESC NULLS LAST, %spublished_at DESC, %sid ASC", prefix, prefix, prefix)
	}
}

// SearchPersonalized ranks jobs by cosine similarity between each job vector
// and the caller's skill vector, inside a transaction so the ivfflat probes
// hint is scoped to this query. The fit score comes back unclamped.
func (s *Store) SearchPersonalized(ctx context.Context, userID string, spec jobfeed.Spec, limit int) ([]jobfeed.Job, error) {
	clauses, args := jobPredicates(spec, userID)

	args = append(args, userID)
	userArg := len(args)

	minFitSQL := ""
	if spec.MinFit != nil {
		args = append(args, *spec.MinFit)
		minFitSQL = fmt.Sprintf("WHERE fit_score >= $%d", len(args))
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
WITH up AS (
  SELECT skill_vector FROM user_profiles WHERE user_id = $%d
),
ranked AS (
  SELECT %s,
         (100 * (1 - (j.vector <=> (SELECT skill_vector FROM up)))) AS fit_score
  FROM jobs j
  %s
)
SELECT id, source, title, company, description, location, work_type,
       salary_min, salary_max, url, published_at, fit_score
FROM ranked
%s
ORDER BY %s
LIMIT $%d
`, userArg, jobColumns, whereSQL(clauses), minFitSQL, orderSQL(spec.Sort, ""), len(args))

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL ivfflat.probes = %d", s.probes())); err != nil {
		return nil, fmt.Errorf("set ivfflat probes: %w", err)
	}
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	jobs, err := scanJobs(rows)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return jobs, nil
}

// ListGeneric orders by the stored column matching the sort key; the stored
// fit score (global, not personalized) participates in filtering and sorting.
func (s *Store) ListGeneric(ctx context.Context, userID string, spec jobfeed.Spec, limit int) ([]jobfeed.Job, error) {
	clauses, args := jobPredicates(spec, userID)
	if spec.MinFit != nil {
		args = append(args, *spec.MinFit)
		clauses = append(clauses, fmt.Sprintf("j.fit_score >= $%d", len(args)))
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
SELECT %s, j.fit_score
FROM jobs j
%s
ORDER BY %s
LIMIT $%d
`, jobColumns, whereSQL(clauses), orderSQL(spec.Sort, "j."), len(args))

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanJobs(rows)
}

// GetJob loads one posting by id, with its stored fit score.
func (s *Store) GetJob(ctx context.Context, id string) (jobfeed.Job, error) {
	row := s.DB.QueryRowContext(ctx, fmt.Sprintf(`
SELECT %s, j.fit_score FROM jobs j WHERE j.id = $1
`, jobColumns), id)
	job, err := scanJob(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return jobfeed.Job{}, ErrNotFound
	}
	return job, err
}

// BookmarkedSet reports which of jobIDs the user has bookmarked, resolved in
// one round trip for a whole page.
func (s *Store) BookmarkedSet(ctx context.Context, userID string, jobIDs []string) (map[string]bool, error) {
	return s.membershipSet(ctx, `SELECT job_id FROM bookmarks WHERE user_id = $1 AND job_id = ANY($2)`, userID, jobIDs)
}

// TrackedSet reports which of jobIDs the user has in their pipeline.
func (s *Store) TrackedSet(ctx context.Context, userID string, jobIDs []string) (map[string]bool, error) {
	return s.membershipSet(ctx, `SELECT job_id FROM pipeline_items WHERE user_id = $1 AND job_id = ANY($2)`, userID, jobIDs)
}

func (s *Store) membershipSet(ctx context.Context, query, userID string, jobIDs []string) (map[string]bool, error) {
	set := make(map[string]bool, len(jobIDs))
	if len(jobIDs) == 0 {
		return set, nil
	}
	rows, err := s.DB.QueryContext(ctx, query, userID, pq.Array(jobIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		set[id] = true
	}
	return set, rows.Err()
}

func scanJobs(rows *sql.Rows) ([]jobfeed.Job, error) {
	defer rows.Close()
	var out []jobfeed.Job
	for rows.Next() {
		job, err := scanJob(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

func scanJob(scan func(...interface{}) error) (jobfeed.Job, error) {
	var (
		j                    jobfeed.Job
		location, workType   sql.NullString
		salaryMin, salaryMax sql.NullInt64
		fit                  sql.NullFloat64
	)
	err := scan(&j.ID, &j.Source, &j.Title, &j.Company, &j.Description,
		&location, &workType, &salaryMin, &salaryMax, &j.URL, &j.PublishedAt, &fit)
	if err != nil {
		return jobfeed.Job{}, err
	}
	if location.Valid {
		j.Location = &location.String
	}
	if workType.Valid {
		j.WorkType = &workType.String
	}
	if salaryMin.Valid {
		v := int(salaryMin.Int64)
		j.SalaryMin = &v
	}
	if salaryMax.Valid {
		v := int(salaryMax.Int64)
		j.SalaryMax = &v
	}
	if fit.Valid {
		j.FitScore = &fit.Float64
	}
	return j, nil
}
