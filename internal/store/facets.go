package store

import (
	"context"
	"strings"
)

// FilterBounds aggregates the ranges and vocabularies the filter sidebar
// offers: observed fit score and salary extents, plus the distinct sources
// and the most frequent locations and work types.
type FilterBounds struct {
	FitMin    float64  `json:"fitMin"`
	FitMax    float64  `json:"fitMax"`
	SalaryMin int      `json:"salaryMin"`
	SalaryMax int      `json:"salaryMax"`
	Sources   []string `json:"sources"`
	Locations []string `json:"locations"`
	WorkTypes []string `json:"workTypes"`
}

const facetGroupLimit = 50

// FilterBoundsStats computes FilterBounds from the jobs table.
func (s *Store) FilterBoundsStats(ctx context.Context) (FilterBounds, error) {
	var b FilterBounds

	err := s.DB.QueryRowContext(ctx, `
SELECT COALESCE(MIN(fit_score), 0), COALESCE(MAX(fit_score), 100)
FROM jobs WHERE fit_score IS NOT NULL
`).Scan(&b.FitMin, &b.FitMax)
	if err != nil {
		return FilterBounds{}, err
	}

	err = s.DB.QueryRowContext(ctx, `
SELECT COALESCE(MIN(salary_min), 0), COALESCE(MAX(salary_max), 0)
FROM jobs WHERE salary_min IS NOT NULL OR salary_max IS NOT NULL
`).Scan(&b.SalaryMin, &b.SalaryMax)
	if err != nil {
		return FilterBounds{}, err
	}

	sources, err := s.stringColumn(ctx, `
SELECT DISTINCT source FROM jobs WHERE source IS NOT NULL AND TRIM(source) <> ''
`)
	if err != nil {
		return FilterBounds{}, err
	}
	for _, src := range sources {
		b.Sources = append(b.Sources, strings.ToUpper(src))
	}

	b.Locations, err = s.stringColumn(ctx, `
SELECT location FROM jobs
WHERE location IS NOT NULL AND location NOT IN ('', 'Remote', 'Worldwide')
GROUP BY location ORDER BY COUNT(*) DESC LIMIT $1
`, facetGroupLimit)
	if err != nil {
		return FilterBounds{}, err
	}

	b.WorkTypes, err = s.stringColumn(ctx, `
SELECT work_type FROM jobs
WHERE work_type IS NOT NULL AND work_type <> ''
GROUP BY work_type ORDER BY COUNT(*) DESC LIMIT $1
`, facetGroupLimit)
	if err != nil {
		return FilterBounds{}, err
	}
	return b, nil
}

func (s *Store) stringColumn(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
