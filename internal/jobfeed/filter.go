package jobfeed

import (
	"fmt"
	"strings"
)

// SortKey selects the ordering of the jobs feed.
type SortKey string

const (
	SortFit    SortKey = "FIT"
	SortDate   SortKey = "DATE"
	SortSalary SortKey = "SALARY"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Filters is the raw criteria bag as it arrives from a request. A nil field
// means the criterion was not provided and must impose no predicate.
type Filters struct {
	MinFit     *float64
	Search     *string
	MinSalary  *int
	Location   *string
	WorkType   *string
	Sources    []string
	SortBy     *string
	First      *int
	After      *string
	Bookmarked *bool
	Tracked    *bool
}

// Spec is the normalized form of Filters: case-folded sources, decoded
// cursor, resolved sort key and page size. Building a Spec touches no
// storage.
type Spec struct {
	AfterID    string // decoded cursor; rows must satisfy id > AfterID
	MinFit     *float64
	Search     string
	MinSalary  *int
	Location   string
	WorkType   string
	Sources    []string
	Bookmarked *bool
	Tracked    *bool
	Sort       SortKey
	PageSize   int
}

// BuildSpec validates and normalizes f. Absent criteria stay absent: an unset
// pointer never turns into a zero-valued predicate that would exclude rows.
func BuildSpec(f Filters) (Spec, error) {
	spec := Spec{Sort: SortFit, PageSize: DefaultPageSize}

	if f.SortBy != nil {
		switch key := SortKey(strings.ToUpper(strings.TrimSpace(*f.SortBy))); key {
		case SortFit, SortDate, SortSalary:
			spec.Sort = key
		default:
			return Spec{}, fmt.Errorf("%w: unknown sort key %q", ErrInvalidFilter, *f.SortBy)
		}
	}

	if f.First != nil {
		if *f.First <= 0 {
			return Spec{}, fmt.Errorf("%w: first must be positive, got %d", ErrInvalidFilter, *f.First)
		}
		spec.PageSize = *f.First
		if spec.PageSize > MaxPageSize {
			spec.PageSize = MaxPageSize
		}
	}

	if f.After != nil && *f.After != "" {
		id, err := DecodeCursor(*f.After)
		if err != nil {
			return Spec{}, err
		}
		spec.AfterID = id
	}

	if f.MinFit != nil {
		if *f.MinFit < 0 || *f.MinFit > 100 {
			return Spec{}, fmt.Errorf("%w: minFit must be within [0,100], got %g", ErrInvalidFilter, *f.MinFit)
		}
		v := *f.MinFit
		spec.MinFit = &v
	}
	if f.MinSalary != nil {
		if *f.MinSalary < 0 {
			return Spec{}, fmt.Errorf("%w: minSalary must be non-negative, got %d", ErrInvalidFilter, *f.MinSalary)
		}
		v := *f.MinSalary
		spec.MinSalary = &v
	}
	if f.Search != nil {
		spec.Search = strings.TrimSpace(*f.Search)
	}
	if f.Location != nil {
		spec.Location = strings.TrimSpace(*f.Location)
	}
	if f.WorkType != nil {
		spec.WorkType = strings.TrimSpace(*f.WorkType)
	}
	for _, src := range f.Sources {
		src = strings.ToLower(strings.TrimSpace(src))
		if src == "" {
			continue
		}
		spec.Sources = append(spec.Sources, src)
	}
	if f.Bookmarked != nil {
		v := *f.Bookmarked
		spec.Bookmarked = &v
	}
	if f.Tracked != nil {
		v := *f.Tracked
		spec.Tracked = &v
	}
	return spec, nil
}
