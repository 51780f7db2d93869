package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jobdeck/jobdeck/internal/jobfeed"
)

// PipelineColumn is the kanban column a tracked job sits in.
type PipelineColumn string

const (
	ColumnWishlist  PipelineColumn = "wishlist"
	ColumnApplied   PipelineColumn = "applied"
	ColumnInterview PipelineColumn = "interview"
	ColumnOffer     PipelineColumn = "offer"
)

// ParsePipelineColumn validates a column tag from the wire.
func ParsePipelineColumn(s string) (PipelineColumn, error) {
	switch col := PipelineColumn(s); col {
	case ColumnWishlist, ColumnApplied, ColumnInterview, ColumnOffer:
		return col, nil
	default:
		return "", fmt.Errorf("%w: unknown pipeline column %q", ErrInvalidArgument, s)
	}
}

// PipelineItem tracks one job for one user. Position orders items within
// (user, column); ties are broken by id, so the order is total even when
// positions collide after concurrent edits.
type PipelineItem struct {
	ID        string
	JobID     string
	Column    PipelineColumn
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
	Job       jobfeed.Job
}

// UpsertPipelineItem creates or moves the (user, job) pipeline entry.
func (s *Store) UpsertPipelineItem(ctx context.Context, userID, jobID string, column PipelineColumn, position int) error {
	if position < 0 {
		return fmt.Errorf("%w: position must be non-negative, got %d", ErrInvalidArgument, position)
	}
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO pipeline_items (id, user_id, job_id, column_name, position)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id, job_id) DO UPDATE SET
  column_name = EXCLUDED.column_name,
  position = EXCLUDED.position,
  updated_at = NOW()
`, uuid.NewString(), userID, jobID, string(column), position)
	if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23503" {
		return fmt.Errorf("%w: job %s", ErrNotFound, jobID)
	}
	return err
}

// ReorderPipeline rewrites positions for exactly the given items in a single
// transaction. ids and positions are parallel arrays; any mismatch, negative
// position, or reference to an item the user does not own rolls the whole
// batch back.
func (s *Store) ReorderPipeline(ctx context.Context, userID string, ids []string, positions []int) error {
	if len(ids) != len(positions) {
		return fmt.Errorf("%w: %d ids but %d positions", ErrInvalidArgument, len(ids), len(positions))
	}
	if len(ids) == 0 {
		return nil
	}
	for i, p := range positions {
		if p < 0 {
			return fmt.Errorf("%w: position at index %d is negative", ErrInvalidArgument, i)
		}
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for i, id := range ids {
		res, err := tx.ExecContext(ctx, `
UPDATE pipeline_items SET position = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3
`, positions[i], id, userID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: pipeline item %s not found", ErrInvalidArgument, id)
		}
	}
	return tx.Commit()
}

// ListPipeline returns the user's pipeline with each job resolved, ordered by
// column, then position, then id.
func (s *Store) ListPipeline(ctx context.Context, userID string) ([]PipelineItem, error) {
	rows, err := s.DB.QueryContext(ctx, fmt.Sprintf(`
SELECT p.id, p.job_id, p.column_name, p.position, p.created_at, p.updated_at,
       %s, j.fit_score
FROM pipeline_items p
JOIN jobs j ON j.id = p.job_id
WHERE p.user_id = $1
ORDER BY p.column_name ASC, p.position ASC, p.id ASC
`, jobColumns), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PipelineItem
	for rows.Next() {
		var (
			item PipelineItem
			col  string
		)
		scanRest := func(dest ...interface{}) error {
			head := []interface{}{&item.ID, &item.JobID, &col, &item.Position, &item.CreatedAt, &item.UpdatedAt}
			return rows.Scan(append(head, dest...)...)
		}
		job, err := scanJob(scanRest)
		if err != nil {
			return nil, err
		}
		item.Column = PipelineColumn(col)
		item.Job = job
		out = append(out, item)
	}
	return out, rows.Err()
}
