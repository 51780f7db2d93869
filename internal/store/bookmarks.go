package store

import (
	"context"

	"github.com/lib/pq"
)

// ToggleBookmark flips the bookmark for (userID, jobID) and returns the new
// state: true when the bookmark now exists. Existence of the row is the whole
// representation; there is no boolean column.
func (s *Store) ToggleBookmark(ctx context.Context, userID, jobID string) (bool, error) {
	res, err := s.DB.ExecContext(ctx, `
DELETE FROM bookmarks WHERE user_id = $1 AND job_id = $2
`, userID, jobID)
	if err != nil {
		return false, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return false, err
	} else if n > 0 {
		return false, nil
	}
	_, err = s.DB.ExecContext(ctx, `
INSERT INTO bookmarks (user_id, job_id) VALUES ($1, $2)
ON CONFLICT (user_id, job_id) DO NOTHING
`, userID, jobID)
	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23503" {
			return false, ErrNotFound // job does not exist
		}
		return false, err
	}
	return true, nil
}
