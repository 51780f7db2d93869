package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Profile is a user's personalization record: the free-text skill tokens and
// the embedding derived from them, kept in sync by UpsertProfile.
type Profile struct {
	UserID      string
	Skills      []string
	SkillVector []float32
	UpdatedAt   time.Time
}

// GetProfile returns the user's profile, or ErrNotFound when none exists.
func (s *Store) GetProfile(ctx context.Context, userID string) (Profile, error) {
	p := Profile{UserID: userID}
	var lit sql.NullString
	err := s.DB.QueryRowContext(ctx, `
SELECT skills, skill_vector::text, updated_at FROM user_profiles WHERE user_id = $1
`, userID).Scan(pq.Array(&p.Skills), &lit, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, err
	}
	if lit.Valid && lit.String != "" {
		vec, err := decodeVectorLiteral(lit.String)
		if err != nil {
			return Profile{}, fmt.Errorf("decode skill vector: %w", err)
		}
		p.SkillVector = vec
	}
	return p, nil
}

// SkillVector returns the user's skill embedding. A user with no profile or
// an empty skill list yields nil — the absence of a vector is what routes a
// request onto the generic path.
func (s *Store) SkillVector(ctx context.Context, userID string) ([]float32, error) {
	var lit sql.NullString
	err := s.DB.QueryRowContext(ctx, `
SELECT skill_vector::text FROM user_profiles WHERE user_id = $1 AND cardinality(skills) > 0
`, userID).Scan(&lit)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !lit.Valid || lit.String == "" {
		return nil, nil
	}
	return decodeVectorLiteral(lit.String)
}

// UpsertProfile writes the skill list and its embedding atomically so the two
// never drift apart. An empty vector is stored as NULL, which routes the user
// back to the generic feed.
func (s *Store) UpsertProfile(ctx context.Context, userID string, skills []string, vector []float32) error {
	var lit sql.NullString
	if len(vector) > 0 {
		enc, err := encodeVectorLiteral(vector)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		lit = sql.NullString{String: enc, Valid: true}
	}
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO user_profiles (user_id, skills, skill_vector, updated_at)
VALUES ($1, $2, $3::vector, NOW())
ON CONFLICT (user_id) DO UPDATE SET
  skills = EXCLUDED.skills,
  skill_vector = EXCLUDED.skill_vector,
  updated_at = NOW()
`, userID, pq.Array(skills), lit)
	return err
}
