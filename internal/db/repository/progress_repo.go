package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/gokatarajesh/lgs-tracker/internal/records"
)

// UserProgress is the stored per-user state that is not derived from results.
type UserProgress struct {
	OwnerID   string
	Goals     records.Goals
	Badges    []string
	UpdatedAt time.Time
}

// ProgressRepository persists goals and the badges a user has already been shown.
type ProgressRepository struct {
	db DBTX
}

// NewProgressRepository wraps a pool or transaction.
func NewProgressRepository(db DBTX) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Get returns ErrNotFound for users that never set goals or earned a badge.
func (r *ProgressRepository) Get(ctx context.Context, ownerID string) (UserProgress, error) {
	p := UserProgress{OwnerID: ownerID}
	err := r.db.QueryRow(ctx,
		`SELECT daily_goal, weekly_goal, badges, updated_at FROM user_progress WHERE user_id = $1`, ownerID,
	).Scan(&p.Goals.Daily, &p.Goals.Weekly, &p.Badges, &p.UpdatedAt)
	if err != nil {
		return UserProgress{}, notFound(err)
	}
	if p.Badges == nil {
		p.Badges = []string{}
	}
	return p, nil
}

// UpsertGoals stores goals, creating the row when needed.
func (r *ProgressRepository) UpsertGoals(ctx context.Context, ownerID string, goals records.Goals) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO user_progress (user_id, daily_goal, weekly_goal, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (user_id) DO UPDATE
		 SET daily_goal = EXCLUDED.daily_goal, weekly_goal = EXCLUDED.weekly_goal, updated_at = now()`,
		ownerID, goals.Daily, goals.Weekly,
	)
	if err != nil {
		return fmt.Errorf("upsert goals: %w", err)
	}
	return nil
}

// SaveBadges replaces the stored badge set, creating the row with default goals when needed.
func (r *ProgressRepository) SaveBadges(ctx context.Context, ownerID string, badges []string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO user_progress (user_id, badges, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (user_id) DO UPDATE
		 SET badges = EXCLUDED.badges, updated_at = now()`,
		ownerID, nonNil(badges),
	)
	if err != nil {
		return fmt.Errorf("save badges: %w", err)
	}
	return nil
}
