package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"lingua-backend/internal/models"
)

type SettingsRepo struct {
	pool *pgxpool.Pool
}

func NewSettingsRepo(pool *pgxpool.Pool) *SettingsRepo {
	return &SettingsRepo{pool: pool}
}

// Get returns the stored settings row; pgx.ErrNoRows when the user has none.
func (r *SettingsRepo) Get(ctx context.Context, userID uuid.UUID) (*models.UserSettings, error) {
	s := &models.UserSettings{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, daily_goal_minutes, created_at, updated_at
		 FROM user_settings WHERE user_id = $1`,
		userID,
	).Scan(&s.ID, &s.UserID, &s.DailyGoalMinutes, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Upsert creates or updates the single settings row keyed on user_id.
func (r *SettingsRepo) Upsert(ctx context.Context, s *models.UserSettings) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO user_settings (id, user_id, daily_goal_minutes)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET daily_goal_minutes = EXCLUDED.daily_goal_minutes,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`, uuid.New(), s.UserID, s.DailyGoalMinutes).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}
