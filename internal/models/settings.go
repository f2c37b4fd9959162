package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultDailyGoalMinutes applies when the user has no stored settings row.
const DefaultDailyGoalMinutes = 15

type UserSettings struct {
	ID               *uuid.UUID `json:"id"`
	UserID           uuid.UUID  `json:"user_id"`
	DailyGoalMinutes int        `json:"daily_goal_minutes"`
	CreatedAt        *time.Time `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at"`
}

type UpdateSettingsRequest struct {
	UserID           string `json:"user_id"`
	DailyGoalMinutes int    `json:"daily_goal_minutes"`
}
