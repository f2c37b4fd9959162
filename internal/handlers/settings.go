package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"lingua-backend/internal/models"
)

const (
	minDailyGoalMinutes = 1
	maxDailyGoalMinutes = 480
)

type settingsRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.UserSettings, error)
	Upsert(ctx context.Context, s *models.UserSettings) error
}

type SettingsHandler struct {
	settings settingsRepository
	log      *zap.Logger
}

func NewSettingsHandler(settings settingsRepository, log *zap.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, log: log}
}

// Get returns the user's settings, synthesizing defaults when nothing has
// been stored yet. The synthesized row is not persisted.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "A valid user_id query parameter is required", r))
		return
	}

	settings, err := h.settings.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusOK, models.UserSettings{
				UserID:           userID,
				DailyGoalMinutes: models.DefaultDailyGoalMinutes,
			})
			return
		}
		h.log.Error("failed to load settings", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
		return
	}

	writeJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	fields := map[string]string{}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		fields["user_id"] = "A valid user id is required"
	}
	if req.DailyGoalMinutes < minDailyGoalMinutes || req.DailyGoalMinutes > maxDailyGoalMinutes {
		fields["daily_goal_minutes"] = "Daily goal must be between 1 and 480 minutes"
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fields, r))
		return
	}

	settings := &models.UserSettings{
		UserID:           userID,
		DailyGoalMinutes: req.DailyGoalMinutes,
	}
	if err := h.settings.Upsert(r.Context(), settings); err != nil {
		h.log.Error("failed to save settings", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
		return
	}

	writeJSON(w, http.StatusOK, settings)
}
