package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"lingua-backend/internal/models"
	"lingua-backend/internal/repository"
	"lingua-backend/internal/services"
)

type sessionRepository interface {
	Create(ctx context.Context, s *models.PracticeSession) error
	TotalsByTypeSince(ctx context.Context, userID uuid.UUID, since time.Time) (map[string]repository.TypeTotals, error)
}

type settingsReader interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.UserSettings, error)
}

type deckChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type deckReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Deck, error)
	GetCards(ctx context.Context, deckID uuid.UUID) ([]models.Flashcard, error)
}

type wordLister interface {
	AllTexts(ctx context.Context, userID uuid.UUID) ([]string, error)
}

type conversationalist interface {
	Converse(ctx context.Context, systemPrompt string, messages []models.ConversationMessage) (string, error)
}

type PracticeHandler struct {
	sessions sessionRepository
	settings settingsReader
	decks    deckChecker
	cards    deckReader
	words    wordLister
	tutor    conversationalist
	log      *zap.Logger
}

func NewPracticeHandler(sessions sessionRepository, settings settingsReader, decks deckChecker,
	cards deckReader, words wordLister, tutor conversationalist, log *zap.Logger) *PracticeHandler {
	return &PracticeHandler{
		sessions: sessions,
		settings: settings,
		decks:    decks,
		cards:    cards,
		words:    words,
		tutor:    tutor,
		log:      log,
	}
}

// Conversation proxies one turn of the practice dialogue to the model. The
// deck's vocabulary and the learner's saved words shape the tutor's system
// instruction; the dialogue itself is never stored server-side.
func (h *PracticeHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	var req models.ConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	fields := map[string]string{}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		fields["user_id"] = "A valid user id is required"
	}
	deckID, err := uuid.Parse(req.DeckID)
	if err != nil {
		fields["deck_id"] = "A valid deck id is required"
	}
	if len(req.Messages) == 0 && !req.IsFirstMessage {
		fields["messages"] = "At least one message is required"
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fields, r))
		return
	}

	deck, err := h.cards.GetByID(r.Context(), deckID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Deck not found", r))
			return
		}
		h.log.Error("failed to load deck", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
		return
	}
	// A foreign deck reads the same as a missing one.
	if deck.UserID != userID {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Deck not found", r))
		return
	}

	cards, err := h.cards.GetCards(r.Context(), deckID)
	if err != nil {
		h.log.Error("failed to load deck vocabulary", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
		return
	}
	if len(cards) == 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"deck_id": "Deck has no flashcards to practice"}, r))
		return
	}

	pairs := make([]models.FlashcardPair, 0, len(cards))
	for _, c := range cards {
		pairs = append(pairs, models.FlashcardPair{Front: c.Front, Back: c.Back})
	}

	difficult, err := h.words.AllTexts(r.Context(), userID)
	if err != nil {
		h.log.Warn("failed to load saved words for prompt", zap.Error(err))
		difficult = nil
	}

	systemPrompt := services.BuildConversationPrompt(req.Settings, pairs, difficult)

	messages := req.Messages
	if req.IsFirstMessage && len(messages) == 0 {
		messages = []models.ConversationMessage{{Role: "user", Content: "Please greet me and start the conversation."}}
	}

	reply, err := h.tutor.Converse(r.Context(), systemPrompt, messages)
	if err != nil {
		h.log.Error("conversation turn failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("AI_ERROR", "The tutor is unavailable. Please try again.", r))
		return
	}

	fronts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		fronts = append(fronts, p.Front)
	}

	writeJSON(w, http.StatusOK, models.ConversationResponse{
		Message:   reply,
		WordsUsed: services.WordsUsed(reply, fronts),
	})
}

// CreateSession records a completed practice session. A deck id pointing at
// a deleted deck is stored as null rather than rejected.
func (h *PracticeHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	fields := map[string]string{}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		fields["user_id"] = "A valid user id is required"
	}
	if req.PracticeType != models.PracticeTypeFlashcard && req.PracticeType != models.PracticeTypeConversation {
		fields["practice_type"] = "Practice type must be flashcard or conversation"
	}
	if req.DurationSeconds < 1 {
		fields["duration_seconds"] = "Duration must be at least one second"
	}
	var deckID *uuid.UUID
	if req.DeckID != "" {
		id, err := uuid.Parse(req.DeckID)
		if err != nil {
			fields["deck_id"] = "Invalid deck id"
		} else {
			deckID = &id
		}
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fields, r))
		return
	}

	if deckID != nil {
		exists, err := h.decks.Exists(r.Context(), *deckID)
		if err != nil {
			h.log.Error("failed to check deck", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
			return
		}
		if !exists {
			deckID = nil
		}
	}

	session := &models.PracticeSession{
		UserID:          userID,
		DeckID:          deckID,
		PracticeType:    req.PracticeType,
		DurationSeconds: req.DurationSeconds,
	}
	if err := h.sessions.Create(r.Context(), session); err != nil {
		h.log.Error("failed to record session", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

// DailyStats aggregates today's practice against the user's daily goal.
// The day boundary is UTC midnight.
func (h *PracticeHandler) DailyStats(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "A valid user_id query parameter is required", r))
		return
	}

	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	totals, err := h.sessions.TotalsByTypeSince(r.Context(), userID, midnight)
	if err != nil {
		h.log.Error("failed to aggregate sessions", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
		return
	}

	goal := models.DefaultDailyGoalMinutes
	settings, err := h.settings.Get(r.Context(), userID)
	if err == nil {
		goal = settings.DailyGoalMinutes
	} else if !errors.Is(err, pgx.ErrNoRows) {
		h.log.Error("failed to load settings", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
		return
	}

	fc := totals[models.PracticeTypeFlashcard]
	conv := totals[models.PracticeTypeConversation]

	totalMinutes := (fc.Seconds + conv.Seconds) / 60
	progress := 0
	if goal > 0 {
		progress = totalMinutes * 100 / goal
		if progress > 100 {
			progress = 100
		}
	}

	writeJSON(w, http.StatusOK, models.DailyStatsResponse{
		Date:          midnight.Format("2006-01-02"),
		TotalMinutes:  totalMinutes,
		TotalSessions: fc.Sessions + conv.Sessions,
		Flashcard: models.PracticeTotals{
			Minutes:  fc.Seconds / 60,
			Sessions: fc.Sessions,
		},
		Conversation: models.PracticeTotals{
			Minutes:  conv.Seconds / 60,
			Sessions: conv.Sessions,
		},
		DailyGoalMinutes: goal,
		ProgressPercent:  progress,
		GoalReached:      totalMinutes >= goal,
	})
}
