package models

import (
	"time"

	"github.com/google/uuid"
)

// Practice types.
const (
	PracticeTypeFlashcard    = "flashcard"
	PracticeTypeConversation = "conversation"
)

// ConversationMessage is a single turn of the practice dialogue.
type ConversationMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ConversationSettings tunes the tutor's system instruction.
type ConversationSettings struct {
	ImmersionLevel int    `json:"immersion_level"` // 0-100
	FocusMode      string `json:"focus_mode"`      // "deck-focused" | "natural"
	Topic          string `json:"topic"`
}

type ConversationRequest struct {
	DeckID         string                `json:"deck_id"`
	UserID         string                `json:"user_id"`
	Messages       []ConversationMessage `json:"messages"`
	IsFirstMessage bool                  `json:"is_first_message"`
	Settings       *ConversationSettings `json:"settings"`
}

type ConversationResponse struct {
	Message   string   `json:"message"`
	WordsUsed []string `json:"words_used"`
}

type PracticeSession struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	DeckID          *uuid.UUID `json:"deck_id"`
	PracticeType    string     `json:"practice_type"`
	DurationSeconds int        `json:"duration_seconds"`
	CompletedAt     time.Time  `json:"completed_at"`
}

type CreateSessionRequest struct {
	UserID          string `json:"user_id"`
	DeckID          string `json:"deck_id"`
	PracticeType    string `json:"practice_type"`
	DurationSeconds int    `json:"duration_seconds"`
}

// PracticeTotals aggregates one practice type's activity for a day.
type PracticeTotals struct {
	Minutes  int `json:"minutes"`
	Sessions int `json:"sessions"`
}

type DailyStatsResponse struct {
	Date             string         `json:"date"`
	TotalMinutes     int            `json:"total_minutes"`
	TotalSessions    int            `json:"total_sessions"`
	Flashcard        PracticeTotals `json:"flashcard"`
	Conversation     PracticeTotals `json:"conversation"`
	DailyGoalMinutes int            `json:"daily_goal_minutes"`
	ProgressPercent  int            `json:"progress_percent"`
	GoalReached      bool           `json:"goal_reached"`
}
