package models

import (
	"time"

	"github.com/google/uuid"
)

// Word lifecycle statuses.
const (
	WordStatusPending  = "pending"
	WordStatusApproved = "approved"
	WordStatusRejected = "rejected"
)

type Word struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	Word          string     `json:"word"`
	Definition    string     `json:"definition"`
	Example       *string    `json:"example"`
	Pronunciation *string    `json:"pronunciation"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at"`
}

type CreateWordRequest struct {
	UserID        string `json:"user_id"`
	Word          string `json:"word"`
	Definition    string `json:"definition"`
	Example       string `json:"example"`
	Pronunciation string `json:"pronunciation"`
}

type UpdateWordRequest struct {
	Word          *string `json:"word"`
	Definition    *string `json:"definition"`
	Example       *string `json:"example"`
	Pronunciation *string `json:"pronunciation"`
	Status        *string `json:"status"`
}

type WordListResponse struct {
	Words      []*Word `json:"words"`
	TotalCount int     `json:"total_count"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
}

// WordImport is a single entry of a batch import request.
type WordImport struct {
	Word          string `json:"word"`
	Definition    string `json:"definition"`
	Example       string `json:"example"`
	Pronunciation string `json:"pronunciation"`
}

type BatchImportRequest struct {
	UserID string       `json:"user_id"`
	Words  []WordImport `json:"words"`
}

type BatchImportResponse struct {
	Saved   int      `json:"saved"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}
