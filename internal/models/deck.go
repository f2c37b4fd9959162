package models

import (
	"time"

	"github.com/google/uuid"
)

type Deck struct {
	ID         uuid.UUID `json:"id"`
	Title      *string   `json:"title"`
	UserID     uuid.UUID `json:"user_id"`
	SourceText *string   `json:"source_text"`
	Difficulty string    `json:"difficulty"` // easy | medium | hard
	CreatedAt  time.Time `json:"created_at"`
}

type Flashcard struct {
	ID        int64     `json:"id"`
	DeckID    uuid.UUID `json:"deck_id"`
	UserID    uuid.UUID `json:"user_id"`
	Front     string    `json:"front"`
	Back      string    `json:"back"`
	CreatedAt time.Time `json:"created_at"`
}

// FlashcardPair is the front/back payload the generator returns and the
// create-deck endpoint accepts. Nothing is persisted at generation time.
type FlashcardPair struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

type GenerateFlashcardsRequest struct {
	Text       string `json:"text"`
	Difficulty string `json:"difficulty"`
	UserID     string `json:"user_id"`
}

type GenerateFlashcardsResponse struct {
	Flashcards     []FlashcardPair `json:"flashcards"`
	Count          int             `json:"count"`
	Difficulty     string          `json:"difficulty"`
	ProcessingTime float64         `json:"processing_time"`
}

type CreateDeckRequest struct {
	Title      string          `json:"title"`
	Flashcards []FlashcardPair `json:"flashcards"`
	Difficulty string          `json:"difficulty"`
	SourceText string          `json:"source_text"`
	UserID     string          `json:"user_id"`
}

type CreateDeckResponse struct {
	DeckID     uuid.UUID `json:"deck_id"`
	Title      string    `json:"title"`
	Count      int       `json:"count"`
	Difficulty string    `json:"difficulty"`
	CreatedAt  time.Time `json:"created_at"`
}

// DeckSummary is a row of the my-decks listing.
type DeckSummary struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	CardCount  int       `json:"card_count"`
	Difficulty string    `json:"difficulty"`
	CreatedAt  time.Time `json:"created_at"`
}

type DeckDetailResponse struct {
	DeckID     uuid.UUID       `json:"deck_id"`
	Title      string          `json:"title"`
	Flashcards []FlashcardPair `json:"flashcards"`
	Count      int             `json:"count"`
	Difficulty string          `json:"difficulty"`
	SourceText string          `json:"source_text"`
	CreatedAt  time.Time       `json:"created_at"`
}

type UpdateDeckRequest struct {
	Title string `json:"title"`
}
