package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"lingua-backend/internal/models"
)

const maxSourceTextLen = 10000

// Narrow interfaces so tests can stub the store and the model.

type deckRepository interface {
	CreateWithCards(ctx context.Context, d *models.Deck, cards []models.FlashcardPair) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Deck, error)
	ListByUser(ctx context.Context, userID uuid.UUID, search, sortBy string) ([]models.DeckSummary, error)
	GetCards(ctx context.Context, deckID uuid.UUID) ([]models.Flashcard, error)
	UpdateTitle(ctx context.Context, id, userID uuid.UUID, title string) (bool, error)
	Delete(ctx context.Context, id, userID uuid.UUID) (bool, error)
}

type flashcardGenerator interface {
	GenerateFlashcards(ctx context.Context, text, difficulty string) ([]models.FlashcardPair, error)
}

type DeckHandler struct {
	decks     deckRepository
	generator flashcardGenerator
	log       *zap.Logger
}

func NewDeckHandler(decks deckRepository, generator flashcardGenerator, log *zap.Logger) *DeckHandler {
	return &DeckHandler{decks: decks, generator: generator, log: log}
}

var validDifficulties = map[string]bool{"easy": true, "medium": true, "hard": true}

// Generate turns source text into an ephemeral set of flashcard pairs.
// Nothing is written to the database until the client saves a deck.
func (h *DeckHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateFlashcardsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	fields := map[string]string{}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		fields["text"] = "Text is required"
	} else if len(req.Text) > maxSourceTextLen {
		fields["text"] = "Text must be at most 10000 characters"
	}
	if req.Difficulty == "" {
		req.Difficulty = "medium"
	} else if !validDifficulties[req.Difficulty] {
		fields["difficulty"] = "Difficulty must be easy, medium or hard"
	}
	if _, err := uuid.Parse(req.UserID); err != nil {
		fields["user_id"] = "A valid user id is required"
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fields, r))
		return
	}

	start := time.Now()
	pairs, err := h.generator.GenerateFlashcards(r.Context(), req.Text, req.Difficulty)
	if err != nil {
		h.log.Error("flashcard generation failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("AI_ERROR", "Flashcard generation failed. Please try again.", r))
		return
	}

	writeJSON(w, http.StatusOK, models.GenerateFlashcardsResponse{
		Flashcards:     pairs,
		Count:          len(pairs),
		Difficulty:     req.Difficulty,
		ProcessingTime: math.Round(time.Since(start).Seconds()*1000) / 1000,
	})
}

// CreateDeck persists a previously generated (and possibly edited) set of
// pairs as a named deck.
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	var req models.CreateDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	fields := map[string]string{}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		fields["user_id"] = "A valid user id is required"
	}
	if len(req.Flashcards) == 0 {
		fields["flashcards"] = "At least one flashcard is required"
	}
	for _, p := range req.Flashcards {
		if strings.TrimSpace(p.Front) == "" || strings.TrimSpace(p.Back) == "" {
			fields["flashcards"] = "Every flashcard needs a front and a back"
			break
		}
	}
	if req.Difficulty == "" {
		req.Difficulty = "medium"
	} else if !validDifficulties[req.Difficulty] {
		fields["difficulty"] = "Difficulty must be easy, medium or hard"
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fields, r))
		return
	}

	deck := &models.Deck{
		UserID:     userID,
		Difficulty: req.Difficulty,
	}
	if title := strings.TrimSpace(req.Title); title != "" {
		deck.Title = &title
	}
	if src := strings.TrimSpace(req.SourceText); src != "" {
		deck.SourceText = &src
	}

	if err := h.decks.CreateWithCards(r.Context(), deck, req.Flashcards); err != nil {
		h.log.Error("failed to create deck", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
		return
	}

	title := ""
	if deck.Title != nil {
		title = *deck.Title
	}
	writeJSON(w, http.StatusCreated, models.CreateDeckResponse{
		DeckID:     deck.ID,
		Title:      title,
		Count:      len(req.Flashcards),
		Difficulty: deck.Difficulty,
		CreatedAt:  deck.CreatedAt,
	})
}

func (h *DeckHandler) ListMyDecks(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "A valid user_id query parameter is required", r))
		return
	}
	search := r.URL.Query().Get("search")
	sortBy := r.URL.Query().Get("sort_by")

	decks, err := h.decks.ListByUser(r.Context(), userID, search, sortBy)
	if err != nil {
		h.log.Error("failed to list decks", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"decks": decks,
		"count": len(decks),
	})
}

func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	deckID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid deck id", r))
		return
	}

	deck, err := h.decks.GetByID(r.Context(), deckID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Deck not found", r))
			return
		}
		h.log.Error("failed to load deck", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
		return
	}

	cards, err := h.decks.GetCards(r.Context(), deckID)
	if err != nil {
		h.log.Error("failed to load flashcards", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
		return
	}

	pairs := make([]models.FlashcardPair, 0, len(cards))
	for _, c := range cards {
		pairs = append(pairs, models.FlashcardPair{Front: c.Front, Back: c.Back})
	}

	title := ""
	if deck.Title != nil {
		title = *deck.Title
	}
	sourceText := ""
	if deck.SourceText != nil {
		sourceText = *deck.SourceText
	}
	writeJSON(w, http.StatusOK, models.DeckDetailResponse{
		DeckID:     deck.ID,
		Title:      title,
		Flashcards: pairs,
		Count:      len(pairs),
		Difficulty: deck.Difficulty,
		SourceText: sourceText,
		CreatedAt:  deck.CreatedAt,
	})
}

// UpdateDeck renames a deck. Only the owner's decks are visible to the
// update, so a foreign deck id reads as not found.
func (h *DeckHandler) UpdateDeck(w http.ResponseWriter, r *http.Request) {
	deckID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid deck id", r))
		return
	}
	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "A valid user_id query parameter is required", r))
		return
	}

	var req models.UpdateDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"title": "Title is required"}, r))
		return
	}

	updated, err := h.decks.UpdateTitle(r.Context(), deckID, userID, title)
	if err != nil {
		h.log.Error("failed to update deck", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
		return
	}
	if !updated {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Deck not found", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Deck updated", "title": title})
}

func (h *DeckHandler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	deckID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid deck id", r))
		return
	}
	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "A valid user_id query parameter is required", r))
		return
	}

	deleted, err := h.decks.Delete(r.Context(), deckID, userID)
	if err != nil {
		h.log.Error("failed to delete deck", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Deck not found", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Deck deleted"})
}
