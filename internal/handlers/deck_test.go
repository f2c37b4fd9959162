package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lingua-backend/internal/models"
)

// ─── Stubs ───

type stubDecks struct {
	createFn      func(ctx context.Context, d *models.Deck, cards []models.FlashcardPair) error
	getByIDFn     func(ctx context.Context, id uuid.UUID) (*models.Deck, error)
	listFn        func(ctx context.Context, userID uuid.UUID, search, sortBy string) ([]models.DeckSummary, error)
	getCardsFn    func(ctx context.Context, deckID uuid.UUID) ([]models.Flashcard, error)
	updateTitleFn func(ctx context.Context, id, userID uuid.UUID, title string) (bool, error)
	deleteFn      func(ctx context.Context, id, userID uuid.UUID) (bool, error)
}

func (s *stubDecks) CreateWithCards(ctx context.Context, d *models.Deck, cards []models.FlashcardPair) error {
	return s.createFn(ctx, d, cards)
}

func (s *stubDecks) GetByID(ctx context.Context, id uuid.UUID) (*models.Deck, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubDecks) ListByUser(ctx context.Context, userID uuid.UUID, search, sortBy string) ([]models.DeckSummary, error) {
	return s.listFn(ctx, userID, search, sortBy)
}

func (s *stubDecks) GetCards(ctx context.Context, deckID uuid.UUID) ([]models.Flashcard, error) {
	return s.getCardsFn(ctx, deckID)
}

func (s *stubDecks) UpdateTitle(ctx context.Context, id, userID uuid.UUID, title string) (bool, error) {
	return s.updateTitleFn(ctx, id, userID, title)
}

func (s *stubDecks) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	return s.deleteFn(ctx, id, userID)
}

type stubGenerator struct {
	generateFn func(ctx context.Context, text, difficulty string) ([]models.FlashcardPair, error)
}

func (s *stubGenerator) GenerateFlashcards(ctx context.Context, text, difficulty string) ([]models.FlashcardPair, error) {
	return s.generateFn(ctx, text, difficulty)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeError(t *testing.T, body *bytes.Buffer) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp
}

// ─── Generate ───

func TestGenerate_ReturnsPreviewWithoutPersisting(t *testing.T) {
	decks := &stubDecks{
		createFn: func(ctx context.Context, d *models.Deck, cards []models.FlashcardPair) error {
			t.Fatal("generate must not touch the deck store")
			return nil
		},
	}
	gen := &stubGenerator{
		generateFn: func(ctx context.Context, text, difficulty string) ([]models.FlashcardPair, error) {
			assert.Equal(t, "hard", difficulty)
			return []models.FlashcardPair{
				{Front: "bonjour", Back: "hello"},
				{Front: "merci", Back: "thanks"},
			}, nil
		},
	}
	h := NewDeckHandler(decks, gen, zap.NewNop())

	body, _ := json.Marshal(models.GenerateFlashcardsRequest{
		Text:       "Bonjour et merci beaucoup.",
		Difficulty: "hard",
		UserID:     uuid.New().String(),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/generate-flashcards", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	h.Generate(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp models.GenerateFlashcardsResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Count)
	assert.Len(t, resp.Flashcards, 2)
	assert.Equal(t, "hard", resp.Difficulty)
	assert.GreaterOrEqual(t, resp.ProcessingTime, 0.0)
}

func TestGenerate_Validation(t *testing.T) {
	h := NewDeckHandler(&stubDecks{}, &stubGenerator{}, zap.NewNop())

	tests := []struct {
		name  string
		req   models.GenerateFlashcardsRequest
		field string
	}{
		{"empty text", models.GenerateFlashcardsRequest{Text: "  ", UserID: uuid.New().String()}, "text"},
		{"text too long", models.GenerateFlashcardsRequest{Text: strings.Repeat("a", 10001), UserID: uuid.New().String()}, "text"},
		{"bad difficulty", models.GenerateFlashcardsRequest{Text: "hello", Difficulty: "expert", UserID: uuid.New().String()}, "difficulty"},
		{"bad user id", models.GenerateFlashcardsRequest{Text: "hello", UserID: "not-a-uuid"}, "user_id"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body, _ := json.Marshal(tc.req)
			req := httptest.NewRequest(http.MethodPost, "/api/generate-flashcards", bytes.NewReader(body))
			rr := httptest.NewRecorder()

			h.Generate(rr, req)

			require.Equal(t, http.StatusBadRequest, rr.Code)
			resp := decodeError(t, rr.Body)
			assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
			assert.Contains(t, resp.Error.Fields, tc.field)
		})
	}
}

func TestGenerate_ModelFailure(t *testing.T) {
	gen := &stubGenerator{
		generateFn: func(ctx context.Context, text, difficulty string) ([]models.FlashcardPair, error) {
			return nil, errors.New("model exploded")
		},
	}
	h := NewDeckHandler(&stubDecks{}, gen, zap.NewNop())

	body, _ := json.Marshal(models.GenerateFlashcardsRequest{Text: "hello world", UserID: uuid.New().String()})
	req := httptest.NewRequest(http.MethodPost, "/api/generate-flashcards", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	h.Generate(rr, req)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "AI_ERROR", decodeError(t, rr.Body).Error.Code)
}

// ─── CreateDeck ───

func TestCreateDeck_PersistsEditedPairs(t *testing.T) {
	var saved []models.FlashcardPair
	decks := &stubDecks{
		createFn: func(ctx context.Context, d *models.Deck, cards []models.FlashcardPair) error {
			d.ID = uuid.New()
			d.CreatedAt = time.Now()
			saved = cards
			return nil
		},
	}
	h := NewDeckHandler(decks, &stubGenerator{}, zap.NewNop())

	body, _ := json.Marshal(models.CreateDeckRequest{
		Title:      "French basics",
		Flashcards: []models.FlashcardPair{{Front: "chat", Back: "cat"}},
		UserID:     uuid.New().String(),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/decks", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	h.CreateDeck(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	require.Len(t, saved, 1)
	var resp models.CreateDeckResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "French basics", resp.Title)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "medium", resp.Difficulty)
}

func TestCreateDeck_RejectsEmptyAndBlankCards(t *testing.T) {
	h := NewDeckHandler(&stubDecks{}, &stubGenerator{}, zap.NewNop())

	tests := []struct {
		name  string
		cards []models.FlashcardPair
	}{
		{"no cards", nil},
		{"blank front", []models.FlashcardPair{{Front: " ", Back: "cat"}}},
		{"blank back", []models.FlashcardPair{{Front: "chat", Back: ""}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body, _ := json.Marshal(models.CreateDeckRequest{
				Flashcards: tc.cards,
				UserID:     uuid.New().String(),
			})
			req := httptest.NewRequest(http.MethodPost, "/api/decks", bytes.NewReader(body))
			rr := httptest.NewRecorder()

			h.CreateDeck(rr, req)

			require.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, decodeError(t, rr.Body).Error.Fields, "flashcards")
		})
	}
}

// ─── GetDeck ───

func TestGetDeck_NotFound(t *testing.T) {
	decks := &stubDecks{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Deck, error) {
			return nil, pgx.ErrNoRows
		},
	}
	h := NewDeckHandler(decks, &stubGenerator{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/decks/"+uuid.New().String(), nil)
	req = withURLParam(req, "id", uuid.New().String())
	rr := httptest.NewRecorder()

	h.GetDeck(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, rr.Body).Error.Code)
}

func TestGetDeck_MalformedID(t *testing.T) {
	h := NewDeckHandler(&stubDecks{}, &stubGenerator{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/decks/abc", nil)
	req = withURLParam(req, "id", "abc")
	rr := httptest.NewRecorder()

	h.GetDeck(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rr.Body).Error.Code)
}

func TestGetDeck_PreservesCardOrder(t *testing.T) {
	deckID := uuid.New()
	decks := &stubDecks{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Deck, error) {
			return &models.Deck{ID: deckID, Difficulty: "easy", CreatedAt: time.Now()}, nil
		},
		getCardsFn: func(ctx context.Context, id uuid.UUID) ([]models.Flashcard, error) {
			return []models.Flashcard{
				{ID: 1, Front: "un", Back: "one"},
				{ID: 2, Front: "deux", Back: "two"},
				{ID: 3, Front: "trois", Back: "three"},
			}, nil
		},
	}
	h := NewDeckHandler(decks, &stubGenerator{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/decks/"+deckID.String(), nil)
	req = withURLParam(req, "id", deckID.String())
	rr := httptest.NewRecorder()

	h.GetDeck(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp models.DeckDetailResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Equal(t, 3, resp.Count)
	assert.Equal(t, "un", resp.Flashcards[0].Front)
	assert.Equal(t, "deux", resp.Flashcards[1].Front)
	assert.Equal(t, "trois", resp.Flashcards[2].Front)
}

// ─── Update / Delete ───

func TestUpdateDeck_ForeignDeckReadsAsNotFound(t *testing.T) {
	decks := &stubDecks{
		updateTitleFn: func(ctx context.Context, id, userID uuid.UUID, title string) (bool, error) {
			return false, nil
		},
	}
	h := NewDeckHandler(decks, &stubGenerator{}, zap.NewNop())

	deckID := uuid.New().String()
	body, _ := json.Marshal(models.UpdateDeckRequest{Title: "New title"})
	req := httptest.NewRequest(http.MethodPut, "/api/decks/"+deckID+"?user_id="+uuid.New().String(), bytes.NewReader(body))
	req = withURLParam(req, "id", deckID)
	rr := httptest.NewRecorder()

	h.UpdateDeck(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, rr.Body).Error.Code)
}

func TestDeleteDeck_OK(t *testing.T) {
	decks := &stubDecks{
		deleteFn: func(ctx context.Context, id, userID uuid.UUID) (bool, error) {
			return true, nil
		},
	}
	h := NewDeckHandler(decks, &stubGenerator{}, zap.NewNop())

	deckID := uuid.New().String()
	req := httptest.NewRequest(http.MethodDelete, "/api/decks/"+deckID+"?user_id="+uuid.New().String(), nil)
	req = withURLParam(req, "id", deckID)
	rr := httptest.NewRecorder()

	h.DeleteDeck(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
}
