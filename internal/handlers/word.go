package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"lingua-backend/internal/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type wordRepository interface {
	Create(ctx context.Context, w *models.Word) error
	ListByUser(ctx context.Context, userID uuid.UUID, search string, page, pageSize int) ([]*models.Word, int, error)
	GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Word, error)
	Update(ctx context.Context, w *models.Word) error
	Delete(ctx context.Context, id, userID uuid.UUID) (bool, error)
	AllTexts(ctx context.Context, userID uuid.UUID) ([]string, error)
	InsertBatch(ctx context.Context, userID uuid.UUID, imports []models.WordImport) (int, []string, error)
}

type WordHandler struct {
	words wordRepository
	log   *zap.Logger
}

func NewWordHandler(words wordRepository, log *zap.Logger) *WordHandler {
	return &WordHandler{words: words, log: log}
}

func (h *WordHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "A valid user_id query parameter is required", r))
		return
	}

	page := 1
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	pageSize := defaultPageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && v > 0 {
		pageSize = v
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	words, total, err := h.words.ListByUser(r.Context(), userID, r.URL.Query().Get("search"), page, pageSize)
	if err != nil {
		h.log.Error("failed to list words", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
		return
	}

	writeJSON(w, http.StatusOK, models.WordListResponse{
		Words:      words,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
	})
}

func (h *WordHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateWordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	fields := map[string]string{}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		fields["user_id"] = "A valid user id is required"
	}
	req.Word = strings.TrimSpace(req.Word)
	if req.Word == "" {
		fields["word"] = "Word is required"
	}
	req.Definition = strings.TrimSpace(req.Definition)
	if req.Definition == "" {
		fields["definition"] = "Definition is required"
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fields, r))
		return
	}

	word := &models.Word{
		UserID:     userID,
		Word:       req.Word,
		Definition: req.Definition,
		Status:     models.WordStatusPending,
	}
	if v := strings.TrimSpace(req.Example); v != "" {
		word.Example = &v
	}
	if v := strings.TrimSpace(req.Pronunciation); v != "" {
		word.Pronunciation = &v
	}

	if err := h.words.Create(r.Context(), word); err != nil {
		h.log.Error("failed to create word", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
		return
	}

	writeJSON(w, http.StatusCreated, word)
}

var validWordStatuses = map[string]bool{
	models.WordStatusPending:  true,
	models.WordStatusApproved: true,
	models.WordStatusRejected: true,
}

func (h *WordHandler) Update(w http.ResponseWriter, r *http.Request) {
	wordID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid word id", r))
		return
	}
	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "A valid user_id query parameter is required", r))
		return
	}

	var req models.UpdateWordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	word, err := h.words.GetByID(r.Context(), wordID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Word not found", r))
			return
		}
		h.log.Error("failed to load word", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
		return
	}

	if req.Word != nil {
		v := strings.TrimSpace(*req.Word)
		if v == "" {
			writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
				map[string]string{"word": "Word cannot be empty"}, r))
			return
		}
		word.Word = v
	}
	if req.Definition != nil {
		v := strings.TrimSpace(*req.Definition)
		if v == "" {
			writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
				map[string]string{"definition": "Definition cannot be empty"}, r))
			return
		}
		word.Definition = v
	}
	if req.Example != nil {
		word.Example = req.Example
	}
	if req.Pronunciation != nil {
		word.Pronunciation = req.Pronunciation
	}
	if req.Status != nil {
		if !validWordStatuses[*req.Status] {
			writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
				map[string]string{"status": "Status must be pending, approved or rejected"}, r))
			return
		}
		word.Status = *req.Status
	}

	if err := h.words.Update(r.Context(), word); err != nil {
		h.log.Error("failed to update word", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
		return
	}

	writeJSON(w, http.StatusOK, word)
}

func (h *WordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	wordID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid word id", r))
		return
	}
	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "A valid user_id query parameter is required", r))
		return
	}

	deleted, err := h.words.Delete(r.Context(), wordID, userID)
	if err != nil {
		h.log.Error("failed to delete word", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Word not found", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Word deleted"})
}

// BatchImport saves many words at once, skipping any the user already has.
// Matching is case-insensitive and applies within the batch itself too.
func (h *WordHandler) BatchImport(w http.ResponseWriter, r *http.Request) {
	var req models.BatchImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"user_id": "A valid user id is required"}, r))
		return
	}
	if len(req.Words) == 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"words": "At least one word is required"}, r))
		return
	}

	existing, err := h.words.AllTexts(r.Context(), userID)
	if err != nil {
		h.log.Error("failed to load existing words", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
		return
	}

	fresh, skipped, errs := dedupeImports(req.Words, existing)

	saved := 0
	if len(fresh) > 0 {
		var insertErrs []string
		saved, insertErrs, err = h.words.InsertBatch(r.Context(), userID, fresh)
		if err != nil {
			h.log.Error("batch import failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
			return
		}
		errs = append(errs, insertErrs...)
	}

	writeJSON(w, http.StatusOK, models.BatchImportResponse{
		Saved:   saved,
		Skipped: skipped,
		Errors:  errs,
	})
}

// dedupeImports filters out entries whose word already exists for the user
// or appeared earlier in the same batch. Entries missing a word or a
// definition are reported in errors.
func dedupeImports(imports []models.WordImport, existing []string) ([]models.WordImport, int, []string) {
	seen := make(map[string]struct{}, len(existing))
	for _, w := range existing {
		seen[strings.ToLower(w)] = struct{}{}
	}

	fresh := make([]models.WordImport, 0, len(imports))
	skipped := 0
	errs := make([]string, 0)
	for i, imp := range imports {
		word := strings.TrimSpace(imp.Word)
		if word == "" || strings.TrimSpace(imp.Definition) == "" {
			errs = append(errs, "entry "+strconv.Itoa(i+1)+": word and definition are required")
			continue
		}
		key := strings.ToLower(word)
		if _, dup := seen[key]; dup {
			skipped++
			continue
		}
		seen[key] = struct{}{}
		imp.Word = word
		fresh = append(fresh, imp)
	}
	return fresh, skipped, errs
}
