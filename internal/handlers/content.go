package handlers

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const maxUploadBytes = 10 << 20 // 10 MB

type textExtractor interface {
	Extract(path string) (string, error)
}

type ContentHandler struct {
	extractor textExtractor
	log       *zap.Logger
}

func NewContentHandler(extractor textExtractor, log *zap.Logger) *ContentHandler {
	return &ContentHandler{extractor: extractor, log: log}
}

// ExtractText accepts a txt, pdf or docx upload and returns its plain text,
// ready to feed into flashcard generation.
func (h *ContentHandler) ExtractText(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Expected a multipart upload of at most 10 MB", r))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "A file field is required", r))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".txt", ".pdf", ".docx":
	default:
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Only txt, pdf and docx files are supported", r))
		return
	}

	tmp, err := os.CreateTemp("", "upload-*"+ext)
	if err != nil {
		h.log.Error("failed to create temp file", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
		return
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		h.log.Error("failed to buffer upload", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
		return
	}
	tmp.Close()

	text, err := h.extractor.Extract(tmp.Name())
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResp("EXTRACTION_FAILED", "Could not extract text from the uploaded file", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"text":       text,
		"word_count": len(strings.Fields(text)),
		"filename":   header.Filename,
	})
}

// SpeechToText is a placeholder; audio transcription is not wired up yet.
func (h *ContentHandler) SpeechToText(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotImplemented, errorResp("NOT_IMPLEMENTED", "Speech to text is not available yet", r))
}
