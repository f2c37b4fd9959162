package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubExtractor struct {
	extractFn func(path string) (string, error)
}

func (s *stubExtractor) Extract(path string) (string, error) {
	return s.extractFn(path)
}

func multipartUpload(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestExtractText_ReturnsWordCount(t *testing.T) {
	extractor := &stubExtractor{
		extractFn: func(path string) (string, error) {
			return "le chat dort bien", nil
		},
	}
	h := NewContentHandler(extractor, zap.NewNop())

	body, contentType := multipartUpload(t, "notes.txt", "le chat dort bien")
	req := httptest.NewRequest(http.MethodPost, "/api/extract-text", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	h.ExtractText(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "le chat dort bien", resp["text"])
	assert.Equal(t, float64(4), resp["word_count"])
	assert.Equal(t, "notes.txt", resp["filename"])
}

func TestExtractText_RejectsUnsupportedType(t *testing.T) {
	h := NewContentHandler(&stubExtractor{}, zap.NewNop())

	body, contentType := multipartUpload(t, "image.png", "binary")
	req := httptest.NewRequest(http.MethodPost, "/api/extract-text", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	h.ExtractText(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rr.Body).Error.Code)
}

func TestExtractText_ExtractionFailure(t *testing.T) {
	extractor := &stubExtractor{
		extractFn: func(path string) (string, error) {
			return "", errors.New("corrupt file")
		},
	}
	h := NewContentHandler(extractor, zap.NewNop())

	body, contentType := multipartUpload(t, "broken.pdf", "not really a pdf")
	req := httptest.NewRequest(http.MethodPost, "/api/extract-text", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	h.ExtractText(rr, req)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "EXTRACTION_FAILED", decodeError(t, rr.Body).Error.Code)
}

func TestSpeechToText_NotImplemented(t *testing.T) {
	h := NewContentHandler(&stubExtractor{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/speech-to-text", nil)
	rr := httptest.NewRecorder()

	h.SpeechToText(rr, req)

	require.Equal(t, http.StatusNotImplemented, rr.Code)
	assert.Equal(t, "NOT_IMPLEMENTED", decodeError(t, rr.Body).Error.Code)
}
