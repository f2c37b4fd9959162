package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"lingua-backend/internal/models"
)

type GeminiService struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	log      *zap.Logger
	rateChan chan struct{} // bounded concurrency slots
}

func NewGeminiService(apiKey string, concurrentReqs, maxOutputTokens int, log *zap.Logger) (*GeminiService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-3-flash-preview")
	model.SetTemperature(0.3)
	model.SetTopP(0.95)
	model.SetMaxOutputTokens(int32(maxOutputTokens))

	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiService{
		client:   client,
		model:    model,
		log:      log,
		rateChan: rateChan,
	}, nil
}

func (s *GeminiService) Close() {
	s.client.Close()
}

// acquireRate blocks until a concurrency slot is available
func (s *GeminiService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini slot")
	}
}

func (s *GeminiService) releaseRate() {
	s.rateChan <- struct{}{}
}

// GenerateFlashcards extracts single-word vocabulary pairs from the source
// text. Nothing is persisted; the caller gets an ephemeral preview.
func (s *GeminiService) GenerateFlashcards(ctx context.Context, text, difficulty string) ([]models.FlashcardPair, error) {
	if err := s.acquireRate(ctx); err != nil {
		return nil, err
	}
	defer s.releaseRate()

	prompt := buildExtractionPrompt(text, difficulty)

	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	rawText := stripJSONFences(extractText(resp))

	var pairs []models.FlashcardPair
	if err := json.Unmarshal([]byte(rawText), &pairs); err != nil {
		// Try to extract JSON array
		start := strings.Index(rawText, "[")
		end := strings.LastIndex(rawText, "]")
		if start >= 0 && end > start {
			err = json.Unmarshal([]byte(rawText[start:end+1]), &pairs)
		}
		if err != nil {
			s.log.Warn("unparseable flashcard reply", zap.Error(err))
			return nil, fmt.Errorf("model returned unparseable flashcards: %w", err)
		}
	}

	valid := validPairs(pairs)
	if len(valid) == 0 {
		return nil, fmt.Errorf("model returned no usable flashcard pairs")
	}
	return valid, nil
}

// Converse forwards the practice dialogue to the model under the tutor
// system instruction and returns the reply text.
func (s *GeminiService) Converse(ctx context.Context, systemPrompt string, messages []models.ConversationMessage) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("conversation needs at least one message")
	}
	if err := s.acquireRate(ctx); err != nil {
		return "", err
	}
	defer s.releaseRate()

	// A fresh model handle per call: the system instruction is request-scoped.
	model := s.client.GenerativeModel("gemini-3-flash-preview")
	model.SetTemperature(0.7)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}

	chat := model.StartChat()
	for _, m := range messages[:len(messages)-1] {
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		chat.History = append(chat.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}

	last := messages[len(messages)-1]
	resp, err := chat.SendMessage(ctx, genai.Text(last.Content))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	reply := strings.TrimSpace(extractText(resp))
	if reply == "" {
		return "", fmt.Errorf("model returned an empty reply")
	}
	return reply, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
