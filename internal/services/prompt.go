package services

import (
	"fmt"
	"strings"

	"lingua-backend/internal/models"
)

var difficultyHints = map[string]string{
	"easy":   "common everyday words a beginner should learn first",
	"medium": "moderately advanced words useful for an intermediate learner",
	"hard":   "rare, idiomatic or technical words for an advanced learner",
}

var topicLabels = map[string]string{
	"general":  "general conversation",
	"travel":   "travel and getting around",
	"business": "business and work",
	"daily":    "daily life and routines",
	"food":     "food, cooking and dining",
	"news":     "news and current events",
}

func buildExtractionPrompt(text, difficulty string) string {
	hint, ok := difficultyHints[difficulty]
	if !ok {
		hint = difficultyHints["medium"]
	}

	var b strings.Builder
	b.WriteString("You are a language-learning assistant. Extract 10-15 vocabulary words from the text below and produce flashcard pairs.\n\n")
	b.WriteString("STRICT RULES:\n")
	b.WriteString("1. Each \"front\" must be a SINGLE word taken from the text, in its dictionary form.\n")
	b.WriteString("2. Each \"back\" must be a SINGLE word: the English translation or a one-word synonym.\n")
	b.WriteString("3. Never output phrases, sentences or multi-word entries on either side.\n")
	b.WriteString("4. Pick " + hint + ".\n")
	b.WriteString("5. No duplicate fronts.\n\n")
	b.WriteString("Respond with ONLY a JSON array, no prose and no code fences:\n")
	b.WriteString(`[{"front": "word", "back": "translation"}]` + "\n\n")
	b.WriteString("TEXT:\n")
	b.WriteString(text)
	return b.String()
}

// BuildConversationPrompt assembles the tutor system instruction from the
// practice settings and the deck's vocabulary.
func BuildConversationPrompt(settings *models.ConversationSettings, pairs []models.FlashcardPair, difficultWords []string) string {
	immersion := 50
	focus := "deck-focused"
	topic := "general"
	if settings != nil {
		immersion = settings.ImmersionLevel
		if settings.FocusMode != "" {
			focus = settings.FocusMode
		}
		if settings.Topic != "" {
			topic = settings.Topic
		}
	}

	var b strings.Builder
	b.WriteString("You are a friendly language tutor holding a practice conversation with a learner.\n\n")

	switch {
	case immersion <= 33:
		b.WriteString("LANGUAGE MIX: Speak mostly in English. Sprinkle in individual target-language words from the vocabulary list, always followed by a short English gloss in parentheses.\n")
	case immersion <= 66:
		b.WriteString("LANGUAGE MIX: Alternate between English and the target language, roughly half and half. Keep target-language sentences short and simple.\n")
	default:
		b.WriteString("LANGUAGE MIX: Speak only in the target language. Use simple sentence structures so the learner can follow.\n")
	}

	if focus == "deck-focused" {
		b.WriteString("FOCUS: Steer the conversation so the learner encounters the vocabulary below. Work several of the listed words into each of your replies.\n")
	} else {
		b.WriteString("FOCUS: Hold a natural conversation. Use the vocabulary below when it fits, but never force it.\n")
	}

	label, ok := topicLabels[topic]
	if !ok {
		label = topic
	}
	b.WriteString(fmt.Sprintf("TOPIC: %s.\n\n", label))

	if len(pairs) > 0 {
		b.WriteString("<vocab>\n")
		for _, p := range pairs {
			b.WriteString(fmt.Sprintf("%s = %s\n", p.Front, p.Back))
		}
		b.WriteString("</vocab>\n")
	}

	if len(difficultWords) > 0 {
		b.WriteString("<difficult>\n")
		b.WriteString(strings.Join(difficultWords, ", "))
		b.WriteString("\n</difficult>\n")
		b.WriteString("Give the words in <difficult> extra repetition.\n")
	}

	b.WriteString("\nIn every reply, wrap each vocabulary word you use in <vocab>...</vocab> tags and any other difficult word in <difficult>...</difficult> tags, so the learner's screen can highlight them.\n")
	b.WriteString("Keep replies to 2-4 sentences. Always end with a question that invites the learner to respond.")
	return b.String()
}

// stripJSONFences removes a markdown code fence wrapper if the model added one.
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

// validPairs drops entries that violate the single-word contract.
func validPairs(pairs []models.FlashcardPair) []models.FlashcardPair {
	out := make([]models.FlashcardPair, 0, len(pairs))
	for _, p := range pairs {
		front := strings.TrimSpace(p.Front)
		back := strings.TrimSpace(p.Back)
		if front == "" || back == "" {
			continue
		}
		if strings.ContainsAny(front, " \t\n") || strings.ContainsAny(back, " \t\n") {
			continue
		}
		out = append(out, models.FlashcardPair{Front: front, Back: back})
	}
	return out
}

// WordsUsed reports which deck fronts appear in the reply, case-insensitively.
func WordsUsed(reply string, fronts []string) []string {
	lower := strings.ToLower(reply)
	used := make([]string, 0)
	for _, f := range fronts {
		if f == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(f)) {
			used = append(used, f)
		}
	}
	return used
}
