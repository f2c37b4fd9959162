package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"lingua-backend/internal/handlers"
	"lingua-backend/internal/middleware"
)

func New(
	deckHandler *handlers.DeckHandler,
	wordHandler *handlers.WordHandler,
	practiceHandler *handlers.PracticeHandler,
	settingsHandler *handlers.SettingsHandler,
	contentHandler *handlers.ContentHandler,
	rdb *redis.Client,
	aiRequestsPerMinute int,
	allowedOrigins []string,
	log *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(allowedOrigins))

	// AI endpoints share one per-IP budget
	aiLimiter := middleware.NewRateLimiter(rdb, aiRequestsPerMinute, time.Minute, log)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {

		// ──── Generation (rate limited) ────
		r.Group(func(r chi.Router) {
			r.Use(aiLimiter.Middleware)
			r.Post("/generate-flashcards", deckHandler.Generate)
			r.Post("/practice/conversation", practiceHandler.Conversation)
		})

		// ──── Deck Routes ────
		r.Get("/my-decks", deckHandler.ListMyDecks)
		r.Post("/decks", deckHandler.CreateDeck)
		r.Route("/decks/{id}", func(r chi.Router) {
			r.Get("/", deckHandler.GetDeck)
			r.Put("/", deckHandler.UpdateDeck)
			r.Delete("/", deckHandler.DeleteDeck)
		})

		// ──── Word Routes ────
		r.Route("/words", func(r chi.Router) {
			r.Get("/", wordHandler.List)
			r.Post("/", wordHandler.Create)
			r.Post("/batch", wordHandler.BatchImport)
			r.Put("/{id}", wordHandler.Update)
			r.Delete("/{id}", wordHandler.Delete)
		})

		// ──── Practice Routes ────
		r.Post("/sessions", practiceHandler.CreateSession)
		r.Get("/stats/daily", practiceHandler.DailyStats)

		// ──── Settings Routes ────
		r.Get("/user-settings", settingsHandler.Get)
		r.Put("/user-settings", settingsHandler.Update)

		// ──── Content Routes ────
		r.Post("/extract-text", contentHandler.ExtractText)
		r.Post("/speech-to-text", contentHandler.SpeechToText)
	})

	return r
}
