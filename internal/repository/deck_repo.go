package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"lingua-backend/internal/models"
)

type DeckRepo struct {
	pool *pgxpool.Pool
}

func NewDeckRepo(pool *pgxpool.Pool) *DeckRepo {
	return &DeckRepo{pool: pool}
}

// CreateWithCards persists a deck and its flashcards in a single transaction.
// The deck's user id is denormalized onto every card.
func (r *DeckRepo) CreateWithCards(ctx context.Context, d *models.Deck, cards []models.FlashcardPair) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	d.ID = uuid.New()
	err = tx.QueryRow(ctx,
		`INSERT INTO decks (id, title, user_id, source_text, difficulty)
		 VALUES ($1, $2, $3, $4, $5) RETURNING created_at`,
		d.ID, d.Title, d.UserID, d.SourceText, d.Difficulty,
	).Scan(&d.CreatedAt)
	if err != nil {
		return err
	}

	for _, c := range cards {
		_, err := tx.Exec(ctx,
			`INSERT INTO flashcards (deck_id, user_id, front, back) VALUES ($1, $2, $3, $4)`,
			d.ID, d.UserID, c.Front, c.Back,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *DeckRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Deck, error) {
	d := &models.Deck{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, user_id, source_text, difficulty, created_at FROM decks WHERE id = $1`,
		id,
	).Scan(&d.ID, &d.Title, &d.UserID, &d.SourceText, &d.Difficulty, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ListByUser returns deck summaries filtered by owner, with an optional
// case-insensitive title search. sortBy is "title" (ascending) or anything
// else for created_at descending. Card counts come from a secondary
// aggregate query per deck.
func (r *DeckRepo) ListByUser(ctx context.Context, userID uuid.UUID, search, sortBy string) ([]models.DeckSummary, error) {
	query := `SELECT id, COALESCE(title, ''), difficulty, created_at FROM decks WHERE user_id = $1`
	args := []interface{}{userID}
	if search != "" {
		query += ` AND LOWER(COALESCE(title, '')) LIKE $2`
		args = append(args, "%"+strings.ToLower(search)+"%")
	}
	if sortBy == "title" {
		query += ` ORDER BY LOWER(COALESCE(title, '')) ASC`
	} else {
		query += ` ORDER BY created_at DESC`
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var decks []models.DeckSummary
	for rows.Next() {
		var d models.DeckSummary
		if err := rows.Scan(&d.ID, &d.Title, &d.Difficulty, &d.CreatedAt); err != nil {
			return nil, err
		}
		decks = append(decks, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range decks {
		err := r.pool.QueryRow(ctx,
			"SELECT COUNT(*) FROM flashcards WHERE deck_id = $1", decks[i].ID,
		).Scan(&decks[i].CardCount)
		if err != nil {
			return nil, err
		}
	}

	return decks, nil
}

// GetCards returns a deck's flashcards in insertion order.
func (r *DeckRepo) GetCards(ctx context.Context, deckID uuid.UUID) ([]models.Flashcard, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, deck_id, user_id, front, back, created_at
		 FROM flashcards WHERE deck_id = $1 ORDER BY id ASC`,
		deckID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []models.Flashcard
	for rows.Next() {
		var c models.Flashcard
		if err := rows.Scan(&c.ID, &c.DeckID, &c.UserID, &c.Front, &c.Back, &c.CreatedAt); err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// UpdateTitle renames a deck scoped to its owner. Returns false when no row
// matched, i.e. the deck does not exist or belongs to someone else.
func (r *DeckRepo) UpdateTitle(ctx context.Context, id, userID uuid.UUID, title string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		"UPDATE decks SET title = $1 WHERE id = $2 AND user_id = $3",
		title, id, userID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes a deck scoped to its owner; flashcards cascade.
func (r *DeckRepo) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		"DELETE FROM decks WHERE id = $1 AND user_id = $2",
		id, userID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Exists reports whether a deck row is present, regardless of owner.
func (r *DeckRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM decks WHERE id = $1)", id,
	).Scan(&exists)
	return exists, err
}
