package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"lingua-backend/internal/models"
)

type WordRepo struct {
	pool *pgxpool.Pool
}

func NewWordRepo(pool *pgxpool.Pool) *WordRepo {
	return &WordRepo{pool: pool}
}

func (r *WordRepo) Create(ctx context.Context, w *models.Word) error {
	w.ID = uuid.New()
	return r.pool.QueryRow(ctx,
		`INSERT INTO words (id, user_id, word, definition, example, pronunciation, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at, updated_at`,
		w.ID, w.UserID, w.Word, w.Definition, w.Example, w.Pronunciation, w.Status,
	).Scan(&w.CreatedAt, &w.UpdatedAt)
}

// ListByUser returns one page of the user's words plus the total match count.
// Search matches a lowercase substring across word, definition and example.
func (r *WordRepo) ListByUser(ctx context.Context, userID uuid.UUID, search string, page, pageSize int) ([]*models.Word, int, error) {
	where := "WHERE user_id = $1"
	args := []interface{}{userID}
	if search != "" {
		where += ` AND (LOWER(word) LIKE $2 OR LOWER(definition) LIKE $2 OR LOWER(COALESCE(example, '')) LIKE $2)`
		args = append(args, "%"+strings.ToLower(search)+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM words "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query := fmt.Sprintf(
		`SELECT id, user_id, word, definition, example, pronunciation, status, created_at, updated_at
		 FROM words %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2,
	)
	args = append(args, pageSize, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var words []*models.Word
	for rows.Next() {
		w := &models.Word{}
		err := rows.Scan(&w.ID, &w.UserID, &w.Word, &w.Definition, &w.Example,
			&w.Pronunciation, &w.Status, &w.CreatedAt, &w.UpdatedAt)
		if err != nil {
			return nil, 0, err
		}
		words = append(words, w)
	}
	return words, total, rows.Err()
}

func (r *WordRepo) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Word, error) {
	w := &models.Word{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, word, definition, example, pronunciation, status, created_at, updated_at
		 FROM words WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&w.ID, &w.UserID, &w.Word, &w.Definition, &w.Example,
		&w.Pronunciation, &w.Status, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (r *WordRepo) Update(ctx context.Context, w *models.Word) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE words SET word = $1, definition = $2, example = $3, pronunciation = $4,
		 status = $5, updated_at = NOW() WHERE id = $6 AND user_id = $7`,
		w.Word, w.Definition, w.Example, w.Pronunciation, w.Status, w.ID, w.UserID,
	)
	return err
}

func (r *WordRepo) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		"DELETE FROM words WHERE id = $1 AND user_id = $2", id, userID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// AllTexts loads every word text the user has stored, for duplicate
// detection during batch import.
func (r *WordRepo) AllTexts(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx, "SELECT word FROM words WHERE user_id = $1", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		texts = append(texts, t)
	}
	return texts, rows.Err()
}

// InsertBatch writes the given imports inside one transaction. A failing
// insert is recorded as a per-item error and skipped; every successful
// insert commits together at the end.
func (r *WordRepo) InsertBatch(ctx context.Context, userID uuid.UUID, imports []models.WordImport) (int, []string, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, nil, err
	}
	defer tx.Rollback(ctx)

	saved := 0
	errs := []string{}
	for i, in := range imports {
		var example, pronunciation *string
		if in.Example != "" {
			example = &in.Example
		}
		if in.Pronunciation != "" {
			pronunciation = &in.Pronunciation
		}

		// Savepoint per item so one failed insert does not poison the
		// transaction for the rest of the batch.
		sp := fmt.Sprintf("word_%d", i)
		if _, err := tx.Exec(ctx, "SAVEPOINT "+sp); err != nil {
			return 0, nil, err
		}

		_, err := tx.Exec(ctx,
			`INSERT INTO words (id, user_id, word, definition, example, pronunciation, status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.New(), userID, in.Word, in.Definition, example, pronunciation, models.WordStatusPending,
		)
		if err != nil {
			tx.Exec(ctx, "ROLLBACK TO SAVEPOINT "+sp)
			errs = append(errs, fmt.Sprintf("failed to save %q", in.Word))
			continue
		}
		saved++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, nil, err
	}
	return saved, errs, nil
}
