package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"lingua-backend/internal/models"
)

type SessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

func (r *SessionRepo) Create(ctx context.Context, s *models.PracticeSession) error {
	s.ID = uuid.New()
	return r.pool.QueryRow(ctx,
		`INSERT INTO practice_sessions (id, user_id, deck_id, practice_type, duration_seconds)
		 VALUES ($1, $2, $3, $4, $5) RETURNING completed_at`,
		s.ID, s.UserID, s.DeckID, s.PracticeType, s.DurationSeconds,
	).Scan(&s.CompletedAt)
}

// TypeTotals holds one practice type's raw aggregates for a window.
type TypeTotals struct {
	Seconds  int
	Sessions int
}

// TotalsByTypeSince sums durations and counts sessions per practice type for
// sessions completed at or after the given instant.
func (r *SessionRepo) TotalsByTypeSince(ctx context.Context, userID uuid.UUID, since time.Time) (map[string]TypeTotals, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT practice_type, COALESCE(SUM(duration_seconds), 0), COUNT(*)
		 FROM practice_sessions
		 WHERE user_id = $1 AND completed_at >= $2
		 GROUP BY practice_type`,
		userID, since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[string]TypeTotals)
	for rows.Next() {
		var practiceType string
		var t TypeTotals
		if err := rows.Scan(&practiceType, &t.Seconds, &t.Sessions); err != nil {
			return nil, err
		}
		totals[practiceType] = t
	}
	return totals, rows.Err()
}
