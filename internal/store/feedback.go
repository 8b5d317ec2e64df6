package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Feedback is a user rating attached to one call log.
type Feedback struct {
	ID        int64
	LLMCallID int64
	UserID    uuid.UUID
	Rating    int
	Comment   *string
	CreatedAt time.Time
}

func (s *Store) CreateFeedback(ctx context.Context, callID int64, userID uuid.UUID, rating int, comment *string) (Feedback, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO feedback (llm_call_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, llm_call_id, user_id, rating, comment, created_at`,
		callID, userID, rating, comment)

	fb, err := scanFeedback(row)
	if err != nil {
		return Feedback{}, fmt.Errorf("create feedback: %w", err)
	}
	return fb, nil
}

// ListFeedback returns feedback newest first, optionally filtered by a
// case-insensitive comment search.
func (s *Store) ListFeedback(ctx context.Context, search string, limit, offset int) ([]Feedback, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var (
		rows pgx.Rows
		err  error
	)
	if search != "" {
		rows, err = s.pool.Query(ctx, `
			SELECT id, llm_call_id, user_id, rating, comment, created_at
			FROM feedback
			WHERE comment ILIKE '%' || $1 || '%'
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3`,
			search, limit, offset)
	} else {
		rows, err = s.pool.Query(ctx, `
			SELECT id, llm_call_id, user_id, rating, comment, created_at
			FROM feedback
			ORDER BY created_at DESC
			LIMIT $1 OFFSET $2`,
			limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	items := make([]Feedback, 0)
	for rows.Next() {
		fb, err := scanFeedback(rows)
		if err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		items = append(items, fb)
	}
	return items, rows.Err()
}

func scanFeedback(row pgx.Row) (Feedback, error) {
	var f Feedback
	err := row.Scan(&f.ID, &f.LLMCallID, &f.UserID, &f.Rating, &f.Comment, &f.CreatedAt)
	return f, err
}
