package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusTimeout = "timeout"
)

// CallLog is one recorded LLM API invocation. EstimatedCost carries the
// outer-joined cost_logs row; Valid is false when no cost row exists.
type CallLog struct {
	ID               int64
	UserID           uuid.UUID
	ModelID          uuid.UUID
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
	LatencyMs        float64
	Status           string
	ErrorMessage     *string
	PromptPreview    *string
	ResponsePreview  *string
	CreatedAt        time.Time
	EstimatedCost    decimal.NullDecimal
}

// CreateCallParams carries caller-supplied call metadata. TotalTokens is
// stored as supplied; the store does not recompute it.
type CreateCallParams struct {
	UserID           uuid.UUID
	ModelID          uuid.UUID
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
	LatencyMs        float64
	Status           string
	ErrorMessage     *string
	PromptPreview    *string
	ResponsePreview  *string
	CreatedAt        time.Time
}

// CreateCallWithCost inserts the call log and, when cost is non-nil, its
// paired cost log inside a single transaction so readers rarely observe
// one without the other.
func (s *Store) CreateCallWithCost(ctx context.Context, params CreateCallParams, cost *decimal.Decimal) (CallLog, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return CallLog{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	createdAt := params.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	status := params.Status
	if status == "" {
		status = StatusSuccess
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO call_logs (
			user_id, model_id, prompt_tokens, completion_tokens, total_tokens,
			latency_ms, status, error_message, prompt_preview, response_preview, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, user_id, model_id, prompt_tokens, completion_tokens, total_tokens,
			latency_ms, status, error_message, prompt_preview, response_preview, created_at`,
		params.UserID, params.ModelID, params.PromptTokens, params.CompletionTokens,
		params.TotalTokens, params.LatencyMs, status, params.ErrorMessage,
		params.PromptPreview, params.ResponsePreview, createdAt)

	var call CallLog
	if err := row.Scan(
		&call.ID, &call.UserID, &call.ModelID, &call.PromptTokens, &call.CompletionTokens,
		&call.TotalTokens, &call.LatencyMs, &call.Status, &call.ErrorMessage,
		&call.PromptPreview, &call.ResponsePreview, &call.CreatedAt,
	); err != nil {
		return CallLog{}, fmt.Errorf("insert call log: %w", err)
	}

	if cost != nil {
		if _, err := tx.Exec(ctx, `
			INSERT INTO cost_logs (llm_call_id, estimated_cost, created_at)
			VALUES ($1, $2, $3)`,
			call.ID, cost.String(), createdAt,
		); err != nil {
			return CallLog{}, fmt.Errorf("insert cost log: %w", err)
		}
		call.EstimatedCost = decimal.NullDecimal{Decimal: *cost, Valid: true}
	}

	if err := tx.Commit(ctx); err != nil {
		return CallLog{}, fmt.Errorf("commit call log: %w", err)
	}
	return call, nil
}

// ListCallsSince returns the user's call logs with created_at >= cutoff,
// outer-joined with their cost rows, ordered by insertion.
func (s *Store) ListCallsSince(ctx context.Context, userID uuid.UUID, cutoff time.Time) ([]CallLog, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT l.id, l.user_id, l.model_id, l.prompt_tokens, l.completion_tokens,
			l.total_tokens, l.latency_ms, l.status, l.error_message,
			l.prompt_preview, l.response_preview, l.created_at, c.estimated_cost
		FROM call_logs l
		LEFT JOIN cost_logs c ON c.llm_call_id = l.id
		WHERE l.user_id = $1 AND l.created_at >= $2
		ORDER BY l.id`,
		userID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list calls: %w", err)
	}
	defer rows.Close()

	calls := make([]CallLog, 0)
	for rows.Next() {
		var (
			call CallLog
			cost pgtype.Numeric
		)
		if err := rows.Scan(
			&call.ID, &call.UserID, &call.ModelID, &call.PromptTokens, &call.CompletionTokens,
			&call.TotalTokens, &call.LatencyMs, &call.Status, &call.ErrorMessage,
			&call.PromptPreview, &call.ResponsePreview, &call.CreatedAt, &cost,
		); err != nil {
			return nil, fmt.Errorf("scan call log: %w", err)
		}
		if cost.Valid {
			call.EstimatedCost = decimal.NullDecimal{Decimal: numericToDecimal(cost), Valid: true}
		}
		calls = append(calls, call)
	}
	return calls, rows.Err()
}

// GetCallByID returns a single call log scoped to its owner.
func (s *Store) GetCallByID(ctx context.Context, userID uuid.UUID, callID int64) (CallLog, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT l.id, l.user_id, l.model_id, l.prompt_tokens, l.completion_tokens,
			l.total_tokens, l.latency_ms, l.status, l.error_message,
			l.prompt_preview, l.response_preview, l.created_at, c.estimated_cost
		FROM call_logs l
		LEFT JOIN cost_logs c ON c.llm_call_id = l.id
		WHERE l.id = $1 AND l.user_id = $2`,
		callID, userID)

	var (
		call CallLog
		cost pgtype.Numeric
	)
	err := row.Scan(
		&call.ID, &call.UserID, &call.ModelID, &call.PromptTokens, &call.CompletionTokens,
		&call.TotalTokens, &call.LatencyMs, &call.Status, &call.ErrorMessage,
		&call.PromptPreview, &call.ResponsePreview, &call.CreatedAt, &cost,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return CallLog{}, ErrNotFound
		}
		return CallLog{}, fmt.Errorf("get call log: %w", err)
	}
	if cost.Valid {
		call.EstimatedCost = decimal.NullDecimal{Decimal: numericToDecimal(cost), Valid: true}
	}
	return call, nil
}
