package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Model is a priced LLM model reference row. Read-only from the
// aggregation engine's perspective.
type Model struct {
	ID              uuid.UUID
	Name            string
	Provider        string
	CostPer1KTokens decimal.Decimal
	CreatedAt       time.Time
}

func (s *Store) CreateModel(ctx context.Context, name, provider string, costPer1K decimal.Decimal) (Model, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO llm_models (name, provider, cost_per_1k_tokens)
		VALUES ($1, $2, $3)
		RETURNING id, name, provider, cost_per_1k_tokens, created_at`,
		name, provider, costPer1K.String())

	model, err := scanModel(row)
	if err != nil {
		if isUniqueViolation(err) {
			return Model{}, fmt.Errorf("create model %q: %w", name, err)
		}
		return Model{}, fmt.Errorf("create model: %w", err)
	}
	return model, nil
}

// UpsertModel inserts the model or leaves an existing row untouched.
// Used by bootstrap and the demo seeder.
func (s *Store) UpsertModel(ctx context.Context, name, provider string, costPer1K decimal.Decimal) (Model, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO llm_models (name, provider, cost_per_1k_tokens)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET provider = EXCLUDED.provider
		RETURNING id, name, provider, cost_per_1k_tokens, created_at`,
		name, provider, costPer1K.String())

	model, err := scanModel(row)
	if err != nil {
		return Model{}, fmt.Errorf("upsert model: %w", err)
	}
	return model, nil
}

func (s *Store) GetModelByID(ctx context.Context, id uuid.UUID) (Model, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, provider, cost_per_1k_tokens, created_at
		FROM llm_models WHERE id = $1`, id)

	model, err := scanModel(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Model{}, ErrNotFound
		}
		return Model{}, fmt.Errorf("get model: %w", err)
	}
	return model, nil
}

func (s *Store) GetModelByName(ctx context.Context, name string) (Model, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, provider, cost_per_1k_tokens, created_at
		FROM llm_models WHERE name = $1`, name)

	model, err := scanModel(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Model{}, ErrNotFound
		}
		return Model{}, fmt.Errorf("get model by name: %w", err)
	}
	return model, nil
}

func (s *Store) ListModels(ctx context.Context) ([]Model, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, provider, cost_per_1k_tokens, created_at
		FROM llm_models ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	defer rows.Close()

	models := make([]Model, 0)
	for rows.Next() {
		model, err := scanModel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan model: %w", err)
		}
		models = append(models, model)
	}
	return models, rows.Err()
}

func scanModel(row pgx.Row) (Model, error) {
	var (
		m    Model
		cost pgtype.Numeric
	)
	if err := row.Scan(&m.ID, &m.Name, &m.Provider, &cost, &m.CreatedAt); err != nil {
		return Model{}, err
	}
	m.CostPer1KTokens = numericToDecimal(cost)
	return m, nil
}
