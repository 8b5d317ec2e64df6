// Package ingest is the write path: it validates caller-supplied call
// records, prices them against the model catalog, and persists the
// call/cost pair.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ncecere/llm_observability/backend/internal/cache"
	"github.com/ncecere/llm_observability/backend/internal/observability"
	"github.com/ncecere/llm_observability/backend/internal/store"
)

const previewLimit = 500

var (
	ErrUnknownModel   = errors.New("unknown model")
	ErrInvalidLatency = errors.New("latency_ms must be >= 0")
	ErrInvalidTokens  = errors.New("token counts must be >= 0")
	ErrInvalidStatus  = errors.New("status must be success, error, or timeout")
)

// Record is one caller-supplied call observation. Either ModelID or
// ModelName identifies the model; ModelID wins when both are set.
type Record struct {
	ModelID          uuid.UUID
	ModelName        string
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
	LatencyMs        float64
	Status           string
	ErrorMessage     string
	Prompt           string
	Response         string
	CreatedAt        time.Time
}

type Service struct {
	store   *store.Store
	cache   *cache.MetricsCache
	metrics *observability.Provider
	logger  *slog.Logger
}

func NewService(st *store.Store, mc *cache.MetricsCache, obs *observability.Provider, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, cache: mc, metrics: obs, logger: logger}
}

// LogCall validates and persists one call record for the user. The cost
// row is derived from the model's per-1K-token price and written in the
// same transaction as the call.
func (s *Service) LogCall(ctx context.Context, userID uuid.UUID, rec Record) (store.CallLog, error) {
	if err := validate(rec); err != nil {
		return store.CallLog{}, err
	}

	model, err := s.resolveModel(ctx, rec)
	if err != nil {
		return store.CallLog{}, err
	}

	totalTokens := rec.TotalTokens
	if totalTokens == 0 {
		totalTokens = rec.PromptTokens + rec.CompletionTokens
	}

	cost := estimateCost(model.CostPer1KTokens, totalTokens)

	params := store.CreateCallParams{
		UserID:           userID,
		ModelID:          model.ID,
		PromptTokens:     rec.PromptTokens,
		CompletionTokens: rec.CompletionTokens,
		TotalTokens:      totalTokens,
		LatencyMs:        rec.LatencyMs,
		Status:           rec.Status,
		ErrorMessage:     optional(rec.ErrorMessage),
		PromptPreview:    optional(truncate(rec.Prompt, previewLimit)),
		ResponsePreview:  optional(truncate(rec.Response, previewLimit)),
		CreatedAt:        rec.CreatedAt,
	}

	call, err := s.store.CreateCallWithCost(ctx, params, &cost)
	if err != nil {
		return store.CallLog{}, err
	}

	s.metrics.RecordCall(model.Name, call.Status, time.Duration(call.LatencyMs*float64(time.Millisecond)))
	s.metrics.RecordTokens(model.Name, call.PromptTokens, call.CompletionTokens)
	s.cache.Invalidate(ctx, userID)

	s.logger.Debug("call logged",
		"user_id", userID,
		"model", model.Name,
		"tokens", call.TotalTokens,
		"status", call.Status)
	return call, nil
}

func (s *Service) resolveModel(ctx context.Context, rec Record) (store.Model, error) {
	var (
		model store.Model
		err   error
	)
	if rec.ModelID != uuid.Nil {
		model, err = s.store.GetModelByID(ctx, rec.ModelID)
	} else {
		model, err = s.store.GetModelByName(ctx, rec.ModelName)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Model{}, fmt.Errorf("%w: %s", ErrUnknownModel, rec.ModelName)
		}
		return store.Model{}, err
	}
	return model, nil
}

// estimateCost prices tokens at the model's per-1K rate using decimal
// arithmetic so fractions of a cent survive intact.
func estimateCost(costPer1K decimal.Decimal, tokens int64) decimal.Decimal {
	return costPer1K.Mul(decimal.NewFromInt(tokens)).Div(decimal.NewFromInt(1000))
}

func validate(rec Record) error {
	if rec.ModelID == uuid.Nil && rec.ModelName == "" {
		return fmt.Errorf("%w: model id or name required", ErrUnknownModel)
	}
	if rec.LatencyMs < 0 {
		return ErrInvalidLatency
	}
	if rec.PromptTokens < 0 || rec.CompletionTokens < 0 || rec.TotalTokens < 0 {
		return ErrInvalidTokens
	}
	switch rec.Status {
	case "", store.StatusSuccess, store.StatusError, store.StatusTimeout:
		return nil
	default:
		return ErrInvalidStatus
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
