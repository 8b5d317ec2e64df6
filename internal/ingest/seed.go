package ingest

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/ncecere/llm_observability/backend/internal/store"
)

// ErrNoModels means seeding was requested before any model exists.
var ErrNoModels = errors.New("no models available to seed against")

var seedErrorMessages = []string{
	"timeout",
	"rate_limit",
	"invalid_request",
	"provider_error",
}

// Seed generates perDay synthetic call logs for each of the past days
// days, distributed across the model catalog with randomized tokens,
// latency, and an ~8% error rate. Returns the number of logs created.
func (s *Service) Seed(ctx context.Context, userID uuid.UUID, days, perDay int) (int, error) {
	if days < 1 || days > 365 {
		return 0, fmt.Errorf("days must be between 1 and 365")
	}
	if perDay < 1 || perDay > 1000 {
		return 0, fmt.Errorf("per_day must be between 1 and 1000")
	}

	models, err := s.store.ListModels(ctx)
	if err != nil {
		return 0, err
	}
	if len(models) == 0 {
		return 0, ErrNoModels
	}

	created := 0
	now := time.Now().UTC()
	for d := 0; d < days; d++ {
		dayAt := now.AddDate(0, 0, -d)
		for i := 0; i < perDay; i++ {
			model := models[rand.Intn(len(models))]

			promptTokens := int64(rand.Intn(751) + 50)
			completionTokens := int64(rand.Intn(1181) + 20)
			totalTokens := promptTokens + completionTokens

			latency := rand.NormFloat64()*120 + 250
			if latency < 20 {
				latency = 20
			}

			status := store.StatusSuccess
			var errMsg *string
			if rand.Float64() < 0.08 {
				status = store.StatusError
				msg := seedErrorMessages[rand.Intn(len(seedErrorMessages))]
				errMsg = &msg
			}

			cost := estimateCost(model.CostPer1KTokens, totalTokens)
			params := store.CreateCallParams{
				UserID:           userID,
				ModelID:          model.ID,
				PromptTokens:     promptTokens,
				CompletionTokens: completionTokens,
				TotalTokens:      totalTokens,
				LatencyMs:        latency,
				Status:           status,
				ErrorMessage:     errMsg,
				PromptPreview:    optional("Explain quantum computing"),
				ResponsePreview:  optional("Quantum computing uses qubits..."),
				CreatedAt:        dayAt,
			}
			if _, err := s.store.CreateCallWithCost(ctx, params, &cost); err != nil {
				return created, fmt.Errorf("seed day %d: %w", d, err)
			}
			created++
		}
	}

	s.cache.Invalidate(ctx, userID)
	s.logger.Info("seeded demo call logs", "user_id", userID, "created", created, "days", days)
	return created, nil
}
