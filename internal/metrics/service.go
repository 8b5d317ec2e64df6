package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ncecere/llm_observability/backend/internal/store"
	"github.com/ncecere/llm_observability/backend/internal/timeutil"
)

// CostSummary is the per-caller spend over the window.
type CostSummary struct {
	TotalCost  float64 `json:"total_cost"`
	PeriodDays int     `json:"period_days"`
}

// Service loads a caller's window of call logs and runs the aggregation
// functions over it. Each operation issues exactly one store read.
type Service struct {
	store *store.Store
	loc   *time.Location
	now   func() time.Time
}

func NewService(st *store.Store, loc *time.Location) *Service {
	return &Service{
		store: st,
		loc:   timeutil.EnsureLocation(loc),
		now:   time.Now,
	}
}

func (s *Service) Summary(ctx context.Context, userID uuid.UUID, days int) (Summary, error) {
	calls, err := s.window(ctx, userID, days)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(calls), nil
}

func (s *Service) TokenUsage(ctx context.Context, userID uuid.UUID, days int) ([]TokenUsagePoint, error) {
	calls, err := s.window(ctx, userID, days)
	if err != nil {
		return nil, err
	}
	return TokenUsageOverTime(calls, s.loc), nil
}

func (s *Service) Latency(ctx context.Context, userID uuid.UUID, days int) ([]LatencyBucket, error) {
	calls, err := s.window(ctx, userID, days)
	if err != nil {
		return nil, err
	}
	return LatencyDistribution(calls), nil
}

func (s *Service) ErrorRate(ctx context.Context, userID uuid.UUID, days int) ([]ErrorRatePoint, error) {
	calls, err := s.window(ctx, userID, days)
	if err != nil {
		return nil, err
	}
	return ErrorRateOverTime(calls, s.loc), nil
}

func (s *Service) Cost(ctx context.Context, userID uuid.UUID, days int) (CostSummary, error) {
	calls, err := s.window(ctx, userID, days)
	if err != nil {
		return CostSummary{}, err
	}
	return CostSummary{TotalCost: CostTotal(calls), PeriodDays: days}, nil
}

func (s *Service) window(ctx context.Context, userID uuid.UUID, days int) ([]store.CallLog, error) {
	win, err := timeutil.NewWindow(days, s.now().In(s.loc), s.loc)
	if err != nil {
		return nil, err
	}
	calls, err := s.store.ListCallsSince(ctx, userID, win.Start())
	if err != nil {
		return nil, fmt.Errorf("load call window: %w", err)
	}
	return calls, nil
}
