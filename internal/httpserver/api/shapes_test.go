package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ncecere/llm_observability/backend/internal/metrics"
	"github.com/ncecere/llm_observability/backend/internal/store"
)

// These tests pin the report payloads exactly as serveReport marshals
// them, so the wire contract cannot drift silently.

func marshalReport(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func sampleWindow() []store.CallLog {
	at := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	cost := func(s string) decimal.NullDecimal {
		return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
	}
	return []store.CallLog{
		{TotalTokens: 100, LatencyMs: 50, Status: store.StatusSuccess, CreatedAt: at, EstimatedCost: cost("0.01")},
		{TotalTokens: 200, LatencyMs: 150, Status: store.StatusSuccess, CreatedAt: at, EstimatedCost: cost("0.02")},
		{TotalTokens: 150, LatencyMs: 1200, Status: store.StatusError, CreatedAt: at, EstimatedCost: cost("0.015")},
	}
}

func TestSummaryResponseShape(t *testing.T) {
	body := marshalReport(t, metrics.Summarize(sampleWindow()))

	require.JSONEq(t, `{
		"total_tokens": 450,
		"total_cost": 0.045,
		"average_latency": 466.67,
		"error_rate": 33.33
	}`, body)
}

func TestTokenUsageResponseShape(t *testing.T) {
	points := metrics.TokenUsageOverTime(sampleWindow(), time.UTC)
	body := marshalReport(t, newSeriesResponse(points))

	require.JSONEq(t, `{
		"data": [
			{"date": "2026-08-20", "tokens": 450, "cost": 0.045}
		]
	}`, body)
}

func TestLatencyResponseShape(t *testing.T) {
	buckets := metrics.LatencyDistribution(sampleWindow())
	body := marshalReport(t, newSeriesResponse(buckets))

	require.JSONEq(t, `{
		"data": [
			{"range": "0-100ms", "count": 1},
			{"range": "100-200ms", "count": 1},
			{"range": "200-500ms", "count": 0},
			{"range": "500-1000ms", "count": 0},
			{"range": "1000ms+", "count": 1}
		]
	}`, body)
}

func TestErrorRateResponseShape(t *testing.T) {
	points := metrics.ErrorRateOverTime(sampleWindow(), time.UTC)
	body := marshalReport(t, newSeriesResponse(points))

	require.JSONEq(t, `{
		"data": [
			{"date": "2026-08-20", "error_rate": 33.33, "total_requests": 3}
		]
	}`, body)
}

func TestSeriesResponseNeverNull(t *testing.T) {
	// Empty windows must serve {"data":[]}, not {"data":null}.
	body := marshalReport(t, newSeriesResponse[metrics.TokenUsagePoint](nil))
	require.JSONEq(t, `{"data": []}`, body)
}

func TestCostResponseShape(t *testing.T) {
	body := marshalReport(t, metrics.CostSummary{TotalCost: 0.045, PeriodDays: 30})

	require.JSONEq(t, `{"total_cost": 0.045, "period_days": 30}`, body)
}
