package metrics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ncecere/llm_observability/backend/internal/store"
)

func call(tokens int64, latency float64, status string, cost string) store.CallLog {
	c := store.CallLog{
		TotalTokens: tokens,
		LatencyMs:   latency,
		Status:      status,
		CreatedAt:   time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
	}
	if cost != "" {
		c.EstimatedCost = decimal.NullDecimal{Decimal: decimal.RequireFromString(cost), Valid: true}
	}
	return c
}

func sampleCalls() []store.CallLog {
	return []store.CallLog{
		call(100, 50, store.StatusSuccess, "0.01"),
		call(200, 150, store.StatusSuccess, "0.02"),
		call(150, 1200, store.StatusError, "0.015"),
	}
}

func TestSummarize(t *testing.T) {
	got := Summarize(sampleCalls())

	require.Equal(t, int64(450), got.TotalTokens)
	require.Equal(t, 0.045, got.TotalCost)
	require.Equal(t, 466.67, got.AverageLatency)
	require.Equal(t, 33.33, got.ErrorRate)
}

func TestSummarizeEmpty(t *testing.T) {
	got := Summarize(nil)
	require.Equal(t, Summary{}, got)
}

func TestSummarizeMissingCostRow(t *testing.T) {
	calls := []store.CallLog{
		call(100, 50, store.StatusSuccess, "0.01"),
		call(300, 80, store.StatusSuccess, ""),
	}
	got := Summarize(calls)

	require.Equal(t, int64(400), got.TotalTokens)
	require.Equal(t, 0.01, got.TotalCost)
	require.Equal(t, 65.0, got.AverageLatency)
}

func TestLatencyDistribution(t *testing.T) {
	got := LatencyDistribution(sampleCalls())

	require.Len(t, got, 5)
	require.Equal(t, []LatencyBucket{
		{Range: "0-100ms", Count: 1},
		{Range: "100-200ms", Count: 1},
		{Range: "200-500ms", Count: 0},
		{Range: "500-1000ms", Count: 0},
		{Range: "1000ms+", Count: 1},
	}, got)
}

func TestLatencyDistributionBoundaries(t *testing.T) {
	tests := []struct {
		latency float64
		bucket  string
	}{
		{0, "0-100ms"},
		{99.999, "0-100ms"},
		{100, "100-200ms"},
		{200, "200-500ms"},
		{500, "500-1000ms"},
		{1000, "1000ms+"},
		{250000, "1000ms+"},
	}
	for _, tc := range tests {
		got := LatencyDistribution([]store.CallLog{call(1, tc.latency, store.StatusSuccess, "")})
		for _, bucket := range got {
			want := int64(0)
			if bucket.Range == tc.bucket {
				want = 1
			}
			require.Equalf(t, want, bucket.Count, "latency %v bucket %s", tc.latency, bucket.Range)
		}
	}
}

func TestLatencyDistributionCountsSum(t *testing.T) {
	calls := sampleCalls()
	calls = append(calls, call(10, 333, store.StatusTimeout, ""))

	var total int64
	for _, bucket := range LatencyDistribution(calls) {
		total += bucket.Count
	}
	require.Equal(t, int64(len(calls)), total)
}

func TestLatencyDistributionEmpty(t *testing.T) {
	got := LatencyDistribution(nil)
	require.Len(t, got, 5)
	for _, bucket := range got {
		require.Zero(t, bucket.Count)
	}
}

func TestTokenUsageOverTime(t *testing.T) {
	day := func(d int, hour int) time.Time {
		return time.Date(2026, 8, d, hour, 0, 0, 0, time.UTC)
	}
	calls := []store.CallLog{
		{TotalTokens: 50, CreatedAt: day(19, 23), EstimatedCost: decimal.NullDecimal{Decimal: decimal.RequireFromString("0.005"), Valid: true}},
		{TotalTokens: 100, CreatedAt: day(18, 9), EstimatedCost: decimal.NullDecimal{Decimal: decimal.RequireFromString("0.01"), Valid: true}},
		{TotalTokens: 200, CreatedAt: day(18, 17)},
	}

	got := TokenUsageOverTime(calls, time.UTC)

	require.Equal(t, []TokenUsagePoint{
		{Date: "2026-08-18", Tokens: 300, Cost: 0.01},
		{Date: "2026-08-19", Tokens: 50, Cost: 0.005},
	}, got)
}

func TestTokenUsageOverTimeAscendingUniqueDates(t *testing.T) {
	calls := make([]store.CallLog, 0, 40)
	base := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 40; i++ {
		calls = append(calls, store.CallLog{
			TotalTokens: 10,
			CreatedAt:   base.AddDate(0, 0, i%13),
		})
	}

	got := TokenUsageOverTime(calls, time.UTC)
	require.Len(t, got, 13)
	for i := 1; i < len(got); i++ {
		require.Greater(t, got[i].Date, got[i-1].Date)
	}
}

func TestTokenUsageGroupsByReportingLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 2026-08-19 02:00 UTC is still 2026-08-18 in New York.
	calls := []store.CallLog{
		{TotalTokens: 10, CreatedAt: time.Date(2026, 8, 19, 2, 0, 0, 0, time.UTC)},
	}

	got := TokenUsageOverTime(calls, loc)
	require.Len(t, got, 1)
	require.Equal(t, "2026-08-18", got[0].Date)
}

func TestErrorRateOverTime(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, 8, d, 12, 0, 0, 0, time.UTC)
	}
	calls := []store.CallLog{
		{Status: store.StatusSuccess, CreatedAt: day(17)},
		{Status: store.StatusError, CreatedAt: day(17)},
		{Status: store.StatusError, CreatedAt: day(17)},
		{Status: store.StatusSuccess, CreatedAt: day(18)},
		{Status: store.StatusTimeout, CreatedAt: day(18)},
	}

	got := ErrorRateOverTime(calls, time.UTC)

	require.Equal(t, []ErrorRatePoint{
		{Date: "2026-08-17", ErrorRate: 66.67, TotalRequests: 3},
		{Date: "2026-08-18", ErrorRate: 0, TotalRequests: 2},
	}, got)
}

func TestErrorRateMatchesSummaryRounding(t *testing.T) {
	calls := sampleCalls()

	summary := Summarize(calls)
	series := ErrorRateOverTime(calls, time.UTC)

	require.Len(t, series, 1)
	require.Equal(t, summary.ErrorRate, series[0].ErrorRate)
}

func TestCostTotal(t *testing.T) {
	require.Equal(t, 0.045, CostTotal(sampleCalls()))
	require.Equal(t, 0.0, CostTotal(nil))
}

func TestCostTotalMissingRows(t *testing.T) {
	calls := []store.CallLog{
		call(100, 50, store.StatusSuccess, "0.0125"),
		call(100, 50, store.StatusSuccess, ""),
		call(100, 50, store.StatusSuccess, "0.0125"),
	}
	require.Equal(t, 0.025, CostTotal(calls))
}

func TestEngineIsDeterministic(t *testing.T) {
	calls := sampleCalls()
	first := Summarize(calls)
	second := Summarize(calls)
	require.Equal(t, first, second)
}
