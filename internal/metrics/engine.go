// Package metrics implements the aggregation engine: pure functions that
// turn a window of call logs into summary statistics, daily series, and
// the latency histogram. Every function is total over its input; an empty
// slice yields a zero-valued result, never an error.
package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ncecere/llm_observability/backend/internal/store"
	"github.com/ncecere/llm_observability/backend/internal/timeutil"
)

// Summary aggregates a user's calls over the window.
type Summary struct {
	TotalTokens    int64   `json:"total_tokens"`
	TotalCost      float64 `json:"total_cost"`
	AverageLatency float64 `json:"average_latency"`
	ErrorRate      float64 `json:"error_rate"`
}

// TokenUsagePoint is one day of the sparse token/cost series.
type TokenUsagePoint struct {
	Date   string  `json:"date"`
	Tokens int64   `json:"tokens"`
	Cost   float64 `json:"cost"`
}

// LatencyBucket is one fixed histogram bucket. All five buckets are
// always emitted, zero counts included.
type LatencyBucket struct {
	Range string `json:"range"`
	Count int64  `json:"count"`
}

// ErrorRatePoint is one day of the sparse error-rate series.
type ErrorRatePoint struct {
	Date          string  `json:"date"`
	ErrorRate     float64 `json:"error_rate"`
	TotalRequests int64   `json:"total_requests"`
}

// latencyBuckets are the fixed half-open histogram boundaries,
// lower-inclusive. The final bucket is unbounded above.
var latencyBuckets = []struct {
	label string
	upper float64
}{
	{"0-100ms", 100},
	{"100-200ms", 200},
	{"200-500ms", 500},
	{"500-1000ms", 1000},
	{"1000ms+", math.Inf(1)},
}

// Summarize computes window totals. Calls without a cost row contribute
// zero cost but still count toward tokens, latency, and error rate.
func Summarize(calls []store.CallLog) Summary {
	if len(calls) == 0 {
		return Summary{}
	}

	var (
		totalTokens  int64
		totalLatency float64
		errorCount   int64
	)
	totalCost := decimal.Zero
	for _, call := range calls {
		totalTokens += call.TotalTokens
		totalLatency += call.LatencyMs
		if call.Status == store.StatusError {
			errorCount++
		}
		if call.EstimatedCost.Valid {
			totalCost = totalCost.Add(call.EstimatedCost.Decimal)
		}
	}

	count := float64(len(calls))
	return Summary{
		TotalTokens:    totalTokens,
		TotalCost:      round4(totalCost),
		AverageLatency: round2(totalLatency / count),
		ErrorRate:      round2(float64(errorCount) / count * 100),
	}
}

// TokenUsageOverTime groups calls by calendar date in loc and sums tokens
// and cost per day. Days without calls produce no entry; output dates are
// strictly ascending.
func TokenUsageOverTime(calls []store.CallLog, loc *time.Location) []TokenUsagePoint {
	loc = timeutil.EnsureLocation(loc)

	type dayAggregate struct {
		tokens int64
		cost   decimal.Decimal
	}
	daily := make(map[string]*dayAggregate)
	for _, call := range calls {
		key := timeutil.DayKey(call.CreatedAt, loc)
		agg, ok := daily[key]
		if !ok {
			agg = &dayAggregate{}
			daily[key] = agg
		}
		agg.tokens += call.TotalTokens
		if call.EstimatedCost.Valid {
			agg.cost = agg.cost.Add(call.EstimatedCost.Decimal)
		}
	}

	points := make([]TokenUsagePoint, 0, len(daily))
	for _, key := range sortedDays(daily) {
		agg := daily[key]
		points = append(points, TokenUsagePoint{
			Date:   key,
			Tokens: agg.tokens,
			Cost:   round4(agg.cost),
		})
	}
	return points
}

// LatencyDistribution counts calls into the fixed buckets. Bucket counts
// always sum to len(calls).
func LatencyDistribution(calls []store.CallLog) []LatencyBucket {
	counts := make([]int64, len(latencyBuckets))
	for _, call := range calls {
		for i, bucket := range latencyBuckets {
			if call.LatencyMs < bucket.upper {
				counts[i]++
				break
			}
		}
	}

	out := make([]LatencyBucket, len(latencyBuckets))
	for i, bucket := range latencyBuckets {
		out[i] = LatencyBucket{Range: bucket.label, Count: counts[i]}
	}
	return out
}

// ErrorRateOverTime groups calls by calendar date in loc and computes the
// per-day error percentage. Sparse, ascending.
func ErrorRateOverTime(calls []store.CallLog, loc *time.Location) []ErrorRatePoint {
	loc = timeutil.EnsureLocation(loc)

	type dayAggregate struct {
		total  int64
		errors int64
	}
	daily := make(map[string]*dayAggregate)
	for _, call := range calls {
		key := timeutil.DayKey(call.CreatedAt, loc)
		agg, ok := daily[key]
		if !ok {
			agg = &dayAggregate{}
			daily[key] = agg
		}
		agg.total++
		if call.Status == store.StatusError {
			agg.errors++
		}
	}

	points := make([]ErrorRatePoint, 0, len(daily))
	for _, key := range sortedDays(daily) {
		agg := daily[key]
		rate := 0.0
		if agg.total > 0 {
			rate = round2(float64(agg.errors) / float64(agg.total) * 100)
		}
		points = append(points, ErrorRatePoint{
			Date:          key,
			ErrorRate:     rate,
			TotalRequests: agg.total,
		})
	}
	return points
}

// CostTotal sums the joined costs, missing rows as zero, rounded to four
// decimal places.
func CostTotal(calls []store.CallLog) float64 {
	total := decimal.Zero
	for _, call := range calls {
		if call.EstimatedCost.Valid {
			total = total.Add(call.EstimatedCost.Decimal)
		}
	}
	return round4(total)
}

// sortedDays returns the map keys ascending. ISO date strings order
// chronologically when sorted lexically.
func sortedDays[V any](daily map[string]V) []string {
	keys := make([]string, 0, len(daily))
	for key := range daily {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// round2 is the single rounding rule shared by every error-rate and
// latency figure, so the summary and per-day surfaces always agree.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v decimal.Decimal) float64 {
	return v.Round(4).InexactFloat64()
}
