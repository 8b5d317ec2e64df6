package ingest

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ncecere/llm_observability/backend/internal/store"
)

func TestEstimateCost(t *testing.T) {
	tests := []struct {
		costPer1K string
		tokens    int64
		want      string
	}{
		{"0.1", 450, "0.045"},
		{"0.03", 1000, "0.03"},
		{"0.03", 1, "0.00003"},
		{"0.002", 1500, "0.003"},
		{"0.1", 0, "0"},
	}
	for _, tc := range tests {
		got := estimateCost(decimal.RequireFromString(tc.costPer1K), tc.tokens)
		require.Truef(t, got.Equal(decimal.RequireFromString(tc.want)),
			"estimateCost(%s, %d) = %s, want %s", tc.costPer1K, tc.tokens, got, tc.want)
	}
}

func TestValidate(t *testing.T) {
	base := Record{ModelName: "gpt-4", LatencyMs: 10, Status: store.StatusSuccess}

	require.NoError(t, validate(base))

	rec := base
	rec.ModelName = ""
	require.ErrorIs(t, validate(rec), ErrUnknownModel)

	rec = base
	rec.LatencyMs = -1
	require.ErrorIs(t, validate(rec), ErrInvalidLatency)

	rec = base
	rec.PromptTokens = -5
	require.ErrorIs(t, validate(rec), ErrInvalidTokens)

	rec = base
	rec.Status = "crashed"
	require.ErrorIs(t, validate(rec), ErrInvalidStatus)

	rec = base
	rec.Status = ""
	require.NoError(t, validate(rec))
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "abc", truncate("abc", 5))
	require.Equal(t, "abcde", truncate("abcdefgh", 5))
	require.Equal(t, "", truncate("", 5))
}
