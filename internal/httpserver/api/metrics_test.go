package api

import (
	"testing"

	"github.com/ncecere/llm_observability/backend/internal/timeutil"
)

func TestParseDays(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"", 30, false},
		{"1", 1, false},
		{"7", 7, false},
		{"365", 365, false},
		{"0", 0, true},
		{"-5", 0, true},
		{"366", 0, true},
		{"abc", 0, true},
		{"7.5", 0, true},
	}
	for _, tc := range tests {
		got, err := parseDays(tc.raw)
		if tc.wantErr {
			if err != timeutil.ErrInvalidDays {
				t.Errorf("parseDays(%q): expected ErrInvalidDays, got %v", tc.raw, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseDays(%q): %v", tc.raw, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseDays(%q) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}
