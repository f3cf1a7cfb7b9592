package mathutil_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tabadex/tabadex-bot/pkg/mathutil"
)

func TestApplyMarkup(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		percent  string
		expected string
	}{
		{
			name:     "half_percent_on_hundred",
			raw:      "100.00000000",
			percent:  "0.5",
			expected: "99.5",
		},
		{
			name:     "zero_markup_is_identity",
			raw:      "0.12345678",
			percent:  "0",
			expected: "0.12345678",
		},
		{
			name:     "satoshi_level_amount",
			raw:      "0.00000001",
			percent:  "1",
			expected: "0.0000000099",
		},
		{
			name:     "high_markup",
			raw:      "250",
			percent:  "99.9",
			expected: "0.25",
		},
	}

	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			raw, err := decimal.NewFromString(tt.raw)
			require.NoError(t, err)
			percent, err := decimal.NewFromString(tt.percent)
			require.NoError(t, err)

			got := mathutil.ApplyMarkup(raw, percent)
			require.True(
				t, got.Equal(decimal.RequireFromString(tt.expected)),
				"got %s, want %s", got, tt.expected,
			)
		})
	}
}

func TestApplyMarkupNeverExceedsRawEstimate(t *testing.T) {
	raws := []string{"0.00000001", "1", "99.99999999", "123456.789"}
	percents := []string{"0", "0.1", "0.5", "10", "50", "99.99"}

	for _, r := range raws {
		raw := decimal.RequireFromString(r)
		for _, p := range percents {
			percent := decimal.RequireFromString(p)
			got := mathutil.ApplyMarkup(raw, percent)
			require.True(
				t, got.LessThanOrEqual(raw),
				"markup %s on %s yielded %s", percent, raw, got,
			)
		}
	}
}
