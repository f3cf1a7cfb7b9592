package mathutil

import (
	"github.com/shopspring/decimal"
)

// OneHundred is the percentage base used by markup math.
var OneHundred = decimal.NewFromInt(100)

func init() {
	// Amounts go down to satoshi-level fractions; 18 digits keep the markup
	// division from drifting on 8+ decimal currencies.
	decimal.DivisionPrecision = 18
}

// ApplyMarkup returns the amount offered to the user after subtracting the
// operator margin from an upstream estimate:
// raw * (100 - percent) / 100.
// The percent range [0, 100) is guaranteed by the setting write path and is
// not re-validated here.
func ApplyMarkup(raw, percent decimal.Decimal) decimal.Decimal {
	return raw.Mul(OneHundred.Sub(percent)).Div(OneHundred)
}
