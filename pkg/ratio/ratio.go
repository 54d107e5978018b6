// Package ratio computes report percentages.
package ratio

import "github.com/shopspring/decimal"

// Percent returns num/den as a percentage rounded to one decimal place,
// or 0 when den is not positive.
func Percent(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	return PercentOf(decimal.NewFromInt(int64(num)), decimal.NewFromInt(int64(den)))
}

// PercentOf is Percent over decimal amounts.
func PercentOf(num, den decimal.Decimal) float64 {
	if !den.IsPositive() {
		return 0
	}
	return num.Mul(decimal.NewFromInt(100)).Div(den).Round(1).InexactFloat64()
}

// Mean returns sum/count rounded to two places, or 0 for an empty set.
func Mean(sum decimal.Decimal, count int) float64 {
	if count <= 0 {
		return 0
	}
	return sum.Div(decimal.NewFromInt(int64(count))).Round(2).InexactFloat64()
}
