package service

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// DiscountedGross is current * (1 - pct/100) rounded to cents.
func DiscountedGross(current, pct float64) float64 {
	factor := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(pct).Div(hundred))
	return decimal.NewFromFloat(current).Mul(factor).Round(2).InexactFloat64()
}

func sumGross(values []float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.Round(2).InexactFloat64()
}

// hasCentPrecision reports whether v fits the stored NUMERIC(5,2) scale.
func hasCentPrecision(v float64) bool {
	d := decimal.NewFromFloat(v)
	return d.Equal(d.Round(2))
}
