// Package money formats and sums two-decimal currency amounts.
package money

import "github.com/shopspring/decimal"

const Places = 2

// Format renders an amount with exactly two decimals, e.g. "30.00".
func Format(d decimal.Decimal) string {
	return d.StringFixed(Places)
}

func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Line returns price × qty rounded to two places.
func Line(price decimal.Decimal, qty int) decimal.Decimal {
	return Round(price.Mul(decimal.NewFromInt(int64(qty))))
}

// Total computes sub + delivery + service − discount, rounded.
func Total(sub, delivery, service, discount decimal.Decimal) decimal.Decimal {
	return Round(sub.Add(delivery).Add(service).Sub(discount))
}
