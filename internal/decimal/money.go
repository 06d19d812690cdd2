package decimal

import (
	"github.com/shopspring/decimal"
)

// Zero is decimal zero
var Zero = decimal.Zero

var hundred = decimal.NewFromInt(100)

// MoneyPlaces is the precision of amounts and totals
const MoneyPlaces = 2

// UnitPricePlaces is the precision of unit prices derived from gross prices
const UnitPricePlaces = 4

// RoundMoney rounds to cents
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// Mul multiplies two decimals, rounds to cents
func Mul(a, b decimal.Decimal) decimal.Decimal {
	return RoundMoney(a.Mul(b))
}

// Percentage computes: amount * (percent/100), rounded to cents
func Percentage(amount, percent decimal.Decimal) decimal.Decimal {
	return RoundMoney(amount.Mul(percent).Div(hundred))
}

// CalculateTax computes the tax of a net amount at ratePercent
func CalculateTax(net, ratePercent decimal.Decimal) decimal.Decimal {
	if ratePercent.IsZero() {
		return Zero
	}
	return Percentage(net, ratePercent)
}

// NetFromGross strips ratePercent of tax from a tax-inclusive price:
// gross / (1 + rate/100), rounded to unit price precision
func NetFromGross(gross, ratePercent decimal.Decimal) decimal.Decimal {
	if ratePercent.IsZero() {
		return gross
	}
	factor := decimal.NewFromInt(1).Add(ratePercent.Div(hundred))
	return gross.DivRound(factor, UnitPricePlaces)
}

// CalculateLineTotal computes: amount - discount + tax
func CalculateLineTotal(amount, discount, tax decimal.Decimal) decimal.Decimal {
	return RoundMoney(amount.Sub(discount).Add(tax))
}

// Sum sums a slice of decimals
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}

// IsPositive returns true if decimal is greater than zero
func IsPositive(d decimal.Decimal) bool {
	return d.GreaterThan(Zero)
}

// IsNonNegative returns true if decimal is >= zero
func IsNonNegative(d decimal.Decimal) bool {
	return d.GreaterThanOrEqual(Zero)
}
