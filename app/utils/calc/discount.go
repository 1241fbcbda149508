package calc

import "github.com/shopspring/decimal"

var oneHundred = decimal.NewFromInt(100)

// DiscountPercentage returns the rounded percentage saved when buying at
// price instead of comparePrice. Zero when comparePrice does not exceed
// price, so callers can feed it unset/equal compare prices directly.
func DiscountPercentage(price, comparePrice decimal.Decimal) int {
	if !comparePrice.GreaterThan(price) || comparePrice.IsZero() {
		return 0
	}
	percent := comparePrice.Sub(price).Div(comparePrice).Mul(oneHundred)
	return int(percent.Round(0).IntPart())
}

// DiscountAmount returns the absolute amount saved, zero when not on sale.
func DiscountAmount(price, comparePrice decimal.Decimal) decimal.Decimal {
	if !comparePrice.GreaterThan(price) {
		return decimal.Zero
	}
	return comparePrice.Sub(price)
}

// LineTotal is the canonical cart line computation: unit price times
// quantity.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
