package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Totals carries every money figure derived from a set of order lines.
type Totals struct {
	Subtotal          decimal.Decimal `json:"subtotal"`
	EffectiveTax      decimal.Decimal `json:"effectiveTax"`
	EffectiveDiscount decimal.Decimal `json:"effectiveDiscount"`
	GrandTotal        decimal.Decimal `json:"grandTotal"`
}

func LineTotal(quantity int64, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(quantity))
}

func Subtotal(lines []LineSubmission) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(LineTotal(line.Quantity, line.UnitPrice))
	}
	return total
}

// ResolveCharge turns a tax or discount input pair into the effective charge.
// A percentage > 0 takes precedence over any amount also present; with no
// percentage the amount applies, defaulting to zero. Both fields may be set
// at once and the percentage silently wins.
func ResolveCharge(amount, percentage *decimal.Decimal, subtotal decimal.Decimal) decimal.Decimal {
	if percentage != nil && percentage.IsPositive() {
		return subtotal.Mul(*percentage).Div(hundred)
	}
	if amount != nil {
		return *amount
	}
	return decimal.Zero
}

// GrandTotal is subtotal + tax - discount. A discount exceeding subtotal+tax
// yields a negative total; no floor is applied.
func GrandTotal(subtotal, effectiveTax, effectiveDiscount decimal.Decimal) decimal.Decimal {
	return subtotal.Add(effectiveTax).Sub(effectiveDiscount)
}

func ComputeTotals(lines []LineSubmission, taxAmount, taxPercentage, discountAmount, discountPercentage *decimal.Decimal) Totals {
	subtotal := Subtotal(lines)
	tax := ResolveCharge(taxAmount, taxPercentage, subtotal)
	discount := ResolveCharge(discountAmount, discountPercentage, subtotal)
	return Totals{
		Subtotal:          subtotal,
		EffectiveTax:      tax,
		EffectiveDiscount: discount,
		GrandTotal:        GrandTotal(subtotal, tax, discount),
	}
}
