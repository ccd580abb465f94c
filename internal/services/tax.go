package services

import (
	"math"

	"github.com/shopspring/decimal"
	"github.com/stwalsh4118/autotax/internal/models"
)

// Discount constants, applied in this order.
const (
	PromptPaymentDiscountPercent   = 10.0
	PublicServiceDiscountAmount    = 50000.0
	AccountTransferDiscountPercent = 5.0
)

// Bracket upper bounds (inclusive) in currency units.
const (
	LowBracketLimit    = 30_000_000
	MiddleBracketLimit = 70_000_000
	HighBracketLimit   = 200_000_000
)

var (
	hundred = decimal.NewFromInt(100)

	// CatchAllRate applies above HighBracketLimit.
	CatchAllRate = decimal.RequireFromString("0.04")

	// NonPositivePriceRate applies to prices <= 0. It currently shares the
	// catch-all rate, which taxes free or negative listings at the highest rate.
	NonPositivePriceRate = CatchAllRate
)

// taxBracket is one row of the bracket schedule: prices up to and including
// upTo pay rate.
type taxBracket struct {
	upTo decimal.Decimal
	rate decimal.Decimal
}

var bracketSchedule = []taxBracket{
	{upTo: decimal.NewFromInt(LowBracketLimit), rate: decimal.RequireFromString("0.015")},
	{upTo: decimal.NewFromInt(MiddleBracketLimit), rate: decimal.RequireFromString("0.020")},
	{upTo: decimal.NewFromInt(HighBracketLimit), rate: decimal.RequireFromString("0.025")},
}

// Discounts selects which discounts apply to a tax computation.
type Discounts struct {
	PromptPayment   bool `form:"prompt_payment" json:"prompt_payment"`
	PublicService   bool `form:"public_service" json:"public_service"`
	AccountTransfer bool `form:"account_transfer" json:"account_transfer"`
}

// TaxRate returns the bracket rate for price.
func TaxRate(price decimal.Decimal) decimal.Decimal {
	if price.Sign() <= 0 {
		return NonPositivePriceRate
	}
	for _, b := range bracketSchedule {
		if price.LessThanOrEqual(b.upTo) {
			return b.rate
		}
	}
	return CatchAllRate
}

// ComputeTax returns the payable tax for v. The base tax comes from the bracket
// schedule; each selected discount is then taken from the running amount, never
// from the base. The result has no floor and can be negative.
func ComputeTax(v models.Vehicle, d Discounts) float64 {
	price := v.Price()
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return computeNonFiniteTax(price, d)
	}

	tax := decimal.NewFromFloat(price).Mul(TaxRate(decimal.NewFromFloat(price)))

	if d.PromptPayment {
		tax = tax.Sub(percentOf(tax, PromptPaymentDiscountPercent))
	}
	if d.PublicService {
		tax = tax.Sub(decimal.NewFromFloat(PublicServiceDiscountAmount))
	}
	if d.AccountTransfer {
		tax = tax.Sub(percentOf(tax, AccountTransferDiscountPercent))
	}

	return tax.InexactFloat64()
}

// percentOf returns pct percent of amount.
func percentOf(amount decimal.Decimal, pct float64) decimal.Decimal {
	return amount.Mul(decimal.NewFromFloat(pct)).Div(hundred)
}

// computeNonFiniteTax mirrors ComputeTax in float64 for NaN and infinite
// prices, which decimal cannot represent. Both land in the catch-all bracket.
func computeNonFiniteTax(price float64, d Discounts) float64 {
	tax := price * CatchAllRate.InexactFloat64()
	if d.PromptPayment {
		tax -= tax * PromptPaymentDiscountPercent / 100
	}
	if d.PublicService {
		tax -= PublicServiceDiscountAmount
	}
	if d.AccountTransfer {
		tax -= tax * AccountTransferDiscountPercent / 100
	}
	return tax
}
