package services

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity     = errors.New("quantity must be at least 1")
	ErrMissingExchangeRate = errors.New("exchange rate missing or not positive")
	ErrInvalidVATPercent   = errors.New("vat percent must be in [0,100)")
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// LineInput is everything a line total needs, all in the reference
// currency except ExchangeRate (reference units per 1 transaction
// unit; converting reference -> transaction divides by it).
type LineInput struct {
	UnitPriceRef     decimal.Decimal
	PurchasePriceRef decimal.Decimal
	Quantity         int
	VATPercent       decimal.Decimal
	ExchangeRate     decimal.Decimal
}

// LineTotals carries the frozen per-line amounts: reference-currency
// and transaction-currency, each excl and incl VAT, plus profit.
type LineTotals struct {
	UnitPriceExclVATRef decimal.Decimal
	TotalExclVATRef     decimal.Decimal
	TotalInclVATRef     decimal.Decimal
	UnitPrice           decimal.Decimal
	UnitPriceExclVAT    decimal.Decimal
	TotalExclVAT        decimal.Decimal
	TotalInclVAT        decimal.Decimal
	ProfitRef           decimal.Decimal
	VATPercent          decimal.Decimal
	Quantity            int
}

// ComputeLine derives all line amounts from the input. Every step is
// rounded half-up to 2 decimals immediately, not once at the end; the
// stored totals of historical orders depend on that discipline.
func ComputeLine(in LineInput) (LineTotals, error) {
	if in.Quantity < 1 {
		return LineTotals{}, ErrInvalidQuantity
	}
	if !in.ExchangeRate.IsPositive() {
		return LineTotals{}, ErrMissingExchangeRate
	}
	if in.VATPercent.IsNegative() || in.VATPercent.GreaterThanOrEqual(hundred) {
		return LineTotals{}, ErrInvalidVATPercent
	}

	qty := decimal.NewFromInt(int64(in.Quantity))
	divisor := one.Add(in.VATPercent.Div(hundred))

	unitExclRef := in.UnitPriceRef.Div(divisor).Round(2)
	unitTxn := in.UnitPriceRef.Div(in.ExchangeRate).Round(2)
	unitExclTxn := unitExclRef.Div(in.ExchangeRate).Round(2)

	return LineTotals{
		UnitPriceExclVATRef: unitExclRef,
		TotalExclVATRef:     unitExclRef.Mul(qty).Round(2),
		TotalInclVATRef:     in.UnitPriceRef.Mul(qty).Round(2),
		UnitPrice:           unitTxn,
		UnitPriceExclVAT:    unitExclTxn,
		TotalExclVAT:        unitExclTxn.Mul(qty).Round(2),
		TotalInclVAT:        unitTxn.Mul(qty).Round(2),
		ProfitRef:           unitExclRef.Sub(in.PurchasePriceRef).Mul(qty).Round(2),
		VATPercent:          in.VATPercent,
		Quantity:            in.Quantity,
	}, nil
}

// OrderTotals aggregates line totals. VATRateApplied is the arithmetic
// mean of the per-line VAT percents actually charged, not a constant;
// this matches the stored data even when lines carry different rates.
type OrderTotals struct {
	TotalExclVAT    decimal.Decimal
	TotalInclVAT    decimal.Decimal
	TotalExclVATRef decimal.Decimal
	TotalInclVATRef decimal.Decimal
	VATRateApplied  decimal.Decimal
}

// SumOrder accumulates with a 2-decimal round after every running
// addition, same discipline as ComputeLine.
func SumOrder(lines []LineTotals) OrderTotals {
	var t OrderTotals
	vatSum := decimal.Zero
	for _, l := range lines {
		t.TotalExclVAT = t.TotalExclVAT.Add(l.TotalExclVAT).Round(2)
		t.TotalInclVAT = t.TotalInclVAT.Add(l.TotalInclVAT).Round(2)
		t.TotalExclVATRef = t.TotalExclVATRef.Add(l.TotalExclVATRef).Round(2)
		t.TotalInclVATRef = t.TotalInclVATRef.Add(l.TotalInclVATRef).Round(2)
		vatSum = vatSum.Add(l.VATPercent)
	}
	if len(lines) > 0 {
		t.VATRateApplied = vatSum.Div(decimal.NewFromInt(int64(len(lines)))).Round(2)
	}
	return t
}
