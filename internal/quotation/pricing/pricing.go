package pricing

import (
	"fmt"
	"math"

	"github.com/meridian-crm/meridian-crm/internal/shared"
)

// LineInput carries the commercial fields of a single quotation line.
// Percentages are pointers so "not set" stays distinguishable from zero.
type LineInput struct {
	Name            string
	Description     string
	Quantity        float64
	UnitPrice       float64
	DiscountPercent *float64
	TaxPercent      *float64
}

// Policy is a quotation-level adjustment applied on top of per-line amounts.
// Percent applies to the running net; Amount is a flat addition.
type Policy struct {
	Percent *float64
	Amount  float64
}

// Totals holds every derived monetary field of a quotation.
type Totals struct {
	Subtotal       float64
	DiscountAmount float64
	TaxAmount      float64
	Charges        float64
	Total          float64
	LineTotals     []float64
	AmountInWords  string
}

// Compute derives all monetary fields from the line items and stated rates.
// It is a pure function: no clock, no globals, identical inputs always yield
// identical outputs. Violating inputs fail with shared.ErrInvalidLineItem.
func Compute(currency string, items []LineInput, discount, tax Policy, charges float64) (Totals, error) {
	if err := validatePolicy("discount", discount); err != nil {
		return Totals{}, err
	}
	if err := validatePolicy("tax", tax); err != nil {
		return Totals{}, err
	}

	digits := FractionDigits(currency)

	var subtotal, lineDiscounts, lineTaxes float64
	lineTotals := make([]float64, 0, len(items))
	for i, item := range items {
		if err := validateLine(i, item); err != nil {
			return Totals{}, err
		}
		gross := item.Quantity * item.UnitPrice
		lineDiscount := gross * percentOrZero(item.DiscountPercent) / 100
		net := gross - lineDiscount
		lineTax := net * percentOrZero(item.TaxPercent) / 100

		subtotal += gross
		lineDiscounts += lineDiscount
		lineTaxes += lineTax
		// One rounding step per line, never per sub-step, so repeated renders
		// cannot accumulate drift.
		lineTotals = append(lineTotals, roundTo(net+lineTax, digits))
	}

	discountAmount := lineDiscounts + discount.Amount
	discountAmount += (subtotal - discountAmount) * percentOrZero(discount.Percent) / 100

	netAfterDiscount := subtotal - discountAmount
	taxAmount := lineTaxes + tax.Amount
	taxAmount += netAfterDiscount * percentOrZero(tax.Percent) / 100

	totals := Totals{
		Subtotal:       roundTo(subtotal, digits),
		DiscountAmount: roundTo(discountAmount, digits),
		TaxAmount:      roundTo(taxAmount, digits),
		Charges:        roundTo(charges, digits),
		LineTotals:     lineTotals,
	}
	totals.Total = roundTo(subtotal-discountAmount+taxAmount+charges, digits)
	totals.AmountInWords = AmountInWords(totals.Total, currency)
	return totals, nil
}

// LineTotal derives a single line's total using the same rounding discipline
// as Compute.
func LineTotal(currency string, item LineInput) (float64, error) {
	totals, err := Compute(currency, []LineInput{item}, Policy{}, Policy{}, 0)
	if err != nil {
		return 0, err
	}
	return totals.LineTotals[0], nil
}

func validateLine(index int, item LineInput) error {
	if item.Quantity < 0 {
		return fmt.Errorf("%w: line %d: quantity must not be negative", shared.ErrInvalidLineItem, index+1)
	}
	if item.UnitPrice < 0 {
		return fmt.Errorf("%w: line %d: unit price must not be negative", shared.ErrInvalidLineItem, index+1)
	}
	if !percentInRange(item.DiscountPercent) {
		return fmt.Errorf("%w: line %d: discount percent must be within [0,100]", shared.ErrInvalidLineItem, index+1)
	}
	if !percentInRange(item.TaxPercent) {
		return fmt.Errorf("%w: line %d: tax percent must be within [0,100]", shared.ErrInvalidLineItem, index+1)
	}
	return nil
}

func validatePolicy(name string, p Policy) error {
	if !percentInRange(p.Percent) {
		return fmt.Errorf("%w: %s percent must be within [0,100]", shared.ErrInvalidLineItem, name)
	}
	if p.Amount < 0 {
		return fmt.Errorf("%w: %s amount must not be negative", shared.ErrInvalidLineItem, name)
	}
	return nil
}

func percentInRange(p *float64) bool {
	return p == nil || (*p >= 0 && *p <= 100)
}

func percentOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func roundTo(v float64, digits int) float64 {
	pow := math.Pow(10, float64(digits))
	return math.Round(v*pow) / pow
}
