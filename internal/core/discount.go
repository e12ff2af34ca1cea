package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DiscountMode selects how a raw discount input is interpreted.
type DiscountMode string

const (
	DiscountModePercent DiscountMode = "percent"
	DiscountModeAmount  DiscountMode = "amount"
)

// CeilingUsage aggregates the organization-wide discount ceiling figures for
// a cart. The ceiling is a percentage of the tax-free subtotal (base prices
// only, surcharges excluded).
type CeilingUsage struct {
	TaxFreeSubtotal      decimal.Decimal `json:"tax_free_subtotal"`
	CeilingAmount        decimal.Decimal `json:"ceiling_amount"`
	UsedAmount           decimal.Decimal `json:"used_amount"`
	AvailableAmount      decimal.Decimal `json:"available_amount"`
	UsedPercentOfCeiling decimal.Decimal `json:"used_percent_of_ceiling"`
}

// ComputeCeilingUsage derives the current ceiling usage from the cart's
// resolved per-line discounts. Pure; reads the cart and nothing else.
func ComputeCeilingUsage(c *Cart) CeilingUsage {
	taxFree := decimal.Zero
	used := decimal.Zero
	for i := range c.Lines {
		qty := decimal.NewFromInt(int64(c.Lines[i].Quantity))
		taxFree = taxFree.Add(c.Lines[i].BasePrice.Mul(qty))
		used = used.Add(c.Lines[i].ResolvedDiscountPerUnit.Mul(qty))
	}

	ceiling := taxFree.Mul(c.DiscountCeilingPercent).Div(hundred)

	available := ceiling.Sub(used)
	if available.IsNegative() {
		available = decimal.Zero
	}

	usedPercent := decimal.Zero
	if ceiling.IsPositive() {
		usedPercent = used.Div(ceiling).Mul(hundred)
		if usedPercent.GreaterThan(hundred) {
			usedPercent = hundred
		}
	}

	return CeilingUsage{
		TaxFreeSubtotal:      taxFree,
		CeilingAmount:        ceiling,
		UsedAmount:           used,
		AvailableAmount:      available,
		UsedPercentOfCeiling: usedPercent,
	}
}

// DiscountResult reports the outcome of one discount application.
type DiscountResult struct {
	ResolvedDiscountPerUnit decimal.Decimal `json:"resolved_discount_per_unit"`
	ResolvedDiscountPercent decimal.Decimal `json:"resolved_discount_percent"`
	// Clamped is set when the requested discount exceeded the ceiling
	// headroom and was reduced. The caller surfaces a transient notice.
	Clamped bool `json:"clamped"`
}

// ApplyDiscount resolves a requested per-line discount against the cart's
// discount ceiling and stores the result on the line.
//
// The ceiling check excludes the line's own current contribution, so
// repeated calls with the same input are idempotent and sequential edits
// across lines always remain within the ceiling. Out-of-range inputs clamp
// to the nearest valid value rather than erroring.
func (c *Cart) ApplyDiscount(lineID string, mode DiscountMode, rawValue decimal.Decimal) (DiscountResult, error) {
	line, err := c.Line(lineID)
	if err != nil {
		return DiscountResult{}, err
	}

	perUnit, err := normalizeDiscount(line, mode, rawValue)
	if err != nil {
		return DiscountResult{}, err
	}
	requested := perUnit

	qty := decimal.NewFromInt(int64(line.Quantity))
	proposed := perUnit.Mul(qty)

	usage := ComputeCeilingUsage(c)
	baseline := usage.UsedAmount.Sub(line.ResolvedDiscountPerUnit.Mul(qty))

	clamped := false
	if baseline.Add(proposed).GreaterThan(usage.CeilingAmount) {
		headroom := usage.CeilingAmount.Sub(baseline)
		if headroom.IsNegative() {
			headroom = decimal.Zero
		}
		perUnit = headroom.Div(qty)
		clamped = true
	}

	line.RequestedDiscountPerUnit = requested
	line.ResolvedDiscountPerUnit = perUnit
	c.bump()

	return DiscountResult{
		ResolvedDiscountPerUnit: perUnit,
		ResolvedDiscountPercent: discountPercent(perUnit, line.BasePrice),
		Clamped:                 clamped,
	}, nil
}

// normalizeDiscount turns the raw user input into a per-unit discount.
// Percent inputs clamp to [0, 100]; amount inputs clamp to [0, BasePrice]
// so the resolved discount can never exceed the base price.
func normalizeDiscount(line *CartLine, mode DiscountMode, raw decimal.Decimal) (decimal.Decimal, error) {
	switch mode {
	case DiscountModePercent:
		pct := raw
		if pct.IsNegative() {
			pct = decimal.Zero
		}
		if pct.GreaterThan(hundred) {
			pct = hundred
		}
		return line.BasePrice.Mul(pct).Div(hundred), nil
	case DiscountModeAmount:
		amt := raw
		if amt.IsNegative() {
			amt = decimal.Zero
		}
		if amt.GreaterThan(line.BasePrice) {
			amt = line.BasePrice
		}
		return amt, nil
	default:
		return decimal.Zero, fmt.Errorf("unknown discount mode %q", mode)
	}
}

// discountPercent is perUnit relative to basePrice. A zero base price yields
// 0% rather than dividing by zero.
func discountPercent(perUnit, basePrice decimal.Decimal) decimal.Decimal {
	if !basePrice.IsPositive() {
		return decimal.Zero
	}
	return perUnit.Div(basePrice).Mul(hundred)
}
