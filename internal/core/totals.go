package core

import "github.com/shopspring/decimal"

// LineSummary is the resolved, display/submission-ready view of one cart
// line. All monetary fields are rounded to 2 places half-up; the unrounded
// values never leave the aggregator.
type LineSummary struct {
	LineID      string `json:"line_id"`
	ProductID   int    `json:"product_id"`
	ProductCode string `json:"product_code"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`

	UnitPrice              decimal.Decimal `json:"unit_price"`
	DiscountPerUnit        decimal.Decimal `json:"discount_per_unit"`
	DiscountPercent        decimal.Decimal `json:"discount_percent"`
	GrossLine              decimal.Decimal `json:"gross_line"`
	DiscountLine           decimal.Decimal `json:"discount_line"`
	NetLine                decimal.Decimal `json:"net_line"`
	SurchargeAPerUnit      decimal.Decimal `json:"surcharge_a_per_unit"`
	SurchargeBPerUnit      decimal.Decimal `json:"surcharge_b_per_unit"`
	TableSurchargeAPerUnit decimal.Decimal `json:"table_surcharge_a_per_unit"`
	TableSurchargeBPerUnit decimal.Decimal `json:"table_surcharge_b_per_unit"`
	LineTax                decimal.Decimal `json:"line_tax"`
}

// OrderTotals are the aggregate figures for submission and the summary
// panel. Derived on demand from the cart; never persisted independently of
// the order they were computed for.
type OrderTotals struct {
	GrossSubtotal          decimal.Decimal `json:"gross_subtotal"`
	TaxFreeSubtotal        decimal.Decimal `json:"tax_free_subtotal"`
	TotalTax               decimal.Decimal `json:"total_tax"`
	TotalDiscount          decimal.Decimal `json:"total_discount"`
	NetTotal               decimal.Decimal `json:"net_total"`
	DiscountPercentOfOrder decimal.Decimal `json:"discount_percent_of_order"`
}

// round2 applies the service-wide half-up rounding at the output boundary.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ResolveLine computes the per-line summary. Surcharges are carried at
// their currently stored per-unit values, which may differ from the catalog
// ("table") values after an external tax recalculation; both are reported.
func ResolveLine(line CartLine) LineSummary {
	qty := decimal.NewFromInt(int64(line.Quantity))
	gross := line.BasePrice.Mul(qty)
	discount := line.ResolvedDiscountPerUnit.Mul(qty)
	net := gross.Sub(discount)
	tax := line.SurchargeA.Add(line.SurchargeB).Mul(qty)

	return LineSummary{
		LineID:      line.ID,
		ProductID:   line.ProductID,
		ProductCode: line.ProductCode,
		ProductName: line.ProductName,
		Quantity:    line.Quantity,

		UnitPrice:              round2(line.BasePrice),
		DiscountPerUnit:        round2(line.ResolvedDiscountPerUnit),
		DiscountPercent:        round2(discountPercent(line.ResolvedDiscountPerUnit, line.BasePrice)),
		GrossLine:              round2(gross),
		DiscountLine:           round2(discount),
		NetLine:                round2(net),
		SurchargeAPerUnit:      round2(line.SurchargeA),
		SurchargeBPerUnit:      round2(line.SurchargeB),
		TableSurchargeAPerUnit: round2(line.TableSurchargeA),
		TableSurchargeBPerUnit: round2(line.TableSurchargeB),
		LineTax:                round2(tax),
	}
}

// ComputeTotals folds all lines into the order totals. Accumulation runs on
// unrounded decimals so rounding error cannot compound across many lines;
// rounding happens once per output field.
func ComputeTotals(c *Cart) OrderTotals {
	gross := decimal.Zero
	discount := decimal.Zero
	tax := decimal.Zero

	for i := range c.Lines {
		line := &c.Lines[i]
		qty := decimal.NewFromInt(int64(line.Quantity))
		gross = gross.Add(line.BasePrice.Mul(qty))
		discount = discount.Add(line.ResolvedDiscountPerUnit.Mul(qty))
		tax = tax.Add(line.SurchargeA.Add(line.SurchargeB).Mul(qty))
	}

	net := gross.Sub(discount)

	discountPct := decimal.Zero
	if gross.IsPositive() {
		discountPct = discount.Div(gross).Mul(hundred)
	}

	return OrderTotals{
		GrossSubtotal:          round2(gross),
		TaxFreeSubtotal:        round2(gross),
		TotalTax:               round2(tax),
		TotalDiscount:          round2(discount),
		NetTotal:               round2(net),
		DiscountPercentOfOrder: round2(discountPct),
	}
}
