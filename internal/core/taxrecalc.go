package core

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// TaxRecalcLine carries one cart line's discount ratios to the external tax
// recalculation service. Ratios are expressed on both the tax-free basis
// (base price only) and the gross basis (base price plus both surcharges).
type TaxRecalcLine struct {
	LineID               string          `json:"line_id"`
	ProductCode          string          `json:"product_code"`
	Quantity             int             `json:"quantity"`
	DiscountRatioTaxFree decimal.Decimal `json:"discount_ratio_tax_free"`
	DiscountRatioGross   decimal.Decimal `json:"discount_ratio_gross"`
}

// TaxRecalcResult is one line's updated surcharge values.
type TaxRecalcResult struct {
	LineID     string          `json:"line_id"`
	SurchargeA decimal.Decimal `json:"surcharge_a"`
	SurchargeB decimal.Decimal `json:"surcharge_b"`
}

// TaxRecalculator is the external tax-recalculation collaborator. Calls are
// never issued concurrently for the same cart; the app layer snapshots the
// cart under the store lock before calling and applies results afterwards.
type TaxRecalculator interface {
	Recalculate(ctx context.Context, lines []TaxRecalcLine) ([]TaxRecalcResult, error)
}

// BuildTaxRecalcLines snapshots the cart into the recalculation request.
// Zero denominators yield a ratio of 0.
func BuildTaxRecalcLines(c *Cart) []TaxRecalcLine {
	out := make([]TaxRecalcLine, 0, len(c.Lines))
	for i := range c.Lines {
		line := &c.Lines[i]
		grossBase := line.BasePrice.Add(line.TableSurchargeA).Add(line.TableSurchargeB)
		out = append(out, TaxRecalcLine{
			LineID:               line.ID,
			ProductCode:          line.ProductCode,
			Quantity:             line.Quantity,
			DiscountRatioTaxFree: safeRatio(line.ResolvedDiscountPerUnit, line.BasePrice),
			DiscountRatioGross:   safeRatio(line.ResolvedDiscountPerUnit, grossBase),
		})
	}
	return out
}

// ApplyTaxRecalcResults replaces per-line surcharge values with the
// collaborator's output. Unknown line IDs are an error; a partial response
// leaves the cart untouched.
func (c *Cart) ApplyTaxRecalcResults(results []TaxRecalcResult) error {
	type update struct {
		line *CartLine
		res  TaxRecalcResult
	}
	updates := make([]update, 0, len(results))
	for _, res := range results {
		line, err := c.Line(res.LineID)
		if err != nil {
			return fmt.Errorf("tax recalculation returned unknown line: %w", err)
		}
		updates = append(updates, update{line: line, res: res})
	}
	for _, u := range updates {
		u.line.SurchargeA = u.res.SurchargeA
		u.line.SurchargeB = u.res.SurchargeB
	}
	c.MarkRecalculated()
	return nil
}

func safeRatio(num, den decimal.Decimal) decimal.Decimal {
	if !den.IsPositive() {
		return decimal.Zero
	}
	return num.Div(den)
}
