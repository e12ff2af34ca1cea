package core_test

import (
	"testing"

	"order-desk/internal/core"
)

func TestComputeTotals_HalfUpRoundingAtBoundary(t *testing.T) {
	// 10.005 × 3 = 30.015 exactly; half-up rounding of the accumulated sum
	// gives 30.02, not 3 × round(10.005).
	cart := testCart("5")
	cart.AddLine(core.Product{ID: 1, Code: "P001", BasePrice: dec("10.005")}, 3)

	totals := core.ComputeTotals(cart)
	if !totals.GrossSubtotal.Equal(dec("30.02")) {
		t.Errorf("gross subtotal = %s, want 30.02", totals.GrossSubtotal)
	}
	if !totals.NetTotal.Equal(dec("30.02")) {
		t.Errorf("net total = %s, want 30.02", totals.NetTotal)
	}
}

func TestComputeTotals_Aggregation(t *testing.T) {
	cart := testCart("10")
	l1 := cart.AddLine(core.Product{
		ID: 1, Code: "P001", BasePrice: dec("100"),
		SurchargeA: dec("2.50"), SurchargeB: dec("1.25"),
	}, 2)
	cart.AddLine(core.Product{
		ID: 2, Code: "P002", BasePrice: dec("40"),
		SurchargeA: dec("1.00"), SurchargeB: dec("0.50"),
	}, 5)

	if _, err := cart.ApplyDiscount(l1.ID, core.DiscountModeAmount, dec("5")); err != nil {
		t.Fatalf("ApplyDiscount failed: %v", err)
	}

	totals := core.ComputeTotals(cart)

	// gross = 100×2 + 40×5 = 400
	if !totals.GrossSubtotal.Equal(dec("400")) {
		t.Errorf("gross subtotal = %s, want 400", totals.GrossSubtotal)
	}
	if !totals.TaxFreeSubtotal.Equal(dec("400")) {
		t.Errorf("tax-free subtotal = %s, want 400", totals.TaxFreeSubtotal)
	}
	// tax = (2.50+1.25)×2 + (1.00+0.50)×5 = 7.50 + 7.50 = 15
	if !totals.TotalTax.Equal(dec("15")) {
		t.Errorf("total tax = %s, want 15", totals.TotalTax)
	}
	// discount = 5×2 = 10
	if !totals.TotalDiscount.Equal(dec("10")) {
		t.Errorf("total discount = %s, want 10", totals.TotalDiscount)
	}
	if !totals.NetTotal.Equal(dec("390")) {
		t.Errorf("net total = %s, want 390", totals.NetTotal)
	}
	// 10 / 400 = 2.5%
	if !totals.DiscountPercentOfOrder.Equal(dec("2.5")) {
		t.Errorf("discount percent of order = %s, want 2.5", totals.DiscountPercentOfOrder)
	}
}

func TestComputeTotals_EmptyCart(t *testing.T) {
	totals := core.ComputeTotals(testCart("5"))
	if !totals.GrossSubtotal.IsZero() || !totals.NetTotal.IsZero() {
		t.Errorf("empty cart totals should be zero, got %+v", totals)
	}
	if !totals.DiscountPercentOfOrder.IsZero() {
		t.Errorf("discount percent for zero gross = %s, want 0", totals.DiscountPercentOfOrder)
	}
}

func TestResolveLine(t *testing.T) {
	cart := testCart("100")
	line := cart.AddLine(core.Product{
		ID: 1, Code: "P001", Name: "Widget", BasePrice: dec("12.34"),
		SurchargeA: dec("0.80"), SurchargeB: dec("0.20"),
	}, 4)
	if _, err := cart.ApplyDiscount(line.ID, core.DiscountModeAmount, dec("1.34")); err != nil {
		t.Fatalf("ApplyDiscount failed: %v", err)
	}
	// Simulate a recalculated surcharge; the table value must stay intact.
	line.SurchargeA = dec("0.75")

	s := core.ResolveLine(*line)

	if s.LineID != line.ID || s.ProductCode != "P001" || s.Quantity != 4 {
		t.Fatalf("identity fields wrong: %+v", s)
	}
	if !s.GrossLine.Equal(dec("49.36")) {
		t.Errorf("gross line = %s, want 49.36", s.GrossLine)
	}
	if !s.DiscountLine.Equal(dec("5.36")) {
		t.Errorf("discount line = %s, want 5.36", s.DiscountLine)
	}
	if !s.NetLine.Equal(dec("44.00")) {
		t.Errorf("net line = %s, want 44.00", s.NetLine)
	}
	if !s.SurchargeAPerUnit.Equal(dec("0.75")) {
		t.Errorf("surcharge A = %s, want recalculated 0.75", s.SurchargeAPerUnit)
	}
	if !s.TableSurchargeAPerUnit.Equal(dec("0.80")) {
		t.Errorf("table surcharge A = %s, want original 0.80", s.TableSurchargeAPerUnit)
	}
	// tax = (0.75 + 0.20) × 4 = 3.80
	if !s.LineTax.Equal(dec("3.80")) {
		t.Errorf("line tax = %s, want 3.80", s.LineTax)
	}
	// 1.34 / 12.34 ≈ 10.8589% → 10.86 after rounding.
	if !s.DiscountPercent.Equal(dec("10.86")) {
		t.Errorf("discount percent = %s, want 10.86", s.DiscountPercent)
	}
}
