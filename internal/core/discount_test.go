package core_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"order-desk/internal/core"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testCart(ceilingPercent string) *core.Cart {
	return core.NewCart(
		core.Customer{ID: 1, Code: "C001", Name: "Acme Ltda"},
		core.DeliveryConstraint{},
		dec(ceilingPercent),
	)
}

func testProduct(id int, basePrice string) core.Product {
	return core.Product{
		ID:         id,
		Code:       "P00" + string(rune('0'+id)),
		Name:       "Product",
		BasePrice:  dec(basePrice),
		SurchargeA: dec("1.50"),
		SurchargeB: dec("0.75"),
		IsActive:   true,
	}
}

func TestApplyDiscount_ClampsToCeiling(t *testing.T) {
	// One line 100 × 10, ceiling 5% ⇒ ceiling amount 50. A 10% discount
	// proposes 100 and must clamp to 5.00 per unit.
	cart := testCart("5")
	line := cart.AddLine(testProduct(1, "100"), 10)

	result, err := cart.ApplyDiscount(line.ID, core.DiscountModePercent, dec("10"))
	if err != nil {
		t.Fatalf("ApplyDiscount failed: %v", err)
	}

	if !result.Clamped {
		t.Error("expected clamped = true")
	}
	if !result.ResolvedDiscountPerUnit.Equal(dec("5")) {
		t.Errorf("resolved per unit = %s, want 5", result.ResolvedDiscountPerUnit)
	}
	if !result.ResolvedDiscountPercent.Equal(dec("5")) {
		t.Errorf("resolved percent = %s, want 5", result.ResolvedDiscountPercent)
	}
	// The raw request survives for re-display: 10% of 100 = 10 per unit.
	if !line.RequestedDiscountPerUnit.Equal(dec("10")) {
		t.Errorf("requested per unit = %s, want 10", line.RequestedDiscountPerUnit)
	}
}

func TestApplyDiscount_WithinCeilingUnclamped(t *testing.T) {
	cart := testCart("5")
	line := cart.AddLine(testProduct(1, "100"), 10)

	result, err := cart.ApplyDiscount(line.ID, core.DiscountModePercent, dec("3"))
	if err != nil {
		t.Fatalf("ApplyDiscount failed: %v", err)
	}
	if result.Clamped {
		t.Error("expected clamped = false")
	}
	if !result.ResolvedDiscountPerUnit.Equal(dec("3")) {
		t.Errorf("resolved per unit = %s, want 3", result.ResolvedDiscountPerUnit)
	}
}

func TestApplyDiscount_Idempotent(t *testing.T) {
	cart := testCart("10")
	line := cart.AddLine(testProduct(1, "80"), 5)

	first, err := cart.ApplyDiscount(line.ID, core.DiscountModePercent, dec("4"))
	if err != nil {
		t.Fatalf("first ApplyDiscount failed: %v", err)
	}
	second, err := cart.ApplyDiscount(line.ID, core.DiscountModePercent, dec("4"))
	if err != nil {
		t.Fatalf("second ApplyDiscount failed: %v", err)
	}

	if !first.ResolvedDiscountPerUnit.Equal(second.ResolvedDiscountPerUnit) {
		t.Errorf("repeated apply diverged: %s vs %s", first.ResolvedDiscountPerUnit, second.ResolvedDiscountPerUnit)
	}
	if second.Clamped {
		t.Error("repeated in-range apply must not clamp")
	}
}

func TestApplyDiscount_AmountMode(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantPer  string
		wantClmp bool
	}{
		{"plain amount", "2", "2", false},
		{"negative clamps to zero", "-3", "0", false},
		// Base price 50, ceiling 100% leaves plenty of headroom, but the
		// per-unit discount can never exceed the base price itself.
		{"amount above base price caps at base", "75", "50", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart := testCart("100")
			line := cart.AddLine(testProduct(1, "50"), 2)

			result, err := cart.ApplyDiscount(line.ID, core.DiscountModeAmount, dec(tt.raw))
			if err != nil {
				t.Fatalf("ApplyDiscount failed: %v", err)
			}
			if !result.ResolvedDiscountPerUnit.Equal(dec(tt.wantPer)) {
				t.Errorf("resolved per unit = %s, want %s", result.ResolvedDiscountPerUnit, tt.wantPer)
			}
			if result.Clamped != tt.wantClmp {
				t.Errorf("clamped = %v, want %v", result.Clamped, tt.wantClmp)
			}
		})
	}
}

func TestApplyDiscount_PercentOverHundredClamps(t *testing.T) {
	cart := testCart("100")
	line := cart.AddLine(testProduct(1, "40"), 1)

	result, err := cart.ApplyDiscount(line.ID, core.DiscountModePercent, dec("250"))
	if err != nil {
		t.Fatalf("ApplyDiscount failed: %v", err)
	}
	if !result.ResolvedDiscountPerUnit.Equal(dec("40")) {
		t.Errorf("resolved per unit = %s, want 40 (100%% of base)", result.ResolvedDiscountPerUnit)
	}
}

func TestApplyDiscount_ZeroBasePrice(t *testing.T) {
	cart := testCart("5")
	line := cart.AddLine(testProduct(1, "0"), 3)

	result, err := cart.ApplyDiscount(line.ID, core.DiscountModePercent, dec("50"))
	if err != nil {
		t.Fatalf("ApplyDiscount failed: %v", err)
	}
	if !result.ResolvedDiscountPercent.IsZero() {
		t.Errorf("discount percent for zero base price = %s, want 0", result.ResolvedDiscountPercent)
	}
	if !result.ResolvedDiscountPerUnit.IsZero() {
		t.Errorf("discount per unit for zero base price = %s, want 0", result.ResolvedDiscountPerUnit)
	}
}

func TestApplyDiscount_SequentialEditsStayWithinCeiling(t *testing.T) {
	// Two large edits back to back: the second sees the first's resolved
	// value as its baseline, so the total never exceeds the ceiling.
	cart := testCart("5")
	l1 := cart.AddLine(testProduct(1, "100"), 5)
	l2 := cart.AddLine(testProduct(2, "200"), 5)

	if _, err := cart.ApplyDiscount(l1.ID, core.DiscountModePercent, dec("20")); err != nil {
		t.Fatalf("first ApplyDiscount failed: %v", err)
	}
	if _, err := cart.ApplyDiscount(l2.ID, core.DiscountModePercent, dec("20")); err != nil {
		t.Fatalf("second ApplyDiscount failed: %v", err)
	}

	usage := core.ComputeCeilingUsage(cart)
	if usage.UsedAmount.GreaterThan(usage.CeilingAmount) {
		t.Errorf("used %s exceeds ceiling %s", usage.UsedAmount, usage.CeilingAmount)
	}
}

func TestComputeCeilingUsage(t *testing.T) {
	cart := testCart("10")
	l1 := cart.AddLine(testProduct(1, "100"), 2) // tax-free 200
	cart.AddLine(testProduct(2, "50"), 4)        // tax-free 200

	if _, err := cart.ApplyDiscount(l1.ID, core.DiscountModeAmount, dec("10")); err != nil {
		t.Fatalf("ApplyDiscount failed: %v", err)
	}

	usage := core.ComputeCeilingUsage(cart)
	if !usage.TaxFreeSubtotal.Equal(dec("400")) {
		t.Errorf("tax-free subtotal = %s, want 400", usage.TaxFreeSubtotal)
	}
	if !usage.CeilingAmount.Equal(dec("40")) {
		t.Errorf("ceiling amount = %s, want 40", usage.CeilingAmount)
	}
	if !usage.UsedAmount.Equal(dec("20")) {
		t.Errorf("used amount = %s, want 20", usage.UsedAmount)
	}
	if !usage.AvailableAmount.Equal(dec("20")) {
		t.Errorf("available amount = %s, want 20", usage.AvailableAmount)
	}
	if !usage.UsedPercentOfCeiling.Equal(dec("50")) {
		t.Errorf("used percent of ceiling = %s, want 50", usage.UsedPercentOfCeiling)
	}
}

func TestComputeCeilingUsage_EmptyCart(t *testing.T) {
	usage := core.ComputeCeilingUsage(testCart("5"))
	if !usage.CeilingAmount.IsZero() || !usage.UsedPercentOfCeiling.IsZero() {
		t.Errorf("empty cart usage should be all zero, got %+v", usage)
	}
}
