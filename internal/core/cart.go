package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is one priced product position in a cart. BasePrice and the two
// surcharge components are per-unit values. SurchargeA/SurchargeB hold the
// values currently in effect (an external tax recalculation may replace
// them); TableSurchargeA/TableSurchargeB keep the original catalog values
// for audit and summary display.
type CartLine struct {
	ID          string `json:"id"`
	ProductID   int    `json:"product_id"`
	ProductCode string `json:"product_code"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`

	BasePrice       decimal.Decimal `json:"base_price"`
	SurchargeA      decimal.Decimal `json:"surcharge_a"`
	SurchargeB      decimal.Decimal `json:"surcharge_b"`
	TableSurchargeA decimal.Decimal `json:"table_surcharge_a"`
	TableSurchargeB decimal.Decimal `json:"table_surcharge_b"`

	// RequestedDiscountPerUnit preserves the user's raw (normalized) input
	// for re-display even when the ceiling clamped it.
	RequestedDiscountPerUnit decimal.Decimal `json:"requested_discount_per_unit"`
	// ResolvedDiscountPerUnit is the value actually applied; always
	// <= BasePrice and within the organization discount ceiling.
	ResolvedDiscountPerUnit decimal.Decimal `json:"resolved_discount_per_unit"`
}

// Cart is the single mutable aggregate of an order-taking session. It owns
// the ordered line list (insertion order matters for display only), the
// delivery constraint of the selected customer, and the session's discount
// ceiling configuration. The pure engines read it on demand; derived figures
// are never cached across mutations.
type Cart struct {
	ID           string `json:"id"`
	CustomerID   int    `json:"customer_id"`
	CustomerCode string `json:"customer_code"`
	CustomerName string `json:"customer_name"`

	Lines      []CartLine         `json:"lines"`
	Constraint DeliveryConstraint `json:"constraint"`

	// DeliveryDate is empty until the user picks one of the candidate dates.
	DeliveryDate string `json:"delivery_date,omitempty"`

	DiscountCeilingPercent decimal.Decimal `json:"discount_ceiling_percent"`

	// Revision increments on every line mutation. The tax-recalculation
	// trigger compares it against RecalcRevision instead of diffing
	// serialized snapshots.
	Revision       uint64 `json:"revision"`
	RecalcRevision uint64 `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCart creates an empty cart for one customer session.
func NewCart(customer Customer, constraint DeliveryConstraint, ceilingPercent decimal.Decimal) *Cart {
	now := time.Now()
	return &Cart{
		ID:                     uuid.NewString(),
		CustomerID:             customer.ID,
		CustomerCode:           customer.Code,
		CustomerName:           customer.Name,
		Constraint:             constraint,
		DiscountCeilingPercent: ceilingPercent,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
}

func (c *Cart) bump() {
	c.Revision++
	c.UpdatedAt = time.Now()
}

// Line returns the line with the given ID.
func (c *Cart) Line(lineID string) (*CartLine, error) {
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			return &c.Lines[i], nil
		}
	}
	return nil, fmt.Errorf("line %s not found in cart %s", lineID, c.ID)
}

// AddLine adds quantity units of a product. Adding a product already in the
// cart merges into the existing line instead of creating a duplicate.
// Quantities below 1 clamp to 1; removal is always an explicit RemoveLine.
func (c *Cart) AddLine(p Product, quantity int) *CartLine {
	if quantity < 1 {
		quantity = 1
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == p.ID {
			c.Lines[i].Quantity += quantity
			c.bump()
			return &c.Lines[i]
		}
	}
	c.Lines = append(c.Lines, CartLine{
		ID:              uuid.NewString(),
		ProductID:       p.ID,
		ProductCode:     p.Code,
		ProductName:     p.Name,
		Quantity:        quantity,
		BasePrice:       p.BasePrice,
		SurchargeA:      p.SurchargeA,
		SurchargeB:      p.SurchargeB,
		TableSurchargeA: p.SurchargeA,
		TableSurchargeB: p.SurchargeB,
	})
	c.bump()
	return &c.Lines[len(c.Lines)-1]
}

// UpdateQuantity sets a line's quantity, clamping to a minimum of 1.
func (c *Cart) UpdateQuantity(lineID string, quantity int) (*CartLine, error) {
	line, err := c.Line(lineID)
	if err != nil {
		return nil, err
	}
	if quantity < 1 {
		quantity = 1
	}
	line.Quantity = quantity
	c.bump()
	return line, nil
}

// RemoveLine deletes a line from the cart.
func (c *Cart) RemoveLine(lineID string) error {
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			c.bump()
			return nil
		}
	}
	return fmt.Errorf("line %s not found in cart %s", lineID, c.ID)
}

// SetDeliveryConstraint replaces the delivery configuration and clears any
// previously selected date, which may no longer be legal under it.
func (c *Cart) SetDeliveryConstraint(constraint DeliveryConstraint) {
	c.Constraint = constraint
	c.DeliveryDate = ""
	c.UpdatedAt = time.Now()
}

// SelectDeliveryDate validates the date against the freshly computed
// candidate list and records it. Blocked dates and dates outside the
// horizon are rejected.
func (c *Cart) SelectDeliveryDate(date string, now time.Time, horizonDays int, policy LeadTimePolicy) error {
	for _, cd := range ComputeCandidateDates(c.Constraint, now, horizonDays, policy) {
		if cd.Date != date {
			continue
		}
		if cd.Blocked {
			return fmt.Errorf("delivery date %s is blocked", date)
		}
		c.DeliveryDate = date
		c.UpdatedAt = time.Now()
		return nil
	}
	return fmt.Errorf("delivery date %s is not available", date)
}

// DeliveryWeekday returns the weekday name of the selected delivery date,
// or empty when no date is selected.
func (c *Cart) DeliveryWeekday() string {
	if c.DeliveryDate == "" {
		return ""
	}
	d, err := time.Parse(dateLayout, c.DeliveryDate)
	if err != nil {
		return ""
	}
	return WeekdayName(d.Weekday())
}

// NeedsTaxRecalc reports whether the external tax recalculation should run:
// at least one line carries a non-zero resolved discount and the cart
// changed since the last recalculation.
func (c *Cart) NeedsTaxRecalc() bool {
	if c.Revision == c.RecalcRevision {
		return false
	}
	for i := range c.Lines {
		if c.Lines[i].ResolvedDiscountPerUnit.IsPositive() {
			return true
		}
	}
	return false
}

// MarkRecalculated records that surcharges reflect the current revision.
func (c *Cart) MarkRecalculated() {
	c.RecalcRevision = c.Revision
}
