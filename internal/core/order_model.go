package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is a sales customer master record. AllowedWeekdays holds raw
// weekday names as maintained upstream; invalid names are dropped when the
// delivery constraint is built.
type Customer struct {
	ID              int       `json:"id"`
	Code            string    `json:"code"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Address         string    `json:"address"`
	AllowedWeekdays []string  `json:"allowed_weekdays"`
	CreatedAt       time.Time `json:"created_at"`
}

// Product is a sellable item in the catalog. BasePrice and the surcharge
// components are per-unit values; the surcharges are the two additive
// tax-like components carried separately from the base price.
type Product struct {
	ID         int             `json:"id"`
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	Unit       string          `json:"unit"`
	BasePrice  decimal.Decimal `json:"base_price"`
	SurchargeA decimal.Decimal `json:"surcharge_a"`
	SurchargeB decimal.Decimal `json:"surcharge_b"`
	IsActive   bool            `json:"is_active"`
	CreatedAt  time.Time       `json:"created_at"`
}

// SubmittedOrder is a persisted order as accepted by SubmitOrder.
type SubmittedOrder struct {
	ID              int             `json:"id"`
	OrderNumber     string          `json:"order_number"`
	CustomerID      int             `json:"customer_id"`
	CustomerCode    string          `json:"customer_code"`
	CustomerName    string          `json:"customer_name"`
	Status          string          `json:"status"`
	DeliveryDate    string          `json:"delivery_date"` // YYYY-MM-DD
	DeliveryWeekday string          `json:"delivery_weekday"`
	Totals          OrderTotals     `json:"totals"`
	CeilingPercent  decimal.Decimal `json:"discount_ceiling_percent"`
	CeilingUsedPct  decimal.Decimal `json:"ceiling_used_percent"`
	Lines           []LineSummary   `json:"lines"`
	CreatedAt       time.Time       `json:"created_at"`
}
