package app

import (
	"github.com/shopspring/decimal"

	"order-desk/internal/core"
)

// CustomerListResult is returned by ListCustomers.
type CustomerListResult struct {
	Customers []core.Customer `json:"customers"`
}

// ProductListResult is returned by ListProducts.
type ProductListResult struct {
	Products []core.Product `json:"products"`
}

// CartResult is the standard response for cart reads and mutations: the
// cart plus the derived figures the frontend renders next to it. Totals and
// ceiling usage are recomputed on every call, never cached.
type CartResult struct {
	Cart   *core.Cart        `json:"cart"`
	Totals core.OrderTotals  `json:"totals"`
	Usage  core.CeilingUsage `json:"ceiling_usage"`
}

// AddLineRequest adds a product to a cart.
type AddLineRequest struct {
	CartID      string
	ProductCode string
	Quantity    int
}

// ApplyDiscountRequest applies a per-line discount.
type ApplyDiscountRequest struct {
	CartID string
	LineID string
	Mode   core.DiscountMode
	Value  decimal.Decimal
}

// ClampNotice is the transient user notice shown when a discount was
// reduced to the ceiling. AutoDismissMillis comes from configuration.
type ClampNotice struct {
	Message           string `json:"message"`
	AutoDismissMillis int    `json:"auto_dismiss_millis"`
}

// DiscountOutcome is returned by ApplyDiscount.
type DiscountOutcome struct {
	Result core.DiscountResult `json:"result"`
	Totals core.OrderTotals    `json:"totals"`
	Usage  core.CeilingUsage   `json:"ceiling_usage"`
	Notice *ClampNotice        `json:"notice,omitempty"`
}

// DeliveryDatesResult is returned by DeliveryDates.
type DeliveryDatesResult struct {
	Dates []core.CandidateDate `json:"dates"`
}

// OrderResult is returned by SubmitOrder and GetOrder.
type OrderResult struct {
	Order *core.SubmittedOrder `json:"order"`
}
