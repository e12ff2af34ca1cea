package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"order-desk/internal/config"
	"order-desk/internal/core"
)

// ApplicationService is the single interface the web adapter calls. It
// decouples presentation from the engines and owns the orchestration
// between cart state, the pure engines, and the external collaborators.
type ApplicationService interface {
	ListCustomers(ctx context.Context) (*CustomerListResult, error)
	ListProducts(ctx context.Context) (*ProductListResult, error)

	// CreateCart opens an order-taking session for a customer, loading the
	// customer's delivery constraint.
	CreateCart(ctx context.Context, customerCode string) (*CartResult, error)
	GetCart(ctx context.Context, cartID string) (*CartResult, error)
	AddLine(ctx context.Context, req AddLineRequest) (*CartResult, error)
	UpdateQuantity(ctx context.Context, cartID, lineID string, quantity int) (*CartResult, error)
	RemoveLine(ctx context.Context, cartID, lineID string) (*CartResult, error)

	// ApplyDiscount resolves a discount edit against the ceiling and, when
	// the discount state changed, triggers the external tax recalculation.
	ApplyDiscount(ctx context.Context, req ApplyDiscountRequest) (*DiscountOutcome, error)

	// DeliveryDates computes the current candidate delivery dates for the
	// cart's customer.
	DeliveryDates(ctx context.Context, cartID string) (*DeliveryDatesResult, error)
	SelectDeliveryDate(ctx context.Context, cartID, date string) (*CartResult, error)

	// SubmitOrder persists the resolved order and closes the session.
	SubmitOrder(ctx context.Context, cartID string) (*OrderResult, error)
	GetOrder(ctx context.Context, orderNumber string) (*OrderResult, error)
}

type appService struct {
	orders core.OrderService
	store  *core.CartStore
	tax    core.TaxRecalculator // nil when no recalculation endpoint is configured
	cfg    config.Config
	now    func() time.Time
}

// NewAppService wires the application service. tax may be nil.
func NewAppService(orders core.OrderService, store *core.CartStore, tax core.TaxRecalculator, cfg config.Config) ApplicationService {
	return &appService{
		orders: orders,
		store:  store,
		tax:    tax,
		cfg:    cfg,
		now:    time.Now,
	}
}

func (s *appService) ListCustomers(ctx context.Context) (*CustomerListResult, error) {
	customers, err := s.orders.GetCustomers(ctx)
	if err != nil {
		return nil, err
	}
	return &CustomerListResult{Customers: customers}, nil
}

func (s *appService) ListProducts(ctx context.Context) (*ProductListResult, error) {
	products, err := s.orders.GetProducts(ctx)
	if err != nil {
		return nil, err
	}
	return &ProductListResult{Products: products}, nil
}

func (s *appService) CreateCart(ctx context.Context, customerCode string) (*CartResult, error) {
	customer, err := s.orders.GetCustomer(ctx, customerCode)
	if err != nil {
		return nil, err
	}
	constraint, err := s.orders.GetDeliveryConstraint(ctx, customer.ID)
	if err != nil {
		return nil, err
	}

	cart := core.NewCart(*customer, constraint, s.cfg.DiscountCeilingPercent)
	s.store.Put(cart)
	return s.cartResult(cart), nil
}

func (s *appService) GetCart(_ context.Context, cartID string) (*CartResult, error) {
	cart, err := s.store.Get(cartID)
	if err != nil {
		return nil, err
	}
	return s.cartResult(cart), nil
}

func (s *appService) AddLine(ctx context.Context, req AddLineRequest) (*CartResult, error) {
	product, err := s.orders.GetProduct(ctx, req.ProductCode)
	if err != nil {
		return nil, err
	}

	var result *CartResult
	err = s.store.WithCart(req.CartID, func(cart *core.Cart) error {
		cart.AddLine(*product, req.Quantity)
		result = s.cartResult(cart)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *appService) UpdateQuantity(_ context.Context, cartID, lineID string, quantity int) (*CartResult, error) {
	var result *CartResult
	err := s.store.WithCart(cartID, func(cart *core.Cart) error {
		if _, err := cart.UpdateQuantity(lineID, quantity); err != nil {
			return err
		}
		result = s.cartResult(cart)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *appService) RemoveLine(_ context.Context, cartID, lineID string) (*CartResult, error) {
	var result *CartResult
	err := s.store.WithCart(cartID, func(cart *core.Cart) error {
		if err := cart.RemoveLine(lineID); err != nil {
			return err
		}
		result = s.cartResult(cart)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *appService) ApplyDiscount(ctx context.Context, req ApplyDiscountRequest) (*DiscountOutcome, error) {
	var outcome *DiscountOutcome
	err := s.store.WithCart(req.CartID, func(cart *core.Cart) error {
		result, err := cart.ApplyDiscount(req.LineID, req.Mode, req.Value)
		if err != nil {
			return err
		}
		outcome = &DiscountOutcome{
			Result: result,
			Totals: core.ComputeTotals(cart),
			Usage:  core.ComputeCeilingUsage(cart),
		}
		if result.Clamped {
			outcome.Notice = &ClampNotice{
				Message:           "requested discount exceeds the organization ceiling and was reduced",
				AutoDismissMillis: s.cfg.ClampNoticeMillis,
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Discount state changed; refresh surcharges. A failure here is not
	// fatal: the cart stays consistent and the recalculation retries on the
	// next edit or at submission.
	if err := s.recalculateTaxes(ctx, req.CartID); err != nil {
		log.Printf("tax recalculation for cart %s failed: %v", req.CartID, err)
	}
	return outcome, nil
}

// recalculateTaxes snapshots the cart under the store lock, calls the
// collaborator outside it, and applies the results only if no edit landed in
// between, so the last applied discount edit always wins.
func (s *appService) recalculateTaxes(ctx context.Context, cartID string) error {
	if s.tax == nil {
		return nil
	}

	var lines []core.TaxRecalcLine
	var revision uint64
	err := s.store.WithCart(cartID, func(cart *core.Cart) error {
		if !cart.NeedsTaxRecalc() {
			return nil
		}
		lines = core.BuildTaxRecalcLines(cart)
		revision = cart.Revision
		return nil
	})
	if err != nil || lines == nil {
		return err
	}

	results, err := s.tax.Recalculate(ctx, lines)
	if err != nil {
		return err
	}

	return s.store.WithCart(cartID, func(cart *core.Cart) error {
		if cart.Revision != revision {
			// Superseded by a newer edit; that edit retriggers recalculation.
			return nil
		}
		return cart.ApplyTaxRecalcResults(results)
	})
}

func (s *appService) DeliveryDates(_ context.Context, cartID string) (*DeliveryDatesResult, error) {
	cart, err := s.store.Get(cartID)
	if err != nil {
		return nil, err
	}
	dates := core.ComputeCandidateDates(cart.Constraint, s.now(), s.cfg.HorizonDays, s.cfg.LeadTime)
	return &DeliveryDatesResult{Dates: dates}, nil
}

func (s *appService) SelectDeliveryDate(_ context.Context, cartID, date string) (*CartResult, error) {
	var result *CartResult
	err := s.store.WithCart(cartID, func(cart *core.Cart) error {
		if err := cart.SelectDeliveryDate(date, s.now(), s.cfg.HorizonDays, s.cfg.LeadTime); err != nil {
			return err
		}
		result = s.cartResult(cart)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *appService) SubmitOrder(ctx context.Context, cartID string) (*OrderResult, error) {
	// The payload must carry up-to-date surcharges; unlike during edits, a
	// recalculation failure here blocks submission (retryable, cart intact).
	if err := s.recalculateTaxes(ctx, cartID); err != nil {
		return nil, fmt.Errorf("tax recalculation before submission failed: %w", err)
	}

	// Submit from a snapshot so a slow write never races a cart edit.
	var snapshot core.Cart
	err := s.store.WithCart(cartID, func(cart *core.Cart) error {
		snapshot = *cart
		snapshot.Lines = append([]core.CartLine(nil), cart.Lines...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.orders.SubmitOrder(ctx, &snapshot)
	if err != nil {
		return nil, err
	}

	s.store.Delete(cartID)
	return &OrderResult{Order: order}, nil
}

func (s *appService) GetOrder(ctx context.Context, orderNumber string) (*OrderResult, error) {
	order, err := s.orders.GetOrder(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order}, nil
}

func (s *appService) cartResult(cart *core.Cart) *CartResult {
	return &CartResult{
		Cart:   cart,
		Totals: core.ComputeTotals(cart),
		Usage:  core.ComputeCeilingUsage(cart),
	}
}
