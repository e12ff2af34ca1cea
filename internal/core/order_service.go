package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
)

// OrderService owns the catalog reads and the order-submission persistence.
// It is the "order submission collaborator" of the engines: a cart is
// resolved through the aggregator and written atomically; on any failure
// the cart is left untouched so submission can be retried without data loss.
type OrderService interface {
	GetCustomers(ctx context.Context) ([]Customer, error)
	GetCustomer(ctx context.Context, code string) (*Customer, error)
	// GetDeliveryConstraint loads the customer's allowed weekdays and
	// date-blocking rules.
	GetDeliveryConstraint(ctx context.Context, customerID int) (DeliveryConstraint, error)
	GetProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, code string) (*Product, error)

	// SubmitOrder persists the fully resolved cart and returns the stored
	// order with its generated order number.
	SubmitOrder(ctx context.Context, cart *Cart) (*SubmittedOrder, error)
	GetOrder(ctx context.Context, orderNumber string) (*SubmittedOrder, error)
}

type orderService struct {
	pool *pgxpool.Pool
}

func NewOrderService(pool *pgxpool.Pool) OrderService {
	return &orderService{pool: pool}
}

// ── Catalog ──────────────────────────────────────────────────────────────────

func (s *orderService) GetCustomers(ctx context.Context) ([]Customer, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, code, name, email, phone, address, allowed_weekdays, created_at
		FROM customers
		ORDER BY code
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *c)
	}
	return customers, nil
}

func (s *orderService) GetCustomer(ctx context.Context, code string) (*Customer, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, code, name, email, phone, address, allowed_weekdays, created_at
		FROM customers
		WHERE code = $1
	`, code)
	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("customer code %s not found", code)
		}
		return nil, err
	}
	return c, nil
}

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	var weekdays string
	if err := row.Scan(&c.ID, &c.Code, &c.Name, &c.Email, &c.Phone, &c.Address, &weekdays, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan customer: %w", err)
	}
	for _, w := range strings.Split(weekdays, ",") {
		if w = strings.TrimSpace(w); w != "" {
			c.AllowedWeekdays = append(c.AllowedWeekdays, w)
		}
	}
	return &c, nil
}

func (s *orderService) GetDeliveryConstraint(ctx context.Context, customerID int) (DeliveryConstraint, error) {
	var weekdays string
	err := s.pool.QueryRow(ctx,
		"SELECT allowed_weekdays FROM customers WHERE id = $1", customerID,
	).Scan(&weekdays)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return DeliveryConstraint{}, fmt.Errorf("customer %d not found", customerID)
		}
		return DeliveryConstraint{}, fmt.Errorf("failed to load delivery weekdays: %w", err)
	}

	var names []string
	for _, w := range strings.Split(weekdays, ",") {
		if w = strings.TrimSpace(w); w != "" {
			names = append(names, w)
		}
	}

	constraint := DeliveryConstraint{AllowedWeekdays: WeekdaysFromNames(names)}

	// Expiry stays raw text end to end: upstream feeds occasionally ship
	// malformed values, and the engine decides how to treat those.
	rows, err := s.pool.Query(ctx, `
		SELECT blocked_date::text, COALESCE(expiry, '')
		FROM delivery_blocks
		WHERE customer_id = $1
		ORDER BY blocked_date
	`, customerID)
	if err != nil {
		return DeliveryConstraint{}, fmt.Errorf("failed to query delivery blocks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rule BlockingRule
		if err := rows.Scan(&rule.BlockedDate, &rule.Expiry); err != nil {
			return DeliveryConstraint{}, fmt.Errorf("failed to scan delivery block: %w", err)
		}
		constraint.BlockingRules = append(constraint.BlockingRules, rule)
	}
	return constraint, nil
}

func (s *orderService) GetProducts(ctx context.Context) ([]Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, code, name, unit, base_price, surcharge_a, surcharge_b, is_active, created_at
		FROM products
		WHERE is_active = true
		ORDER BY code
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Unit,
			&p.BasePrice, &p.SurchargeA, &p.SurchargeB, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, nil
}

func (s *orderService) GetProduct(ctx context.Context, code string) (*Product, error) {
	var p Product
	err := s.pool.QueryRow(ctx, `
		SELECT id, code, name, unit, base_price, surcharge_a, surcharge_b, is_active, created_at
		FROM products
		WHERE code = $1 AND is_active = true
	`, code).Scan(&p.ID, &p.Code, &p.Name, &p.Unit,
		&p.BasePrice, &p.SurchargeA, &p.SurchargeB, &p.IsActive, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product code %s not found", code)
		}
		return nil, fmt.Errorf("failed to fetch product %s: %w", code, err)
	}
	return &p, nil
}

// ── Submission ───────────────────────────────────────────────────────────────

func (s *orderService) SubmitOrder(ctx context.Context, cart *Cart) (*SubmittedOrder, error) {
	if len(cart.Lines) == 0 {
		return nil, fmt.Errorf("cart %s has no lines", cart.ID)
	}
	if cart.DeliveryDate == "" {
		return nil, fmt.Errorf("cart %s has no delivery date selected", cart.ID)
	}

	totals := ComputeTotals(cart)
	usage := ComputeCeilingUsage(cart)
	orderNumber := ulid.Make().String()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var orderID int
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (order_number, customer_id, status, delivery_date, delivery_weekday,
		                    gross_subtotal, tax_free_subtotal, total_tax, total_discount, net_total,
		                    discount_percent, ceiling_percent, ceiling_used_percent)
		VALUES ($1, $2, 'SUBMITTED', $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`, orderNumber, cart.CustomerID, cart.DeliveryDate, cart.DeliveryWeekday(),
		totals.GrossSubtotal, totals.TaxFreeSubtotal, totals.TotalTax, totals.TotalDiscount,
		totals.NetTotal, totals.DiscountPercentOfOrder, cart.DiscountCeilingPercent,
		usage.UsedPercentOfCeiling.Round(2)).Scan(&orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range cart.Lines {
		l := ResolveLine(cart.Lines[i])
		_, err = tx.Exec(ctx, `
			INSERT INTO order_lines (order_id, line_number, product_id, quantity,
			                         unit_price, discount_per_unit, discount_percent,
			                         gross_line, discount_line, net_line,
			                         surcharge_a, surcharge_b, table_surcharge_a, table_surcharge_b, line_tax)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		`, orderID, i+1, l.ProductID, l.Quantity,
			l.UnitPrice, l.DiscountPerUnit, l.DiscountPercent,
			l.GrossLine, l.DiscountLine, l.NetLine,
			l.SurchargeAPerUnit, l.SurchargeBPerUnit, l.TableSurchargeAPerUnit, l.TableSurchargeBPerUnit, l.LineTax)
		if err != nil {
			return nil, fmt.Errorf("failed to insert order line %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit order submission: %w", err)
	}

	return s.GetOrder(ctx, orderNumber)
}

func (s *orderService) GetOrder(ctx context.Context, orderNumber string) (*SubmittedOrder, error) {
	var o SubmittedOrder
	err := s.pool.QueryRow(ctx, `
		SELECT o.id, o.order_number, o.customer_id, c.code, c.name,
		       o.status, o.delivery_date::text, o.delivery_weekday,
		       o.gross_subtotal, o.tax_free_subtotal, o.total_tax, o.total_discount, o.net_total,
		       o.discount_percent, o.ceiling_percent, o.ceiling_used_percent, o.created_at
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.order_number = $1
	`, orderNumber).Scan(
		&o.ID, &o.OrderNumber, &o.CustomerID, &o.CustomerCode, &o.CustomerName,
		&o.Status, &o.DeliveryDate, &o.DeliveryWeekday,
		&o.Totals.GrossSubtotal, &o.Totals.TaxFreeSubtotal, &o.Totals.TotalTax,
		&o.Totals.TotalDiscount, &o.Totals.NetTotal, &o.Totals.DiscountPercentOfOrder,
		&o.CeilingPercent, &o.CeilingUsedPct, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %s not found", orderNumber)
		}
		return nil, fmt.Errorf("failed to fetch order %s: %w", orderNumber, err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT ol.line_number, p.id, p.code, p.name, ol.quantity,
		       ol.unit_price, ol.discount_per_unit, ol.discount_percent,
		       ol.gross_line, ol.discount_line, ol.net_line,
		       ol.surcharge_a, ol.surcharge_b, ol.table_surcharge_a, ol.table_surcharge_b, ol.line_tax
		FROM order_lines ol
		JOIN products p ON p.id = ol.product_id
		WHERE ol.order_id = $1
		ORDER BY ol.line_number
	`, o.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l LineSummary
		var lineNumber int
		if err := rows.Scan(&lineNumber, &l.ProductID, &l.ProductCode, &l.ProductName, &l.Quantity,
			&l.UnitPrice, &l.DiscountPerUnit, &l.DiscountPercent,
			&l.GrossLine, &l.DiscountLine, &l.NetLine,
			&l.SurchargeAPerUnit, &l.SurchargeBPerUnit,
			&l.TableSurchargeAPerUnit, &l.TableSurchargeBPerUnit, &l.LineTax); err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		o.Lines = append(o.Lines, l)
	}
	return &o, nil
}
