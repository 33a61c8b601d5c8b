package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/revestimientos-api/internal/domain"
	"github.com/jhoicas/revestimientos-api/internal/domain/entity"
	"github.com/jhoicas/revestimientos-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository sobre PostgreSQL (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador de pedidos. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create persiste el pedido con sus ítems. Los pedidos nacen completos en la
// conversión y no se editan después.
func (r *OrderRepo) Create(order *entity.Order) error {
	query := `
		INSERT INTO orders (id, company_id, number, quote_id, customer_id, seller_id, status,
			subtotal_cents, discount_cents, total_cents, notes, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		order.ID, order.CompanyID, order.Number, order.QuoteID, order.CustomerID,
		order.SellerID, order.Status, order.SubtotalCents, order.DiscountCents,
		order.TotalCents, order.Notes, order.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for _, item := range order.Items {
		_, err := r.q.Exec(context.Background(), `
			INSERT INTO order_items (id, order_id, product_id, quote_item_id, quantity_boxes,
				unit_price_cents, discount_cents, total_cents, lot_id)
			VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, NULLIF($9, ''))`,
			item.ID, item.OrderID, item.ProductID, item.QuoteItemID, item.QuantityBoxes,
			item.UnitPriceCents, item.DiscountCents, item.TotalCents, item.LotID,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

// Get obtiene un pedido con sus ítems.
func (r *OrderRepo) Get(companyID, orderID string) (*entity.Order, error) {
	var o entity.Order
	var quoteID, customerID, sellerID *string
	err := r.q.QueryRow(context.Background(), `
		SELECT id, company_id, number, quote_id, customer_id, seller_id, status,
			subtotal_cents, discount_cents, total_cents, notes, created_at
		FROM orders WHERE company_id = $1 AND id = $2`,
		companyID, orderID).Scan(
		&o.ID, &o.CompanyID, &o.Number, &quoteID, &customerID, &sellerID, &o.Status,
		&o.SubtotalCents, &o.DiscountCents, &o.TotalCents, &o.Notes, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if quoteID != nil {
		o.QuoteID = *quoteID
	}
	if customerID != nil {
		o.CustomerID = *customerID
	}
	if sellerID != nil {
		o.SellerID = *sellerID
	}

	rows, err := r.q.Query(context.Background(), `
		SELECT id, order_id, product_id, quote_item_id, quantity_boxes,
			unit_price_cents, discount_cents, total_cents, lot_id
		FROM order_items WHERE order_id = $1 ORDER BY id ASC`, o.ID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it entity.OrderItem
		var quoteItemID, lotID *string
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &quoteItemID,
			&it.QuantityBoxes, &it.UnitPriceCents, &it.DiscountCents, &it.TotalCents, &lotID); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if quoteItemID != nil {
			it.QuoteItemID = *quoteItemID
		}
		if lotID != nil {
			it.LotID = *lotID
		}
		o.Items = append(o.Items, &it)
	}
	return &o, rows.Err()
}

// NextNumber devuelve el siguiente número de pedido de la empresa.
func (r *OrderRepo) NextNumber(companyID string) (int, error) {
	var next int
	err := r.q.QueryRow(context.Background(),
		`SELECT COALESCE(MAX(number), 0) + 1 FROM orders WHERE company_id = $1`,
		companyID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next order number: %w", err)
	}
	return next, nil
}

// UpdateStatus cambia el estado de un pedido.
func (r *OrderRepo) UpdateStatus(companyID, orderID, status string) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE orders SET status = $3 WHERE company_id = $1 AND id = $2`,
		companyID, orderID, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
