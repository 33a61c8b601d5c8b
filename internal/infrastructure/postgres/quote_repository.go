package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/revestimientos-api/internal/domain"
	"github.com/jhoicas/revestimientos-api/internal/domain/entity"
	"github.com/jhoicas/revestimientos-api/internal/domain/repository"
)

var _ repository.QuoteRepository = (*QuoteRepo)(nil)

const quoteColumns = `
	id, company_id, number, customer_id, seller_id, status,
	subtotal_cents, discount_cents, discount_percent, delivery_fee_cents, total_cents,
	notes, valid_until, sent_at, approved_at, created_at`

const quoteItemColumns = `
	id, quote_id, product_id, input_area, quantity_boxes, resulting_area,
	unit_price_cents, discount_cents, total_cents, preferred_lot_id, notes`

// QuoteRepo implementación de QuoteRepository sobre PostgreSQL (usable con pool o tx).
type QuoteRepo struct {
	q Querier
}

// NewQuoteRepository construye el adaptador de cotizaciones. Pasar pool o tx (Querier).
func NewQuoteRepository(q Querier) *QuoteRepo {
	return &QuoteRepo{q: q}
}

// Create persiste la cotización con todos sus ítems.
func (r *QuoteRepo) Create(quote *entity.Quote) error {
	query := `
		INSERT INTO quotes (` + quoteColumns + `)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(context.Background(), query,
		quote.ID, quote.CompanyID, quote.Number, quote.CustomerID, quote.SellerID, quote.Status,
		quote.SubtotalCents, quote.DiscountCents, quote.DiscountPercent, quote.DeliveryFeeCent,
		quote.TotalCents, quote.Notes, quote.ValidUntil, quote.SentAt, quote.ApprovedAt, quote.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert quote: %w", err)
	}
	for _, item := range quote.Items {
		if err := r.AddItem(item); err != nil {
			return err
		}
	}
	return nil
}

// Get obtiene una cotización con sus ítems.
func (r *QuoteRepo) Get(companyID, quoteID string) (*entity.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE company_id = $1 AND id = $2`
	quote, err := scanQuote(r.q.QueryRow(context.Background(), query, companyID, quoteID))
	if err != nil {
		return nil, err
	}
	quote.Items, err = r.listItems(quote.ID)
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// List lista cotizaciones de la empresa, opcionalmente filtradas por estado.
// Sin ítems: el detalle se pide por Get.
func (r *QuoteRepo) List(companyID, status string) ([]*entity.Quote, error) {
	query := `SELECT ` + quoteColumns + `
		FROM quotes
		WHERE company_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY number DESC`
	rows, err := r.q.Query(context.Background(), query, companyID, status)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	defer rows.Close()

	var list []*entity.Quote
	for rows.Next() {
		quote, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, quote)
	}
	return list, rows.Err()
}

// NextNumber devuelve el siguiente número de cotización de la empresa.
// max+1 bajo el lock implícito del insert posterior es suficiente acá: una
// colisión de número choca contra el unique (company_id, number) y reintenta.
func (r *QuoteRepo) NextNumber(companyID string) (int, error) {
	var next int
	err := r.q.QueryRow(context.Background(),
		`SELECT COALESCE(MAX(number), 0) + 1 FROM quotes WHERE company_id = $1`,
		companyID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next quote number: %w", err)
	}
	return next, nil
}

// UpdateStatus cambia el estado y estampa sent_at/approved_at según corresponda.
func (r *QuoteRepo) UpdateStatus(companyID, quoteID, status string, at time.Time) error {
	query := `
		UPDATE quotes SET status = $3,
			sent_at = CASE WHEN $3 = 'SENT' THEN $4 ELSE sent_at END,
			approved_at = CASE WHEN $3 = 'APPROVED' THEN $4 ELSE approved_at END
		WHERE company_id = $1 AND id = $2`
	cmd, err := r.q.Exec(context.Background(), query, companyID, quoteID, status, at)
	if err != nil {
		return fmt.Errorf("update quote status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateTotals persiste los totales recalculados del documento.
func (r *QuoteRepo) UpdateTotals(quote *entity.Quote) error {
	_, err := r.q.Exec(context.Background(), `
		UPDATE quotes SET subtotal_cents = $3, discount_cents = $4, total_cents = $5
		WHERE company_id = $1 AND id = $2`,
		quote.CompanyID, quote.ID, quote.SubtotalCents, quote.DiscountCents, quote.TotalCents,
	)
	if err != nil {
		return fmt.Errorf("update quote totals: %w", err)
	}
	return nil
}

// Delete elimina la cotización y sus ítems (ON DELETE CASCADE en quote_items).
func (r *QuoteRepo) Delete(companyID, quoteID string) error {
	cmd, err := r.q.Exec(context.Background(),
		`DELETE FROM quotes WHERE company_id = $1 AND id = $2`, companyID, quoteID)
	if err != nil {
		return fmt.Errorf("delete quote: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AddItem inserta un ítem de cotización.
func (r *QuoteRepo) AddItem(item *entity.QuoteItem) error {
	query := `
		INSERT INTO quote_items (` + quoteItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.QuoteID, item.ProductID, item.InputArea, item.QuantityBoxes,
		item.ResultingArea, item.UnitPriceCents, item.DiscountCents, item.TotalCents,
		item.PreferredLotID, item.Notes,
	)
	if err != nil {
		return fmt.Errorf("insert quote item: %w", err)
	}
	return nil
}

// GetItem devuelve el ítem y su cotización completa (con todos los ítems),
// porque los casos de uso que editan un ítem recalculan totales del documento.
func (r *QuoteRepo) GetItem(companyID, itemID string) (*entity.QuoteItem, *entity.Quote, error) {
	var quoteID string
	err := r.q.QueryRow(context.Background(), `
		SELECT qi.quote_id FROM quote_items qi
		JOIN quotes q ON q.id = qi.quote_id
		WHERE q.company_id = $1 AND qi.id = $2`,
		companyID, itemID).Scan(&quoteID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("find quote item: %w", err)
	}

	quote, err := r.Get(companyID, quoteID)
	if err != nil {
		return nil, nil, err
	}
	for _, it := range quote.Items {
		if it.ID == itemID {
			return it, quote, nil
		}
	}
	return nil, nil, domain.ErrNotFound
}

// UpdateItem persiste las cantidades y montos recalculados de un ítem.
func (r *QuoteRepo) UpdateItem(item *entity.QuoteItem) error {
	cmd, err := r.q.Exec(context.Background(), `
		UPDATE quote_items SET input_area = $2, quantity_boxes = $3, resulting_area = $4,
			discount_cents = $5, total_cents = $6
		WHERE id = $1`,
		item.ID, item.InputArea, item.QuantityBoxes, item.ResultingArea,
		item.DiscountCents, item.TotalCents,
	)
	if err != nil {
		return fmt.Errorf("update quote item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteItem elimina un ítem de cotización.
func (r *QuoteRepo) DeleteItem(companyID, itemID string) error {
	cmd, err := r.q.Exec(context.Background(), `
		DELETE FROM quote_items qi
		USING quotes q
		WHERE q.id = qi.quote_id AND q.company_id = $1 AND qi.id = $2`,
		companyID, itemID,
	)
	if err != nil {
		return fmt.Errorf("delete quote item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *QuoteRepo) listItems(quoteID string) ([]*entity.QuoteItem, error) {
	query := `SELECT ` + quoteItemColumns + ` FROM quote_items WHERE quote_id = $1 ORDER BY id ASC`
	rows, err := r.q.Query(context.Background(), query, quoteID)
	if err != nil {
		return nil, fmt.Errorf("list quote items: %w", err)
	}
	defer rows.Close()

	var list []*entity.QuoteItem
	for rows.Next() {
		var it entity.QuoteItem
		var preferredLot *string
		if err := rows.Scan(&it.ID, &it.QuoteID, &it.ProductID, &it.InputArea,
			&it.QuantityBoxes, &it.ResultingArea, &it.UnitPriceCents, &it.DiscountCents,
			&it.TotalCents, &preferredLot, &it.Notes); err != nil {
			return nil, fmt.Errorf("scan quote item: %w", err)
		}
		if preferredLot != nil {
			it.PreferredLotID = *preferredLot
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

func scanQuote(row pgx.Row) (*entity.Quote, error) {
	var q entity.Quote
	var customerID, sellerID *string
	err := row.Scan(
		&q.ID, &q.CompanyID, &q.Number, &customerID, &sellerID, &q.Status,
		&q.SubtotalCents, &q.DiscountCents, &q.DiscountPercent, &q.DeliveryFeeCent,
		&q.TotalCents, &q.Notes, &q.ValidUntil, &q.SentAt, &q.ApprovedAt, &q.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan quote: %w", err)
	}
	if customerID != nil {
		q.CustomerID = *customerID
	}
	if sellerID != nil {
		q.SellerID = *sellerID
	}
	return &q, nil
}
