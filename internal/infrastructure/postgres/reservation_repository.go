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

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

const reservationColumns = `
	id, company_id, lot_id, product_id, quote_id, order_id, quote_item_id,
	type, status, quantity, expires_at, created_at, updated_at`

// ReservationRepo implementación de ReservationRepository sobre PostgreSQL
// (usable con pool o tx). Create exige tx: ver el comentario del método.
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador de reservas. Pasar pool o tx (Querier).
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

// Create bloquea la fila del lote, relee el disponible y recién entonces
// inserta la reserva. El lock serializa a todos los escritores del lote, así
// la suma de activas nunca puede superar el en mano. Debe llamarse dentro de
// una transacción; con un Querier de pool el lock se libera entre las dos
// sentencias y el chequeo no vale nada.
func (r *ReservationRepo) Create(res *entity.Reservation) error {
	avail, err := NewLotRepository(r.q).GetAvailabilityForUpdate(res.CompanyID, res.LotID)
	if err != nil {
		return err
	}
	if res.Quantity > avail.Available {
		return fmt.Errorf("%w: lote %s disponible %d, pedido %d",
			domain.ErrOverReservation, res.LotID, avail.Available, res.Quantity)
	}

	query := `
		INSERT INTO reservations (` + reservationColumns + `)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9, $10, $11, $12, $13)`
	_, err = r.q.Exec(context.Background(), query,
		res.ID, res.CompanyID, res.LotID, res.ProductID, res.QuoteID, res.OrderID,
		res.QuoteItemID, res.Type, res.Status, res.Quantity,
		res.ExpiresAt, res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

// Cancel pasa ACTIVE → CANCELLED. El WHERE por estado la hace idempotente:
// sobre una reserva terminal afecta cero filas y no es error.
func (r *ReservationRepo) Cancel(companyID, reservationID string) error {
	cmd, err := r.q.Exec(context.Background(), `
		UPDATE reservations SET status = 'CANCELLED', updated_at = now()
		WHERE company_id = $1 AND id = $2 AND status = 'ACTIVE'`,
		companyID, reservationID,
	)
	if err != nil {
		return fmt.Errorf("cancel reservation: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		// Ya terminal o inexistente: verificar que exista para distinguir.
		var exists bool
		err := r.q.QueryRow(context.Background(),
			`SELECT EXISTS(SELECT 1 FROM reservations WHERE company_id = $1 AND id = $2)`,
			companyID, reservationID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check reservation: %w", err)
		}
		if !exists {
			return domain.ErrNotFound
		}
	}
	return nil
}

// ReduceQuantity baja la cantidad de una reserva ACTIVA; nunca la sube.
// newQty = 0 la cancela: una reserva activa en cero no significa nada.
func (r *ReservationRepo) ReduceQuantity(companyID, reservationID string, newQty int) error {
	if newQty < 0 {
		return domain.ErrInvalidInput
	}
	if newQty == 0 {
		return r.Cancel(companyID, reservationID)
	}
	cmd, err := r.q.Exec(context.Background(), `
		UPDATE reservations SET quantity = $3, updated_at = now()
		WHERE company_id = $1 AND id = $2 AND status = 'ACTIVE' AND quantity >= $3`,
		companyID, reservationID, newQty,
	)
	if err != nil {
		return fmt.Errorf("reduce reservation: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ConsumeForOrder consume hasta qty cajas de las reservas ACTIVAS del par
// pedido+lote, de la más chica a la más grande. Las agotadas quedan CONSUMED
// con cantidad cero. Devuelve cuánto consumió; el excedente lo maneja el caller.
func (r *ReservationRepo) ConsumeForOrder(companyID, orderID, lotID string, qty int) (int, error) {
	rows, err := r.q.Query(context.Background(), `
		SELECT id, quantity FROM reservations
		WHERE company_id = $1 AND order_id = $2 AND lot_id = $3 AND status = 'ACTIVE'
		ORDER BY quantity ASC, id ASC
		FOR UPDATE`, companyID, orderID, lotID)
	if err != nil {
		return 0, fmt.Errorf("lock reservations for consume: %w", err)
	}
	type row struct {
		id  string
		qty int
	}
	var actives []row
	for rows.Next() {
		var x row
		if err := rows.Scan(&x.id, &x.qty); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan reservation: %w", err)
		}
		actives = append(actives, x)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	consumed := 0
	remaining := qty
	for _, res := range actives {
		if remaining <= 0 {
			break
		}
		if res.qty <= remaining {
			_, err = r.q.Exec(context.Background(), `
				UPDATE reservations SET status = 'CONSUMED', quantity = 0, updated_at = now()
				WHERE id = $1`, res.id)
			if err != nil {
				return consumed, fmt.Errorf("consume reservation: %w", err)
			}
			remaining -= res.qty
			consumed += res.qty
		} else {
			_, err = r.q.Exec(context.Background(), `
				UPDATE reservations SET quantity = quantity - $2, updated_at = now()
				WHERE id = $1`, res.id, remaining)
			if err != nil {
				return consumed, fmt.Errorf("consume reservation partial: %w", err)
			}
			consumed += remaining
			remaining = 0
		}
	}
	return consumed, nil
}

// TransferToOrder re-apunta las reservas ACTIVAS de una cotización a su pedido
// y cambia el discriminante a PEDIDO. Un solo UPDATE: cantidades intactas.
func (r *ReservationRepo) TransferToOrder(companyID, quoteID, orderID string) (int64, error) {
	cmd, err := r.q.Exec(context.Background(), `
		UPDATE reservations SET order_id = $3, type = 'PEDIDO', updated_at = now()
		WHERE company_id = $1 AND quote_id = $2 AND status = 'ACTIVE'`,
		companyID, quoteID, orderID,
	)
	if err != nil {
		return 0, fmt.Errorf("transfer reservations: %w", err)
	}
	return cmd.RowsAffected(), nil
}

// ExpireOlderThan barre ACTIVE → EXPIRED con expires_at vencido. Idempotente.
func (r *ReservationRepo) ExpireOlderThan(companyID string, now time.Time) (int64, error) {
	cmd, err := r.q.Exec(context.Background(), `
		UPDATE reservations SET status = 'EXPIRED', updated_at = now()
		WHERE company_id = $1 AND status = 'ACTIVE' AND expires_at < $2`,
		companyID, now,
	)
	if err != nil {
		return 0, fmt.Errorf("expire reservations: %w", err)
	}
	return cmd.RowsAffected(), nil
}

// FindActiveByItem reservas activas de un ítem de cotización.
func (r *ReservationRepo) FindActiveByItem(companyID, quoteItemID string) ([]*entity.Reservation, error) {
	return r.findActive(`company_id = $1 AND quote_item_id = $2`, companyID, quoteItemID)
}

// FindActiveByQuote reservas activas de una cotización completa.
func (r *ReservationRepo) FindActiveByQuote(companyID, quoteID string) ([]*entity.Reservation, error) {
	return r.findActive(`company_id = $1 AND quote_id = $2`, companyID, quoteID)
}

// FindActiveByOrder reservas activas de un pedido.
func (r *ReservationRepo) FindActiveByOrder(companyID, orderID string) ([]*entity.Reservation, error) {
	return r.findActive(`company_id = $1 AND order_id = $2`, companyID, orderID)
}

func (r *ReservationRepo) findActive(where string, args ...any) ([]*entity.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations WHERE status = 'ACTIVE' AND ` + where + `
		ORDER BY created_at ASC, id ASC`
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("find active reservations: %w", err)
	}
	defer rows.Close()

	var list []*entity.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, res)
	}
	return list, rows.Err()
}

func scanReservation(row pgx.Row) (*entity.Reservation, error) {
	var res entity.Reservation
	var quoteID, orderID *string
	err := row.Scan(
		&res.ID, &res.CompanyID, &res.LotID, &res.ProductID, &quoteID, &orderID,
		&res.QuoteItemID, &res.Type, &res.Status, &res.Quantity,
		&res.ExpiresAt, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan reservation: %w", err)
	}
	if quoteID != nil {
		res.QuoteID = *quoteID
	}
	if orderID != nil {
		res.OrderID = *orderID
	}
	return &res, nil
}
