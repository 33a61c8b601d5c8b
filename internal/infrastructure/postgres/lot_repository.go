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

var _ repository.LotRepository = (*LotRepo)(nil)

// availabilitySelect arma la vista disponible = en mano − Σ reservas ACTIVAS.
// El LEFT JOIN LATERAL evita un GROUP BY sobre todas las columnas del lote.
const availabilitySelect = `
	SELECT l.id, l.lot_number, l.quantity, COALESCE(r.reserved, 0)
	FROM lots l
	LEFT JOIN LATERAL (
		SELECT SUM(quantity) AS reserved
		FROM reservations
		WHERE lot_id = l.id AND status = 'ACTIVE'
	) r ON true`

// LotRepo implementación de LotRepository sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

// Get obtiene un lote por ID dentro de la empresa.
func (r *LotRepo) Get(companyID, lotID string) (*entity.Lot, error) {
	query := `
		SELECT id, company_id, product_id, lot_number, shade, caliber, quantity, expiration_date, created_at
		FROM lots WHERE company_id = $1 AND id = $2`
	var l entity.Lot
	err := r.q.QueryRow(context.Background(), query, companyID, lotID).Scan(
		&l.ID, &l.CompanyID, &l.ProductID, &l.LotNumber, &l.Shade, &l.Caliber,
		&l.OnHand, &l.ExpirationDate, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return &l, nil
}

// Create persiste un lote nuevo.
func (r *LotRepo) Create(lot *entity.Lot) error {
	query := `
		INSERT INTO lots (id, company_id, product_id, lot_number, shade, caliber, quantity, expiration_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		lot.ID, lot.CompanyID, lot.ProductID, lot.LotNumber, lot.Shade, lot.Caliber,
		lot.OnHand, lot.ExpirationDate, lot.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

// ListAvailabilityByProduct devuelve la disponibilidad por lote de un producto,
// solo lotes con stock en mano, ordenados por vencimiento ascendente (sin
// fecha al final). Snapshot consultivo: la escritura re-valida con bloqueo.
func (r *LotRepo) ListAvailabilityByProduct(companyID, productID string) ([]*entity.LotAvailability, error) {
	query := availabilitySelect + `
		WHERE l.company_id = $1 AND l.product_id = $2 AND l.quantity > 0
		ORDER BY l.expiration_date ASC NULLS LAST, l.id ASC`
	rows, err := r.q.Query(context.Background(), query, companyID, productID)
	if err != nil {
		return nil, fmt.Errorf("list lot availability: %w", err)
	}
	defer rows.Close()

	var list []*entity.LotAvailability
	for rows.Next() {
		var a entity.LotAvailability
		if err := rows.Scan(&a.LotID, &a.LotNumber, &a.OnHand, &a.Reserved); err != nil {
			return nil, fmt.Errorf("scan lot availability: %w", err)
		}
		a.Available = a.OnHand - a.Reserved
		list = append(list, &a)
	}
	return list, rows.Err()
}

// GetAvailabilityForUpdate bloquea la fila del lote (SELECT FOR UPDATE) y
// calcula su disponibilidad con el lote ya bloqueado. Solo dentro de una tx.
func (r *LotRepo) GetAvailabilityForUpdate(companyID, lotID string) (*entity.LotAvailability, error) {
	var a entity.LotAvailability
	err := r.q.QueryRow(context.Background(), `
		SELECT id, lot_number, quantity FROM lots
		WHERE company_id = $1 AND id = $2
		FOR UPDATE`, companyID, lotID).Scan(&a.LotID, &a.LotNumber, &a.OnHand)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("lock lot: %w", err)
	}

	// Con la fila bloqueada, la suma de activas no puede cambiar debajo nuestro:
	// todo insert de reserva pasa por este mismo lock.
	err = r.q.QueryRow(context.Background(), `
		SELECT COALESCE(SUM(quantity), 0) FROM reservations
		WHERE lot_id = $1 AND status = 'ACTIVE'`, lotID).Scan(&a.Reserved)
	if err != nil {
		return nil, fmt.Errorf("sum active reservations: %w", err)
	}
	a.Available = a.OnHand - a.Reserved
	return &a, nil
}

// ListForExit devuelve los lotes con stock de un producto bloqueados para
// update, en orden FIFO de vencimiento. Solo dentro de una tx.
func (r *LotRepo) ListForExit(companyID, productID string) ([]*entity.Lot, error) {
	query := `
		SELECT id, company_id, product_id, lot_number, shade, caliber, quantity, expiration_date, created_at
		FROM lots
		WHERE company_id = $1 AND product_id = $2 AND quantity > 0
		ORDER BY expiration_date ASC NULLS LAST, id ASC
		FOR UPDATE`
	rows, err := r.q.Query(context.Background(), query, companyID, productID)
	if err != nil {
		return nil, fmt.Errorf("list lots for exit: %w", err)
	}
	defer rows.Close()

	var list []*entity.Lot
	for rows.Next() {
		var l entity.Lot
		if err := rows.Scan(&l.ID, &l.CompanyID, &l.ProductID, &l.LotNumber, &l.Shade,
			&l.Caliber, &l.OnHand, &l.ExpirationDate, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// DecrementOnHand resta cajas del stock físico. El WHERE con quantity >= $3
// convierte la falta de stock en cero filas afectadas en lugar de dejar un
// saldo negativo.
func (r *LotRepo) DecrementOnHand(companyID, lotID string, qty int) error {
	cmd, err := r.q.Exec(context.Background(), `
		UPDATE lots SET quantity = quantity - $3
		WHERE company_id = $1 AND id = $2 AND quantity >= $3`,
		companyID, lotID, qty,
	)
	if err != nil {
		return fmt.Errorf("decrement lot: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrInsufficientPhysicalStock
	}
	return nil
}
