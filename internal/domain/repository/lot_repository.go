package repository

import "github.com/jhoicas/revestimientos-api/internal/domain/entity"

// LotRepository define el puerto del libro de lotes: cantidades físicas y su
// vista de disponibilidad (en mano − reservas activas). El motor de reservas
// nunca decrementa un lote salvo por la salida física (DecrementOnHand).
type LotRepository interface {
	Get(companyID, lotID string) (*entity.Lot, error)
	Create(lot *entity.Lot) error

	// ListAvailabilityByProduct devuelve en mano/reservado/disponible por lote
	// (solo lotes con en mano > 0), ordenado por vencimiento ascendente.
	ListAvailabilityByProduct(companyID, productID string) ([]*entity.LotAvailability, error)

	// GetAvailabilityForUpdate bloquea la fila del lote (SELECT FOR UPDATE) y
	// devuelve su disponibilidad. Solo tiene sentido dentro de una transacción.
	GetAvailabilityForUpdate(companyID, lotID string) (*entity.LotAvailability, error)

	// ListForExit devuelve los lotes con stock de un producto, bloqueados para
	// update, ordenados por vencimiento ascendente (FIFO de salida).
	ListForExit(companyID, productID string) ([]*entity.Lot, error)

	// DecrementOnHand resta cajas del stock físico. Falla con
	// domain.ErrInsufficientPhysicalStock si qty supera el en mano.
	DecrementOnHand(companyID, lotID string, qty int) error
}
