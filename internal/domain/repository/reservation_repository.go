package repository

import (
	"time"

	"github.com/jhoicas/revestimientos-api/internal/domain/entity"
)

// ReservationRepository define el puerto del almacén de reservas y su máquina
// de estados. La invariante central —por lote, Σ(cantidad ACTIVA) ≤ en mano—
// se valida en Create con la fila del lote bloqueada.
type ReservationRepository interface {
	// Create valida disponibilidad releyendo el lote con bloqueo de fila y, si
	// alcanza, inserta la reserva ACTIVE. Falla con domain.ErrOverReservation
	// cuando la cantidad supera el disponible. Debe llamarse dentro de una
	// transacción para que chequeo e inserción sean atómicos.
	Create(res *entity.Reservation) error

	// Cancel pasa ACTIVE → CANCELLED. Idempotente: sobre una reserva terminal
	// no hace nada.
	Cancel(companyID, reservationID string) error

	// ReduceQuantity baja la cantidad de una reserva ACTIVA. newQty = 0 la
	// cancela en lugar de dejar una fila ACTIVA en cero. Nunca aumenta.
	ReduceQuantity(companyID, reservationID string, newQty int) error

	// ConsumeForOrder consume hasta qty cajas de las reservas ACTIVAS del par
	// pedido+lote, de menor a mayor cantidad; las agotadas pasan a CONSUMED con
	// cantidad cero. Devuelve cuánto se consumió de verdad: el excedente es
	// movimiento sin reserva y lo registra el caller.
	ConsumeForOrder(companyID, orderID, lotID string, qty int) (int, error)

	// TransferToOrder re-apunta las reservas ACTIVAS de la cotización al pedido
	// y cambia el discriminante ORCAMENTO → PEDIDO sin tocar cantidades.
	// Devuelve cuántas filas transfirió.
	TransferToOrder(companyID, quoteID, orderID string) (int64, error)

	// ExpireOlderThan barre ACTIVE → EXPIRED donde expires_at < now. Un solo
	// UPDATE condicional: idempotente y seguro de correr concurrente consigo mismo.
	ExpireOlderThan(companyID string, now time.Time) (int64, error)

	FindActiveByItem(companyID, quoteItemID string) ([]*entity.Reservation, error)
	FindActiveByQuote(companyID, quoteID string) ([]*entity.Reservation, error)
	FindActiveByOrder(companyID, orderID string) ([]*entity.Reservation, error)
}
