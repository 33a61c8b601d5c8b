package reservations

import (
	"context"

	"github.com/jhoicas/revestimientos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que chequeo de disponibilidad e
// inserción de reserva sean atómicos sobre el lote bloqueado.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		lotRepo repository.LotRepository,
		resRepo repository.ReservationRepository,
		movRepo repository.StockMovementRepository,
	) error) error

	// RunDocs agrega los repos de documentos para operaciones que tocan
	// cotización/pedido y reservas en una sola transacción (conversión).
	RunDocs(ctx context.Context, fn func(
		lotRepo repository.LotRepository,
		resRepo repository.ReservationRepository,
		movRepo repository.StockMovementRepository,
		quoteRepo repository.QuoteRepository,
		orderRepo repository.OrderRepository,
	) error) error
}

// Policy concentra la única decisión de producto configurable del motor:
// la asimetría bajar-libera / subir-no-reserva. Con AutoReserveOnIncrease en
// false (el comportamiento original), aumentar la cantidad de un ítem NO toma
// stock en silencio; el usuario debe volver a llamar a Reserve.
type Policy struct {
	AutoReserveOnIncrease bool
}
