package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/revestimientos-api/internal/application/dto"
	"github.com/jhoicas/revestimientos-api/internal/domain"
	"github.com/jhoicas/revestimientos-api/internal/domain/entity"
	"github.com/jhoicas/revestimientos-api/internal/domain/repository"
	"github.com/jhoicas/revestimientos-api/pkg/logger"
)

// StockExitUseCase ejecuta la salida física de stock contra un pedido.
//
// Orden de operaciones dentro de la transacción: primero se consumen las
// reservas (libera capacidad "reservada"), después se decrementa el en mano.
// Así el disponible queda consistente en el medio de la operación, y
// consumir + decrementar cancela mutuamente su efecto sobre el disponible.
type StockExitUseCase struct {
	txRunner TxRunner
	log      *logger.Logger
}

// NewStockExitUseCase construye el caso de uso.
func NewStockExitUseCase(txRunner TxRunner, log *logger.Logger) *StockExitUseCase {
	return &StockExitUseCase{txRunner: txRunner, log: log}
}

// ConsumeForExit saca cajas de los lotes de un producto en orden FIFO de
// vencimiento, consumiendo las reservas del pedido lote a lote. Una salida
// mayor a lo reservado no es error: el excedente es movimiento sin reserva
// (venta de mostrador) y queda en el log y en la auditoría de movimientos.
// Sin order_id no se toca ninguna reserva.
func (uc *StockExitUseCase) ConsumeForExit(ctx context.Context, companyID string, in dto.StockExitRequest) error {
	if in.ProductID == "" || in.Quantity <= 0 {
		return domain.ErrInvalidInput
	}

	return uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		resRepo repository.ReservationRepository,
		movRepo repository.StockMovementRepository,
	) error {
		lots, err := lotRepo.ListForExit(companyID, in.ProductID)
		if err != nil {
			return err
		}

		var total int
		for _, lot := range lots {
			total += lot.OnHand
		}
		if total < in.Quantity {
			// Si hay reservas que el físico no cubre, es inconsistencia de datos.
			uc.log.Warn().
				Str("company_id", companyID).
				Str("product_id", in.ProductID).
				Int("requested", in.Quantity).
				Int("on_hand", total).
				Msg("salida física supera el stock en mano")
			return domain.ErrInsufficientPhysicalStock
		}

		reason := in.Reason
		if reason == "" {
			reason = "salida de stock"
		}

		remaining := in.Quantity
		for _, lot := range lots {
			if remaining <= 0 {
				break
			}
			deduct := lot.OnHand
			if deduct > remaining {
				deduct = remaining
			}

			consumed := 0
			if in.OrderID != "" {
				consumed, err = resRepo.ConsumeForOrder(companyID, in.OrderID, lot.ID, deduct)
				if err != nil {
					return err
				}
			}
			if consumed < deduct {
				uc.log.Info().
					Str("company_id", companyID).
					Str("lot_id", lot.ID).
					Str("order_id", in.OrderID).
					Int("unreserved", deduct-consumed).
					Msg("salida sin reserva previa")
			}

			if err := lotRepo.DecrementOnHand(companyID, lot.ID, deduct); err != nil {
				return err
			}

			err = movRepo.Create(&entity.StockMovement{
				ID:        uuid.New().String(),
				CompanyID: companyID,
				ProductID: in.ProductID,
				LotID:     lot.ID,
				OrderID:   in.OrderID,
				Type:      entity.MovementTypeOUT,
				Quantity:  deduct,
				Reason:    reason,
				CreatedAt: time.Now(),
			})
			if err != nil {
				return err
			}
			remaining -= deduct
		}
		return nil
	})
}
