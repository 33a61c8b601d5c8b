package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/revestimientos-api/internal/domain"
	"github.com/jhoicas/revestimientos-api/internal/domain/entity"
	"github.com/jhoicas/revestimientos-api/internal/domain/repository"
	"github.com/jhoicas/revestimientos-api/pkg/logger"
)

// ConvertUseCase convierte una cotización aprobada en pedido. Creación del
// pedido, cambio de estado de la cotización y transferencia de reservas van en
// UNA transacción: un corte a mitad de camino no puede dejar reservas apuntando
// a un pedido inexistente ni una cotización convertida con reservas viejas.
type ConvertUseCase struct {
	txRunner TxRunner
	log      *logger.Logger
}

// NewConvertUseCase construye el caso de uso.
func NewConvertUseCase(txRunner TxRunner, log *logger.Logger) *ConvertUseCase {
	return &ConvertUseCase{txRunner: txRunner, log: log}
}

// ConvertToOrder crea el pedido a partir de la cotización (solo APPROVED) y
// re-apunta sus reservas activas sin tocar cantidades: cambia el dueño, no el
// derecho sobre el stock.
func (uc *ConvertUseCase) ConvertToOrder(ctx context.Context, companyID, quoteID, sellerID string) (*entity.Order, error) {
	var order *entity.Order

	err := uc.txRunner.RunDocs(ctx, func(
		_ repository.LotRepository,
		resRepo repository.ReservationRepository,
		_ repository.StockMovementRepository,
		quoteRepo repository.QuoteRepository,
		orderRepo repository.OrderRepository,
	) error {
		quote, err := quoteRepo.Get(companyID, quoteID)
		if err != nil {
			return err
		}
		if quote.Status != entity.QuoteApproved {
			return domain.ErrInvalidState
		}

		number, err := orderRepo.NextNumber(companyID)
		if err != nil {
			return err
		}

		order = &entity.Order{
			ID:            uuid.New().String(),
			CompanyID:     companyID,
			Number:        number,
			QuoteID:       quote.ID,
			CustomerID:    quote.CustomerID,
			SellerID:      sellerID,
			Status:        entity.OrderCreated,
			SubtotalCents: quote.SubtotalCents,
			DiscountCents: quote.DiscountCents,
			TotalCents:    quote.TotalCents,
			Notes:         quote.Notes,
			CreatedAt:     time.Now(),
		}
		for _, it := range quote.Items {
			order.Items = append(order.Items, &entity.OrderItem{
				ID:             uuid.New().String(),
				OrderID:        order.ID,
				ProductID:      it.ProductID,
				QuoteItemID:    it.ID,
				QuantityBoxes:  it.QuantityBoxes,
				UnitPriceCents: it.UnitPriceCents,
				DiscountCents:  it.DiscountCents,
				TotalCents:     it.TotalCents,
				LotID:          it.PreferredLotID,
			})
		}
		if err := orderRepo.Create(order); err != nil {
			return err
		}

		if err := quoteRepo.UpdateStatus(companyID, quote.ID, entity.QuoteConverted, time.Now()); err != nil {
			return err
		}

		transferred, err := resRepo.TransferToOrder(companyID, quote.ID, order.ID)
		if err != nil {
			return err
		}
		uc.log.Info().
			Str("company_id", companyID).
			Str("quote_id", quote.ID).
			Str("order_id", order.ID).
			Int64("reservations", transferred).
			Msg("cotización convertida en pedido")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}
