package reservations

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/revestimientos-api/internal/application/dto"
	"github.com/jhoicas/revestimientos-api/internal/application/quotes"
	"github.com/jhoicas/revestimientos-api/internal/domain"
	"github.com/jhoicas/revestimientos-api/internal/domain/allocation"
	"github.com/jhoicas/revestimientos-api/internal/domain/entity"
	"github.com/jhoicas/revestimientos-api/internal/domain/repository"
)

// LineItemUseCase mantiene las reservas consistentes cuando un ítem de
// cotización se edita o se elimina (solo en borrador).
//
// Asimetría deliberada: bajar la cantidad libera el exceso de reserva en el
// momento; subirla NO toma stock nuevo en silencio — el usuario debe llamar a
// Reserve otra vez para que haya un chequeo fresco de disponibilidad. La
// decisión vive en Policy, en un solo punto.
type LineItemUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	policy      Policy
	ttlDays     int
}

// NewLineItemUseCase construye el caso de uso.
func NewLineItemUseCase(txRunner TxRunner, productRepo repository.ProductRepository, policy Policy, ttlDays int) *LineItemUseCase {
	return &LineItemUseCase{txRunner: txRunner, productRepo: productRepo, policy: policy, ttlDays: ttlDays}
}

// EditQuantity cambia la cantidad de un ítem de una cotización en borrador,
// recalcula sus campos derivados y los totales del documento, y ajusta las
// reservas según la política. Todo en una transacción.
func (uc *LineItemUseCase) EditQuantity(ctx context.Context, companyID, itemID string, in dto.UpdateQuoteItemRequest) (*entity.QuoteItem, error) {
	var edited *entity.QuoteItem

	err := uc.txRunner.RunDocs(ctx, func(
		lotRepo repository.LotRepository,
		resRepo repository.ReservationRepository,
		_ repository.StockMovementRepository,
		quoteRepo repository.QuoteRepository,
		_ repository.OrderRepository,
	) error {
		item, quote, err := quoteRepo.GetItem(companyID, itemID)
		if err != nil {
			return err
		}
		if quote.Status != entity.QuoteDraft {
			return domain.ErrInvalidState
		}

		product, err := uc.productRepo.Get(companyID, item.ProductID)
		if err != nil {
			return err
		}

		oldBoxes := item.QuantityBoxes
		boxes, inputArea, resultingArea, err := quotes.DeriveQuantity(product, in.InputArea, in.QuantityBoxes)
		if err != nil {
			return err
		}

		item.InputArea = inputArea
		item.QuantityBoxes = boxes
		item.ResultingArea = resultingArea
		item.TotalCents = int64(boxes)*item.UnitPriceCents - item.DiscountCents
		if item.TotalCents < 0 {
			item.TotalCents = 0
		}
		if err := quoteRepo.UpdateItem(item); err != nil {
			return err
		}

		for i, it := range quote.Items {
			if it.ID == item.ID {
				quote.Items[i] = item
			}
		}
		quote.RecalcTotals()
		if err := quoteRepo.UpdateTotals(quote); err != nil {
			return err
		}

		switch {
		case boxes < oldBoxes:
			if err := releaseExcess(resRepo, companyID, item.ID, boxes); err != nil {
				return err
			}
		case boxes > oldBoxes && uc.policy.AutoReserveOnIncrease:
			if err := uc.topUp(lotRepo, resRepo, companyID, quote, item); err != nil {
				return err
			}
		}
		edited = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return edited, nil
}

// Remove elimina un ítem de una cotización en borrador. Las reservas activas se
// CANCELAN, no se borran: la fila cancelada queda como rastro de auditoría y
// deja de contar en el reservado del lote.
func (uc *LineItemUseCase) Remove(ctx context.Context, companyID, itemID string) error {
	return uc.txRunner.RunDocs(ctx, func(
		_ repository.LotRepository,
		resRepo repository.ReservationRepository,
		_ repository.StockMovementRepository,
		quoteRepo repository.QuoteRepository,
		_ repository.OrderRepository,
	) error {
		item, quote, err := quoteRepo.GetItem(companyID, itemID)
		if err != nil {
			return err
		}
		if quote.Status != entity.QuoteDraft {
			return domain.ErrInvalidState
		}

		actives, err := resRepo.FindActiveByItem(companyID, item.ID)
		if err != nil {
			return err
		}
		for _, res := range actives {
			if err := resRepo.Cancel(companyID, res.ID); err != nil {
				return err
			}
		}

		if err := quoteRepo.DeleteItem(companyID, item.ID); err != nil {
			return err
		}

		remaining := quote.Items[:0]
		for _, it := range quote.Items {
			if it.ID != item.ID {
				remaining = append(remaining, it)
			}
		}
		quote.Items = remaining
		quote.RecalcTotals()
		return quoteRepo.UpdateTotals(quote)
	})
}

// releaseExcess baja la reserva activa de un ítem hasta target, de la reserva
// más chica a la más grande, reduciendo o cancelando filas. Nunca aumenta.
func releaseExcess(resRepo repository.ReservationRepository, companyID, itemID string, target int) error {
	actives, err := resRepo.FindActiveByItem(companyID, itemID)
	if err != nil {
		return err
	}
	current := sumActive(actives)
	if current <= target {
		return nil
	}
	// Orden determinista: menor cantidad primero, ID desempata.
	sort.Slice(actives, func(i, j int) bool {
		if actives[i].Quantity != actives[j].Quantity {
			return actives[i].Quantity < actives[j].Quantity
		}
		return actives[i].ID < actives[j].ID
	})

	for _, res := range actives {
		if current <= target {
			break
		}
		excess := current - target
		if res.Quantity <= excess {
			if err := resRepo.Cancel(companyID, res.ID); err != nil {
				return err
			}
			current -= res.Quantity
		} else {
			if err := resRepo.ReduceQuantity(companyID, res.ID, res.Quantity-excess); err != nil {
				return err
			}
			current = target
		}
	}
	return nil
}

// topUp reserva el faltante de un ítem dentro de la transacción vigente.
// Solo corre cuando la política habilita la re-reserva automática al subir.
func (uc *LineItemUseCase) topUp(
	lotRepo repository.LotRepository,
	resRepo repository.ReservationRepository,
	companyID string,
	quote *entity.Quote,
	item *entity.QuoteItem,
) error {
	actives, err := resRepo.FindActiveByItem(companyID, item.ID)
	if err != nil {
		return err
	}
	remaining := item.QuantityBoxes - sumActive(actives)
	if remaining <= 0 {
		return nil
	}
	avail, err := lotRepo.ListAvailabilityByProduct(companyID, item.ProductID)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, alloc := range allocation.Allocate(toSnapshot(avail), remaining, item.PreferredLotID) {
		err := resRepo.Create(&entity.Reservation{
			ID:          uuid.New().String(),
			CompanyID:   companyID,
			LotID:       alloc.LotID,
			ProductID:   item.ProductID,
			QuoteID:     quote.ID,
			QuoteItemID: item.ID,
			Type:        entity.ReservationTypeOrcamento,
			Status:      entity.ReservationActive,
			Quantity:    alloc.Quantity,
			ExpiresAt:   now.AddDate(0, 0, uc.ttlDays),
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
