package reservations

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/revestimientos-api/internal/application/dto"
	"github.com/jhoicas/revestimientos-api/internal/domain"
	"github.com/jhoicas/revestimientos-api/internal/domain/allocation"
	"github.com/jhoicas/revestimientos-api/internal/domain/entity"
	"github.com/jhoicas/revestimientos-api/internal/domain/repository"
	"github.com/jhoicas/revestimientos-api/pkg/logger"
)

// ReserveUseCase reserva stock para los ítems de una cotización.
//
// Idempotente: un ítem con reserva activa ≥ cantidad pedida se omite, así la
// operación puede repetirse tras un fallo parcial sin duplicar reservas. Nunca
// reserva más que lo pedido por ítem aunque sobre stock. Cada reserva por lote
// es atómica con su propio chequeo de disponibilidad; un resultado parcial se
// informa como "reservado X de Y", no como error.
type ReserveUseCase struct {
	txRunner  TxRunner
	quoteRepo repository.QuoteRepository
	lotRepo   repository.LotRepository
	resRepo   repository.ReservationRepository
	ttlDays   int
	log       *logger.Logger
}

// NewReserveUseCase construye el caso de uso. ttlDays es la vigencia de cada
// reserva antes del barrido de expiración.
func NewReserveUseCase(
	txRunner TxRunner,
	quoteRepo repository.QuoteRepository,
	lotRepo repository.LotRepository,
	resRepo repository.ReservationRepository,
	ttlDays int,
	log *logger.Logger,
) *ReserveUseCase {
	return &ReserveUseCase{
		txRunner:  txRunner,
		quoteRepo: quoteRepo,
		lotRepo:   lotRepo,
		resRepo:   resRepo,
		ttlDays:   ttlDays,
		log:       log,
	}
}

// Reserve reserva stock para cada ítem de la cotización. Permitido en DRAFT y
// SENT (el vendedor puede apartar stock antes o después de enviar).
func (uc *ReserveUseCase) Reserve(ctx context.Context, companyID, quoteID string) (*dto.ReserveResult, error) {
	quote, err := uc.quoteRepo.Get(companyID, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.Status != entity.QuoteDraft && quote.Status != entity.QuoteSent {
		return nil, domain.ErrInvalidState
	}

	result := &dto.ReserveResult{QuoteID: quote.ID}
	for _, item := range quote.Items {
		reserved, err := uc.reserveItem(ctx, companyID, quote, item)
		if err != nil {
			return nil, err
		}
		result.Items = append(result.Items, reserved)
	}
	return result, nil
}

// reserveItem cubre el faltante de un ítem contra la disponibilidad vigente.
func (uc *ReserveUseCase) reserveItem(ctx context.Context, companyID string, quote *entity.Quote, item *entity.QuoteItem) (dto.ReservedItem, error) {
	out := dto.ReservedItem{
		QuoteItemID: item.ID,
		ProductID:   item.ProductID,
		Requested:   item.QuantityBoxes,
	}

	actives, err := uc.resRepo.FindActiveByItem(companyID, item.ID)
	if err != nil {
		return out, err
	}
	out.AlreadyReserved = sumActive(actives)
	if out.AlreadyReserved >= item.QuantityBoxes {
		// Ya satisfecho: Reserve es seguro de repetir.
		return out, nil
	}
	remaining := item.QuantityBoxes - out.AlreadyReserved

	avail, err := uc.lotRepo.ListAvailabilityByProduct(companyID, item.ProductID)
	if err != nil {
		return out, err
	}
	plan := allocation.Allocate(toSnapshot(avail), remaining, item.PreferredLotID)

	for _, alloc := range plan {
		qty, err := uc.createOne(ctx, companyID, quote, item, alloc)
		if errors.Is(err, domain.ErrOverReservation) {
			// Otro vendedor ganó el lote entre el snapshot y el commit.
			// El ítem queda parcial; el caller reconsulta disponibilidad.
			uc.log.Warn().
				Str("company_id", companyID).
				Str("lot_id", alloc.LotID).
				Str("quote_item_id", item.ID).
				Int("quantity", alloc.Quantity).
				Msg("lote sin disponible al confirmar la reserva, se omite")
			continue
		}
		if err != nil {
			return out, err
		}
		out.NewlyReserved += qty
	}
	return out, nil
}

// createOne inserta una reserva en su propia transacción, con un reintento ante
// conflicto de serialización (la operación recalcula al reintentar).
func (uc *ReserveUseCase) createOne(ctx context.Context, companyID string, quote *entity.Quote, item *entity.QuoteItem, alloc allocation.Allocation) (int, error) {
	create := func() error {
		return uc.txRunner.Run(ctx, func(
			_ repository.LotRepository,
			resRepo repository.ReservationRepository,
			_ repository.StockMovementRepository,
		) error {
			now := time.Now()
			return resRepo.Create(&entity.Reservation{
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
		})
	}

	err := create()
	if errors.Is(err, domain.ErrConcurrencyConflict) {
		err = create()
	}
	if err != nil {
		return 0, err
	}
	return alloc.Quantity, nil
}

func sumActive(list []*entity.Reservation) int {
	var sum int
	for _, r := range list {
		sum += r.Quantity
	}
	return sum
}

func toSnapshot(avail []*entity.LotAvailability) []allocation.LotSnapshot {
	snapshot := make([]allocation.LotSnapshot, 0, len(avail))
	for _, a := range avail {
		snapshot = append(snapshot, allocation.LotSnapshot{LotID: a.LotID, Available: a.Available})
	}
	return snapshot
}
