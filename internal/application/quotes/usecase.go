package quotes

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/revestimientos-api/internal/application/dto"
	"github.com/jhoicas/revestimientos-api/internal/domain"
	"github.com/jhoicas/revestimientos-api/internal/domain/entity"
	"github.com/jhoicas/revestimientos-api/internal/domain/repository"
)

// QuoteUseCase administra cotizaciones: alta con conversión m² → cajas,
// transiciones DRAFT → SENT → APPROVED y alta de ítems en borrador.
// La reserva de stock y la conversión a pedido viven en el paquete reservations.
type QuoteUseCase struct {
	quoteRepo   repository.QuoteRepository
	productRepo repository.ProductRepository
}

// NewQuoteUseCase construye el caso de uso.
func NewQuoteUseCase(quoteRepo repository.QuoteRepository, productRepo repository.ProductRepository) *QuoteUseCase {
	return &QuoteUseCase{quoteRepo: quoteRepo, productRepo: productRepo}
}

// CalculateBoxesFromArea calcula las cajas necesarias para cubrir un área.
// Redondea hacia ARRIBA: las cajas se venden enteras.
func CalculateBoxesFromArea(area, boxCoverage decimal.Decimal) (int, error) {
	if !boxCoverage.GreaterThan(decimal.Zero) {
		return 0, domain.ErrInvalidInput
	}
	return int(area.Div(boxCoverage).Ceil().IntPart()), nil
}

// DeriveQuantity resuelve la cantidad de un ítem: con área usa la cobertura del
// producto (ceil); con cajas directas calcula el área resultante si hay cobertura.
// Exactamente uno de inputArea/quantityBoxes debe ser positivo.
func DeriveQuantity(product *entity.Product, inputArea decimal.Decimal, quantityBoxes int) (boxes int, area, resultingArea decimal.Decimal, err error) {
	switch {
	case inputArea.GreaterThan(decimal.Zero):
		if !product.HasBoxCoverage() {
			return 0, decimal.Zero, decimal.Zero, domain.ErrInvalidInput
		}
		boxes, err = CalculateBoxesFromArea(inputArea, product.BoxCoverage)
		if err != nil {
			return 0, decimal.Zero, decimal.Zero, err
		}
		return boxes, inputArea, decimal.NewFromInt(int64(boxes)).Mul(product.BoxCoverage), nil
	case quantityBoxes > 0:
		resultingArea = decimal.Zero
		if product.HasBoxCoverage() {
			resultingArea = decimal.NewFromInt(int64(quantityBoxes)).Mul(product.BoxCoverage)
		}
		return quantityBoxes, decimal.Zero, resultingArea, nil
	default:
		return 0, decimal.Zero, decimal.Zero, domain.ErrInvalidInput
	}
}

// ProcessItem normaliza un ítem de cotización: cantidad, área resultante,
// descuento (porcentual o fijo) y total. No persiste nada.
func (uc *QuoteUseCase) ProcessItem(companyID string, in dto.QuoteItemRequest) (*entity.QuoteItem, error) {
	product, err := uc.productRepo.Get(companyID, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	boxes, inputArea, resultingArea, err := DeriveQuantity(product, in.InputArea, in.QuantityBoxes)
	if err != nil {
		return nil, err
	}

	subtotal := int64(boxes) * in.UnitPriceCents
	discount := in.DiscountCents
	if in.DiscountPercent.GreaterThan(decimal.Zero) {
		discount = decimal.NewFromInt(subtotal).
			Mul(in.DiscountPercent).
			Div(decimal.NewFromInt(100)).
			Round(0).IntPart()
	}
	total := subtotal - discount
	if total < 0 {
		total = 0
	}

	return &entity.QuoteItem{
		ID:             uuid.New().String(),
		ProductID:      in.ProductID,
		InputArea:      inputArea,
		QuantityBoxes:  boxes,
		ResultingArea:  resultingArea,
		UnitPriceCents: in.UnitPriceCents,
		DiscountCents:  discount,
		TotalCents:     total,
		PreferredLotID: in.PreferredLotID,
		Notes:          in.Notes,
	}, nil
}

// Create da de alta una cotización en borrador con número secuencial por empresa.
func (uc *QuoteUseCase) Create(ctx context.Context, companyID, sellerID string, in dto.CreateQuoteRequest) (*entity.Quote, error) {
	if len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}

	number, err := uc.quoteRepo.NextNumber(companyID)
	if err != nil {
		return nil, err
	}

	quote := &entity.Quote{
		ID:              uuid.New().String(),
		CompanyID:       companyID,
		Number:          number,
		CustomerID:      in.CustomerID,
		SellerID:        sellerID,
		Status:          entity.QuoteDraft,
		DiscountCents:   in.DiscountCents,
		DiscountPercent: in.DiscountPercent,
		DeliveryFeeCent: in.DeliveryFee,
		Notes:           in.Notes,
		CreatedAt:       time.Now(),
	}
	if in.ValidUntil != "" {
		if t, perr := time.Parse(time.RFC3339, in.ValidUntil); perr == nil {
			quote.ValidUntil = &t
		}
	}

	for _, itemReq := range in.Items {
		item, err := uc.ProcessItem(companyID, itemReq)
		if err != nil {
			return nil, err
		}
		item.QuoteID = quote.ID
		quote.Items = append(quote.Items, item)
	}
	quote.RecalcTotals()

	if err := uc.quoteRepo.Create(quote); err != nil {
		return nil, err
	}
	return quote, nil
}

// Get devuelve una cotización con sus ítems.
func (uc *QuoteUseCase) Get(companyID, quoteID string) (*entity.Quote, error) {
	return uc.quoteRepo.Get(companyID, quoteID)
}

// List lista cotizaciones, opcionalmente filtradas por estado.
func (uc *QuoteUseCase) List(companyID, status string) ([]*entity.Quote, error) {
	return uc.quoteRepo.List(companyID, status)
}

// Send pasa DRAFT → SENT.
func (uc *QuoteUseCase) Send(companyID, quoteID string) error {
	return uc.transition(companyID, quoteID, entity.QuoteDraft, entity.QuoteSent)
}

// Approve pasa SENT → APPROVED.
func (uc *QuoteUseCase) Approve(companyID, quoteID string) error {
	return uc.transition(companyID, quoteID, entity.QuoteSent, entity.QuoteApproved)
}

func (uc *QuoteUseCase) transition(companyID, quoteID, from, to string) error {
	quote, err := uc.quoteRepo.Get(companyID, quoteID)
	if err != nil {
		return err
	}
	if quote.Status != from {
		return domain.ErrInvalidState
	}
	return uc.quoteRepo.UpdateStatus(companyID, quoteID, to, time.Now())
}

// Delete elimina una cotización; solo borradores.
func (uc *QuoteUseCase) Delete(companyID, quoteID string) error {
	quote, err := uc.quoteRepo.Get(companyID, quoteID)
	if err != nil {
		return err
	}
	if quote.Status != entity.QuoteDraft {
		return domain.ErrInvalidState
	}
	return uc.quoteRepo.Delete(companyID, quoteID)
}

// AddItem agrega un ítem a una cotización en borrador. Nace sin reservas:
// reservar exige una llamada explícita a Reserve.
func (uc *QuoteUseCase) AddItem(companyID, quoteID string, in dto.QuoteItemRequest) (*entity.QuoteItem, error) {
	quote, err := uc.quoteRepo.Get(companyID, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.Status != entity.QuoteDraft {
		return nil, domain.ErrInvalidState
	}

	item, err := uc.ProcessItem(companyID, in)
	if err != nil {
		return nil, err
	}
	item.QuoteID = quote.ID
	if err := uc.quoteRepo.AddItem(item); err != nil {
		return nil, err
	}

	quote.Items = append(quote.Items, item)
	quote.RecalcTotals()
	if err := uc.quoteRepo.UpdateTotals(quote); err != nil {
		return nil, err
	}
	return item, nil
}
