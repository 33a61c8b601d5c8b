package reservations

import (
	"context"

	"github.com/jhoicas/revestimientos-api/internal/application/dto"
	"github.com/jhoicas/revestimientos-api/internal/domain/repository"
)

// AvailabilityUseCase responde "¿se puede cumplir esta cotización?" sin mutar
// nada. Es una señal consultiva: puede devolver un snapshot levemente viejo
// porque la escritura posterior (Reserve) re-valida con el lote bloqueado.
type AvailabilityUseCase struct {
	quoteRepo repository.QuoteRepository
	lotRepo   repository.LotRepository
}

// NewAvailabilityUseCase construye el caso de uso.
func NewAvailabilityUseCase(quoteRepo repository.QuoteRepository, lotRepo repository.LotRepository) *AvailabilityUseCase {
	return &AvailabilityUseCase{quoteRepo: quoteRepo, lotRepo: lotRepo}
}

// CheckAvailability reporta por ítem pedido/disponible/faltante y un estado
// agregado del documento. El disponible suma TODOS los lotes del producto:
// la preferencia de lote no entra acá, esto mide factibilidad, no compromiso.
func (uc *AvailabilityUseCase) CheckAvailability(ctx context.Context, companyID, quoteID string) (*dto.AvailabilityReport, error) {
	quote, err := uc.quoteRepo.Get(companyID, quoteID)
	if err != nil {
		return nil, err
	}

	report := &dto.AvailabilityReport{QuoteID: quote.ID}
	allAvailable := true
	allNone := true

	for _, item := range quote.Items {
		avail, err := uc.lotRepo.ListAvailabilityByProduct(companyID, item.ProductID)
		if err != nil {
			return nil, err
		}
		var available int
		for _, lot := range avail {
			if lot.Available > 0 {
				available += lot.Available
			}
		}

		ia := dto.ItemAvailability{
			QuoteItemID: item.ID,
			ProductID:   item.ProductID,
			Required:    item.QuantityBoxes,
			Available:   available,
		}
		switch {
		case available >= item.QuantityBoxes:
			ia.Status = dto.ItemAvailable
		case available > 0:
			ia.Status = dto.ItemPartial
			ia.Missing = item.QuantityBoxes - available
		default:
			ia.Status = dto.ItemNone
			ia.Missing = item.QuantityBoxes
		}

		if ia.Status != dto.ItemAvailable {
			allAvailable = false
		}
		if ia.Status != dto.ItemNone {
			allNone = false
		}
		report.Items = append(report.Items, ia)
	}

	switch {
	case len(report.Items) > 0 && allAvailable:
		report.OverallStatus = dto.OverallFull
	case allNone:
		report.OverallStatus = dto.OverallNone
	default:
		report.OverallStatus = dto.OverallPartial
	}
	return report, nil
}
