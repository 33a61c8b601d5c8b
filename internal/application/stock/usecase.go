package stock

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/revestimientos-api/internal/application/dto"
	"github.com/jhoicas/revestimientos-api/internal/domain"
	"github.com/jhoicas/revestimientos-api/internal/domain/entity"
	"github.com/jhoicas/revestimientos-api/internal/domain/repository"
)

// TxRunner ejecuta una función con repos atados a una transacción.
// Misma forma que el runner del paquete reservations: la implementación de
// infraestructura satisface ambos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		lotRepo repository.LotRepository,
		resRepo repository.ReservationRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}

// StockUseCase administra entradas de stock y la vista de stock por producto.
// Toda entrada crea un lote nuevo: dos partidas del mismo producto nunca se
// mezclan aunque compartan número de lote del proveedor.
type StockUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	lotRepo     repository.LotRepository
	movRepo     repository.StockMovementRepository
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	lotRepo repository.LotRepository,
	movRepo repository.StockMovementRepository,
) *StockUseCase {
	return &StockUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		lotRepo:     lotRepo,
		movRepo:     movRepo,
	}
}

// AddStock da de alta un lote con su movimiento IN en una sola transacción.
func (uc *StockUseCase) AddStock(ctx context.Context, companyID string, in dto.AddStockRequest) (*entity.Lot, error) {
	if in.ProductID == "" || in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if _, err := uc.productRepo.Get(companyID, in.ProductID); err != nil {
		return nil, err
	}

	var expiration *time.Time
	if in.ExpirationDate != "" {
		t, err := time.Parse(time.RFC3339, in.ExpirationDate)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		expiration = &t
	}

	lot := &entity.Lot{
		ID:             uuid.New().String(),
		CompanyID:      companyID,
		ProductID:      in.ProductID,
		LotNumber:      in.LotNumber,
		Shade:          in.Shade,
		Caliber:        in.Caliber,
		OnHand:         in.Quantity,
		ExpirationDate: expiration,
		CreatedAt:      time.Now(),
	}

	reason := "entrada de stock"
	if in.InvoiceNumber != "" {
		reason = "entrada factura " + in.InvoiceNumber
	}

	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		_ repository.ReservationRepository,
		movRepo repository.StockMovementRepository,
	) error {
		if err := lotRepo.Create(lot); err != nil {
			return err
		}
		return movRepo.Create(&entity.StockMovement{
			ID:        uuid.New().String(),
			CompanyID: companyID,
			ProductID: in.ProductID,
			LotID:     lot.ID,
			Type:      entity.MovementTypeIN,
			Quantity:  in.Quantity,
			Reason:    reason,
			CreatedAt: time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}
	return lot, nil
}

// GetProductStock arma la vista de stock de un producto: totales y detalle por
// lote con en mano / reservado / disponible.
func (uc *StockUseCase) GetProductStock(ctx context.Context, companyID, productID string) (*dto.ProductStockDTO, error) {
	if _, err := uc.productRepo.Get(companyID, productID); err != nil {
		return nil, err
	}

	avail, err := uc.lotRepo.ListAvailabilityByProduct(companyID, productID)
	if err != nil {
		return nil, err
	}

	out := &dto.ProductStockDTO{ProductID: productID}
	for _, lot := range avail {
		out.TotalStock += lot.OnHand
		out.TotalReserved += lot.Reserved
		out.AvailableStock += lot.Available
		out.Lots = append(out.Lots, dto.LotStockDTO{
			LotID:     lot.LotID,
			LotNumber: lot.LotNumber,
			OnHand:    lot.OnHand,
			Reserved:  lot.Reserved,
			Available: lot.Available,
		})
	}
	return out, nil
}

// ListMovements devuelve la auditoría de movimientos físicos de un producto.
func (uc *StockUseCase) ListMovements(ctx context.Context, companyID, productID string, page dto.PageRequest) ([]*entity.StockMovement, error) {
	return uc.movRepo.ListByProduct(companyID, productID, page.Limit, page.Offset)
}
