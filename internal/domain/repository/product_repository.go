package repository

import "github.com/jhoicas/revestimientos-api/internal/domain/entity"

// ProductRepository define el puerto de lectura del catálogo. El catálogo es
// dependencia externa del motor: aquí solo se lee identidad y cobertura por caja.
type ProductRepository interface {
	Get(companyID, productID string) (*entity.Product, error)
	Create(product *entity.Product) error
}

// StockMovementRepository define el puerto de auditoría de movimientos físicos.
type StockMovementRepository interface {
	Create(mov *entity.StockMovement) error
	ListByProduct(companyID, productID string, limit, offset int) ([]*entity.StockMovement, error)
}
