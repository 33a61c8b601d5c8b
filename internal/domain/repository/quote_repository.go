package repository

import (
	"time"

	"github.com/jhoicas/revestimientos-api/internal/domain/entity"
)

// QuoteRepository define el puerto de persistencia de cotizaciones y sus ítems.
type QuoteRepository interface {
	Create(quote *entity.Quote) error
	Get(companyID, quoteID string) (*entity.Quote, error)
	List(companyID, status string) ([]*entity.Quote, error)
	NextNumber(companyID string) (int, error)
	UpdateStatus(companyID, quoteID, status string, at time.Time) error
	UpdateTotals(quote *entity.Quote) error
	Delete(companyID, quoteID string) error

	AddItem(item *entity.QuoteItem) error
	GetItem(companyID, itemID string) (*entity.QuoteItem, *entity.Quote, error)
	UpdateItem(item *entity.QuoteItem) error
	DeleteItem(companyID, itemID string) error
}

// OrderRepository define el puerto de persistencia de pedidos.
type OrderRepository interface {
	Create(order *entity.Order) error
	Get(companyID, orderID string) (*entity.Order, error)
	NextNumber(companyID string) (int, error)
	UpdateStatus(companyID, orderID, status string) error
}
