package entity

import "time"

// Estados de un pedido. El motor de reservas solo distingue CREATED (reservas
// activas siguen vivas) y CANCELLED (se liberan).
const (
	OrderCreated   = "CREATED"
	OrderDelivered = "DELIVERED"
	OrderCancelled = "CANCELLED"
)

// Order es un pedido creado por conversión de una cotización aprobada.
// Hereda totales e ítems de la cotización; las reservas activas se re-apuntan
// al pedido en la misma transacción de la conversión.
type Order struct {
	ID            string
	CompanyID     string
	Number        int
	QuoteID       string
	CustomerID    string
	SellerID      string
	Status        string
	SubtotalCents int64
	DiscountCents int64
	TotalCents    int64
	Notes         string
	CreatedAt     time.Time
	Items         []*OrderItem
}

// OrderItem copia de un ítem de cotización al momento de la conversión.
// Inmutable: los pedidos no se editan, se cumplen o se cancelan.
type OrderItem struct {
	ID             string
	OrderID        string
	ProductID      string
	QuoteItemID    string // trazabilidad hacia el ítem de cotización original
	QuantityBoxes  int
	UnitPriceCents int64
	DiscountCents  int64
	TotalCents     int64
	LotID          string // lote preferido heredado; informativo
}
