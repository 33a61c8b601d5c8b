package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una cotización. Solo en DRAFT se editan ítems; la conversión a
// pedido exige APPROVED.
const (
	QuoteDraft     = "DRAFT"
	QuoteSent      = "SENT"
	QuoteApproved  = "APPROVED"
	QuoteConverted = "CONVERTED"
)

// Quote es una cotización: documento de venta en borrador que agrupa ítems de
// línea y dirige el ciclo de vida de sus reservas.
type Quote struct {
	ID              string
	CompanyID       string
	Number          int
	CustomerID      string
	SellerID        string
	Status          string
	SubtotalCents   int64
	DiscountCents   int64
	DiscountPercent decimal.Decimal
	DeliveryFeeCent int64
	TotalCents      int64
	Notes           string
	ValidUntil      *time.Time
	SentAt          *time.Time
	ApprovedAt      *time.Time
	CreatedAt       time.Time
	Items           []*QuoteItem
}

// QuoteItem pide una cantidad de cajas de un producto, opcionalmente fijada a un
// lote preferido. La cantidad puede venir de un área en m² (se convierte con la
// cobertura por caja del producto, redondeando hacia arriba).
type QuoteItem struct {
	ID             string
	QuoteID        string
	ProductID      string
	InputArea      decimal.Decimal // m² solicitados; cero si se pidió por cajas
	QuantityBoxes  int
	ResultingArea  decimal.Decimal // cajas × cobertura; cero si no aplica
	UnitPriceCents int64
	DiscountCents  int64
	TotalCents     int64
	PreferredLotID string // pin manual de lote; vacío = asignación greedy
	Notes          string
}

// RecalcTotals recalcula subtotal y total de la cotización a partir de sus ítems.
// El descuento porcentual global se aplica sobre el subtotal resultante.
func (q *Quote) RecalcTotals() {
	var subtotal int64
	for _, it := range q.Items {
		subtotal += it.TotalCents
	}
	q.SubtotalCents = subtotal

	discount := q.DiscountCents
	if q.DiscountPercent.GreaterThan(decimal.Zero) {
		discount = decimal.NewFromInt(subtotal).
			Mul(q.DiscountPercent).
			Div(decimal.NewFromInt(100)).
			Round(0).IntPart()
	}
	total := subtotal - discount + q.DeliveryFeeCent
	if total < 0 {
		total = 0
	}
	q.DiscountCents = discount
	q.TotalCents = total
}
