package dto

import "github.com/shopspring/decimal"

// CreateQuoteRequest alta de una cotización con sus ítems.
type CreateQuoteRequest struct {
	CustomerID      string             `json:"customer_id"`
	ValidUntil      string             `json:"valid_until"` // RFC 3339, opcional
	DiscountCents   int64              `json:"discount_cents"`
	DiscountPercent decimal.Decimal    `json:"discount_percent"`
	DeliveryFee     int64              `json:"delivery_fee_cents"`
	Notes           string             `json:"notes"`
	Items           []QuoteItemRequest `json:"items"`
}

// QuoteItemRequest un ítem de cotización. Se informa input_area (m²) O
// quantity_boxes; con área, las cajas se calculan con la cobertura del producto.
type QuoteItemRequest struct {
	ProductID       string          `json:"product_id"`
	InputArea       decimal.Decimal `json:"input_area"`
	QuantityBoxes   int             `json:"quantity_boxes"`
	UnitPriceCents  int64           `json:"unit_price_cents"`
	DiscountCents   int64           `json:"discount_cents"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	PreferredLotID  string          `json:"preferred_lot_id"`
	Notes           string          `json:"notes"`
}

// UpdateQuoteItemRequest edición de cantidad de un ítem (solo en borrador).
type UpdateQuoteItemRequest struct {
	InputArea     decimal.Decimal `json:"input_area"`
	QuantityBoxes int             `json:"quantity_boxes"`
}
