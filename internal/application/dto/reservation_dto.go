package dto

// Estados de disponibilidad por ítem y por documento.
const (
	ItemAvailable = "AVAILABLE"
	ItemPartial   = "PARTIAL"
	ItemNone      = "NONE"

	OverallFull    = "FULL"
	OverallPartial = "PARTIAL"
	OverallNone    = "NONE"
)

// ItemAvailability disponibilidad de un ítem: cuánto pide, cuánto hay sumando
// todos los lotes del producto y cuánto falta. Señal consultiva, no un lock.
type ItemAvailability struct {
	QuoteItemID string `json:"quote_item_id"`
	ProductID   string `json:"product_id"`
	Required    int    `json:"required"`
	Available   int    `json:"available"`
	Missing     int    `json:"missing"`
	Status      string `json:"status"` // AVAILABLE | PARTIAL | NONE
}

// AvailabilityReport resultado de checkAvailability para una cotización.
type AvailabilityReport struct {
	QuoteID       string             `json:"quote_id"`
	OverallStatus string             `json:"overall_status"` // FULL | PARTIAL | NONE
	Items         []ItemAvailability `json:"items"`
}

// ReservedItem resultado de reservar un ítem: reservado X de Y pedido.
// Una reserva parcial es un resultado esperado, no un error.
type ReservedItem struct {
	QuoteItemID     string `json:"quote_item_id"`
	ProductID       string `json:"product_id"`
	Requested       int    `json:"requested"`
	AlreadyReserved int    `json:"already_reserved"`
	NewlyReserved   int    `json:"newly_reserved"`
}

// ReserveResult resumen de la operación de reserva sobre una cotización.
type ReserveResult struct {
	QuoteID string         `json:"quote_id"`
	Items   []ReservedItem `json:"items"`
}
