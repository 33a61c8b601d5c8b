package entity

import "time"

// Estados de una reserva. ACTIVE es el único estado no terminal:
// ACTIVE → CANCELLED (liberación explícita), ACTIVE → CONSUMED (salida física),
// ACTIVE → EXPIRED (barrido por TTL). De los terminales no se sale.
const (
	ReservationActive    = "ACTIVE"
	ReservationCancelled = "CANCELLED"
	ReservationConsumed  = "CONSUMED"
	ReservationExpired   = "EXPIRED"
)

// Discriminante del dueño activo de la reserva: cotización o pedido.
// Durante la conversión cotización → pedido ambas referencias quedan pobladas,
// pero el tipo indica cuál manda.
const (
	ReservationTypeOrcamento = "ORCAMENTO" // reserva de cotización
	ReservationTypePedido    = "PEDIDO"    // reserva de pedido
)

// Reservation es un derecho sobre parte de la cantidad de un lote, dueña de un
// ítem de línea y alcance de cotización o pedido. La cantidad la fija siempre el
// motor; nunca se deriva del lado del cliente.
type Reservation struct {
	ID          string
	CompanyID   string
	LotID       string
	ProductID   string
	QuoteID     string // vacío si nació directo en un pedido
	OrderID     string // se puebla en la conversión
	QuoteItemID string // ítem de línea dueño (relación 1:N ítem → reservas)
	Type        string // ORCAMENTO | PEDIDO
	Status      string
	Quantity    int // cajas reservadas; ≥ 0, cero solo en CONSUMED
	ExpiresAt   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsTerminal indica si la reserva ya no admite transiciones.
func (r *Reservation) IsTerminal() bool {
	return r.Status != ReservationActive
}
