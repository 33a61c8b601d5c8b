package entity

import "time"

// Lot representa un lote físico de un producto: una partida con su propia cantidad
// en mano y atributos descriptivos (tonalidad, calibre). Los lotes los crea la
// entrada de stock; el motor de reservas solo los decrementa en la salida física.
type Lot struct {
	ID             string
	CompanyID      string
	ProductID      string
	LotNumber      string
	Shade          string // tonalidad; solo preferencia de asignación, nunca aritmética
	Caliber        string // calibre; ídem
	OnHand         int    // cantidad física en cajas
	ExpirationDate *time.Time
	CreatedAt      time.Time
}

// LotAvailability es la vista de disponibilidad de un lote:
// disponible = en mano − suma de reservas ACTIVAS.
type LotAvailability struct {
	LotID     string
	LotNumber string
	OnHand    int
	Reserved  int
	Available int
}
