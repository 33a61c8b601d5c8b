package entity

import "time"

// Tipos de movimiento de stock.
const (
	MovementTypeIN     = "IN"     // entrada (creación de lote)
	MovementTypeOUT    = "OUT"    // salida física
	MovementTypeADJUST = "ADJUST" // ajuste manual
)

// StockMovement registra cada cambio físico de stock para auditoría.
// Toda transición de reserva debe poder atribuirse a la operación que la causó;
// los movimientos OUT llevan el pedido que los originó cuando existe.
type StockMovement struct {
	ID        string
	CompanyID string
	ProductID string
	LotID     string
	OrderID   string // vacío en entradas y ajustes
	Type      string
	Quantity  int // cajas movidas; negativo en ajustes de baja
	Reason    string
	CreatedAt time.Time
}
