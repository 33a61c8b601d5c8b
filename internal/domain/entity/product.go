package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto vendible (pisos, revestimientos, porcelanato).
// La identidad es inmutable; los atributos comerciales los administra el catálogo.
type Product struct {
	ID          string
	CompanyID   string
	Name        string
	SKU         string
	Unit        string          // unidad de venta: "caja", "m2", "un"
	BoxCoverage decimal.Decimal // m² que cubre una caja; cero = sin conversión por área
	MinStock    int             // umbral de alerta de stock mínimo, en cajas
	Active      bool
	CreatedAt   time.Time
}

// HasBoxCoverage indica si el producto permite conversión área → cajas.
func (p *Product) HasBoxCoverage() bool {
	return p.BoxCoverage.GreaterThan(decimal.Zero)
}
