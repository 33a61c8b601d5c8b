package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("el recurso ya existe")

	// ErrInvalidState: la operación no es válida en el estado actual del documento
	// (editar una cotización que no está en borrador, convertir una no aprobada, etc.).
	ErrInvalidState = errors.New("estado del documento no permite la operación")

	// ErrOverReservation: la cantidad pedida supera el disponible del lote al momento
	// de escribir la reserva. El caller debe reconsultar disponibilidad y ajustar.
	ErrOverReservation = errors.New("cantidad no disponible para reservar en este lote")

	// ErrInsufficientPhysicalStock: la salida física supera el stock en mano del lote.
	// Distinto de ErrOverReservation: indica inconsistencia de datos y se registra como warning.
	ErrInsufficientPhysicalStock = errors.New("stock físico insuficiente")

	// ErrConcurrencyConflict: fallo de serialización en la transacción sobre el lote.
	// Seguro de reintentar una vez (la operación recalcula disponibilidad).
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia sobre el lote")
)
