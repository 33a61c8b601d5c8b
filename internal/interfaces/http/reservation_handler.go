package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/revestimientos-api/internal/application/reservations"
)

// ReservationHandler maneja las peticiones HTTP del motor de reservas (protegido).
type ReservationHandler struct {
	reserve *reservations.ReserveUseCase
	avail   *reservations.AvailabilityUseCase
	expire  *reservations.ExpireUseCase
}

// NewReservationHandler construye el handler.
func NewReservationHandler(
	reserve *reservations.ReserveUseCase,
	avail *reservations.AvailabilityUseCase,
	expire *reservations.ExpireUseCase,
) *ReservationHandler {
	return &ReservationHandler{reserve: reserve, avail: avail, expire: expire}
}

// Reserve godoc
// @Summary      Reservar stock para los ítems de una cotización
// @Description  Idempotente: los ítems ya cubiertos se omiten. Un resultado
// @Description  parcial (reservado X de Y) es respuesta normal, no error.
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la cotización"
// @Success      200  {object}  dto.ReserveResult
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/quotes/{id}/reserve [post]
func (h *ReservationHandler) Reserve(c *fiber.Ctx) error {
	result, err := h.reserve.Reserve(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// CheckAvailability godoc
// @Summary      Consultar disponibilidad para una cotización
// @Description  Señal consultiva por ítem y agregada; no toma ningún lock.
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la cotización"
// @Success      200  {object}  dto.AvailabilityReport
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/quotes/{id}/availability [get]
func (h *ReservationHandler) CheckAvailability(c *fiber.Ctx) error {
	report, err := h.avail.CheckAvailability(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

// ExpireStale godoc
// @Summary      Expirar reservas vencidas de la empresa
// @Description  Barrido idempotente ACTIVE → EXPIRED; normalmente lo dispara un cron.
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]int64
// @Router       /api/reservations/expire [post]
func (h *ReservationHandler) ExpireStale(c *fiber.Ctx) error {
	count, err := h.expire.ExpireStale(c.Context(), GetCompanyID(c), time.Now())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"expired": count})
}
