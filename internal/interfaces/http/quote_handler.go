package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/revestimientos-api/internal/application/dto"
	"github.com/jhoicas/revestimientos-api/internal/application/quotes"
	"github.com/jhoicas/revestimientos-api/internal/application/reservations"
)

// QuoteHandler maneja las peticiones HTTP de cotizaciones (protegido).
type QuoteHandler struct {
	uc      *quotes.QuoteUseCase
	items   *reservations.LineItemUseCase
	convert *reservations.ConvertUseCase
}

// NewQuoteHandler construye el handler.
func NewQuoteHandler(uc *quotes.QuoteUseCase, items *reservations.LineItemUseCase, convert *reservations.ConvertUseCase) *QuoteHandler {
	return &QuoteHandler{uc: uc, items: items, convert: convert}
}

// Create godoc
// @Summary      Crear una cotización en borrador
// @Tags         quotes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateQuoteRequest  true  "ítems con input_area (m²) o quantity_boxes"
// @Success      201   {object}  entity.Quote
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/quotes [post]
func (h *QuoteHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	sellerID := GetUserID(c)

	var in dto.CreateQuoteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	quote, err := h.uc.Create(c.Context(), companyID, sellerID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(quote)
}

// Get godoc
// @Summary      Obtener una cotización con sus ítems
// @Tags         quotes
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la cotización"
// @Success      200  {object}  entity.Quote
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/quotes/{id} [get]
func (h *QuoteHandler) Get(c *fiber.Ctx) error {
	quote, err := h.uc.Get(GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(quote)
}

// List godoc
// @Summary      Listar cotizaciones
// @Tags         quotes
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "DRAFT | SENT | APPROVED | CONVERTED"
// @Success      200  {array}  entity.Quote
// @Router       /api/quotes [get]
func (h *QuoteHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.List(GetCompanyID(c), c.Query("status"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "quotes": list})
}

// Send godoc
// @Summary      Enviar la cotización al cliente (DRAFT → SENT)
// @Tags         quotes
// @Security     Bearer
// @Param        id  path  string  true  "ID de la cotización"
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/quotes/{id}/send [post]
func (h *QuoteHandler) Send(c *fiber.Ctx) error {
	if err := h.uc.Send(GetCompanyID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "cotización enviada"})
}

// Approve godoc
// @Summary      Aprobar la cotización (SENT → APPROVED)
// @Tags         quotes
// @Security     Bearer
// @Param        id  path  string  true  "ID de la cotización"
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/quotes/{id}/approve [post]
func (h *QuoteHandler) Approve(c *fiber.Ctx) error {
	if err := h.uc.Approve(GetCompanyID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "cotización aprobada"})
}

// Delete godoc
// @Summary      Eliminar una cotización en borrador
// @Tags         quotes
// @Security     Bearer
// @Param        id  path  string  true  "ID de la cotización"
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/quotes/{id} [delete]
func (h *QuoteHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(GetCompanyID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "cotización eliminada"})
}

// AddItem godoc
// @Summary      Agregar un ítem a una cotización en borrador
// @Tags         quotes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID de la cotización"
// @Param        body  body  dto.QuoteItemRequest true  "input_area o quantity_boxes"
// @Success      201   {object}  entity.QuoteItem
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/quotes/{id}/items [post]
func (h *QuoteHandler) AddItem(c *fiber.Ctx) error {
	var in dto.QuoteItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	item, err := h.uc.AddItem(GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// UpdateItem godoc
// @Summary      Editar la cantidad de un ítem (solo borrador)
// @Description  Bajar la cantidad libera reservas en exceso en la misma operación.
// @Tags         quotes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        itemId  path  string                     true  "ID del ítem"
// @Param        body    body  dto.UpdateQuoteItemRequest true  "input_area o quantity_boxes"
// @Success      200     {object}  entity.QuoteItem
// @Failure      409     {object}  dto.ErrorResponse
// @Router       /api/quote-items/{itemId} [put]
func (h *QuoteHandler) UpdateItem(c *fiber.Ctx) error {
	var in dto.UpdateQuoteItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	item, err := h.items.EditQuantity(c.Context(), GetCompanyID(c), c.Params("itemId"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

// RemoveItem godoc
// @Summary      Quitar un ítem de una cotización en borrador
// @Description  Cancela las reservas activas del ítem y recalcula los totales.
// @Tags         quotes
// @Security     Bearer
// @Param        itemId  path  string  true  "ID del ítem"
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/quote-items/{itemId} [delete]
func (h *QuoteHandler) RemoveItem(c *fiber.Ctx) error {
	if err := h.items.Remove(c.Context(), GetCompanyID(c), c.Params("itemId")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "ítem eliminado"})
}

// Convert godoc
// @Summary      Convertir una cotización aprobada en pedido
// @Description  Crea el pedido y re-apunta las reservas activas en una sola transacción.
// @Tags         quotes
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la cotización"
// @Success      201  {object}  entity.Order
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/quotes/{id}/convert [post]
func (h *QuoteHandler) Convert(c *fiber.Ctx) error {
	order, err := h.convert.ConvertToOrder(c.Context(), GetCompanyID(c), c.Params("id"), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}
