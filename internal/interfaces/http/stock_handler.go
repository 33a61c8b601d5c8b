package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/revestimientos-api/internal/application/dto"
	"github.com/jhoicas/revestimientos-api/internal/application/reservations"
	"github.com/jhoicas/revestimientos-api/internal/application/stock"
)

// StockHandler maneja entradas, salidas y consultas de stock (protegido).
type StockHandler struct {
	uc   *stock.StockUseCase
	exit *reservations.StockExitUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *stock.StockUseCase, exit *reservations.StockExitUseCase) *StockHandler {
	return &StockHandler{uc: uc, exit: exit}
}

// AddStock godoc
// @Summary      Registrar una entrada de stock (crea un lote nuevo)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AddStockRequest  true  "product_id, lot_number, quantity, shade, caliber"
// @Success      201   {object}  entity.Lot
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock/entries [post]
func (h *StockHandler) AddStock(c *fiber.Ctx) error {
	var in dto.AddStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	lot, err := h.uc.AddStock(c.Context(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(lot)
}

// Exit godoc
// @Summary      Registrar una salida física de stock
// @Description  Consume las reservas del pedido lote a lote (FIFO por vencimiento)
// @Description  y recién después decrementa el en mano. El excedente sin reserva
// @Description  se registra como movimiento suelto.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Param        body  body  dto.StockExitRequest  true  "order_id opcional, product_id, quantity"
// @Success      200   {object}  map[string]string
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/exits [post]
func (h *StockHandler) Exit(c *fiber.Ctx) error {
	var in dto.StockExitRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.exit.ConsumeForExit(c.Context(), GetCompanyID(c), in); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "salida registrada"})
}

// GetProductStock godoc
// @Summary      Stock de un producto con detalle por lote
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductStockDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/products/{productId} [get]
func (h *StockHandler) GetProductStock(c *fiber.Ctx) error {
	out, err := h.uc.GetProductStock(c.Context(), GetCompanyID(c), c.Params("productId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Auditoría de movimientos físicos de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId  path   string  true   "ID del producto"
// @Param        limit      query  int     false  "máx. filas (default 20)"
// @Param        offset     query  int     false  "desplazamiento"
// @Success      200  {array}  entity.StockMovement
// @Router       /api/stock/products/{productId}/movements [get]
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	list, err := h.uc.ListMovements(c.Context(), GetCompanyID(c), c.Params("productId"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "movements": list})
}
