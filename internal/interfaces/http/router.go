package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/revestimientos-api/internal/application/quotes"
	"github.com/jhoicas/revestimientos-api/internal/application/reservations"
	"github.com/jhoicas/revestimientos-api/internal/application/stock"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	QuoteUC   *quotes.QuoteUseCase
	ReserveUC *reservations.ReserveUseCase
	AvailUC   *reservations.AvailabilityUseCase
	ItemsUC   *reservations.LineItemUseCase
	ConvertUC *reservations.ConvertUseCase
	ExitUC    *reservations.StockExitUseCase
	ExpireUC  *reservations.ExpireUseCase
	StockUC   *stock.StockUseCase
	JWTSecret string
}

// Router registra las rutas de la API. Todo el negocio va detrás del Bearer
// Token: el tenant sale del JWT, nunca de la URL ni del body.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Cotizaciones y su ciclo de vida
	quoteHandler := NewQuoteHandler(deps.QuoteUC, deps.ItemsUC, deps.ConvertUC)
	reservationHandler := NewReservationHandler(deps.ReserveUC, deps.AvailUC, deps.ExpireUC)

	quotesGroup := protected.Group("/quotes")
	quotesGroup.Post("/", quoteHandler.Create)
	quotesGroup.Get("/", quoteHandler.List)
	quotesGroup.Get("/:id", quoteHandler.Get)
	quotesGroup.Delete("/:id", quoteHandler.Delete)
	quotesGroup.Post("/:id/send", quoteHandler.Send)
	quotesGroup.Post("/:id/approve", quoteHandler.Approve)
	quotesGroup.Post("/:id/items", quoteHandler.AddItem)
	quotesGroup.Post("/:id/convert", quoteHandler.Convert)
	quotesGroup.Post("/:id/reserve", reservationHandler.Reserve)
	quotesGroup.Get("/:id/availability", reservationHandler.CheckAvailability)

	// Ítems de cotización (edición por ID de ítem)
	items := protected.Group("/quote-items")
	items.Put("/:itemId", quoteHandler.UpdateItem)
	items.Delete("/:itemId", quoteHandler.RemoveItem)

	// Reservas (mantenimiento)
	reservationsGroup := protected.Group("/reservations")
	reservationsGroup.Post("/expire", reservationHandler.ExpireStale)

	// Stock: entradas, salidas y consulta
	stockHandler := NewStockHandler(deps.StockUC, deps.ExitUC)
	stockGroup := protected.Group("/stock")
	stockGroup.Post("/entries", stockHandler.AddStock)
	stockGroup.Post("/exits", stockHandler.Exit)
	stockGroup.Get("/products/:productId", stockHandler.GetProductStock)
	stockGroup.Get("/products/:productId/movements", stockHandler.ListMovements)
}
