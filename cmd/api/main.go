package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/revestimientos-api/internal/application/quotes"
	"github.com/jhoicas/revestimientos-api/internal/application/reservations"
	"github.com/jhoicas/revestimientos-api/internal/application/stock"
	"github.com/jhoicas/revestimientos-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/revestimientos-api/internal/interfaces/http"
	"github.com/jhoicas/revestimientos-api/pkg/config"
	"github.com/jhoicas/revestimientos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Repos ligados al pool: solo para lecturas fuera de transacción.
	// Las escrituras con invariantes (reservas, salidas, conversión) pasan
	// por el TxRunner, que entrega repos ligados a la transacción.
	txRunner := postgres.NewTxRunner(pool)
	quoteRepo := postgres.NewQuoteRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	lotRepo := postgres.NewLotRepository(pool)
	resRepo := postgres.NewReservationRepository(pool)
	movRepo := postgres.NewStockMovementRepository(pool)

	quoteUC := quotes.NewQuoteUseCase(quoteRepo, productRepo)
	reserveUC := reservations.NewReserveUseCase(
		txRunner, quoteRepo, lotRepo, resRepo, cfg.Reservation.TTLDays, log,
	)
	availUC := reservations.NewAvailabilityUseCase(quoteRepo, lotRepo)
	itemsUC := reservations.NewLineItemUseCase(
		txRunner, productRepo,
		reservations.Policy{AutoReserveOnIncrease: cfg.Reservation.AutoReserveOnIncrease},
		cfg.Reservation.TTLDays,
	)
	convertUC := reservations.NewConvertUseCase(txRunner, log)
	exitUC := reservations.NewStockExitUseCase(txRunner, log)
	expireUC := reservations.NewExpireUseCase(resRepo, log)
	stockUC := stock.NewStockUseCase(txRunner, productRepo, lotRepo, movRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Revestimientos API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		QuoteUC:   quoteUC,
		ReserveUC: reserveUC,
		AvailUC:   availUC,
		ItemsUC:   itemsUC,
		ConvertUC: convertUC,
		ExitUC:    exitUC,
		ExpireUC:  expireUC,
		StockUC:   stockUC,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
