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

	"github.com/jhoicas/erp-stock/internal/application/inventory"
	"github.com/jhoicas/erp-stock/internal/application/orders"
	"github.com/jhoicas/erp-stock/internal/application/usecase"
	"github.com/jhoicas/erp-stock/internal/infrastructure/events"
	"github.com/jhoicas/erp-stock/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/erp-stock/internal/infrastructure/pdf"
	"github.com/jhoicas/erp-stock/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/erp-stock/internal/interfaces/http"
	"github.com/jhoicas/erp-stock/pkg/config"
	"github.com/jhoicas/erp-stock/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.DB.Driver).
		Str("policy", cfg.Stock.OverdraftPolicy).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var (
		txRunner inventory.TxRunner
		repos    inventory.Repos
	)
	switch cfg.DB.Driver {
	case "memory":
		store := memory.NewStore()
		txRunner, repos = store, store.Repos()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool, log); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		txRunner, repos = postgres.NewTxRunner(pool), postgres.NewRepos(pool)
	}

	var publisher inventory.MovementPublisher
	if cfg.Kafka.Enabled() {
		kp := events.NewKafkaPublisher(cfg.Kafka)
		defer func() {
			if err := kp.Close(); err != nil {
				log.Error().Err(err).Msg("cerrar publicador Kafka")
			}
		}()
		publisher = kp
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.StockTopic).Msg("publicación de movimientos activa")
	}

	policy, err := inventory.ParsePolicy(cfg.Stock.OverdraftPolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("política de sobregiro")
	}

	movements := inventory.NewMovementEngine(txRunner, repos, publisher, log)
	deductions := inventory.NewDeductionEngine(txRunner, repos, publisher, policy, log)
	critical := inventory.NewCriticalStockReport(deductions, infrapdf.NewCriticalStockPDF())
	sectorUC := usecase.NewSectorUseCase(txRunner, repos, publisher, log)
	ingredientUC := usecase.NewIngredientUseCase(repos)
	sellableUC := usecase.NewSellableUseCase(txRunner)
	orderUC := orders.NewOrderUseCase(txRunner, repos, deductions, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI: http://localhost:<port>/docs
	if cfg.HTTP.SwaggerFile != "" {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "ERP Stock API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Movements:    movements,
		Deductions:   deductions,
		Critical:     critical,
		SectorUC:     sectorUC,
		IngredientUC: ingredientUC,
		SellableUC:   sellableUC,
		OrderUC:      orderUC,
		JWTSecret:    cfg.JWT.Secret,
		Log:          log,
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
