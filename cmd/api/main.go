package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/inventario-movimientos/internal/application/movement"
	"github.com/jhoicas/inventario-movimientos/internal/application/ports"
	"github.com/jhoicas/inventario-movimientos/internal/domain/repository"
	"github.com/jhoicas/inventario-movimientos/internal/infrastructure/inventoryapi"
	"github.com/jhoicas/inventario-movimientos/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/inventario-movimientos/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-movimientos/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-movimientos/internal/infrastructure/redisstore"
	httpRouter "github.com/jhoicas/inventario-movimientos/internal/interfaces/http"
	"github.com/jhoicas/inventario-movimientos/pkg/config"
	"github.com/jhoicas/inventario-movimientos/pkg/logger"
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
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// El catálogo y la relevancia viven siempre en PostgreSQL; el store de registros es intercambiable.
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("aplicar migraciones")
	}

	var records repository.StockRecordRepository
	switch cfg.Store.Driver {
	case config.StoreRedis:
		rdb, err := redisstore.NewRedis(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		records = redisstore.NewStockRecordRepository(rdb, cfg.Redis.KeyPrefix)
	case config.StoreMemory:
		log.Warn().Msg("store en memoria: los registros se pierden al reiniciar")
		records = memory.NewStockRecordRepository()
	default:
		records = postgres.NewStockRecordRepository(pool)
	}

	productRepo := postgres.NewProductRepository(pool)
	var relevance ports.RelevanceProvider = postgres.NewRelevanceRepository(pool)

	source := inventoryapi.NewClient(cfg.Inventory.BaseURL, cfg.Inventory.APIKey, cfg.Inventory.Timeout)
	fetcher := movement.NewMovementFetcher(source, nil, log)

	delay := cfg.Sync.InterBatchDelay
	syncOpts := movement.SyncOptions{BatchSize: cfg.Sync.BatchSize, InterBatchDelay: &delay}

	syncUC := movement.NewSyncUseCase(records, fetcher, movement.SyncDeps{
		Locker: movement.NewKeyedMutex(),
		Logger: log,
	})
	insightsUC := movement.NewInsightsUseCase(records, movement.InsightsDeps{
		Products:   productRepo,
		Relevance:  relevance,
		PDF:        infrapdf.NewMarotoReportGenerator(cfg.App.Name),
		WindowDays: cfg.Analysis.WindowDays,
		Logger:     log,
	})

	scheduler := movement.NewScheduler(syncUC, productRepo, cfg.Sync.Interval, syncOpts, log)
	go scheduler.Run(ctx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Minute * 2, // POST /api/stock/sync espera entre lotes
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Inventario Movimientos API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		SyncUC:      syncUC,
		InsightsUC:  insightsUC,
		SyncOptions: syncOpts,
		StoreDriver: cfg.Store.Driver,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
