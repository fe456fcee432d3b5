package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-movimientos/internal/application/dto"
	"github.com/jhoicas/inventario-movimientos/internal/application/movement"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	SyncUC      *movement.SyncUseCase
	InsightsUC  *movement.InsightsUseCase
	SyncOptions movement.SyncOptions // defaults de POST /api/stock/sync
	StoreDriver string
}

// Router registra las rutas de la API. No hay autenticación: el servicio corre detrás del gateway.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(dto.HealthResponse{Status: "ok", Store: deps.StoreDriver})
	})

	api := app.Group("/api")

	stock := api.Group("/stock")
	stockHandler := NewStockHandler(deps.SyncUC, deps.InsightsUC, deps.SyncOptions)
	stock.Post("/sync", stockHandler.SyncMany)
	stock.Post("/:sku/sync", stockHandler.SyncOne)
	stock.Get("/:sku/analysis", stockHandler.GetAnalysis)
	stock.Get("/:sku/hot-score", stockHandler.GetHotScore)

	insights := api.Group("/insights")
	insightsHandler := NewInsightsHandler(deps.InsightsUC)
	insights.Post("/report", insightsHandler.BuildReport)
	insights.Get("/report", insightsHandler.CatalogReport)
	insights.Get("/report.pdf", insightsHandler.CatalogReportPDF)
}
