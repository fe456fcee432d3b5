package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-movimientos/internal/application/dto"
	"github.com/jhoicas/inventario-movimientos/internal/application/movement"
)

// InsightsHandler maneja los reportes agregados.
type InsightsHandler struct {
	uc *movement.InsightsUseCase
}

// NewInsightsHandler construye el handler.
func NewInsightsHandler(uc *movement.InsightsUseCase) *InsightsHandler {
	return &InsightsHandler{uc: uc}
}

// BuildReport godoc
// @Summary      Reporte agregado para una lista de productos
// @Tags         insights
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReportRequest  true  "Productos con su relevancia"
// @Success      200   {object}  dto.AggregateReportDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/insights/report [post]
func (h *InsightsHandler) BuildReport(c *fiber.Ctx) error {
	var in dto.ReportRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if len(in.Products) == 0 {
		return badRequest(c, "VALIDATION", "products es requerido")
	}
	for _, p := range in.Products {
		if p.Relevance < 0 || p.Relevance > 1 {
			return badRequest(c, "VALIDATION", "relevance debe estar entre 0 y 1 ("+p.SKU+")")
		}
	}
	out, err := h.uc.BuildReportFromInputs(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CatalogReport godoc
// @Summary      Reporte agregado de todo el catálogo
// @Tags         insights
// @Produce      json
// @Param        window_days  query  int  false  "Ventana en días"  default(30)
// @Success      200  {object}  dto.AggregateReportDTO
// @Router       /api/insights/report [get]
func (h *InsightsHandler) CatalogReport(c *fiber.Ctx) error {
	out, err := h.uc.BuildCatalogReport(c.UserContext(), c.QueryInt("window_days", 0))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CatalogReportPDF godoc
// @Summary      Reporte de catálogo en PDF
// @Tags         insights
// @Produce      application/pdf
// @Param        window_days  query  int  false  "Ventana en días"  default(30)
// @Success      200  {file}  binary
// @Router       /api/insights/report.pdf [get]
func (h *InsightsHandler) CatalogReportPDF(c *fiber.Ctx) error {
	data, err := h.uc.ExportReportPDF(c.UserContext(), c.QueryInt("window_days", 0))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="reporte-movimientos.pdf"`)
	return c.Send(data)
}
