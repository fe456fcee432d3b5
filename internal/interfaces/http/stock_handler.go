package http

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-movimientos/internal/application/dto"
	"github.com/jhoicas/inventario-movimientos/internal/application/movement"
)

// maxSyncSKUs tope de SKUs por petición de sincronización por lotes.
const maxSyncSKUs = 500

// StockHandler maneja sincronización y análisis por SKU.
type StockHandler struct {
	sync     *movement.SyncUseCase
	insights *movement.InsightsUseCase
	defaults movement.SyncOptions
}

// NewStockHandler construye el handler. defaults aplica cuando el body no trae batch_size o delay.
func NewStockHandler(sync *movement.SyncUseCase, insights *movement.InsightsUseCase, defaults movement.SyncOptions) *StockHandler {
	return &StockHandler{sync: sync, insights: insights, defaults: defaults}
}

// SyncOne godoc
// @Summary      Sincronizar un SKU
// @Tags         stock
// @Produce      json
// @Param        sku    path   string  true   "SKU"
// @Param        force  query  bool    false  "Ignorar la compuerta de frescura"
// @Success      200    {object}  dto.SyncResultDTO
// @Failure      502    {object}  dto.SyncResultDTO
// @Router       /api/stock/{sku}/sync [post]
func (h *StockHandler) SyncOne(c *fiber.Ctx) error {
	sku := strings.TrimSpace(c.Params("sku"))
	if sku == "" {
		return badRequest(c, "MISSING_SKU", "sku es requerido")
	}
	res := h.sync.SyncOne(c.UserContext(), sku, c.QueryBool("force", false))
	out := toSyncResultDTO(res)
	if res.Status == movement.StatusFailed {
		status, _ := errorStatus(res.Err)
		return c.Status(status).JSON(out)
	}
	return c.JSON(out)
}

// SyncMany godoc
// @Summary      Sincronizar SKUs por lotes
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SyncManyRequest  true  "SKUs y opciones"
// @Success      200   {object}  dto.BatchSyncResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock/sync [post]
func (h *StockHandler) SyncMany(c *fiber.Ctx) error {
	var in dto.SyncManyRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	skus := make([]string, 0, len(in.SKUs))
	for _, s := range in.SKUs {
		if s = strings.TrimSpace(s); s != "" {
			skus = append(skus, s)
		}
	}
	if len(skus) == 0 {
		return badRequest(c, "VALIDATION", "skus es requerido")
	}
	if len(skus) > maxSyncSKUs {
		return badRequest(c, "VALIDATION", "máximo "+strconv.Itoa(maxSyncSKUs)+" skus por petición")
	}
	if in.InterBatchDelayMs != nil && *in.InterBatchDelayMs < 0 {
		return badRequest(c, "VALIDATION", "inter_batch_delay_ms no puede ser negativo")
	}

	opts := h.defaults
	opts.Force = in.Force
	if in.BatchSize > 0 {
		opts.BatchSize = in.BatchSize
	}
	if in.InterBatchDelayMs != nil {
		d := time.Duration(*in.InterBatchDelayMs) * time.Millisecond
		opts.InterBatchDelay = &d
	}

	report := h.sync.SyncMany(c.UserContext(), skus, opts)
	out := dto.BatchSyncResponse{
		Total:   len(report.Results),
		Synced:  report.Synced,
		Skipped: report.Skipped,
		Failed:  report.Failed,
		Batches: report.Batches,
		Results: make([]dto.SyncResultDTO, 0, len(report.Results)),
	}
	for _, r := range report.Results {
		out.Results = append(out.Results, toSyncResultDTO(r))
	}
	return c.JSON(out)
}

// GetAnalysis godoc
// @Summary      Análisis de movimientos de un SKU
// @Tags         stock
// @Produce      json
// @Param        sku          path   string  true   "SKU"
// @Param        window_days  query  int     false  "Ventana en días"  default(30)
// @Success      200  {object}  movement.Analysis
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{sku}/analysis [get]
func (h *StockHandler) GetAnalysis(c *fiber.Ctx) error {
	window := c.QueryInt("window_days", 0)
	if window < 0 || window > 3650 {
		return badRequest(c, "VALIDATION", "window_days fuera de rango")
	}
	out, err := h.insights.GetAnalysis(c.UserContext(), c.Params("sku"), window)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetHotScore godoc
// @Summary      Hot score de un SKU
// @Tags         stock
// @Produce      json
// @Param        sku        path   string  true   "SKU"
// @Param        relevance  query  number  false  "Relevancia 0..1; si se omite se consulta la señal almacenada"
// @Success      200  {object}  dto.HotScoreDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{sku}/hot-score [get]
func (h *StockHandler) GetHotScore(c *fiber.Ctx) error {
	relevance := -1.0
	if raw := c.Query("relevance"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || v > 1 {
			return badRequest(c, "VALIDATION", "relevance debe estar entre 0 y 1")
		}
		relevance = v
	}
	out, err := h.insights.GetHotScore(c.UserContext(), c.Params("sku"), relevance)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func toSyncResultDTO(r movement.SyncResult) dto.SyncResultDTO {
	out := dto.SyncResultDTO{SKU: r.SKU, Status: string(r.Status)}
	switch r.Status {
	case movement.StatusFailed:
		if r.Err != nil {
			out.Error = r.Err.Error()
		}
	case movement.StatusSkipped:
		out.Reason = r.Reason
	}
	if r.Record != nil {
		stock := r.Record.CurrentStock
		out.CurrentStock = &stock
		out.Movements = len(r.Record.MovementHistory)
	}
	return out
}
