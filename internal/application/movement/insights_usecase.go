package movement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-movimientos/internal/application/dto"
	"github.com/jhoicas/inventario-movimientos/internal/application/ports"
	"github.com/jhoicas/inventario-movimientos/internal/domain"
	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
	"github.com/jhoicas/inventario-movimientos/internal/domain/movement"
	"github.com/jhoicas/inventario-movimientos/internal/domain/repository"
	"github.com/jhoicas/inventario-movimientos/pkg/logger"
)

// InsightsUseCase lectura de registros almacenados: análisis, hot score y reportes agregados.
// No dispara sincronizaciones.
type InsightsUseCase struct {
	repo       repository.StockRecordRepository
	products   repository.ProductRepository
	relevance  ports.RelevanceProvider
	pdf        ports.ReportPDFGenerator
	clock      Clock
	windowDays int
	log        *logger.Logger
}

// InsightsDeps colaboradores opcionales de InsightsUseCase.
type InsightsDeps struct {
	Products   repository.ProductRepository // requerido solo para BuildCatalogReport
	Relevance  ports.RelevanceProvider      // nil = relevancia 0
	PDF        ports.ReportPDFGenerator     // requerido solo para ExportReportPDF
	Clock      Clock
	WindowDays int // <= 0 usa movement.DefaultWindowDays
	Logger     *logger.Logger
}

// NewInsightsUseCase construye el caso de uso.
func NewInsightsUseCase(repo repository.StockRecordRepository, deps InsightsDeps) *InsightsUseCase {
	window := deps.WindowDays
	if window <= 0 {
		window = movement.DefaultWindowDays
	}
	return &InsightsUseCase{
		repo:       repo,
		products:   deps.Products,
		relevance:  deps.Relevance,
		pdf:        deps.PDF,
		clock:      deps.Clock,
		windowDays: window,
		log:        logger.OrNop(deps.Logger).Component("insights"),
	}
}

func (uc *InsightsUseCase) window(windowDays int) int {
	if windowDays <= 0 {
		return uc.windowDays
	}
	return windowDays
}

func (uc *InsightsUseCase) load(ctx context.Context, sku string) (*entity.StockRecord, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, domain.ErrInvalidInput
	}
	rec, err := uc.repo.Get(ctx, sku)
	if err != nil {
		return nil, fmt.Errorf("leer registro %s: %w", sku, err)
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

// GetAnalysis analiza el registro almacenado de sku. domain.ErrNotFound si nunca se sincronizó.
func (uc *InsightsUseCase) GetAnalysis(ctx context.Context, sku string, windowDays int) (movement.Analysis, error) {
	rec, err := uc.load(ctx, sku)
	if err != nil {
		return movement.Analysis{}, err
	}
	return movement.AnalyzeRecord(rec, uc.window(windowDays), uc.clock.now()), nil
}

// GetHotScore calcula el hot score de sku con la ventana por defecto.
// relevance < 0 consulta el RelevanceProvider por el ProductID del registro.
func (uc *InsightsUseCase) GetHotScore(ctx context.Context, sku string, relevance float64) (dto.HotScoreDTO, error) {
	rec, err := uc.load(ctx, sku)
	if err != nil {
		return dto.HotScoreDTO{}, err
	}
	if relevance < 0 {
		sig, err := uc.signal(ctx, rec.ProductID)
		if err != nil {
			return dto.HotScoreDTO{}, err
		}
		relevance = sig.Relevance
	}
	a := movement.AnalyzeRecord(rec, uc.windowDays, uc.clock.now())
	return dto.HotScoreDTO{
		SKU:       rec.SKU,
		HotScore:  movement.HotScore(a, relevance),
		Relevance: relevance,
		AgeBucket: string(a.AgeBucket),
	}, nil
}

func (uc *InsightsUseCase) signal(ctx context.Context, productID string) (dto.RelevanceSignal, error) {
	if uc.relevance == nil || productID == "" {
		return dto.RelevanceSignal{}, nil
	}
	sig, err := uc.relevance.Relevance(ctx, productID)
	if err != nil {
		return dto.RelevanceSignal{}, fmt.Errorf("relevancia %s: %w", productID, err)
	}
	return sig, nil
}

// BuildAggregateReport agrega tuplas ya calculadas por el llamador.
func (uc *InsightsUseCase) BuildAggregateReport(items []movement.ProductInsight, windowDays int) *dto.AggregateReportDTO {
	window := uc.window(windowDays)
	return toReportDTO(movement.BuildReport(items, window), window, uc.clock.now())
}

// BuildReportFromInputs arma las tuplas analizando el registro almacenado de cada SKU.
// Los SKUs sin registro se listan en Skipped; un error de lectura aborta el reporte.
func (uc *InsightsUseCase) BuildReportFromInputs(ctx context.Context, req dto.ReportRequest) (*dto.AggregateReportDTO, error) {
	window := uc.window(req.WindowDays)
	now := uc.clock.now()
	items := make([]movement.ProductInsight, 0, len(req.Products))
	var skipped []string

	for _, in := range req.Products {
		rec, err := uc.load(ctx, in.SKU)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) {
				skipped = append(skipped, in.SKU)
				continue
			}
			return nil, err
		}
		sig := dto.RelevanceSignal{
			Relevance:         in.Relevance,
			TotalInteractions: in.TotalInteractions,
			UserCount:         in.UserCount,
		}
		items = append(items, insightFor(rec, in.Category, sig, window, now))
	}

	out := toReportDTO(movement.BuildReport(items, window), window, now)
	out.Skipped = skipped
	return out, nil
}

// BuildCatalogReport recorre el catálogo de productos, toma el registro almacenado y la
// relevancia de cada uno y construye el reporte.
func (uc *InsightsUseCase) BuildCatalogReport(ctx context.Context, windowDays int) (*dto.AggregateReportDTO, error) {
	if uc.products == nil {
		return nil, fmt.Errorf("%w: catálogo de productos no configurado", domain.ErrInvalidInput)
	}
	window := uc.window(windowDays)
	now := uc.clock.now()

	catalog, err := uc.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar catálogo: %w", err)
	}

	items := make([]movement.ProductInsight, 0, len(catalog))
	var skipped []string
	for _, p := range catalog {
		rec, err := uc.repo.Get(ctx, p.SKU)
		if err != nil {
			return nil, fmt.Errorf("leer registro %s: %w", p.SKU, err)
		}
		if rec == nil {
			skipped = append(skipped, p.SKU)
			continue
		}
		if rec.ProductID == "" {
			rec.ProductID = p.ID
		}
		if rec.ProductName == "" {
			rec.ProductName = p.Name
		}
		sig, err := uc.signal(ctx, rec.ProductID)
		if err != nil {
			uc.log.Warn().Str("sku", p.SKU).Err(err).Msg("relevancia no disponible, se usa 0")
			sig = dto.RelevanceSignal{}
		}
		items = append(items, insightFor(rec, p.Category, sig, window, now))
	}

	uc.log.Info().
		Int("products", len(catalog)).
		Int("analyzed", len(items)).
		Int("skipped", len(skipped)).
		Msg("reporte de catálogo generado")

	out := toReportDTO(movement.BuildReport(items, window), window, now)
	out.Skipped = skipped
	return out, nil
}

// ExportReportPDF genera el reporte de catálogo y lo renderiza a PDF.
func (uc *InsightsUseCase) ExportReportPDF(ctx context.Context, windowDays int) ([]byte, error) {
	if uc.pdf == nil {
		return nil, fmt.Errorf("%w: generador PDF no configurado", domain.ErrInvalidInput)
	}
	report, err := uc.BuildCatalogReport(ctx, windowDays)
	if err != nil {
		return nil, err
	}
	data, err := uc.pdf.GenerateReportPDF(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("generar pdf: %w", err)
	}
	return data, nil
}

func insightFor(rec *entity.StockRecord, category string, sig dto.RelevanceSignal, window int, now time.Time) movement.ProductInsight {
	a := movement.AnalyzeRecord(rec, window, now)
	return movement.ProductInsight{
		ProductID:         rec.ProductID,
		SKU:               rec.SKU,
		Name:              rec.ProductName,
		Category:          category,
		CurrentStock:      rec.CurrentStock,
		Analysis:          a,
		HotScore:          movement.HotScore(a, sig.Relevance),
		Relevance:         sig.Relevance,
		TotalInteractions: sig.TotalInteractions,
		UserCount:         sig.UserCount,
	}
}

func toReportDTO(r movement.AggregateReport, window int, now time.Time) *dto.AggregateReportDTO {
	return &dto.AggregateReportDTO{
		WindowDays:            window,
		GeneratedAt:           now.UTC().Format(time.RFC3339),
		TotalProducts:         r.TotalProducts,
		Categories:            r.Categories,
		StockLevels:           r.StockLevels,
		InterestLevels:        r.InterestLevels,
		MovementLevels:        r.MovementLevels,
		AgeBuckets:            r.AgeBuckets,
		DeadStock:             r.DeadStock,
		HotProducts:           r.HotProducts,
		QualityInteractions:   r.QualityInteractions,
		AgeHistogram:          r.AgeHistogram,
		OldestStock:           r.OldestStock,
		NewestStock:           r.NewestStock,
		AvgInteractionsPerDay: round2(r.AvgInteractionsPerDay),
		AvgRelevance:          round2(r.AvgRelevance),
		AvgSalesVelocity:      round2(r.AvgSalesVelocity),
		AvgDaysSinceRestock:   round2(r.AvgDaysSinceRestock),
	}
}

func round2(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}
