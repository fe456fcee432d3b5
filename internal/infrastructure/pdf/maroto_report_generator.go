// Package pdf genera la versión imprimible del reporte de movimientos de stock.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + ventana │ Fecha de generación             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: productos / relevancia / velocidad / restock      │
//	│  HISTOGRAMA: rango de días | productos                       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  LENTO MOVIMIENTO: bucket | productos                        │
//	│  DEAD STOCK: SKU | Producto | Stock | Días                   │
//	│  HOT PRODUCTS: SKU | Producto | Score | Relevancia           │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/inventario-movimientos/internal/application/dto"
	"github.com/jhoicas/inventario-movimientos/internal/application/ports"
	"github.com/jhoicas/inventario-movimientos/internal/domain/movement"
)

var _ ports.ReportPDFGenerator = (*MarotoReportGenerator)(nil)

// maxListRows tope de filas por tabla de productos.
const maxListRows = 25

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorDanger  = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// bucketLabels etiquetas legibles de los buckets de antigüedad.
var bucketLabels = map[movement.AgeBucket]string{
	movement.BucketNormal:    "Normal (0-60 días)",
	movement.BucketSlowMove:  "Lento (61-90 días)",
	movement.BucketVerySlow1: "Muy lento 1 (91-120 días)",
	movement.BucketVerySlow2: "Muy lento 2 (121-150 días)",
	movement.BucketVerySlow3: "Muy lento 3 (151-180 días)",
	movement.BucketDeadStock: "Dead stock (181+ días)",
}

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoReportGenerator implementa ports.ReportPDFGenerator usando Maroto v2.
type MarotoReportGenerator struct {
	author string
}

// NewMarotoReportGenerator construye el generador; author va en los metadatos del PDF.
func NewMarotoReportGenerator(author string) *MarotoReportGenerator {
	return &MarotoReportGenerator{author: author}
}

// GenerateReportPDF genera el PDF y devuelve sus bytes.
func (g *MarotoReportGenerator) GenerateReportPDF(_ context.Context, report *dto.AggregateReportDTO) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("pdf: reporte nil")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de movimientos de stock", true).
		WithAuthor(g.author, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(report))
	m.AddRows(sectionTitle("Antigüedad del último movimiento", colorPrimary))
	m.AddRows(histogramRows(report.AgeHistogram)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(sectionTitle("Productos por bucket de lento movimiento", colorPrimary))
	m.AddRows(bucketRows(report.AgeBuckets)...)

	m.AddRows(sectionTitle(fmt.Sprintf("Dead stock (%d)", len(report.DeadStock)), colorDanger))
	m.AddRows(productTable(report.DeadStock, "Días", func(p movement.ProductInsight) string {
		return strconv.Itoa(p.Analysis.DaysSinceLastMovement)
	})...)

	m.AddRows(sectionTitle(fmt.Sprintf("Hot products (%d)", len(report.HotProducts)), colorPrimary))
	m.AddRows(productTable(report.HotProducts, "Score", func(p movement.ProductInsight) string {
		return fmt.Sprintf("%d  (rel. %.2f)", p.HotScore, p.Relevance)
	})...)

	if len(report.Skipped) > 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New(fmt.Sprintf("SKUs sin sincronizar: %d", len(report.Skipped)), props.Text{
				Size: 7, Color: colorGray, Top: 3,
			}),
		)))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(r *dto.AggregateReportDTO) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New("REPORTE DE MOVIMIENTOS DE STOCK", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Ventana de análisis: %d días", r.WindowDays), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("Generado: "+r.GeneratedAt, props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
			text.New(formatThousands(r.TotalProducts)+" productos", props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 8,
			}),
		),
	)
}

func summaryRow(r *dto.AggregateReportDTO) core.Row {
	cell := func(label, value string) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Size: 7, Color: colorGray, Top: 1, Align: align.Center}),
			text.New(value, props.Text{Style: fontstyle.Bold, Size: 11, Top: 5, Align: align.Center}),
		)
	}
	return row.New(14).Add(
		cell("Interacciones / día", r.AvgInteractionsPerDay.StringFixed(2)),
		cell("Relevancia media", r.AvgRelevance.StringFixed(2)),
		cell("Velocidad de venta", r.AvgSalesVelocity.StringFixed(2)),
		cell("Días desde restock", r.AvgDaysSinceRestock.StringFixed(2)),
	)
}

func sectionTitle(title string, color *props.Color) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 9, Color: color, Top: 2}),
	))
}

func histogramRows(hist []movement.AgeBucketCount) []core.Row {
	rows := make([]core.Row, 0, len(hist))
	for _, h := range hist {
		rows = append(rows, row.New(5).Add(
			col.New(3).Add(text.New(h.Range+" días", props.Text{Size: 8, Left: 2})),
			col.New(2).Add(text.New(formatThousands(h.Count), props.Text{Size: 8, Align: align.Right})),
			col.New(7),
		))
	}
	return rows
}

func bucketRows(buckets map[movement.AgeBucket][]movement.ProductInsight) []core.Row {
	rows := make([]core.Row, 0, len(movement.AgeBuckets))
	for _, b := range movement.AgeBuckets {
		rows = append(rows, row.New(5).Add(
			col.New(5).Add(text.New(bucketLabels[b], props.Text{Size: 8, Left: 2})),
			col.New(2).Add(text.New(formatThousands(len(buckets[b])), props.Text{Size: 8, Align: align.Right})),
			col.New(5),
		))
	}
	return rows
}

// productTable: SKU | Producto | Stock | valor propio de la sección.
func productTable(items []movement.ProductInsight, lastHeader string, last func(movement.ProductInsight) string) []core.Row {
	if len(items) == 0 {
		return []core.Row{row.New(6).Add(col.New(12).Add(
			text.New("Sin productos", props.Text{Size: 8, Color: colorGray, Left: 2, Top: 1}),
		))}
	}
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 1, Left: 1, Right: 1,
		}))
	}
	rows := []core.Row{row.New(6).Add(
		h("SKU", 3, align.Left),
		h("Producto", 5, align.Left),
		h("Stock", 1, align.Right),
		h(lastHeader, 3, align.Right),
	)}
	if len(items) > maxListRows {
		items = items[:maxListRows]
	}
	for _, p := range items {
		rows = append(rows, row.New(5).Add(
			col.New(3).Add(text.New(p.SKU, props.Text{Size: 8, Left: 1})),
			col.New(5).Add(text.New(nonEmpty(p.Name, "-"), props.Text{Size: 8, Left: 1})),
			col.New(1).Add(text.New(formatThousands(p.CurrentStock), props.Text{Size: 8, Align: align.Right})),
			col.New(3).Add(text.New(last(p), props.Text{Size: 8, Align: align.Right, Right: 1})),
		))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatThousands inserta puntos de miles. Ej: 25000 → "25.000".
func formatThousands(v int) string {
	s := strconv.Itoa(v)
	neg := v < 0
	if neg {
		s = s[1:]
	}
	n := len(s)
	if n <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}
	buf := make([]byte, 0, n+n/3+1)
	if neg {
		buf = append(buf, '-')
	}
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
