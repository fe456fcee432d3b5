package ports

import (
	"context"

	"github.com/jhoicas/inventario-movimientos/internal/application/dto"
)

// MovementSource puerto de salida hacia el servicio externo de historial de movimientos.
// Un error de red o una respuesta vacía/malformada se devuelven como error, nunca como
// un log sin movimientos.
type MovementSource interface {
	FetchMovementLog(ctx context.Context, sku string) (*dto.MovementLogDTO, error)
}

// RelevanceProvider entrega la señal de relevancia calculada por el subsistema de interacciones.
// Un producto sin señal devuelve el valor cero, no error.
type RelevanceProvider interface {
	Relevance(ctx context.Context, productID string) (dto.RelevanceSignal, error)
}

// ReportPDFGenerator genera la representación en PDF del reporte agregado.
type ReportPDFGenerator interface {
	GenerateReportPDF(ctx context.Context, report *dto.AggregateReportDTO) ([]byte, error)
}
