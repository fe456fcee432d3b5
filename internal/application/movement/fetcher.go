// Package movement contiene los casos de uso del motor de movimientos: fetch normalizado,
// sincronización por lotes con compuerta de frescura, análisis, hot score y reportes.
package movement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-movimientos/internal/application/dto"
	"github.com/jhoicas/inventario-movimientos/internal/application/ports"
	"github.com/jhoicas/inventario-movimientos/internal/domain"
	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
	"github.com/jhoicas/inventario-movimientos/internal/domain/movement"
	"github.com/jhoicas/inventario-movimientos/pkg/logger"
)

// Clock fuente de tiempo inyectable.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// Formatos aceptados para created_at; sin zona se asume UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999",
}

// MovementFetcher obtiene y normaliza el historial de un SKU desde el servicio externo.
type MovementFetcher struct {
	source ports.MovementSource
	clock  Clock
	log    *logger.Logger
}

// NewMovementFetcher construye el fetcher. clock nil usa time.Now.
func NewMovementFetcher(source ports.MovementSource, clock Clock, log *logger.Logger) *MovementFetcher {
	return &MovementFetcher{
		source: source,
		clock:  clock,
		log:    logger.OrNop(log).Component("fetcher"),
	}
}

// Fetch devuelve el StockRecord recién obtenido para sku.
//
// Errores de red y respuestas vacías/malformadas envuelven domain.ErrFetchFailed; esto es
// distinto de un SKU sin movimientos reales, que produce un registro con una única entrada
// baseline (sync, cambio 0) anclada a now.
func (f *MovementFetcher) Fetch(ctx context.Context, sku string) (*entity.StockRecord, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, domain.ErrInvalidInput
	}

	raw, err := f.source.FetchMovementLog(ctx, sku)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrFetchFailed, sku, err)
	}
	if raw == nil || (raw.SKU == "" && raw.ProductID == "") {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrFetchFailed, sku, domain.ErrEmptyResponse)
	}

	now := f.clock.now()
	stock := raw.CurrentStock
	if stock < 0 {
		f.log.Warn().Str("sku", sku).Int("current_stock", stock).Msg("stock negativo reportado, se acota a 0")
		stock = 0
	}

	history := f.normalize(sku, raw.Movements)
	if len(history) == 0 {
		history = []entity.MovementEntry{baselineEntry(stock, now)}
		f.log.Debug().Str("sku", sku).Msg("historial vacío, se sintetiza entrada baseline")
	}
	movement.SortHistory(history)
	last := history[0].CreatedAt

	record := &entity.StockRecord{
		SKU:              sku,
		ProductID:        raw.ProductID,
		ProductName:      raw.ProductName,
		CurrentStock:     stock,
		MovementHistory:  history,
		LastMovementDate: &last,
		LastUpdated:      now,
		SyncTimestamp:    now,
	}
	return record, nil
}

// normalize valida cada movimiento en la frontera: tipo del enum cerrado, fecha parseable e ID.
// Las entradas inválidas se descartan y se registran; los IDs repetidos conservan la primera copia.
func (f *MovementFetcher) normalize(sku string, raw []dto.MovementLogEntryDTO) []entity.MovementEntry {
	out := make([]entity.MovementEntry, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, m := range raw {
		id := strings.TrimSpace(m.ID)
		if id == "" {
			f.log.Warn().Str("sku", sku).Msg("movimiento sin id descartado")
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		ct, err := entity.ParseChangeType(m.ChangeType)
		if err != nil {
			f.log.Warn().Str("sku", sku).Str("movement_id", id).Err(err).Msg("movimiento descartado")
			continue
		}
		createdAt, err := parseTimestamp(m.CreatedAt)
		if err != nil {
			f.log.Warn().Str("sku", sku).Str("movement_id", id).Err(err).Msg("movimiento descartado")
			continue
		}
		seen[id] = struct{}{}
		orderID := m.OrderID
		if orderID < 0 {
			orderID = 0
		}
		out = append(out, entity.MovementEntry{
			ID:           id,
			OldQuantity:  m.OldStock,
			NewQuantity:  m.NewStock,
			ChangeAmount: m.ChangeAmount,
			ChangeType:   ct,
			Reason:       m.Reason,
			ActorID:      m.UserID,
			ActorName:    m.UserName,
			OrderID:      orderID,
			CreatedAt:    createdAt,
		})
	}
	return out
}

// baselineEntry ancla el cálculo de antigüedad cuando no hay historia real.
func baselineEntry(stock int, now time.Time) entity.MovementEntry {
	return entity.MovementEntry{
		ID:           uuid.New().String(),
		OldQuantity:  stock,
		NewQuantity:  stock,
		ChangeAmount: 0,
		ChangeType:   entity.ChangeSync,
		Reason:       entity.ReasonBaselineSync,
		ActorID:      "system",
		ActorName:    "system",
		CreatedAt:    now,
	}
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("created_at vacío")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("created_at inválido: %q", s)
}
