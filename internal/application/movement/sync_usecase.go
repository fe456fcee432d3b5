package movement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/inventario-movimientos/internal/domain"
	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
	"github.com/jhoicas/inventario-movimientos/internal/domain/movement"
	"github.com/jhoicas/inventario-movimientos/internal/domain/repository"
	"github.com/jhoicas/inventario-movimientos/pkg/logger"
)

// Valores por defecto de SyncMany.
const (
	DefaultBatchSize       = 3
	DefaultInterBatchDelay = 2 * time.Second
)

// SyncStatus resultado por SKU.
type SyncStatus string

const (
	StatusSynced  SyncStatus = "synced"
	StatusSkipped SyncStatus = "skipped"
	StatusFailed  SyncStatus = "failed"
)

// SyncResult resultado etiquetado de sincronizar un SKU. Record solo viene en synced/skipped.
type SyncResult struct {
	SKU    string
	Status SyncStatus
	Record *entity.StockRecord
	Reason string
	Err    error
}

// SyncOptions parámetros de SyncMany. BatchSize <= 0 usa DefaultBatchSize;
// InterBatchDelay nil usa DefaultInterBatchDelay.
type SyncOptions struct {
	BatchSize       int
	Force           bool
	InterBatchDelay *time.Duration
}

// BatchSyncReport resultados en el orden de entrada más los totales derivados.
type BatchSyncReport struct {
	Results []SyncResult
	Synced  int
	Skipped int
	Failed  int
	Batches int
}

// Sleeper espera d o hasta que ctx termine.
type Sleeper func(ctx context.Context, d time.Duration) error

func contextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// SyncUseCase orquesta compuerta de frescura → fetch → merge → persistencia por SKU,
// y por lotes con límite de concurrencia y pausa entre lotes.
type SyncUseCase struct {
	repo    repository.StockRecordRepository
	fetcher *MovementFetcher
	locker  SKULocker
	clock   Clock
	sleep   Sleeper
	log     *logger.Logger
}

// SyncDeps colaboradores opcionales de SyncUseCase.
type SyncDeps struct {
	Locker  SKULocker // nil = sin deduplicación por SKU
	Clock   Clock     // nil = time.Now
	Sleeper Sleeper   // nil = espera real respetando ctx
	Logger  *logger.Logger
}

// NewSyncUseCase construye el caso de uso.
func NewSyncUseCase(repo repository.StockRecordRepository, fetcher *MovementFetcher, deps SyncDeps) *SyncUseCase {
	sleep := deps.Sleeper
	if sleep == nil {
		sleep = contextSleep
	}
	return &SyncUseCase{
		repo:    repo,
		fetcher: fetcher,
		locker:  deps.Locker,
		clock:   deps.Clock,
		sleep:   sleep,
		log:     logger.OrNop(deps.Logger).Component("sync"),
	}
}

// SyncOne sincroniza un SKU. Nunca devuelve error: las fallas se reportan como StatusFailed.
func (uc *SyncUseCase) SyncOne(ctx context.Context, sku string, force bool) SyncResult {
	if uc.locker != nil {
		unlock := uc.locker.Lock(sku)
		defer unlock()
	}

	res := SyncResult{SKU: sku}
	if err := ctx.Err(); err != nil {
		return uc.fail(res, err)
	}

	existing, err := uc.repo.Get(ctx, sku)
	if err != nil {
		return uc.fail(res, fmt.Errorf("leer registro: %w", err))
	}

	var lastSync *time.Time
	if existing != nil {
		lastSync = &existing.SyncTimestamp
	}
	now := uc.clock.now()
	if !movement.ShouldSync(lastSync, force, now) {
		res.Status = StatusSkipped
		res.Record = existing
		res.Reason = fmt.Sprintf("sincronizado hace %s (mínimo %s)",
			now.Sub(*lastSync).Truncate(time.Second), movement.MinSyncInterval)
		uc.log.Debug().Str("sku", sku).Msg("sync omitida por frescura")
		return res
	}

	fresh, err := uc.fetcher.Fetch(ctx, sku)
	if err != nil {
		return uc.fail(res, err)
	}

	merged := movement.Merge(existing, fresh)
	if err := uc.repo.Put(ctx, merged); err != nil {
		return uc.fail(res, fmt.Errorf("%w: %w", domain.ErrPersistFailed, err))
	}

	res.Status = StatusSynced
	res.Record = merged
	uc.log.Debug().
		Str("sku", sku).
		Int("current_stock", merged.CurrentStock).
		Int("movements", len(merged.MovementHistory)).
		Msg("sku sincronizado")
	return res
}

func (uc *SyncUseCase) fail(res SyncResult, err error) SyncResult {
	res.Status = StatusFailed
	res.Err = err
	res.Reason = err.Error()
	uc.log.Warn().Str("sku", res.SKU).Err(err).Msg("sync fallida")
	return res
}

// SyncMany sincroniza skus en lotes ordenados de BatchSize. Dentro de un lote los SKUs corren
// en paralelo; una falla individual no aborta a sus hermanos ni a los lotes siguientes.
// Entre lotes (no después del último) espera InterBatchDelay. Si ctx termina, los SKUs
// pendientes se reportan como fallidos con el error del contexto.
func (uc *SyncUseCase) SyncMany(ctx context.Context, skus []string, opts SyncOptions) BatchSyncReport {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	delay := DefaultInterBatchDelay
	if opts.InterBatchDelay != nil {
		delay = *opts.InterBatchDelay
	}

	results := make([]SyncResult, len(skus))
	report := BatchSyncReport{}

	for start := 0; start < len(skus); start += batchSize {
		end := start + batchSize
		if end > len(skus) {
			end = len(skus)
		}

		if start > 0 {
			if err := uc.sleep(ctx, delay); err != nil {
				uc.failRemaining(results, skus, start, err)
				break
			}
		}
		if err := ctx.Err(); err != nil {
			uc.failRemaining(results, skus, start, err)
			break
		}

		report.Batches++
		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				results[i] = uc.SyncOne(ctx, skus[i], opts.Force)
				return nil
			})
		}
		_ = g.Wait()
	}

	report.Results = results
	for _, r := range results {
		switch r.Status {
		case StatusSynced:
			report.Synced++
		case StatusSkipped:
			report.Skipped++
		default:
			report.Failed++
		}
	}
	uc.log.Info().
		Int("total", len(skus)).
		Int("synced", report.Synced).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Int("batches", report.Batches).
		Msg("sincronización por lotes finalizada")
	return report
}

func (uc *SyncUseCase) failRemaining(results []SyncResult, skus []string, from int, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		uc.log.Warn().Int("pending", len(skus)-from).Err(err).Msg("sincronización por lotes interrumpida")
	}
	for i := from; i < len(skus); i++ {
		results[i] = SyncResult{SKU: skus[i], Status: StatusFailed, Err: err, Reason: err.Error()}
	}
}
