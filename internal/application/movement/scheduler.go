package movement

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-movimientos/internal/domain/repository"
	"github.com/jhoicas/inventario-movimientos/pkg/logger"
)

// Scheduler ejecuta SyncMany sobre los SKUs del catálogo cada Interval.
// La compuerta de frescura se respeta: el scheduler nunca fuerza.
type Scheduler struct {
	sync     *SyncUseCase
	products repository.ProductRepository
	interval time.Duration
	opts     SyncOptions
	log      *logger.Logger
}

// NewScheduler construye el scheduler. opts.Force se ignora.
func NewScheduler(sync *SyncUseCase, products repository.ProductRepository, interval time.Duration, opts SyncOptions, log *logger.Logger) *Scheduler {
	opts.Force = false
	return &Scheduler{
		sync:     sync,
		products: products,
		interval: interval,
		opts:     opts,
		log:      logger.OrNop(log).Component("scheduler"),
	}
}

// RunOnce sincroniza una vez todo el catálogo.
func (s *Scheduler) RunOnce(ctx context.Context) (BatchSyncReport, error) {
	catalog, err := s.products.List(ctx)
	if err != nil {
		return BatchSyncReport{}, err
	}
	skus := make([]string, 0, len(catalog))
	seen := make(map[string]struct{}, len(catalog))
	for _, p := range catalog {
		if p.SKU == "" {
			continue
		}
		if _, ok := seen[p.SKU]; ok {
			continue
		}
		seen[p.SKU] = struct{}{}
		skus = append(skus, p.SKU)
	}
	return s.sync.SyncMany(ctx, skus, s.opts), nil
}

// Run bloquea hasta que ctx termine. Con Interval <= 0 retorna de inmediato.
func (s *Scheduler) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.log.Info().Msg("sincronización periódica deshabilitada")
		return
	}
	s.log.Info().Dur("interval", s.interval).Msg("sincronización periódica iniciada")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		s.tick(ctx)
		select {
		case <-ctx.Done():
			s.log.Info().Msg("sincronización periódica detenida")
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.RunOnce(ctx); err != nil {
		s.log.Error().Err(err).Msg("no se pudo leer el catálogo para sincronizar")
	}
}
