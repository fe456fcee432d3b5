package movement_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jhoicas/inventario-movimientos/internal/application/dto"
	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return now }

// ──────────────────────────────────────────────────────────────────────────────
// MovementSource falso
// ──────────────────────────────────────────────────────────────────────────────

type fakeSource struct {
	mu     sync.Mutex
	logs   map[string]*dto.MovementLogDTO
	errs   map[string]error
	calls  map[string]int
	active int
	peak   int
	hold   time.Duration
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		logs:  map[string]*dto.MovementLogDTO{},
		errs:  map[string]error{},
		calls: map[string]int{},
	}
}

func (f *fakeSource) FetchMovementLog(_ context.Context, sku string) (*dto.MovementLogDTO, error) {
	f.mu.Lock()
	f.calls[sku]++
	f.active++
	if f.active > f.peak {
		f.peak = f.active
	}
	hold := f.hold
	f.mu.Unlock()

	if hold > 0 {
		time.Sleep(hold)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.active--
	if err, ok := f.errs[sku]; ok {
		return nil, err
	}
	if log, ok := f.logs[sku]; ok {
		return log, nil
	}
	return &dto.MovementLogDTO{SKU: sku, ProductID: "p-" + sku, CurrentStock: 4}, nil
}

func (f *fakeSource) callsFor(sku string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[sku]
}

// ──────────────────────────────────────────────────────────────────────────────
// StockRecordRepository falso
// ──────────────────────────────────────────────────────────────────────────────

var errStoreDown = errors.New("store caído")

type fakeRepo struct {
	mu      sync.Mutex
	records map[string]*entity.StockRecord
	putErr  error
	getErr  error
	puts    int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: map[string]*entity.StockRecord{}}
}

func (r *fakeRepo) Get(_ context.Context, sku string) (*entity.StockRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.records[sku], nil
}

func (r *fakeRepo) Put(_ context.Context, rec *entity.StockRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.putErr != nil {
		return r.putErr
	}
	r.puts++
	r.records[rec.SKU] = rec
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo, relevancia y PDF falsos
// ──────────────────────────────────────────────────────────────────────────────

type fakeProducts struct {
	items []*entity.Product
	err   error
}

func (p *fakeProducts) List(context.Context) ([]*entity.Product, error) { return p.items, p.err }

func (p *fakeProducts) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	for _, it := range p.items {
		if it.SKU == sku {
			return it, nil
		}
	}
	return nil, nil
}

type fakeRelevance struct {
	signals map[string]dto.RelevanceSignal
	err     error
}

func (f *fakeRelevance) Relevance(_ context.Context, productID string) (dto.RelevanceSignal, error) {
	if f.err != nil {
		return dto.RelevanceSignal{}, f.err
	}
	return f.signals[productID], nil
}

type fakePDF struct {
	got *dto.AggregateReportDTO
}

func (f *fakePDF) GenerateReportPDF(_ context.Context, r *dto.AggregateReportDTO) ([]byte, error) {
	f.got = r
	return []byte("%PDF-fake"), nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Sleeper que registra las pausas
// ──────────────────────────────────────────────────────────────────────────────

type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
	err    error
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	if s.err != nil {
		return s.err
	}
	return ctx.Err()
}

func movementDTO(id, ct string, amount int, createdAt time.Time) dto.MovementLogEntryDTO {
	return dto.MovementLogEntryDTO{
		ID:           id,
		ChangeType:   ct,
		ChangeAmount: amount,
		CreatedAt:    createdAt.Format(time.RFC3339),
	}
}
