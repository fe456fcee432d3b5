// Package memory store en proceso para desarrollo y tests; se pierde al reiniciar.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
	"github.com/jhoicas/inventario-movimientos/internal/domain/repository"
)

var _ repository.StockRecordRepository = (*StockRecordRepo)(nil)

// StockRecordRepo guarda copias: mutar un registro devuelto no altera el almacenado.
type StockRecordRepo struct {
	mu      sync.RWMutex
	records map[string]*entity.StockRecord
}

// NewStockRecordRepository construye el store vacío.
func NewStockRecordRepository() *StockRecordRepo {
	return &StockRecordRepo{records: make(map[string]*entity.StockRecord)}
}

// Get devuelve (nil, nil) si el SKU no existe.
func (r *StockRecordRepo) Get(_ context.Context, sku string) (*entity.StockRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[sku]
	if !ok {
		return nil, nil
	}
	return clone(rec), nil
}

// Put reemplaza el registro.
func (r *StockRecordRepo) Put(_ context.Context, rec *entity.StockRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.SKU] = clone(rec)
	return nil
}

// Len cantidad de registros almacenados.
func (r *StockRecordRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

func clone(rec *entity.StockRecord) *entity.StockRecord {
	out := *rec
	out.MovementHistory = append([]entity.MovementEntry(nil), rec.MovementHistory...)
	if rec.LastMovementDate != nil {
		t := *rec.LastMovementDate
		out.LastMovementDate = &t
	}
	return &out
}
