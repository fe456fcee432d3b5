package repository

import (
	"context"

	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
)

// StockRecordRepository define el puerto de persistencia clave/valor para StockRecord (por SKU).
// La tecnología de almacenamiento es opaca para el motor.
type StockRecordRepository interface {
	// Get devuelve (nil, nil) si el SKU nunca se ha sincronizado.
	Get(ctx context.Context, sku string) (*entity.StockRecord, error)
	Put(ctx context.Context, record *entity.StockRecord) error
}
