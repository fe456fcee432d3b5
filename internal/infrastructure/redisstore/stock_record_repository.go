package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
	"github.com/jhoicas/inventario-movimientos/internal/domain/repository"
)

// DefaultKeyPrefix prefijo de las claves de registro.
const DefaultKeyPrefix = "stock:record:"

var _ repository.StockRecordRepository = (*StockRecordRepo)(nil)

// StockRecordRepo contrato clave/valor sobre Redis; sin TTL, los registros nunca expiran.
type StockRecordRepo struct {
	rdb    redis.UniversalClient
	prefix string
}

// NewStockRecordRepository construye el adaptador. prefix vacío usa DefaultKeyPrefix.
func NewStockRecordRepository(rdb redis.UniversalClient, prefix string) *StockRecordRepo {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &StockRecordRepo{rdb: rdb, prefix: prefix}
}

func (r *StockRecordRepo) key(sku string) string { return r.prefix + sku }

// Get devuelve (nil, nil) si la clave no existe.
func (r *StockRecordRepo) Get(ctx context.Context, sku string) (*entity.StockRecord, error) {
	raw, err := r.rdb.Get(ctx, r.key(sku)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get %s: %w", sku, err)
	}
	var rec entity.StockRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decodificar registro %s: %w", sku, err)
	}
	return &rec, nil
}

// Put reemplaza el registro completo.
func (r *StockRecordRepo) Put(ctx context.Context, rec *entity.StockRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("codificar registro %s: %w", rec.SKU, err)
	}
	if err := r.rdb.Set(ctx, r.key(rec.SKU), raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", rec.SKU, err)
	}
	return nil
}
