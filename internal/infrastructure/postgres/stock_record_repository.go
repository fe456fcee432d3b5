package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
	"github.com/jhoicas/inventario-movimientos/internal/domain/repository"
)

var _ repository.StockRecordRepository = (*StockRecordRepo)(nil)

// StockRecordRepo implementación de StockRecordRepository sobre stock_records + stock_movements.
type StockRecordRepo struct {
	db DB
	tx *TxRunner
}

// NewStockRecordRepository construye el adaptador. db es normalmente el *pgxpool.Pool.
func NewStockRecordRepository(db DB) *StockRecordRepo {
	return &StockRecordRepo{db: db, tx: NewTxRunner(db)}
}

// Get devuelve el registro con su historial ordenado del más reciente al más antiguo,
// o (nil, nil) si el SKU nunca se sincronizó.
func (r *StockRecordRepo) Get(ctx context.Context, sku string) (*entity.StockRecord, error) {
	var rec entity.StockRecord
	err := r.db.QueryRow(ctx, `
		SELECT sku, product_id, product_name, current_stock, last_movement_date, last_updated, sync_timestamp
		FROM stock_records WHERE sku = $1`, sku,
	).Scan(&rec.SKU, &rec.ProductID, &rec.ProductName, &rec.CurrentStock,
		&rec.LastMovementDate, &rec.LastUpdated, &rec.SyncTimestamp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock record: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, old_quantity, new_quantity, change_amount, change_type, reason,
		       actor_id, actor_name, order_id, created_at
		FROM stock_movements WHERE sku = $1
		ORDER BY created_at DESC, id`, sku)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m entity.MovementEntry
		var changeType string
		if err := rows.Scan(&m.ID, &m.OldQuantity, &m.NewQuantity, &m.ChangeAmount, &changeType,
			&m.Reason, &m.ActorID, &m.ActorName, &m.OrderID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		m.ChangeType = entity.ChangeType(changeType)
		rec.MovementHistory = append(rec.MovementHistory, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stock movements: %w", err)
	}
	return &rec, nil
}

// Put reemplaza la cabecera del registro e inserta los movimientos que aún no existan.
// Un movimiento ya almacenado nunca se sobrescribe.
func (r *StockRecordRepo) Put(ctx context.Context, rec *entity.StockRecord) error {
	return r.tx.Run(ctx, func(q Querier) error {
		_, err := q.Exec(ctx, `
			INSERT INTO stock_records (sku, product_id, product_name, current_stock, last_movement_date, last_updated, sync_timestamp)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (sku) DO UPDATE SET
				product_id = EXCLUDED.product_id,
				product_name = EXCLUDED.product_name,
				current_stock = EXCLUDED.current_stock,
				last_movement_date = EXCLUDED.last_movement_date,
				last_updated = EXCLUDED.last_updated,
				sync_timestamp = EXCLUDED.sync_timestamp`,
			rec.SKU, rec.ProductID, rec.ProductName, rec.CurrentStock,
			rec.LastMovementDate, rec.LastUpdated, rec.SyncTimestamp,
		)
		if err != nil {
			return fmt.Errorf("upsert stock record: %w", err)
		}
		if len(rec.MovementHistory) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for _, m := range rec.MovementHistory {
			batch.Queue(`
				INSERT INTO stock_movements (sku, id, old_quantity, new_quantity, change_amount, change_type,
					reason, actor_id, actor_name, order_id, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
				ON CONFLICT (sku, id) DO NOTHING`,
				rec.SKU, m.ID, m.OldQuantity, m.NewQuantity, m.ChangeAmount, string(m.ChangeType),
				m.Reason, m.ActorID, m.ActorName, m.OrderID, m.CreatedAt,
			)
		}
		br := q.SendBatch(ctx, batch)
		for range rec.MovementHistory {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("insert stock movement: %w", err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("close movement batch: %w", err)
		}
		return nil
	})
}
