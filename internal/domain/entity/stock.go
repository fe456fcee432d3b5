package entity

import "time"

// StockRecord estado sincronizado de un SKU: stock actual más historial de movimientos.
// MovementHistory se mantiene ordenado por CreatedAt descendente.
type StockRecord struct {
	SKU              string          `json:"sku"`
	ProductID        string          `json:"product_id"`
	ProductName      string          `json:"product_name"`
	CurrentStock     int             `json:"current_stock"`
	MovementHistory  []MovementEntry `json:"movement_history"`
	LastMovementDate *time.Time      `json:"last_movement_date,omitempty"`
	LastUpdated      time.Time       `json:"last_updated"`
	SyncTimestamp    time.Time       `json:"sync_timestamp"`
}
