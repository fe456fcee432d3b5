package dto

// MovementLogDTO respuesta normalizada del servicio de inventario para un SKU.
// Los campos de cada movimiento llegan crudos; la validación ocurre en el fetcher.
type MovementLogDTO struct {
	SKU          string                `json:"sku"`
	ProductID    string                `json:"product_id"`
	ProductName  string                `json:"product_name"`
	CurrentStock int                   `json:"current_stock"`
	Movements    []MovementLogEntryDTO `json:"movements"`
}

// MovementLogEntryDTO movimiento tal como lo entrega la API externa.
type MovementLogEntryDTO struct {
	ID           string `json:"id"`
	OldStock     int    `json:"old_stock"`
	NewStock     int    `json:"new_stock"`
	ChangeAmount int    `json:"change_amount"`
	ChangeType   string `json:"change_type"`
	Reason       string `json:"reason"`
	UserID       string `json:"user_id"`
	UserName     string `json:"user_name"`
	OrderID      int64  `json:"order_id"`
	CreatedAt    string `json:"created_at"`
}

// SyncManyRequest body para POST /api/stock/sync.
type SyncManyRequest struct {
	SKUs              []string `json:"skus"`
	BatchSize         int      `json:"batch_size,omitempty"`
	Force             bool     `json:"force,omitempty"`
	InterBatchDelayMs *int     `json:"inter_batch_delay_ms,omitempty"`
}

// SyncResultDTO resultado de sincronizar un SKU.
type SyncResultDTO struct {
	SKU          string `json:"sku"`
	Status       string `json:"status"` // synced | skipped | failed
	Reason       string `json:"reason,omitempty"`
	Error        string `json:"error,omitempty"`
	CurrentStock *int   `json:"current_stock,omitempty"`
	Movements    int    `json:"movements,omitempty"`
}

// BatchSyncResponse respuesta de la sincronización por lotes.
type BatchSyncResponse struct {
	Total   int             `json:"total"`
	Synced  int             `json:"synced"`
	Skipped int             `json:"skipped"`
	Failed  int             `json:"failed"`
	Batches int             `json:"batches"`
	Results []SyncResultDTO `json:"results"`
}

// HotScoreDTO respuesta de GET /api/stock/:sku/hot-score.
type HotScoreDTO struct {
	SKU       string  `json:"sku"`
	HotScore  int     `json:"hot_score"`
	Relevance float64 `json:"relevance"`
	AgeBucket string  `json:"age_bucket"`
}

// RelevanceSignal señal externa de interés por producto (0..1) con sus conteos de interacción.
type RelevanceSignal struct {
	Relevance         float64 `json:"relevance"`
	TotalInteractions int     `json:"total_interactions"`
	UserCount         int     `json:"user_count"`
}
