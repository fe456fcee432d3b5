package entity

import (
	"fmt"
	"strings"
	"time"
)

// ChangeType tipo de movimiento reportado por el servicio de inventario (enum cerrado).
type ChangeType string

const (
	ChangeIncrease ChangeType = "increase" // entrada / reposición
	ChangeDecrease ChangeType = "decrease" // salida / venta
	ChangeSync     ChangeType = "sync"     // registro contable, no es movimiento real
)

// Motivos con significado de negocio.
const (
	ReasonOrderCompleted = "Order completed"
	ReasonOrderCancelled = "Order cancelled/refunded"
	ReasonBaselineSync   = "baseline sync"
)

// ParseChangeType valida el tipo recibido en la frontera del fetch.
func ParseChangeType(s string) (ChangeType, error) {
	switch ChangeType(strings.ToLower(strings.TrimSpace(s))) {
	case ChangeIncrease:
		return ChangeIncrease, nil
	case ChangeDecrease:
		return ChangeDecrease, nil
	case ChangeSync:
		return ChangeSync, nil
	}
	return "", fmt.Errorf("change_type desconocido: %q", s)
}

// MovementEntry un cambio de cantidad en el historial de un SKU.
// ID es único dentro del historial de ese SKU.
type MovementEntry struct {
	ID           string     `json:"id"`
	OldQuantity  int        `json:"old_quantity"`
	NewQuantity  int        `json:"new_quantity"`
	ChangeAmount int        `json:"change_amount"`
	ChangeType   ChangeType `json:"change_type"`
	Reason       string     `json:"reason"`
	ActorID      string     `json:"actor_id"`
	ActorName    string     `json:"actor_name"`
	OrderID      int64      `json:"order_id"` // 0 = sin orden
	CreatedAt    time.Time  `json:"created_at"`
}

// IsSync indica si la entrada es solo de contabilidad (baseline o sincronización).
func (m MovementEntry) IsSync() bool { return m.ChangeType == ChangeSync }
