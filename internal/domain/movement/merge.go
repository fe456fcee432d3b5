package movement

import (
	"sort"

	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
)

// Merge combina el registro recién obtenido con el almacenado.
//
//   - Campos puntuales (stock, nombre, timestamps) vienen de fresh.
//   - El historial es la unión por ID; si un ID ya existe gana la copia almacenada.
//   - La unión se reordena por CreatedAt descendente y LastMovementDate toma el primero.
//
// No modifica los argumentos. Repetir el merge con el mismo fresh no hace crecer el historial.
func Merge(existing, fresh *entity.StockRecord) *entity.StockRecord {
	if existing == nil {
		return fresh
	}
	if fresh == nil {
		return existing
	}

	merged := *fresh

	seen := make(map[string]struct{}, len(existing.MovementHistory)+len(fresh.MovementHistory))
	history := make([]entity.MovementEntry, 0, len(existing.MovementHistory)+len(fresh.MovementHistory))
	for _, m := range existing.MovementHistory {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		history = append(history, m)
	}
	for _, m := range fresh.MovementHistory {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		history = append(history, m)
	}
	SortHistory(history)
	merged.MovementHistory = history

	merged.LastMovementDate = nil
	if len(history) > 0 {
		last := history[0].CreatedAt
		merged.LastMovementDate = &last
	}
	return &merged
}

// SortHistory ordena por CreatedAt descendente; los empates conservan el orden de entrada.
func SortHistory(history []entity.MovementEntry) {
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].CreatedAt.After(history[j].CreatedAt)
	})
}
