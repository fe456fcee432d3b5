package movement

import (
	"math"
	"time"

	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
)

const (
	// DefaultWindowDays ventana por defecto para los agregados.
	DefaultWindowDays  = 30
	recentActivitySpan = 7 * 24 * time.Hour
	day                = 24 * time.Hour
)

// AgeBucket clasificación por días sin movimiento real.
type AgeBucket string

const (
	BucketNormal    AgeBucket = "normal"
	BucketSlowMove  AgeBucket = "slow_move"
	BucketVerySlow1 AgeBucket = "very_slow_1"
	BucketVerySlow2 AgeBucket = "very_slow_2"
	BucketVerySlow3 AgeBucket = "very_slow_3"
	BucketDeadStock AgeBucket = "dead_stock"
)

// AgeBuckets en orden de severidad creciente.
var AgeBuckets = []AgeBucket{
	BucketNormal, BucketSlowMove, BucketVerySlow1, BucketVerySlow2, BucketVerySlow3, BucketDeadStock,
}

// Level nivel de lento movimiento: 0 (normal) a 5 (dead stock).
func (b AgeBucket) Level() int {
	for i, v := range AgeBuckets {
		if v == b {
			return i
		}
	}
	return 0
}

// ClassifyAge aplica los umbrales; el primero que coincide gana.
func ClassifyAge(days int) AgeBucket {
	switch {
	case days > 180:
		return BucketDeadStock
	case days > 150:
		return BucketVerySlow3
	case days > 120:
		return BucketVerySlow2
	case days > 90:
		return BucketVerySlow1
	case days > 60:
		return BucketSlowMove
	default:
		return BucketNormal
	}
}

// ReferenceType de dónde salió la fecha de referencia.
type ReferenceType string

const (
	RefFromLastMovementField ReferenceType = "from_last_movement_field"
	RefFromMovementHistory   ReferenceType = "from_movement_history"
	RefFromSyncTimestamp     ReferenceType = "from_sync_timestamp"
)

// AnalyzeOptions parámetros de Analyze. Now en cero usa time.Now().
type AnalyzeOptions struct {
	WindowDays        int
	LastMovementHint  *time.Time
	SyncTimestampHint *time.Time
	Now               time.Time
	Resolvers         []ReferenceResolver // nil = DefaultReferenceChain
}

// ReferenceResolver devuelve la fecha de referencia si la regla aplica.
type ReferenceResolver func(in ReferenceInput) (time.Time, ReferenceType, bool)

// ReferenceInput datos disponibles para resolver la fecha de referencia.
type ReferenceInput struct {
	History           []entity.MovementEntry
	LastMovementHint  *time.Time
	SyncTimestampHint *time.Time
	Now               time.Time
}

// DefaultReferenceChain orden de resolución: campo last-movement, historial vacío, máximo del historial.
var DefaultReferenceChain = []ReferenceResolver{
	FromLastMovementField,
	FromSyncTimestampWhenEmpty,
	FromMovementHistory,
}

// FromLastMovementField usa la pista LastMovementDate del registro si existe.
func FromLastMovementField(in ReferenceInput) (time.Time, ReferenceType, bool) {
	if in.LastMovementHint == nil || in.LastMovementHint.IsZero() {
		return time.Time{}, "", false
	}
	return *in.LastMovementHint, RefFromLastMovementField, true
}

// FromSyncTimestampWhenEmpty aplica solo con historial vacío: timestamp de sync o now.
func FromSyncTimestampWhenEmpty(in ReferenceInput) (time.Time, ReferenceType, bool) {
	if len(in.History) > 0 {
		return time.Time{}, "", false
	}
	return syncOrNow(in), RefFromSyncTimestamp, true
}

// FromMovementHistory máximo CreatedAt entre las entradas bien formadas.
func FromMovementHistory(in ReferenceInput) (time.Time, ReferenceType, bool) {
	var latest time.Time
	for _, m := range in.History {
		if m.CreatedAt.After(latest) {
			latest = m.CreatedAt
		}
	}
	if latest.IsZero() {
		return time.Time{}, "", false
	}
	return latest, RefFromMovementHistory, true
}

func syncOrNow(in ReferenceInput) time.Time {
	if in.SyncTimestampHint != nil && !in.SyncTimestampHint.IsZero() {
		return *in.SyncTimestampHint
	}
	return in.Now
}

// ResolveReference evalúa los resolvers en orden; el primero presente gana.
// Si ninguno aplica (historial solo con entradas malformadas) cae al timestamp de sync.
func ResolveReference(resolvers []ReferenceResolver, in ReferenceInput) (time.Time, ReferenceType) {
	for _, r := range resolvers {
		if ref, kind, ok := r(in); ok {
			return ref, kind
		}
	}
	return syncOrNow(in), RefFromSyncTimestamp
}

// Analysis estadísticas derivadas de un historial. Se recalcula bajo demanda, nunca se persiste.
type Analysis struct {
	WindowDays int `json:"window_days"`

	TotalMovements     int     `json:"total_movements"`
	SalesMovements     int     `json:"sales_movements"`
	RestockMovements   int     `json:"restock_movements"`
	TotalSold          int     `json:"total_sold"`
	TotalRestocked     int     `json:"total_restocked"`
	OrderCompletions   int     `json:"order_completions"`
	OrderCancellations int     `json:"order_cancellations"`
	UniqueOrders       int     `json:"unique_orders"`
	AverageOrderSize   float64 `json:"average_order_size"`

	MovementFrequency float64 `json:"movement_frequency"`
	SalesVelocity     float64 `json:"sales_velocity"`
	RecentActivity    bool    `json:"recent_activity"`

	ReferenceDate         time.Time     `json:"reference_date"`
	ReferenceType         ReferenceType `json:"reference_type"`
	DaysSinceLastMovement int           `json:"days_since_last_movement"`
	LastRestockDate       *time.Time    `json:"last_restock_date,omitempty"`
	DaysSinceLastRestock  *int          `json:"days_since_last_restock"`
	AgeBucket             AgeBucket     `json:"age_bucket"`
	SlowMoveLevel         int           `json:"slow_move_level"`
	IsBaseline            bool          `json:"is_baseline"`

	HasRealHistory bool `json:"has_real_history"` // al menos una entrada que no es sync
	SyncOnly       bool `json:"sync_only"`        // historial no vacío compuesto solo por sync
}

// OrderCompletionRate completadas / max(completadas+canceladas, 1).
func (a Analysis) OrderCompletionRate() float64 {
	total := a.OrderCompletions + a.OrderCancellations
	if total < 1 {
		total = 1
	}
	return float64(a.OrderCompletions) / float64(total)
}

// AnalyzeRecord analiza un registro almacenado usando sus campos como pistas.
func AnalyzeRecord(record *entity.StockRecord, windowDays int, now time.Time) Analysis {
	if record == nil {
		return Analyze(nil, AnalyzeOptions{WindowDays: windowDays, Now: now})
	}
	syncTS := record.SyncTimestamp
	return Analyze(record.MovementHistory, AnalyzeOptions{
		WindowDays:        windowDays,
		LastMovementHint:  record.LastMovementDate,
		SyncTimestampHint: &syncTS,
		Now:               now,
	})
}

// Analyze calcula agregados por ventana y el bucket de antigüedad.
// Las entradas sync y las malformadas (CreatedAt en cero) no cuentan en los agregados.
func Analyze(history []entity.MovementEntry, opts AnalyzeOptions) Analysis {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	window := opts.WindowDays
	if window <= 0 {
		window = DefaultWindowDays
	}
	resolvers := opts.Resolvers
	if resolvers == nil {
		resolvers = DefaultReferenceChain
	}

	a := Analysis{WindowDays: window}

	ref, kind := ResolveReference(resolvers, ReferenceInput{
		History:           history,
		LastMovementHint:  opts.LastMovementHint,
		SyncTimestampHint: opts.SyncTimestampHint,
		Now:               now,
	})
	a.ReferenceDate = ref
	a.ReferenceType = kind
	a.DaysSinceLastMovement = daysBetween(ref, now)
	a.AgeBucket = ClassifyAge(a.DaysSinceLastMovement)
	a.SlowMoveLevel = a.AgeBucket.Level()
	a.IsBaseline = kind == RefFromSyncTimestamp && a.DaysSinceLastMovement == 0
	a.RecentActivity = now.Sub(ref) < recentActivitySpan

	if len(history) == 0 {
		return a
	}

	windowStart := now.Add(-time.Duration(window) * day)
	orders := make(map[int64]struct{})
	var orderSizes []int
	var lastRestock time.Time
	a.SyncOnly = true

	for _, m := range history {
		if !m.IsSync() {
			a.SyncOnly = false
		}
		if m.CreatedAt.IsZero() || m.IsSync() {
			continue
		}
		a.HasRealHistory = true

		if m.ChangeType == entity.ChangeIncrease && m.CreatedAt.After(lastRestock) {
			lastRestock = m.CreatedAt
		}

		if m.CreatedAt.Before(windowStart) || m.CreatedAt.After(now) {
			continue
		}
		amount := abs(m.ChangeAmount)
		switch m.ChangeType {
		case entity.ChangeDecrease:
			a.TotalSold += amount
			a.SalesMovements++
			if m.Reason == entity.ReasonOrderCompleted && m.OrderID > 0 {
				a.OrderCompletions++
				orders[m.OrderID] = struct{}{}
				orderSizes = append(orderSizes, amount)
			}
		case entity.ChangeIncrease:
			a.TotalRestocked += amount
			a.RestockMovements++
			if m.Reason == entity.ReasonOrderCancelled && m.OrderID > 0 {
				a.OrderCancellations++
			}
		}
	}

	a.TotalMovements = a.SalesMovements + a.RestockMovements
	a.UniqueOrders = len(orders)
	a.AverageOrderSize = mean(orderSizes)
	a.MovementFrequency = float64(a.TotalMovements) / float64(window)
	a.SalesVelocity = float64(a.TotalSold) / float64(window)

	if !lastRestock.IsZero() {
		d := daysBetween(lastRestock, now)
		a.LastRestockDate = &lastRestock
		a.DaysSinceLastRestock = &d
	}
	return a
}

// daysBetween días completos transcurridos, nunca negativo.
func daysBetween(from, to time.Time) int {
	d := int(math.Floor(to.Sub(from).Hours() / 24))
	if d < 0 {
		return 0
	}
	return d
}

func mean(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
