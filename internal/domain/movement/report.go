package movement

import "sort"

// Umbrales de los buckets del reporte.
const (
	lowStockMax      = 10
	mediumStockMax   = 100
	interestHigh     = 0.7
	interestMedium   = 0.5
	qualityRelevance = 0.25
	velocityHigh     = 50.0
	velocityMedium   = 10.0
)

// Niveles usados por los histogramas de stock, interés y movimiento.
const (
	LevelHigh   = "high"
	LevelMedium = "medium"
	LevelLow    = "low"
	LevelNone   = "none"
)

// AgeRanges rangos fijos del histograma de antigüedad.
var AgeRanges = []AgeRange{
	{Label: "0-30", Min: 0, Max: 30},
	{Label: "31-60", Min: 31, Max: 60},
	{Label: "61-90", Min: 61, Max: 90},
	{Label: "91-120", Min: 91, Max: 120},
	{Label: "121-150", Min: 121, Max: 150},
	{Label: "151-180", Min: 151, Max: 180},
	{Label: "181+", Min: 181, Max: -1},
}

// AgeRange rango cerrado de días; Max < 0 significa sin tope.
type AgeRange struct {
	Label string
	Min   int
	Max   int
}

// Contains indica si days cae en el rango.
func (r AgeRange) Contains(days int) bool {
	return days >= r.Min && (r.Max < 0 || days <= r.Max)
}

// ProductInsight resultado por producto que alimenta el reporte agregado.
type ProductInsight struct {
	ProductID         string   `json:"product_id"`
	SKU               string   `json:"sku"`
	Name              string   `json:"name"`
	Category          string   `json:"category"`
	CurrentStock      int      `json:"current_stock"`
	Analysis          Analysis `json:"analysis"`
	HotScore          int      `json:"hot_score"`
	Relevance         float64  `json:"relevance"`
	TotalInteractions int      `json:"total_interactions"`
	UserCount         int      `json:"user_count"`
}

// pureBaseline sin historia real y solo con el ancla de sincronización.
func (p ProductInsight) pureBaseline() bool {
	a := p.Analysis
	return !a.HasRealHistory && (a.SyncOnly || a.IsBaseline)
}

// AgeBucketCount fila del histograma de antigüedad.
type AgeBucketCount struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

// AggregateReport rollup efímero de muchos productos; se reconstruye en cada petición.
type AggregateReport struct {
	TotalProducts int `json:"total_products"`

	Categories     map[string]int `json:"categories"`
	StockLevels    map[string]int `json:"stock_levels"`
	InterestLevels map[string]int `json:"interest_levels"`
	MovementLevels map[string]int `json:"movement_levels"`

	AgeBuckets          map[AgeBucket][]ProductInsight `json:"age_buckets"`
	DeadStock           []ProductInsight               `json:"dead_stock"`
	HotProducts         []ProductInsight               `json:"hot_products"`
	QualityInteractions []ProductInsight               `json:"quality_interactions"`
	AgeHistogram        []AgeBucketCount               `json:"age_histogram"`

	OldestStock *ProductInsight `json:"oldest_stock,omitempty"`
	NewestStock *ProductInsight `json:"newest_stock,omitempty"`

	AvgInteractionsPerDay float64 `json:"avg_interactions_per_day"`
	AvgRelevance          float64 `json:"avg_relevance"`
	AvgSalesVelocity      float64 `json:"avg_sales_velocity"`
	AvgDaysSinceRestock   float64 `json:"avg_days_since_restock"`
}

// BuildReport agrega los resultados por producto. windowDays normaliza las interacciones por día.
func BuildReport(items []ProductInsight, windowDays int) AggregateReport {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	r := AggregateReport{
		TotalProducts:       len(items),
		Categories:          map[string]int{},
		StockLevels:         map[string]int{LevelLow: 0, LevelMedium: 0, LevelHigh: 0},
		InterestLevels:      map[string]int{LevelHigh: 0, LevelMedium: 0, LevelLow: 0, LevelNone: 0},
		MovementLevels:      map[string]int{LevelHigh: 0, LevelMedium: 0, LevelLow: 0, LevelNone: 0},
		AgeBuckets:          make(map[AgeBucket][]ProductInsight, len(AgeBuckets)),
		DeadStock:           []ProductInsight{},
		HotProducts:         []ProductInsight{},
		QualityInteractions: []ProductInsight{},
		AgeHistogram:        make([]AgeBucketCount, len(AgeRanges)),
	}
	for _, b := range AgeBuckets {
		r.AgeBuckets[b] = []ProductInsight{}
	}
	for i, ar := range AgeRanges {
		r.AgeHistogram[i] = AgeBucketCount{Range: ar.Label}
	}

	var (
		interactionsPerDay []float64
		relevances         []float64
		velocities         []float64
		restockDays        []float64
	)

	for _, it := range items {
		a := it.Analysis

		r.Categories[categoryKey(it.Category)]++
		r.StockLevels[stockLevel(it.CurrentStock)]++
		r.InterestLevels[interestLevel(it.Relevance)]++
		r.MovementLevels[movementLevel(a.SalesVelocity)]++

		bucket := a.AgeBucket
		if bucket == "" {
			bucket = ClassifyAge(a.DaysSinceLastMovement)
		}
		r.AgeBuckets[bucket] = append(r.AgeBuckets[bucket], it)

		if it.Relevance > qualityRelevance {
			r.QualityInteractions = append(r.QualityInteractions, it)
			if it.HotScore > 0 {
				r.HotProducts = append(r.HotProducts, it)
			}
		}

		for i, ar := range AgeRanges {
			if ar.Contains(a.DaysSinceLastMovement) {
				r.AgeHistogram[i].Count++
				break
			}
		}

		if !it.pureBaseline() {
			if r.OldestStock == nil || a.DaysSinceLastMovement > r.OldestStock.Analysis.DaysSinceLastMovement {
				oldest := it
				r.OldestStock = &oldest
			}
			if r.NewestStock == nil || a.DaysSinceLastMovement < r.NewestStock.Analysis.DaysSinceLastMovement {
				newest := it
				r.NewestStock = &newest
			}
		}

		if it.TotalInteractions > 0 {
			interactionsPerDay = append(interactionsPerDay, float64(it.TotalInteractions)/float64(windowDays))
		}
		relevances = append(relevances, it.Relevance)
		if a.HasRealHistory {
			velocities = append(velocities, a.SalesVelocity)
		}
		if a.DaysSinceLastRestock != nil {
			restockDays = append(restockDays, float64(*a.DaysSinceLastRestock))
		}
	}
	r.DeadStock = r.AgeBuckets[BucketDeadStock]

	sort.SliceStable(r.HotProducts, func(i, j int) bool {
		return r.HotProducts[i].HotScore > r.HotProducts[j].HotScore
	})
	sort.SliceStable(r.QualityInteractions, func(i, j int) bool {
		return r.QualityInteractions[i].Relevance > r.QualityInteractions[j].Relevance
	})

	r.AvgInteractionsPerDay = meanFloat(interactionsPerDay)
	r.AvgRelevance = meanFloat(relevances)
	r.AvgSalesVelocity = meanFloat(velocities)
	r.AvgDaysSinceRestock = meanFloat(restockDays)
	return r
}

func categoryKey(c string) string {
	if c == "" {
		return "uncategorized"
	}
	return c
}

func stockLevel(stock int) string {
	switch {
	case stock <= lowStockMax:
		return LevelLow
	case stock <= mediumStockMax:
		return LevelMedium
	default:
		return LevelHigh
	}
}

func interestLevel(relevance float64) string {
	switch {
	case relevance > interestHigh:
		return LevelHigh
	case relevance > interestMedium:
		return LevelMedium
	case relevance > qualityRelevance:
		return LevelLow
	default:
		return LevelNone
	}
}

func movementLevel(velocity float64) string {
	switch {
	case velocity > velocityHigh:
		return LevelHigh
	case velocity >= velocityMedium:
		return LevelMedium
	case velocity > 0:
		return LevelLow
	default:
		return LevelNone
	}
}

func meanFloat(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
