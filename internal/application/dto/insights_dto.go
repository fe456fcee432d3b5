package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-movimientos/internal/domain/movement"
)

// ProductInsightInput tupla por producto para POST /api/insights/report.
// El análisis se calcula en el servidor a partir del registro almacenado del SKU.
type ProductInsightInput struct {
	SKU               string  `json:"sku"`
	Category          string  `json:"category"`
	Relevance         float64 `json:"relevance"`
	TotalInteractions int     `json:"total_interactions"`
	UserCount         int     `json:"user_count"`
}

// ReportRequest body para POST /api/insights/report.
type ReportRequest struct {
	WindowDays int                   `json:"window_days,omitempty"`
	Products   []ProductInsightInput `json:"products"`
}

// AggregateReportDTO reporte agregado con promedios redondeados a 2 decimales.
type AggregateReportDTO struct {
	WindowDays    int    `json:"window_days"`
	GeneratedAt   string `json:"generated_at"`
	TotalProducts int    `json:"total_products"`

	Categories     map[string]int `json:"categories"`
	StockLevels    map[string]int `json:"stock_levels"`
	InterestLevels map[string]int `json:"interest_levels"`
	MovementLevels map[string]int `json:"movement_levels"`

	AgeBuckets          map[movement.AgeBucket][]movement.ProductInsight `json:"age_buckets"`
	DeadStock           []movement.ProductInsight                        `json:"dead_stock"`
	HotProducts         []movement.ProductInsight                        `json:"hot_products"`
	QualityInteractions []movement.ProductInsight                        `json:"quality_interactions"`
	AgeHistogram        []movement.AgeBucketCount                        `json:"age_histogram"`
	OldestStock         *movement.ProductInsight                         `json:"oldest_stock,omitempty"`
	NewestStock         *movement.ProductInsight                         `json:"newest_stock,omitempty"`

	AvgInteractionsPerDay decimal.Decimal `json:"avg_interactions_per_day"`
	AvgRelevance          decimal.Decimal `json:"avg_relevance"`
	AvgSalesVelocity      decimal.Decimal `json:"avg_sales_velocity"`
	AvgDaysSinceRestock   decimal.Decimal `json:"avg_days_since_restock"`

	Skipped []string `json:"skipped,omitempty"` // SKUs sin registro sincronizado
}
