package movement_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-movimientos/internal/domain/movement"
)

func insight(sku, category string, stock int, days int, score int, relevance float64) movement.ProductInsight {
	return movement.ProductInsight{
		SKU:          sku,
		Category:     category,
		CurrentStock: stock,
		HotScore:     score,
		Relevance:    relevance,
		Analysis: movement.Analysis{
			DaysSinceLastMovement: days,
			AgeBucket:             movement.ClassifyAge(days),
			HasRealHistory:        true,
		},
	}
}

func skus(items []movement.ProductInsight) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.SKU)
	}
	return out
}

func TestBuildReport_Histogramas(t *testing.T) {
	items := []movement.ProductInsight{
		insight("A", "ropa", 5, 10, 40, 0.9),
		insight("B", "ropa", 50, 70, 0, 0.6),
		insight("C", "calzado", 101, 200, 15, 0.3),
		insight("D", "", 10, 31, 60, 0.1),
	}
	items[0].Analysis.SalesVelocity = 60
	items[1].Analysis.SalesVelocity = 10
	items[2].Analysis.SalesVelocity = 0.5

	r := movement.BuildReport(items, 30)

	assert.Equal(t, 4, r.TotalProducts)
	assert.Equal(t, map[string]int{"ropa": 2, "calzado": 1, "uncategorized": 1}, r.Categories)
	assert.Equal(t, map[string]int{"low": 2, "medium": 1, "high": 1}, r.StockLevels)
	assert.Equal(t, map[string]int{"high": 1, "medium": 1, "low": 1, "none": 1}, r.InterestLevels)
	assert.Equal(t, map[string]int{"high": 1, "medium": 1, "low": 1, "none": 1}, r.MovementLevels)

	hist := map[string]int{}
	for _, h := range r.AgeHistogram {
		hist[h.Range] = h.Count
	}
	assert.Equal(t, 1, hist["0-30"])
	assert.Equal(t, 1, hist["31-60"])
	assert.Equal(t, 1, hist["61-90"])
	assert.Equal(t, 1, hist["181+"])
	assert.Len(t, r.AgeHistogram, 7)

	assert.Equal(t, []string{"C"}, skus(r.DeadStock))
	assert.Equal(t, []string{"B"}, skus(r.AgeBuckets[movement.BucketSlowMove]))
}

func TestBuildReport_RankingsEstables(t *testing.T) {
	items := []movement.ProductInsight{
		insight("A", "x", 1, 1, 30, 0.5),
		insight("B", "x", 1, 1, 80, 0.3),
		insight("C", "x", 1, 1, 30, 0.9),
		insight("D", "x", 1, 1, 0, 0.95), // score 0: no es hot
		insight("E", "x", 1, 1, 99, 0.2), // relevancia baja
	}
	r := movement.BuildReport(items, 30)

	assert.Equal(t, []string{"B", "A", "C"}, skus(r.HotProducts))
	assert.Equal(t, []string{"D", "C", "A", "B"}, skus(r.QualityInteractions))
}

func TestBuildReport_OldestNewestExcluyeBaselines(t *testing.T) {
	baseline := insight("BASE", "x", 0, 400, 0, 0)
	baseline.Analysis.HasRealHistory = false
	baseline.Analysis.SyncOnly = true

	fresh := insight("FRESH", "x", 0, 0, 0, 0)
	fresh.Analysis.HasRealHistory = false
	fresh.Analysis.IsBaseline = true

	items := []movement.ProductInsight{
		baseline,
		fresh,
		insight("OLD", "x", 1, 120, 0, 0),
		insight("NEW", "x", 1, 2, 0, 0),
	}
	r := movement.BuildReport(items, 30)

	require.NotNil(t, r.OldestStock)
	require.NotNil(t, r.NewestStock)
	assert.Equal(t, "OLD", r.OldestStock.SKU)
	assert.Equal(t, "NEW", r.NewestStock.SKU)

	// el histograma sí los cuenta
	total := 0
	for _, h := range r.AgeHistogram {
		total += h.Count
	}
	assert.Equal(t, 4, total)
}

func TestBuildReport_Promedios(t *testing.T) {
	restock := 10
	a := insight("A", "x", 1, 1, 0, 0.4)
	a.TotalInteractions = 60
	a.Analysis.SalesVelocity = 2
	a.Analysis.DaysSinceLastRestock = &restock

	b := insight("B", "x", 1, 1, 0, 0.2)
	b.Analysis.SalesVelocity = 4

	baseline := insight("C", "x", 1, 0, 0, 0)
	baseline.Analysis.HasRealHistory = false
	baseline.Analysis.IsBaseline = true

	r := movement.BuildReport([]movement.ProductInsight{a, b, baseline}, 30)

	assert.InDelta(t, 2.0, r.AvgInteractionsPerDay, 1e-9)
	assert.InDelta(t, 0.2, r.AvgRelevance, 1e-9)
	assert.InDelta(t, 3.0, r.AvgSalesVelocity, 1e-9)
	assert.InDelta(t, 10.0, r.AvgDaysSinceRestock, 1e-9)
}

func TestBuildReport_Vacio(t *testing.T) {
	r := movement.BuildReport(nil, 0)

	assert.Zero(t, r.TotalProducts)
	assert.Nil(t, r.OldestStock)
	assert.Nil(t, r.NewestStock)
	assert.Zero(t, r.AvgRelevance)
	assert.Zero(t, r.AvgSalesVelocity)
	assert.NotNil(t, r.HotProducts)
	assert.Len(t, r.AgeBuckets, len(movement.AgeBuckets))
}
