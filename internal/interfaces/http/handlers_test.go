package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-movimientos/internal/application/dto"
	"github.com/jhoicas/inventario-movimientos/internal/application/movement"
	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
	"github.com/jhoicas/inventario-movimientos/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/inventario-movimientos/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type stubSource struct {
	logs map[string]*dto.MovementLogDTO
}

func (s *stubSource) FetchMovementLog(_ context.Context, sku string) (*dto.MovementLogDTO, error) {
	if log, ok := s.logs[sku]; ok {
		return log, nil
	}
	return nil, errors.New("sku desconocido en el servicio de inventario")
}

type stubProducts struct{ items []*entity.Product }

func (p *stubProducts) List(context.Context) ([]*entity.Product, error) { return p.items, nil }
func (p *stubProducts) GetBySKU(context.Context, string) (*entity.Product, error) {
	return nil, nil
}

type stubPDF struct{}

func (stubPDF) GenerateReportPDF(context.Context, *dto.AggregateReportDTO) ([]byte, error) {
	return []byte("%PDF-1.4"), nil
}

// buildTestApp monta el router real sobre el store en memoria y una fuente de movimientos fija.
func buildTestApp(t *testing.T) (*fiber.App, *memory.StockRecordRepo) {
	t.Helper()
	clock := func() time.Time { return testNow }
	repo := memory.NewStockRecordRepository()
	src := &stubSource{logs: map[string]*dto.MovementLogDTO{
		"TAZA-01": {
			SKU: "TAZA-01", ProductID: "p-1", ProductName: "Taza", CurrentStock: 5,
			Movements: []dto.MovementLogEntryDTO{{
				ID: "m1", ChangeType: "decrease", ChangeAmount: -2, OldStock: 7, NewStock: 5,
				CreatedAt: testNow.AddDate(0, 0, -3).Format(time.RFC3339),
			}},
		},
		"VACIO-01": {SKU: "VACIO-01", ProductID: "p-2", CurrentStock: 10},
	}}
	noDelay := time.Duration(0)

	fetcher := movement.NewMovementFetcher(src, clock, nil)
	syncUC := movement.NewSyncUseCase(repo, fetcher, movement.SyncDeps{Locker: movement.NewKeyedMutex(), Clock: clock})
	insightsUC := movement.NewInsightsUseCase(repo, movement.InsightsDeps{
		Clock:    clock,
		Products: &stubProducts{items: []*entity.Product{{ID: "p-1", SKU: "TAZA-01", Category: "cocina"}}},
		PDF:      stubPDF{},
	})

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		SyncUC:      syncUC,
		InsightsUC:  insightsUC,
		SyncOptions: movement.SyncOptions{BatchSize: 2, InterBatchDelay: &noDelay},
		StoreDriver: "memory",
	})
	return app, repo
}

func do(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

// ──────────────────────────────────────────────────────────────────────────────
// Sincronización
// ──────────────────────────────────────────────────────────────────────────────

func TestSyncOne_PersisteYDevuelveResumen(t *testing.T) {
	app, repo := buildTestApp(t)

	resp, raw := do(t, app, http.MethodPost, "/api/stock/TAZA-01/sync", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))

	var out dto.SyncResultDTO
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "synced", out.Status)
	require.NotNil(t, out.CurrentStock)
	assert.Equal(t, 5, *out.CurrentStock)
	assert.Equal(t, 1, out.Movements)
	assert.Equal(t, 1, repo.Len())

	_, raw = do(t, app, http.MethodPost, "/api/stock/TAZA-01/sync", "")
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "skipped", out.Status)
	assert.NotEmpty(t, out.Reason)
}

func TestSyncOne_FallaDeFetchEs502(t *testing.T) {
	app, _ := buildTestApp(t)

	resp, raw := do(t, app, http.MethodPost, "/api/stock/NO-EXISTE/sync", "")
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

	var out dto.SyncResultDTO
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "failed", out.Status)
	assert.NotEmpty(t, out.Error)
}

func TestSyncMany_ResultadosPorSKU(t *testing.T) {
	app, _ := buildTestApp(t)

	resp, raw := do(t, app, http.MethodPost, "/api/stock/sync",
		`{"skus": ["TAZA-01", "VACIO-01", "NO-EXISTE", " "]}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))

	var out dto.BatchSyncResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, 3, out.Total)
	assert.Equal(t, 2, out.Synced)
	assert.Equal(t, 1, out.Failed)
	assert.Equal(t, 2, out.Batches)
	assert.Equal(t, "NO-EXISTE", out.Results[2].SKU)
}

func TestSyncMany_Validaciones(t *testing.T) {
	app, _ := buildTestApp(t)

	cases := map[string]string{
		"sin skus":       `{"skus": []}`,
		"body inválido":  `{"skus": `,
		"delay negativo": `{"skus": ["A"], "inter_batch_delay_ms": -5}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp, _ := do(t, app, http.MethodPost, "/api/stock/sync", body)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Análisis y hot score
// ──────────────────────────────────────────────────────────────────────────────

func TestGetAnalysis(t *testing.T) {
	app, _ := buildTestApp(t)

	resp, _ := do(t, app, http.MethodGet, "/api/stock/TAZA-01/analysis", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode, "sin sincronizar")

	do(t, app, http.MethodPost, "/api/stock/TAZA-01/sync", "")
	resp, raw := do(t, app, http.MethodGet, "/api/stock/TAZA-01/analysis?window_days=7", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))

	var a map[string]any
	require.NoError(t, json.Unmarshal(raw, &a))
	assert.EqualValues(t, 7, a["window_days"])
	assert.EqualValues(t, 2, a["total_sold"])
	assert.EqualValues(t, 3, a["days_since_last_movement"])
	assert.Equal(t, "normal", a["age_bucket"])
}

func TestGetHotScore(t *testing.T) {
	app, _ := buildTestApp(t)
	do(t, app, http.MethodPost, "/api/stock/VACIO-01/sync", "")

	resp, raw := do(t, app, http.MethodGet, "/api/stock/VACIO-01/hot-score?relevance=0.9", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	var out dto.HotScoreDTO
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, 40, out.HotScore)
	assert.Equal(t, "normal", out.AgeBucket)

	resp, _ = do(t, app, http.MethodGet, "/api/stock/VACIO-01/hot-score?relevance=1.5", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reportes
// ──────────────────────────────────────────────────────────────────────────────

func TestBuildReport(t *testing.T) {
	app, _ := buildTestApp(t)
	do(t, app, http.MethodPost, "/api/stock/TAZA-01/sync", "")

	resp, raw := do(t, app, http.MethodPost, "/api/insights/report",
		`{"products": [{"sku": "TAZA-01", "category": "cocina", "relevance": 0.5}, {"sku": "OTRO"}]}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))

	var out dto.AggregateReportDTO
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, 1, out.TotalProducts)
	assert.Equal(t, []string{"OTRO"}, out.Skipped)
	assert.Equal(t, 1, out.Categories["cocina"])

	resp, _ = do(t, app, http.MethodPost, "/api/insights/report", `{"products": [{"sku": "X", "relevance": 2}]}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCatalogReportYPDF(t *testing.T) {
	app, _ := buildTestApp(t)
	do(t, app, http.MethodPost, "/api/stock/TAZA-01/sync", "")

	resp, raw := do(t, app, http.MethodGet, "/api/insights/report", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))

	resp, raw = do(t, app, http.MethodGet, "/api/insights/report.pdf", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	assert.True(t, strings.HasPrefix(string(raw), "%PDF"))
}

func TestHealth(t *testing.T) {
	app, _ := buildTestApp(t)
	resp, raw := do(t, app, http.MethodGet, "/health", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status": "ok", "store": "memory"}`, string(raw))
}
