package movement_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-movimientos/internal/application/dto"
	usecase "github.com/jhoicas/inventario-movimientos/internal/application/movement"
	"github.com/jhoicas/inventario-movimientos/internal/domain"
	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
)

type syncFixture struct {
	src     *fakeSource
	repo    *fakeRepo
	sleeper *recordingSleeper
	uc      *usecase.SyncUseCase
}

func newSyncFixture() *syncFixture {
	fx := &syncFixture{
		src:     newFakeSource(),
		repo:    newFakeRepo(),
		sleeper: &recordingSleeper{},
	}
	fetcher := usecase.NewMovementFetcher(fx.src, fixedClock, nil)
	fx.uc = usecase.NewSyncUseCase(fx.repo, fetcher, usecase.SyncDeps{
		Locker:  usecase.NewKeyedMutex(),
		Clock:   fixedClock,
		Sleeper: fx.sleeper.Sleep,
	})
	return fx
}

// ──────────────────────────────────────────────────────────────────────────────
// SyncOne
// ──────────────────────────────────────────────────────────────────────────────

func TestSyncOne_PrimeraSyncPersiste(t *testing.T) {
	fx := newSyncFixture()

	res := fx.uc.SyncOne(context.Background(), "A", false)

	require.Equal(t, usecase.StatusSynced, res.Status)
	require.NotNil(t, res.Record)
	assert.Equal(t, 4, res.Record.CurrentStock)
	assert.Same(t, res.Record, fx.repo.records["A"])
	assert.Len(t, res.Record.MovementHistory, 1, "baseline sintetizado")
}

func TestSyncOne_CompuertaDeFrescura(t *testing.T) {
	fx := newSyncFixture()
	fx.repo.records["A"] = &entity.StockRecord{SKU: "A", CurrentStock: 9, SyncTimestamp: now.Add(-2 * time.Minute)}

	res := fx.uc.SyncOne(context.Background(), "A", false)
	assert.Equal(t, usecase.StatusSkipped, res.Status)
	assert.Equal(t, 9, res.Record.CurrentStock, "devuelve el registro existente")
	assert.NotEmpty(t, res.Reason)
	assert.Zero(t, fx.src.callsFor("A"))

	forced := fx.uc.SyncOne(context.Background(), "A", true)
	assert.Equal(t, usecase.StatusSynced, forced.Status)
	assert.Equal(t, 1, fx.src.callsFor("A"))
}

func TestSyncOne_RegistroViejoSeResincroniza(t *testing.T) {
	fx := newSyncFixture()
	fx.repo.records["A"] = &entity.StockRecord{SKU: "A", SyncTimestamp: now.Add(-5 * time.Minute)}

	res := fx.uc.SyncOne(context.Background(), "A", false)
	assert.Equal(t, usecase.StatusSynced, res.Status)
}

func TestSyncOne_MergeConservaHistorialExistente(t *testing.T) {
	fx := newSyncFixture()
	old := entity.MovementEntry{ID: "m-old", ChangeType: entity.ChangeDecrease, ChangeAmount: -1, CreatedAt: now.AddDate(0, 0, -40)}
	fx.repo.records["A"] = &entity.StockRecord{
		SKU:             "A",
		MovementHistory: []entity.MovementEntry{old},
		SyncTimestamp:   now.Add(-time.Hour),
	}
	fx.src.logs["A"] = &dto.MovementLogDTO{
		SKU:          "A",
		CurrentStock: 7,
		Movements:    []dto.MovementLogEntryDTO{movementDTO("m-new", "increase", 5, now.AddDate(0, 0, -1))},
	}

	res := fx.uc.SyncOne(context.Background(), "A", false)
	require.Equal(t, usecase.StatusSynced, res.Status)
	require.Len(t, res.Record.MovementHistory, 2)
	assert.Equal(t, "m-new", res.Record.MovementHistory[0].ID)
	assert.Equal(t, "m-old", res.Record.MovementHistory[1].ID)
	assert.Equal(t, 7, res.Record.CurrentStock)
}

func TestSyncOne_FallaDePersistencia(t *testing.T) {
	fx := newSyncFixture()
	fx.repo.putErr = errStoreDown

	res := fx.uc.SyncOne(context.Background(), "A", false)
	assert.Equal(t, usecase.StatusFailed, res.Status)
	assert.ErrorIs(t, res.Err, domain.ErrPersistFailed)
	assert.ErrorIs(t, res.Err, errStoreDown)
	assert.Nil(t, res.Record)
}

func TestSyncOne_FallaDeFetch(t *testing.T) {
	fx := newSyncFixture()
	fx.src.errs["A"] = errors.New("timeout")

	res := fx.uc.SyncOne(context.Background(), "A", false)
	assert.Equal(t, usecase.StatusFailed, res.Status)
	assert.ErrorIs(t, res.Err, domain.ErrFetchFailed)
	assert.Zero(t, fx.repo.puts)
}

// ──────────────────────────────────────────────────────────────────────────────
// SyncMany
// ──────────────────────────────────────────────────────────────────────────────

func TestSyncMany_SieteSKUsEnLotesDeTres(t *testing.T) {
	fx := newSyncFixture()
	skus := []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7"}

	report := fx.uc.SyncMany(context.Background(), skus, usecase.SyncOptions{BatchSize: 3})

	assert.Equal(t, 3, report.Batches)
	assert.Equal(t, []time.Duration{usecase.DefaultInterBatchDelay, usecase.DefaultInterBatchDelay}, fx.sleeper.delays)
	assert.Equal(t, 7, report.Synced)
	require.Len(t, report.Results, 7)
	for i, r := range report.Results {
		assert.Equal(t, skus[i], r.SKU, "resultados en orden de entrada")
	}
}

func TestSyncMany_FallaAisladaNoAbortaHermanos(t *testing.T) {
	fx := newSyncFixture()
	fx.src.errs["s2"] = errors.New("502")
	fx.repo.records["s3"] = &entity.StockRecord{SKU: "s3", SyncTimestamp: now.Add(-time.Minute)}
	delay := time.Duration(0)

	report := fx.uc.SyncMany(context.Background(), []string{"s1", "s2", "s3", "s4"}, usecase.SyncOptions{
		BatchSize:       2,
		InterBatchDelay: &delay,
	})

	assert.Equal(t, 2, report.Synced)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, usecase.StatusFailed, report.Results[1].Status)
	assert.Equal(t, usecase.StatusSkipped, report.Results[2].Status)
	assert.Equal(t, usecase.StatusSynced, report.Results[3].Status)
	assert.Equal(t, []time.Duration{0}, fx.sleeper.delays)
}

func TestSyncMany_ConcurrenciaAcotadaPorLote(t *testing.T) {
	fx := newSyncFixture()
	fx.src.hold = 20 * time.Millisecond
	skus := make([]string, 9)
	for i := range skus {
		skus[i] = fmt.Sprintf("c%d", i)
	}

	fx.uc.SyncMany(context.Background(), skus, usecase.SyncOptions{BatchSize: 3})

	assert.LessOrEqual(t, fx.src.peak, 3)
}

func TestSyncMany_CancelacionMarcaPendientesComoFallidos(t *testing.T) {
	fx := newSyncFixture()
	fx.sleeper.err = context.Canceled

	report := fx.uc.SyncMany(context.Background(), []string{"a", "b", "c", "d"}, usecase.SyncOptions{BatchSize: 2})

	assert.Equal(t, 1, report.Batches)
	assert.Equal(t, 2, report.Synced)
	assert.Equal(t, 2, report.Failed)
	assert.ErrorIs(t, report.Results[2].Err, context.Canceled)
	assert.Zero(t, fx.src.callsFor("c"))
}

func TestSyncMany_ListaVacia(t *testing.T) {
	fx := newSyncFixture()
	report := fx.uc.SyncMany(context.Background(), nil, usecase.SyncOptions{})
	assert.Zero(t, report.Batches)
	assert.Empty(t, report.Results)
	assert.Empty(t, fx.sleeper.delays)
}

func TestSyncOne_MismoSKUConcurrenteSeSerializa(t *testing.T) {
	fx := newSyncFixture()
	fx.src.hold = 10 * time.Millisecond

	var wg sync.WaitGroup
	results := make([]usecase.SyncResult, 4)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = fx.uc.SyncOne(context.Background(), "dup", false)
		}()
	}
	wg.Wait()

	synced := 0
	for _, r := range results {
		if r.Status == usecase.StatusSynced {
			synced++
		}
	}
	assert.Equal(t, 1, synced, "las demás ven el registro fresco y se omiten")
	assert.Equal(t, 1, fx.src.callsFor("dup"))
	assert.Equal(t, 1, fx.src.peak)
}

// ──────────────────────────────────────────────────────────────────────────────
// KeyedMutex
// ──────────────────────────────────────────────────────────────────────────────

func TestKeyedMutex_LiberaEntradas(t *testing.T) {
	k := usecase.NewKeyedMutex()
	unlockA := k.Lock("a")
	unlockB := k.Lock("b")
	assert.Equal(t, 2, k.Len())

	unlockA()
	unlockB()
	assert.Zero(t, k.Len())
}
