package catalogsync_test

import (
	"context"
	"sync"
	"testing"

	"github.com/jhoicas/inventario-sync/internal/application/catalogsync"
	"github.com/jhoicas/inventario-sync/internal/domain"
	"github.com/jhoicas/inventario-sync/internal/domain/entity"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memLocker lock por tienda en memoria con el mismo contrato que el de redis.
type memLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	lost     map[string]context.CancelCauseFunc
	acquired []string
	released []string
}

func newMemLocker() *memLocker {
	return &memLocker{held: map[string]bool{}, lost: map[string]context.CancelCauseFunc{}}
}

func (l *memLocker) Lock(ctx context.Context, shopID string) (context.Context, func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[shopID] {
		return nil, nil, domain.ErrSyncInProgress
	}
	l.held[shopID] = true
	l.acquired = append(l.acquired, shopID)
	lockCtx, cancel := context.WithCancelCause(ctx)
	l.lost[shopID] = cancel
	return lockCtx, func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		cancel(nil)
		delete(l.held, shopID)
		delete(l.lost, shopID)
		l.released = append(l.released, shopID)
		return nil
	}, nil
}

// lose simula un refresco fallido: cancela el contexto del lock vigente.
func (l *memLocker) lose(shopID string) {
	l.mu.Lock()
	cancel := l.lost[shopID]
	l.mu.Unlock()
	if cancel != nil {
		cancel(domain.ErrLockLost)
	}
}

func TestCoordinator_SyncShopTomaYLiberaElLock(t *testing.T) {
	h := newHarness(t)
	h.seedCatalog()
	locker := newMemLocker()
	c := catalogsync.NewCoordinator(h.sync, h.store.Shops(), locker, zerolog.Nop())

	summary, err := c.SyncShop(context.Background(), testShopID, catalogsync.SyncOptions{})

	require.NoError(t, err)
	assert.Equal(t, entity.SyncRunStatusSuccess, summary.Status)
	assert.Equal(t, []string{testShopID}, locker.acquired)
	assert.Equal(t, []string{testShopID}, locker.released)
	assert.Empty(t, locker.held)
}

func TestCoordinator_TiendaBloqueadaDevuelveErrSyncInProgress(t *testing.T) {
	h := newHarness(t)
	h.seedCatalog()
	locker := newMemLocker()
	locker.held[testShopID] = true
	c := catalogsync.NewCoordinator(h.sync, h.store.Shops(), locker, zerolog.Nop())

	summary, err := c.SyncShop(context.Background(), testShopID, catalogsync.SyncOptions{})

	require.ErrorIs(t, err, domain.ErrSyncInProgress)
	assert.Nil(t, summary)
	assert.Empty(t, h.store.Runs(), "no se registra corrida sin lock")
	assert.Empty(t, h.source.Calls())
}

func TestCoordinator_LiberaElLockSiLaTiendaNoExiste(t *testing.T) {
	h := newHarness(t)
	locker := newMemLocker()
	c := catalogsync.NewCoordinator(h.sync, h.store.Shops(), locker, zerolog.Nop())

	_, err := c.SyncShop(context.Background(), "no-existe", catalogsync.SyncOptions{})

	require.ErrorIs(t, err, domain.ErrShopNotFound)
	assert.Equal(t, []string{"no-existe"}, locker.released)
}

func TestCoordinator_SinLockerSincronizaIgual(t *testing.T) {
	h := newHarness(t)
	h.seedCatalog()
	c := catalogsync.NewCoordinator(h.sync, h.store.Shops(), nil, zerolog.Nop())

	summary, err := c.SyncShop(context.Background(), testShopID, catalogsync.SyncOptions{})

	require.NoError(t, err)
	assert.True(t, summary.Success)
}

func TestCoordinator_SyncAllOmiteTiendasBloqueadas(t *testing.T) {
	h := newHarness(t)
	h.seedCatalog()
	h.store.AddShop(&entity.Shop{ID: "shop-2", Domain: "otra.myshopify.com"})
	h.store.AddShop(&entity.Shop{ID: "shop-3", Domain: "tercera.myshopify.com"})
	locker := newMemLocker()
	locker.held["shop-2"] = true
	c := catalogsync.NewCoordinator(h.sync, h.store.Shops(), locker, zerolog.Nop())

	summaries, err := c.SyncAll(context.Background(), catalogsync.SyncOptions{SkipMetrics: true})

	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, testShopID, summaries[0].ShopID)
	assert.Equal(t, "shop-3", summaries[1].ShopID)
	assert.True(t, locker.held["shop-2"], "el lock ajeno no se toca")
}

func TestCoordinator_SyncAllRespetaCancelacion(t *testing.T) {
	h := newHarness(t)
	h.seedCatalog()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := catalogsync.NewCoordinator(h.sync, h.store.Shops(), newMemLocker(), zerolog.Nop())

	summaries, err := c.SyncAll(ctx, catalogsync.SyncOptions{})

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, summaries)
}

func TestCoordinator_LockPerdidoInterrumpeLaCorrida(t *testing.T) {
	h := newHarness(t)
	h.seedCatalog()
	h.source.productPageSize = 1
	locker := newMemLocker()
	h.source.onFetch = func(key string) {
		if key == "products:o:1" {
			locker.lose(testShopID)
		}
	}
	c := catalogsync.NewCoordinator(h.sync, h.store.Shops(), locker, zerolog.Nop())

	summary, err := c.SyncShop(context.Background(), testShopID, catalogsync.SyncOptions{})

	require.NoError(t, err)
	assert.Equal(t, entity.SyncRunStatusFailed, summary.Status)
	assert.Equal(t, 1, summary.ProductsSynced, "no se escriben páginas tras perder el lock")
	assert.Zero(t, summary.ProductsUpdatedCount)
	runs := h.store.Runs()
	require.Len(t, runs, 1)
	assert.Equal(t, "o:1", runs[0].ProductCursor)
	assert.Equal(t, []string{testShopID}, locker.released)
}

func TestCoordinator_RecomputeAllTomaYLiberaElLock(t *testing.T) {
	h := newHarness(t)
	h.seedCatalog()
	_, err := h.sync.SyncShop(context.Background(), testShopID, catalogsync.SyncOptions{SkipMetrics: true})
	require.NoError(t, err)
	locker := newMemLocker()
	c := catalogsync.NewCoordinator(h.sync, h.store.Shops(), locker, zerolog.Nop())

	summary, err := c.RecomputeAll(context.Background(), testShopID)

	require.NoError(t, err)
	assert.True(t, summary.Success)
	assert.Equal(t, 3, summary.ProductsUpdated)
	assert.Equal(t, []string{testShopID}, locker.acquired)
	assert.Equal(t, []string{testShopID}, locker.released)
}

func TestCoordinator_RecomputeAllConCorridaActivaDevuelveErrSyncInProgress(t *testing.T) {
	h := newHarness(t)
	h.seedCatalog()
	_, err := h.sync.SyncShop(context.Background(), testShopID, catalogsync.SyncOptions{SkipMetrics: true})
	require.NoError(t, err)
	locker := newMemLocker()
	locker.held[testShopID] = true
	c := catalogsync.NewCoordinator(h.sync, h.store.Shops(), locker, zerolog.Nop())

	_, err = c.RecomputeAll(context.Background(), testShopID)

	require.ErrorIs(t, err, domain.ErrSyncInProgress)
	assert.Equal(t, entity.ProductStatusUnknown, h.store.Product(testShopID, productGID("1")).Status, "no se tocan métricas")
}
